package chat

import (
	"encoding/json"
	"fmt"
)

// inboundFrame is the JSON payload of one realtime frame. The backend has
// carried the text under both "message" (live broadcast) and "content"
// (persisted form), so both field names are accepted, with "message" taking
// precedence.
type inboundFrame struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
	Content string `json:"content"`
}

// decodeFrame parses a realtime frame into its sender and text.
func decodeFrame(data []byte) (sender, text string, err error) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return "", "", fmt.Errorf("chat: decode frame: %w", err)
	}
	text = frame.Message
	if text == "" {
		text = frame.Content
	}
	return frame.Sender, text, nil
}

package api

import (
	"context"

	"github.com/campusmarket/market-client/internal/inbox"
	"github.com/campusmarket/market-client/internal/room"
)

// ChatMessage is one entry of a room's history. Ordering is the fetch order;
// messages carry no id or timestamp.
type ChatMessage struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// ChatHistory fetches the ordered message log for a room. The backend marks
// the room read for the caller as a side effect.
func (c *Client) ChatHistory(ctx context.Context, id room.ID) ([]ChatMessage, error) {
	var msgs []ChatMessage
	if err := c.getJSONAuthed(ctx, "/chat/"+id.String(), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Conversations fetches the caller's conversation list with per-room unread
// counts.
func (c *Client) Conversations(ctx context.Context) ([]inbox.Conversation, error) {
	var convs []inbox.Conversation
	if err := c.getJSONAuthed(ctx, "/users/chats", &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// Package inbox models the conversation list: the read-only projection of a
// user's ongoing chats returned by the backend. Rows are rendered as-is and
// never mutated locally; unread counts aggregate into a single badge.
package inbox

import "strconv"

// Conversation is one row of GET /users/chats. Role is the backend's label
// for the viewer's side of the conversation and is displayed verbatim.
type Conversation struct {
	RoomID       string `json:"room_id"`
	ItemID       int64  `json:"item_id"`
	ItemTitle    string `json:"item_title"`
	ItemImageURL string `json:"item_image_url"`
	Counterpart  string `json:"counterpart_nickname"`
	Role         string `json:"role"`
	UnreadCount  int    `json:"unread_count"`
}

// badgeCap is the largest count the unread badge displays; anything above
// renders as "9+".
const badgeCap = 9

// TotalUnread sums the unread counts across all conversations.
func TotalUnread(convs []Conversation) int {
	total := 0
	for _, c := range convs {
		total += c.UnreadCount
	}
	return total
}

// BadgeLabel formats the aggregate unread badge. Zero yields an empty string
// (no badge); totals above nine are capped at "9+".
func BadgeLabel(total int) string {
	switch {
	case total <= 0:
		return ""
	case total > badgeCap:
		return "9+"
	default:
		return strconv.Itoa(total)
	}
}

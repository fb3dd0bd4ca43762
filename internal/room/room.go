// Package room defines the typed identifier for a chat room: a two-party
// conversation about a single item listing. The backend addresses rooms with
// the string "{itemID}-{buyerID}", where the buyer is always the non-owner
// party. Both participants must derive the identical string, so all
// construction goes through the two constructors in this package instead of
// ad-hoc concatenation.
package room

import (
	"fmt"
	"strconv"
	"strings"
)

// ID is the composite key of a chat room.
type ID struct {
	ItemID  int64
	BuyerID int64
}

// New returns the room for the conversation about item itemID in which
// buyerID is the non-owner party.
func New(itemID, buyerID int64) ID {
	return ID{ItemID: itemID, BuyerID: buyerID}
}

// ForViewer resolves the room a viewer reaches from an item page. The viewer
// is the buyer side of the conversation; an owner has no single room for
// their own item (one exists per interested buyer) and must enter from the
// conversation list instead.
func ForViewer(itemID, viewerID, ownerID int64) (ID, error) {
	if viewerID == ownerID {
		return ID{}, fmt.Errorf("room: user %d owns item %d and has no buyer-side room", viewerID, itemID)
	}
	return New(itemID, viewerID), nil
}

// Parse decodes the wire form "{itemID}-{buyerID}". Conversation list rows
// carry room ids in this form.
func Parse(s string) (ID, error) {
	item, buyer, ok := strings.Cut(s, "-")
	if !ok {
		return ID{}, fmt.Errorf("room: malformed id %q", s)
	}
	itemID, err := strconv.ParseInt(item, 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("room: malformed item component in %q", s)
	}
	buyerID, err := strconv.ParseInt(buyer, 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("room: malformed buyer component in %q", s)
	}
	return ID{ItemID: itemID, BuyerID: buyerID}, nil
}

// String returns the wire form used in REST paths and WebSocket URLs.
func (id ID) String() string {
	return fmt.Sprintf("%d-%d", id.ItemID, id.BuyerID)
}

// IsZero reports whether the id is the zero value (no room).
func (id ID) IsZero() bool {
	return id == ID{}
}

package notifications

import (
	"encoding/json"
	"fmt"
)

// Event type constants prevent typos in event names.
const (
	EventFreetCreated    = "freet.created"
	EventFreetUpdated    = "freet.updated"
	EventFreetArchived   = "freet.archived"
	EventFreetUnarchived = "freet.unarchived"
	EventFreetDeleted    = "freet.deleted"
	EventFreetExpired    = "freet.expired"
	EventListingSold     = "listing.sold"
	EventListingUpdated  = "listing.updated"
)

// Event is the envelope written to websocket clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
	// Recipient, when non-zero, receives the event on its private channel.
	// Everyone else sees it on the broadcast channel.
	Recipient uint `json:"-"`
}

// Encode renders the event as the JSON text frame sent to clients.
func (e Event) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	return string(b), nil
}

package notifications

import (
	"context"
	"errors"
)

// Dispatcher publishes events through Redis when it is configured, so every
// API instance sees them, and straight to the local hub otherwise.
type Dispatcher struct {
	notifier *Notifier
	hub      *Hub
}

// NewDispatcher builds a Dispatcher. Either argument may be nil.
func NewDispatcher(notifier *Notifier, hub *Hub) *Dispatcher {
	return &Dispatcher{notifier: notifier, hub: hub}
}

// Publish delivers ev once to every client. When Recipient is set, that
// user's connections get it on their private channel instead of the
// broadcast one.
func (d *Dispatcher) Publish(ctx context.Context, ev Event) error {
	message, err := ev.Encode()
	if err != nil {
		return err
	}

	if d.notifier.Enabled() {
		if ev.Recipient == 0 {
			return d.notifier.PublishBroadcast(ctx, message)
		}
		return errors.Join(
			d.notifier.PublishBroadcastExcept(ctx, ev.Recipient, message),
			d.notifier.PublishUser(ctx, ev.Recipient, message),
		)
	}

	if d.hub != nil {
		if ev.Recipient == 0 {
			d.hub.BroadcastAll(message)
			return nil
		}
		d.hub.BroadcastExcept(ev.Recipient, message)
		d.hub.Broadcast(ev.Recipient, message)
	}
	return nil
}

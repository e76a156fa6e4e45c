package services

import (
	"context"
	"encoding/json"
	"log"
)

// EventsChannel is the broker channel chat events are published to.
const EventsChannel = "chat.events"

// Event kinds published by the chat and message services.
const (
	EventChatCreated    = "chat.created"
	EventChatUpdated    = "chat.updated"
	EventChatDeleted    = "chat.deleted"
	EventMessageCreated = "message.created"
)

// EventPublisher publishes chat events to the configured broker.
// Satisfied by *mq.MQ.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// publishEvent sends a best-effort event. Delivery failures never fail
// the request that produced the event.
func publishEvent(ctx context.Context, publisher EventPublisher, kind string, payload any) {
	if publisher == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("marshal %s event: %v", kind, err)
		return
	}
	if _, err := publisher.Publish(ctx, EventsChannel, data, map[string]string{"event": kind}); err != nil {
		log.Printf("publish %s event: %v", kind, err)
	}
}

package orders

import (
	"context"
	"time"

	"go_trial/cravewave/models"
)

type EventType string

const (
	EventOrderPlaced   EventType = "order.placed"
	EventStatusChanged EventType = "order.status_changed"
)

// Event carries the new authoritative state of an order.
type Event struct {
	Type       EventType          `json:"type"`
	Order      models.Order       `json:"order"`
	FromStatus models.OrderStatus `json:"from_status,omitempty"`
	Actor      models.Actor       `json:"actor"`
	At         time.Time          `json:"at"`
}

// Publisher fans order events out to observers (UIs, other services).
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }

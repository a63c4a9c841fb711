package orders

import (
	"context"
	"errors"

	"go_trial/cravewave/models"
)

// ErrStatusConflict is returned by Store.CompareAndSwapStatus when the stored
// status no longer equals the expected one.
var ErrStatusConflict = errors.New("order status changed concurrently")

// Store is the persisted order log. Implementations must return a
// models.ErrNotFound kind error for unknown ids, and must treat a missing
// log as an empty one.
type Store interface {
	// LoadOrders returns the whole log in append order.
	LoadOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (models.Order, error)
	// AppendOrder adds a new order. Nothing is written on error.
	AppendOrder(ctx context.Context, order models.Order) error
	// CompareAndSwapStatus sets the status of id to `to` only if it is
	// currently `from`, and returns ErrStatusConflict otherwise.
	CompareAndSwapStatus(ctx context.Context, id string, from, to models.OrderStatus) error
}

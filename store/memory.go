// Package store holds the order log adapters behind orders.Store.
package store

import (
	"context"
	"sync"

	"go_trial/cravewave/models"
	"go_trial/cravewave/orders"
)

var _ orders.Store = (*Memory)(nil)

// Memory keeps the log in process. It backs tests and single-node demos.
type Memory struct {
	mu    sync.RWMutex
	log   []models.Order
	index map[string]int
}

func NewMemory() *Memory {
	return &Memory{index: make(map[string]int)}
}

func (m *Memory) LoadOrders(context.Context) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Order, len(m.log))
	for i, o := range m.log {
		out[i] = o.Clone()
	}
	return out, nil
}

func (m *Memory) GetOrder(_ context.Context, id string) (models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.index[id]
	if !ok {
		return models.Order{}, models.NotFound("store.Memory.GetOrder", "order %s not found", id)
	}
	return m.log[i].Clone(), nil
}

func (m *Memory) AppendOrder(_ context.Context, order models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.index[order.ID]; dup {
		return models.Validation("store.Memory.AppendOrder", "order %s already exists", order.ID)
	}
	m.index[order.ID] = len(m.log)
	m.log = append(m.log, order.Clone())
	return nil
}

func (m *Memory) CompareAndSwapStatus(_ context.Context, id string, from, to models.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[id]
	if !ok {
		return models.NotFound("store.Memory.CompareAndSwapStatus", "order %s not found", id)
	}
	if m.log[i].Status != from {
		return orders.ErrStatusConflict
	}
	m.log[i].Status = to
	return nil
}

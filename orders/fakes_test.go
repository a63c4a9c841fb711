package orders

import (
	"context"
	"sync"

	"go_trial/cravewave/models"
)

// memLog is a minimal Store for engine tests. The real adapters live in the
// store package, which imports this one.
type memLog struct {
	mu   sync.Mutex
	log  []models.Order
	swap int

	appendErr error
	loadErr   error
	getErr    error
	swapErr   error
	// beforeSwap runs inside CompareAndSwapStatus before the status check,
	// letting a test change the order underneath the engine.
	beforeSwap func(l *memLog)
}

func (m *memLog) LoadOrders(context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]models.Order, len(m.log))
	for i, o := range m.log {
		out[i] = o.Clone()
	}
	return out, nil
}

func (m *memLog) GetOrder(_ context.Context, id string) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return models.Order{}, m.getErr
	}
	for _, o := range m.log {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return models.Order{}, models.NotFound("memLog.GetOrder", "order %s", id)
}

func (m *memLog) AppendOrder(_ context.Context, order models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.log = append(m.log, order.Clone())
	return nil
}

func (m *memLog) CompareAndSwapStatus(_ context.Context, id string, from, to models.OrderStatus) error {
	m.mu.Lock()
	if hook := m.beforeSwap; hook != nil {
		m.beforeSwap = nil
		hook(m)
	}
	defer m.mu.Unlock()
	m.swap++
	if m.swapErr != nil {
		return m.swapErr
	}
	for i := range m.log {
		if m.log[i].ID != id {
			continue
		}
		if m.log[i].Status != from {
			return ErrStatusConflict
		}
		m.log[i].Status = to
		return nil
	}
	return models.NotFound("memLog.CompareAndSwapStatus", "order %s", id)
}

// setStatus is used by beforeSwap hooks; the caller holds mu.
func (m *memLog) setStatus(id string, s models.OrderStatus) {
	for i := range m.log {
		if m.log[i].ID == id {
			m.log[i].Status = s
		}
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

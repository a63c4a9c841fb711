package handlers

import (
	"sync"

	"go_trial/cravewave/cart"
)

// Carts holds one cart per user. Each cart has its own lock, so checkout and
// the cart clear that follows it happen atomically with respect to other
// requests of the same user.
type Carts struct {
	mu    sync.Mutex
	carts map[string]*session
}

type session struct {
	mu   sync.Mutex
	cart *cart.Cart
}

func NewCarts() *Carts {
	return &Carts{carts: make(map[string]*session)}
}

// With runs fn with exclusive access to the user's cart.
func (c *Carts) With(userID string, fn func(*cart.Cart) error) error {
	c.mu.Lock()
	s, ok := c.carts[userID]
	if !ok {
		s = &session{cart: cart.New()}
		c.carts[userID] = s
	}
	c.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.cart)
}

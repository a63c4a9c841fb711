// Package cart holds the in-progress, not yet submitted order of one
// customer session. A cart only ever holds items from a single restaurant.
package cart

import (
	"strings"

	"go_trial/cravewave/models"

	"github.com/shopspring/decimal"
)

// AddResult tells the caller what Add did.
type AddResult uint8

const (
	// Added means the item is now in the cart.
	Added AddResult = iota + 1
	// RequiresConfirmation means the item comes from another restaurant and
	// the cart was left untouched. Repeat the call with confirmReplace to
	// discard the current cart.
	RequiresConfirmation
)

func (r AddResult) String() string {
	switch r {
	case Added:
		return "ADDED"
	case RequiresConfirmation:
		return "REQUIRES_CONFIRMATION"
	}
	return "UNKNOWN"
}

type Line struct {
	Item     models.MenuItem `json:"item"`
	Quantity int             `json:"quantity"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is not safe for concurrent use; it belongs to one session.
type Cart struct {
	lines        []Line
	restaurantID string
}

func New() *Cart {
	return &Cart{}
}

// Add puts one unit of item into the cart.
func (c *Cart) Add(item models.MenuItem, restaurantID string, confirmReplace bool) (AddResult, error) {
	restaurantID = strings.TrimSpace(restaurantID)
	if restaurantID == "" {
		return 0, models.Validation("cart.Add", "restaurant id is required")
	}
	if item.RestaurantID != "" && item.RestaurantID != restaurantID {
		return 0, models.Validation("cart.Add", "item %s belongs to restaurant %s, not %s", item.ID, item.RestaurantID, restaurantID)
	}
	if !item.Available {
		return 0, models.Validation("cart.Add", "item %s is not available", item.ID)
	}

	if len(c.lines) > 0 && c.restaurantID != restaurantID {
		if !confirmReplace {
			return RequiresConfirmation, nil
		}
		c.lines = nil
	}
	c.restaurantID = restaurantID

	for i := range c.lines {
		if c.lines[i].Item.ID == item.ID {
			c.lines[i].Quantity++
			return Added, nil
		}
	}
	c.lines = append(c.lines, Line{Item: item, Quantity: 1})
	return Added, nil
}

// Remove drops the line for itemID whatever its quantity.
func (c *Cart) Remove(itemID string) {
	for i := range c.lines {
		if c.lines[i].Item.ID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			break
		}
	}
	c.resetIfEmpty()
}

// ChangeQuantity adds delta to a line. Quantities clamp at zero and a line
// at zero is dropped. Unknown lines are ignored.
func (c *Cart) ChangeQuantity(itemID string, delta int) {
	for i := range c.lines {
		if c.lines[i].Item.ID != itemID {
			continue
		}
		q := c.lines[i].Quantity + delta
		if q <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Quantity = q
		}
		break
	}
	c.resetIfEmpty()
}

func (c *Cart) Clear() {
	c.lines = nil
	c.restaurantID = ""
}

// Total is derived on every call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

// RestaurantID is empty when the cart is empty.
func (c *Cart) RestaurantID() string { return c.restaurantID }

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) Empty() bool { return len(c.lines) == 0 }

func (c *Cart) resetIfEmpty() {
	if len(c.lines) == 0 {
		c.lines = nil
		c.restaurantID = ""
	}
}

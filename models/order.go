package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPlaced         OrderStatus = "PLACED"
	StatusAccepted       OrderStatus = "ACCEPTED"
	StatusPreparing      OrderStatus = "PREPARING"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

// Statuses lists every status in lifecycle order.
func Statuses() []OrderStatus {
	return []OrderStatus{
		StatusPlaced,
		StatusAccepted,
		StatusPreparing,
		StatusOutForDelivery,
		StatusDelivered,
		StatusCancelled,
	}
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Statuses() {
		if st == known {
			return st, true
		}
	}
	return "", false
}

// Terminal reports whether no transition may leave the status.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// OrderLine is a cart line frozen at checkout. Price is the unit price at
// the time of the order and is never re-read from the catalog.
type OrderLine struct {
	ItemID   string          `json:"item_id" bson:"item_id"`
	Name     string          `json:"name" bson:"name"`
	Category string          `json:"category" bson:"category"`
	Image    string          `json:"image,omitempty" bson:"image,omitempty"`
	Price    decimal.Decimal `json:"price" bson:"price"`
	Quantity int             `json:"quantity" bson:"quantity"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is append-only: after creation only Status changes.
type Order struct {
	ID              string          `json:"id" bson:"_id"`
	CustomerID      string          `json:"customer_id" bson:"customer_id"`
	RestaurantID    string          `json:"restaurant_id" bson:"restaurant_id"`
	Items           []OrderLine     `json:"items" bson:"items"`
	Total           decimal.Decimal `json:"total" bson:"total"`
	Status          OrderStatus     `json:"status" bson:"status"`
	CreatedAt       time.Time       `json:"created_at" bson:"created_at"`
	DeliveryAddress string          `json:"delivery_address" bson:"delivery_address"`
}

// Clone returns a copy that shares no slices with o.
func (o Order) Clone() Order {
	c := o
	c.Items = append([]OrderLine(nil), o.Items...)
	return c
}

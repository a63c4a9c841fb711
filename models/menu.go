package models

import "github.com/shopspring/decimal"

type Restaurant struct {
	ID      string   `json:"id" bson:"_id"`
	Name    string   `json:"name" bson:"name"`
	Cuisine []string `json:"cuisine" bson:"cuisine"`
	Rating  float64  `json:"rating" bson:"rating"`
	// DeliveryTime is a display constant such as "25-35 min", never computed.
	DeliveryTime string          `json:"delivery_time" bson:"delivery_time"`
	MinOrder     decimal.Decimal `json:"min_order" bson:"min_order"`
	Image        string          `json:"image" bson:"image"`
	Address      string          `json:"address" bson:"address"`
	Active       bool            `json:"active" bson:"active"`
}

type MenuItem struct {
	ID           string          `json:"id" bson:"_id"`
	RestaurantID string          `json:"restaurant_id" bson:"restaurant_id"`
	Name         string          `json:"name" bson:"name"`
	Description  string          `json:"description" bson:"description"`
	Price        decimal.Decimal `json:"price" bson:"price"`
	Image        string          `json:"image" bson:"image"`
	Category     string          `json:"category" bson:"category"`
	Available    bool            `json:"available" bson:"available"`
}

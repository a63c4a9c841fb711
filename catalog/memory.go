package catalog

import (
	"context"
	"strings"
	"sync"

	"go_trial/cravewave/models"

	"github.com/shopspring/decimal"
)

var _ Catalog = (*Memory)(nil)

type Memory struct {
	mu          sync.RWMutex
	restaurants []models.Restaurant
	items       []models.MenuItem
}

func NewMemory(restaurants []models.Restaurant, items []models.MenuItem) *Memory {
	return &Memory{
		restaurants: append([]models.Restaurant(nil), restaurants...),
		items:       append([]models.MenuItem(nil), items...),
	}
}

// NewSeeded returns the demo catalog.
func NewSeeded() *Memory {
	return NewMemory(SeedRestaurants(), SeedMenu())
}

func (m *Memory) ListRestaurants(context.Context) ([]models.Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Restaurant, len(m.restaurants))
	for i, r := range m.restaurants {
		r.Cuisine = append([]string(nil), r.Cuisine...)
		out[i] = r
	}
	return out, nil
}

func (m *Memory) ListMenu(_ context.Context, restaurantID string) ([]models.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.MenuItem{}
	for _, it := range m.items {
		if it.RestaurantID == restaurantID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *Memory) MenuItem(_ context.Context, itemID string) (models.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, it := range m.items {
		if it.ID == itemID {
			return it, nil
		}
	}
	return models.MenuItem{}, models.NotFound("catalog.MenuItem", "menu item %s not found", itemID)
}

func (m *Memory) UpdateMenuItem(_ context.Context, item models.MenuItem) error {
	const op = "catalog.UpdateMenuItem"
	if err := validateItem(op, item); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.items {
		if it.ID != item.ID {
			continue
		}
		if it.RestaurantID != item.RestaurantID {
			return models.Validation(op, "menu item %s belongs to %s", item.ID, it.RestaurantID)
		}
		m.items[i] = item
		return nil
	}
	return models.NotFound(op, "menu item %s not found", item.ID)
}

func validateItem(op string, item models.MenuItem) error {
	switch {
	case strings.TrimSpace(item.ID) == "":
		return models.Validation(op, "menu item id is required")
	case strings.TrimSpace(item.Name) == "":
		return models.Validation(op, "menu item name is required")
	case item.Price.IsNegative():
		return models.Validation(op, "price %s is negative", item.Price)
	}
	return nil
}

func SeedRestaurants() []models.Restaurant {
	return []models.Restaurant{
		{
			ID:           "res1",
			Name:         "Bella Italia",
			Cuisine:      []string{"Italian", "Pizza", "Pasta"},
			Rating:       4.8,
			DeliveryTime: "25-35 min",
			MinOrder:     decimal.NewFromInt(15),
			Image:        "https://picsum.photos/id/1080/400/300",
			Address:      "123 Olive St, Food City",
			Active:       true,
		},
		{
			ID:           "res2",
			Name:         "Sushi Zen",
			Cuisine:      []string{"Japanese", "Sushi", "Asian"},
			Rating:       4.6,
			DeliveryTime: "40-50 min",
			MinOrder:     decimal.NewFromInt(20),
			Image:        "https://picsum.photos/id/292/400/300",
			Address:      "456 Bamboo Rd, Food City",
			Active:       true,
		},
		{
			ID:           "res3",
			Name:         "Burger Kingpin",
			Cuisine:      []string{"American", "Burgers", "Fast Food"},
			Rating:       4.3,
			DeliveryTime: "20-30 min",
			MinOrder:     decimal.NewFromInt(10),
			Image:        "https://picsum.photos/id/163/400/300",
			Address:      "789 Grill Ave, Food City",
			Active:       true,
		},
	}
}

func SeedMenu() []models.MenuItem {
	item := func(id, restaurantID, name, desc string, price int64, image, category string) models.MenuItem {
		return models.MenuItem{
			ID:           id,
			RestaurantID: restaurantID,
			Name:         name,
			Description:  desc,
			Price:        decimal.NewFromInt(price),
			Image:        image,
			Category:     category,
			Available:    true,
		}
	}
	return []models.MenuItem{
		item("m1", "res1", "Margherita Pizza", "Tomato sauce, fresh mozzarella, basil.", 14, "https://picsum.photos/id/703/200/200", "Pizza"),
		item("m2", "res1", "Spaghetti Carbonara", "Creamy sauce with pancetta and black pepper.", 16, "https://picsum.photos/id/601/200/200", "Pasta"),
		item("m3", "res2", "Dragon Roll", "Eel, cucumber, topped with avocado.", 18, "https://picsum.photos/id/250/200/200", "Sushi"),
		item("m4", "res2", "Miso Soup", "Traditional soybean soup with tofu.", 5, "https://picsum.photos/id/534/200/200", "Appetizer"),
		item("m5", "res3", "Classic Cheeseburger", "Beef patty, cheddar, lettuce, tomato.", 12, "https://picsum.photos/id/112/200/200", "Burgers"),
	}
}

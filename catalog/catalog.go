// Package catalog is the read side of restaurants and their menus, plus the
// menu edits restaurant partners make.
package catalog

import (
	"context"

	"go_trial/cravewave/models"
)

type Catalog interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	// ListMenu returns the items of one restaurant, available or not.
	ListMenu(ctx context.Context, restaurantID string) ([]models.MenuItem, error)
	MenuItem(ctx context.Context, itemID string) (models.MenuItem, error)
	// UpdateMenuItem replaces an existing item. The item may not move to
	// another restaurant.
	UpdateMenuItem(ctx context.Context, item models.MenuItem) error
}

// ActiveRestaurants counts restaurants taking orders.
func ActiveRestaurants(rs []models.Restaurant) int {
	n := 0
	for _, r := range rs {
		if r.Active {
			n++
		}
	}
	return n
}

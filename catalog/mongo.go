package catalog

import (
	"context"
	"errors"
	"fmt"

	"go_trial/cravewave/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RestaurantsCollection = "restaurants"
	MenuItemsCollection   = "menuitems"
)

var _ Catalog = (*Mongo)(nil)

type Mongo struct {
	restaurants *mongo.Collection
	items       *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		restaurants: db.Collection(RestaurantsCollection),
		items:       db.Collection(MenuItemsCollection),
	}
}

// Seed inserts the given catalog when the restaurants collection is empty.
func (m *Mongo) Seed(ctx context.Context, restaurants []models.Restaurant, items []models.MenuItem) error {
	n, err := m.restaurants.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("count restaurants: %w", err)
	}
	if n > 0 {
		return nil
	}
	docs := make([]any, len(restaurants))
	for i, r := range restaurants {
		docs[i] = r
	}
	if _, err := m.restaurants.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("seed restaurants: %w", err)
	}
	docs = make([]any, len(items))
	for i, it := range items {
		docs[i] = it
	}
	if _, err := m.items.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("seed menu: %w", err)
	}
	return nil
}

func (m *Mongo) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	cursor, err := m.restaurants.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, models.Persistence("catalog.ListRestaurants", err)
	}
	defer cursor.Close(ctx)

	out := []models.Restaurant{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, models.Persistence("catalog.ListRestaurants", err)
	}
	return out, nil
}

func (m *Mongo) ListMenu(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	filter := bson.M{"restaurant_id": restaurantID}
	cursor, err := m.items.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, models.Persistence("catalog.ListMenu", err)
	}
	defer cursor.Close(ctx)

	out := []models.MenuItem{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, models.Persistence("catalog.ListMenu", err)
	}
	return out, nil
}

func (m *Mongo) MenuItem(ctx context.Context, itemID string) (models.MenuItem, error) {
	var item models.MenuItem
	err := m.items.FindOne(ctx, bson.M{"_id": itemID}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.MenuItem{}, models.NotFound("catalog.MenuItem", "menu item %s not found", itemID)
	}
	if err != nil {
		return models.MenuItem{}, models.Persistence("catalog.MenuItem", err)
	}
	return item, nil
}

func (m *Mongo) UpdateMenuItem(ctx context.Context, item models.MenuItem) error {
	const op = "catalog.UpdateMenuItem"
	if err := validateItem(op, item); err != nil {
		return err
	}
	filter := bson.M{"_id": item.ID, "restaurant_id": item.RestaurantID}
	res, err := m.items.ReplaceOne(ctx, filter, item)
	if err != nil {
		return models.Persistence(op, err)
	}
	if res.MatchedCount == 0 {
		if _, err := m.MenuItem(ctx, item.ID); err != nil {
			return err
		}
		return models.Validation(op, "menu item %s belongs to another restaurant", item.ID)
	}
	return nil
}

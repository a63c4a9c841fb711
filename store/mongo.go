package store

import (
	"context"
	"errors"
	"fmt"

	"go_trial/cravewave/models"
	"go_trial/cravewave/orders"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrdersCollection is the collection the order log lives in.
const OrdersCollection = "orders"

var _ orders.Store = (*Mongo)(nil)

// Mongo stores one document per order. The client must be built with
// utils.Registry so decimals are written as Decimal128.
type Mongo struct {
	coll *mongo.Collection
}

func NewMongo(coll *mongo.Collection) *Mongo {
	return &Mongo{coll: coll}
}

// EnsureIndexes creates the indexes the role-scoped queries rely on.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "customer_id", Value: 1}}},
		{Keys: bson.D{{Key: "restaurant_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}
	return nil
}

func (m *Mongo) LoadOrders(ctx context.Context) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Order{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return out, nil
}

func (m *Mongo) GetOrder(ctx context.Context, id string) (models.Order, error) {
	var order models.Order
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, models.NotFound("store.Mongo.GetOrder", "order %s not found", id)
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("find order %s: %w", id, err)
	}
	return order, nil
}

func (m *Mongo) AppendOrder(ctx context.Context, order models.Order) error {
	if _, err := m.coll.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert order %s: %w", order.ID, err)
	}
	return nil
}

// CompareAndSwapStatus relies on the single-document atomicity of UpdateOne.
func (m *Mongo) CompareAndSwapStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to}}
	res, err := m.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update order %s status: %w", id, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := m.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("count order %s: %w", id, err)
	}
	if n == 0 {
		return models.NotFound("store.Mongo.CompareAndSwapStatus", "order %s not found", id)
	}
	return orders.ErrStatusConflict
}

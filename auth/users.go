// Package auth resolves who is calling: users log in by email and carry a
// signed token naming their id and role.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go_trial/cravewave/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UsersCollection holds users when the directory lives in MongoDB.
const UsersCollection = "users"

type Users interface {
	// Login looks a user up by email, case-insensitively.
	Login(ctx context.Context, email string) (models.User, error)
	User(ctx context.Context, id string) (models.User, error)
}

var (
	_ Users = (*Directory)(nil)
	_ Users = (*MongoDirectory)(nil)
)

// Directory is a fixed in-memory user list.
type Directory struct {
	mu    sync.RWMutex
	users []models.User
}

func NewDirectory(users []models.User) *Directory {
	return &Directory{users: append([]models.User(nil), users...)}
}

func (d *Directory) Login(_ context.Context, email string) (models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return models.User{}, models.Validation("auth.Login", "email is required")
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if normalizeEmail(u.Email) == email {
			return u, nil
		}
	}
	return models.User{}, models.NotFound("auth.Login", "user not found")
}

func (d *Directory) User(_ context.Context, id string) (models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, models.NotFound("auth.User", "user %s not found", id)
}

// MongoDirectory reads users from a collection keyed by _id with a unique
// lowercase email.
type MongoDirectory struct {
	coll *mongo.Collection
}

func NewMongoDirectory(coll *mongo.Collection) *MongoDirectory {
	return &MongoDirectory{coll: coll}
}

// Seed inserts users when the collection is empty.
func (m *MongoDirectory) Seed(ctx context.Context, users []models.User) error {
	n, err := m.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}
	docs := make([]any, len(users))
	for i, u := range users {
		u.Email = normalizeEmail(u.Email)
		docs[i] = u
	}
	if _, err := m.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	return nil
}

func (m *MongoDirectory) Login(ctx context.Context, email string) (models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return models.User{}, models.Validation("auth.Login", "email is required")
	}
	return m.findOne(ctx, "auth.Login", bson.M{"email": email})
}

func (m *MongoDirectory) User(ctx context.Context, id string) (models.User, error) {
	return m.findOne(ctx, "auth.User", bson.M{"_id": id})
}

func (m *MongoDirectory) findOne(ctx context.Context, op string, filter bson.M) (models.User, error) {
	var u models.User
	err := m.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, models.NotFound(op, "user not found")
	}
	if err != nil {
		return models.User{}, models.Persistence(op, err)
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SeedUsers are the demo accounts, one per role.
func SeedUsers() []models.User {
	return []models.User{
		{ID: "u1", Name: "John Doe", Email: "user@crave.com", Role: models.RoleCustomer, Avatar: "https://picsum.photos/id/1005/100/100"},
		{ID: "a1", Name: "Admin User", Email: "admin@crave.com", Role: models.RoleAdmin, Avatar: "https://picsum.photos/id/1025/100/100"},
		{ID: "r1", Name: "Pasta House Mgr", Email: "rest@crave.com", Role: models.RoleRestaurantPartner, Avatar: "https://picsum.photos/id/1074/100/100", RestaurantID: "res1"},
		{ID: "d1", Name: "Speedy Driver", Email: "driver@crave.com", Role: models.RoleDeliveryPartner, Avatar: "https://picsum.photos/id/1011/100/100"},
	}
}

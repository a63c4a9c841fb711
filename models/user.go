package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the fixed role of a user. The set is closed: every value outside
// the four constants below is invalid.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleCustomer
	RoleAdmin
	RoleRestaurantPartner
	RoleDeliveryPartner
)

var roleNames = map[Role]string{
	RoleCustomer:          "USER",
	RoleAdmin:             "ADMIN",
	RoleRestaurantPartner: "RESTAURANT",
	RoleDeliveryPartner:   "DELIVERY",
}

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleCustomer, RoleAdmin, RoleRestaurantPartner, RoleDeliveryPartner}
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// ParseRole maps a wire name back to a Role.
func ParseRole(s string) (Role, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for role, name := range roleNames {
		if name == s {
			return role, nil
		}
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	role, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// User represents a user in the system
type User struct {
	ID     string `json:"id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Email  string `json:"email" bson:"email"`
	Role   Role   `json:"role" bson:"role"`
	Avatar string `json:"avatar,omitempty" bson:"avatar,omitempty"`
	// RestaurantID is only set for restaurant partners.
	RestaurantID string `json:"restaurant_id,omitempty" bson:"restaurant_id,omitempty"`
}

// Actor is the resolved identity behind a mutating call. It is trusted as
// given; authenticating it is the caller's job.
type Actor struct {
	UserID       string `json:"user_id"`
	Role         Role   `json:"role"`
	RestaurantID string `json:"restaurant_id,omitempty"`
}

func (a Actor) Authenticated() bool {
	return strings.TrimSpace(a.UserID) != "" && a.Role.Valid()
}

// ActorFor returns the identity a user acts under.
func ActorFor(u User) Actor {
	return Actor{UserID: u.ID, Role: u.Role, RestaurantID: u.RestaurantID}
}

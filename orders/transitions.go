package orders

import "go_trial/cravewave/models"

type edge struct {
	from, to models.OrderStatus
}

// grant lets a role take an edge. owner means the actor must own the order
// from that role's point of view.
type grant struct {
	role  models.Role
	owner bool
}

// transitions is the only source of truth for legal status changes.
var transitions = map[edge][]grant{
	{models.StatusPlaced, models.StatusAccepted}: {
		{role: models.RoleRestaurantPartner, owner: true},
	},
	{models.StatusPlaced, models.StatusCancelled}: {
		{role: models.RoleCustomer, owner: true},
		{role: models.RoleRestaurantPartner, owner: true},
		{role: models.RoleAdmin},
	},
	{models.StatusAccepted, models.StatusPreparing}: {
		{role: models.RoleRestaurantPartner, owner: true},
	},
	{models.StatusPreparing, models.StatusOutForDelivery}: {
		{role: models.RoleRestaurantPartner, owner: true},
		{role: models.RoleDeliveryPartner},
	},
	{models.StatusOutForDelivery, models.StatusDelivered}: {
		{role: models.RoleDeliveryPartner},
	},
	{models.StatusAccepted, models.StatusCancelled}: {
		{role: models.RoleAdmin},
	},
	{models.StatusPreparing, models.StatusCancelled}: {
		{role: models.RoleAdmin},
	},
	{models.StatusOutForDelivery, models.StatusCancelled}: {
		{role: models.RoleAdmin},
	},
}

// Allowed reports whether from -> to is in the transition table for any role.
func Allowed(from, to models.OrderStatus) bool {
	_, ok := transitions[edge{from, to}]
	return ok
}

// NextStatuses lists the statuses the actor may move the order to.
func NextStatuses(order models.Order, actor models.Actor) []models.OrderStatus {
	var out []models.OrderStatus
	for _, to := range models.Statuses() {
		if checkTransition(order, actor, to) == nil {
			out = append(out, to)
		}
	}
	return out
}

func owns(order models.Order, actor models.Actor) bool {
	switch actor.Role {
	case models.RoleCustomer:
		return order.CustomerID == actor.UserID
	case models.RoleRestaurantPartner:
		return actor.RestaurantID != "" && order.RestaurantID == actor.RestaurantID
	case models.RoleAdmin, models.RoleDeliveryPartner:
		return true
	}
	return false
}

// checkTransition validates the edge first, independent of role, then the
// actor's grant.
func checkTransition(order models.Order, actor models.Actor, to models.OrderStatus) error {
	const op = "orders.UpdateStatus"

	grants, ok := transitions[edge{order.Status, to}]
	if !ok {
		return models.InvalidTransition(op, order.Status, to)
	}
	if !actor.Authenticated() {
		return models.Unauthenticated(op)
	}
	for _, g := range grants {
		if g.role != actor.Role {
			continue
		}
		if g.owner && !owns(order, actor) {
			return models.Unauthorized(op, "%s does not own order %s", actor.Role, order.ID)
		}
		return nil
	}
	return models.Unauthorized(op, "%s may not move order %s from %s to %s", actor.Role, order.ID, order.Status, to)
}

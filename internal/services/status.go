package services

import "restbar/internal/models"

// orderStatusRank orders the happy path PENDING → PREPARING → READY →
// DELIVERED. CANCELLED sits outside the rank and is reachable from any
// non-terminal state.
var orderStatusRank = map[models.OrderStatus]int{
	models.OrderPending:   0,
	models.OrderPreparing: 1,
	models.OrderReady:     2,
	models.OrderDelivered: 3,
}

func isTerminal(s models.OrderStatus) bool {
	return s == models.OrderDelivered || s == models.OrderCancelled
}

// CanTransition reports whether an order may move from one status to
// another: forward along the rank, or to CANCELLED from any non-terminal
// state. Statuses never regress.
func CanTransition(from, to models.OrderStatus) bool {
	if from == to {
		return false
	}
	if isTerminal(from) {
		return false
	}
	if to == models.OrderCancelled {
		return true
	}
	fromRank, ok := orderStatusRank[from]
	if !ok {
		return false
	}
	toRank, ok := orderStatusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// AllItemsReady evaluates the cascading invariant: an order is promotable to
// READY exactly when every one of its items is READY.
func AllItemsReady(items []models.OrderItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.Status != string(models.ItemReady) {
			return false
		}
	}
	return true
}

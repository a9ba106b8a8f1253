package service

import "github.com/Skotchmaster/aquashop/internal/models"

var orderTransitions = map[string]map[string]bool{
	models.OrderStatusPlaced: {
		models.OrderStatusPacked:    true,
		models.OrderStatusCancelled: true,
	},
	models.OrderStatusPacked: {
		models.OrderStatusShipped:   true,
		models.OrderStatusCancelled: true,
	},
	models.OrderStatusShipped: {
		models.OrderStatusDelivered: true,
		models.OrderStatusCancelled: true,
	},
	models.OrderStatusDelivered: {},
	models.OrderStatusCancelled: {},
}

func IsOrderStatus(s string) bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	return orderTransitions[from][to]
}

package orders

import (
	"strings"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
)

// allowedTransitions is the order status state machine. Absent statuses are
// terminal. Shipped is reachable straight from pending; delivered orders may
// still be cancelled for refund-after-delivery.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusProcessing: {
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusShipped: {
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusDelivered: {
		enums.OrderStatusCancelled,
	},
}

// AllowedTargets returns the legal next statuses from the given status.
func AllowedTargets(from enums.OrderStatus) []enums.OrderStatus {
	return allowedTransitions[from]
}

// CanTransition reports whether the state machine permits from -> to.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, target := range allowedTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

func legalTargetsMessage(from enums.OrderStatus) string {
	targets := allowedTransitions[from]
	if len(targets) == 0 {
		return "none (" + from.String() + " is terminal)"
	}
	names := make([]string, 0, len(targets))
	for _, target := range targets {
		names = append(names, target.String())
	}
	return strings.Join(names, ", ")
}

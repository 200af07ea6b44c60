package model

import "fmt"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// progression is the linear order of non-cancelled states.
var progression = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
}

// ParseOrderStatus returns the status named by s.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if st == StatusCancelled {
		return st, nil
	}
	for _, p := range progression {
		if p == st {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order may move from s to next.
// Statuses only move one step forward along the progression; any
// non-terminal status may be cancelled.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	for i := 0; i < len(progression)-1; i++ {
		if progression[i] == s {
			return progression[i+1] == next
		}
	}
	return false
}

package domain

// transitions lists the legal next states for each status. Delivered and
// cancelled are absorbing.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusOrderIn:   {OrderStatusPrepared, OrderStatusCancelled},
	OrderStatusPrepared:  {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s OrderStatus) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether an order in state from may move to state to.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func Terminal(s OrderStatus) bool {
	return len(transitions[s]) == 0 && ValidStatus(s)
}

// Active is the complement of Terminal over valid statuses. Only active
// orders take the acknowledgment watermark.
func Active(s OrderStatus) bool {
	return ValidStatus(s) && !Terminal(s)
}

package models

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
)

var Statuses = []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusDelivered}

func (s OrderStatus) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s OrderStatus) Active() bool {
	return s != StatusDelivered
}

// transitions lists the forward step for each status plus one step back.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPreparing},
	StatusPreparing: {StatusReady, StatusPending},
	StatusReady:     {StatusDelivered, StatusPreparing},
	StatusDelivered: {StatusReady},
}

// CanTransition reports whether from -> to is allowed. Setting the same status is always allowed.
func CanTransition(from, to OrderStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

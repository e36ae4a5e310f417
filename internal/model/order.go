package model

import "time"

// OrderStatus enumerates the states of the order workflow. An order
// starts in StatusReceived; the owning restaurant moves it forward.
// StatusRejected and StatusCompleted are terminal.
type OrderStatus string

const (
	StatusReceived  OrderStatus = "received"
	StatusAccepted  OrderStatus = "accepted"
	StatusRejected  OrderStatus = "rejected"
	StatusCompleted OrderStatus = "completed"
)

// allowedTransitions is the authoritative transition table. Absence of
// an entry (or an empty set) means the state is terminal. Re-applying
// the current status is not a valid transition.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusReceived: {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusCompleted, StatusRejected},
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s OrderStatus) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// Active reports whether an order in status s should appear in the
// "active" history view. Terminal orders belong to the completed view.
func (s OrderStatus) Active() bool {
	return !s.Terminal()
}

// ParseOrderStatus validates a client-supplied status string.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	switch OrderStatus(raw) {
	case StatusReceived, StatusAccepted, StatusRejected, StatusCompleted:
		return OrderStatus(raw), true
	}
	return "", false
}

// OrderLine is one frozen line of an order snapshot. The price is the
// menu price read at checkout time and never changes afterwards, even
// if the restaurant later edits or deletes the menu item. The slice of
// lines is serialized to JSON into orders.content and must round-trip
// exactly for confirmation and detail pages.
type OrderLine struct {
	ItemID       uint64  `json:"item_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	PriceAtOrder float64 `json:"price_at_order"`
	Quantity     uint32  `json:"quantity"`
}

// Order records a placed order. It is created once at checkout and is
// immutable except for Status.
//
// Fields:
//
//	ID           – primary key identifier.
//	CustomerID   – customer who placed the order.
//	RestaurantID – restaurant the order was placed with.
//	Lines        – frozen snapshot of the cart at checkout.
//	Notes        – free-text remarks from the customer.
//	Status       – workflow state (see OrderStatus).
//	TotalCost    – sum of price_at_order * quantity over Lines, computed
//	               once at checkout and never recomputed.
//	CreatedAt    – creation timestamp.
type Order struct {
	ID           uint64      // orders.id
	CustomerID   uint64      // orders.customer_id
	RestaurantID uint64      // orders.restaurant_id
	Lines        []OrderLine // orders.content (JSON)
	Notes        string      // orders.notes
	Status       OrderStatus // orders.status
	TotalCost    float64     // orders.total_cost
	CreatedAt    time.Time   // orders.created_at
}

// PlatformAccount is the marketplace operator's commission account.
// Exactly one row exists in the platform_account table; it is created
// lazily by the first settlement.
type PlatformAccount struct {
	ID        uint64    // platform_account.id
	Balance   float64   // platform_account.balance
	UpdatedAt time.Time // platform_account.updated_at
}

// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderPlacedEvent is published when a checkout settles successfully.
// It contains enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type OrderPlacedEvent struct {
	OrderID      uint64  `json:"order_id"`
	CustomerID   uint64  `json:"customer_id"`
	RestaurantID uint64  `json:"restaurant_id"`
	Restaurant   string  `json:"restaurant"`
	ItemCount    int     `json:"item_count"`
	TotalCost    float64 `json:"total_cost"`
	PlacedAt     string  `json:"placed_at"`
}

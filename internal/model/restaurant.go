package model

import "time"

// Restaurant represents a merchant record as stored in the `restaurants`
// table. A restaurant owns a menu and receives orders; its balance is
// credited during order settlement.
//
// Fields:
//
//	ID           – primary key identifier of the restaurant.
//	Name         – display name.
//	Email        – unique email address.
//	Address      – street address.
//	PostalCode   – postal code.
//	Description  – optional free-text description.
//	WorkingDays  – working-day descriptor, e.g. "Mo-Fr, Sa".
//	OpeningHours – open/close window, e.g. "09:00-22:00".
//	PasswordHash – bcrypt hashed password.
//	Balance      – payout balance in euros (defaults to 0.00).
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type Restaurant struct {
	ID           uint64    // restaurants.id
	Name         string    // restaurants.name
	Email        string    // restaurants.email
	Address      string    // restaurants.address
	PostalCode   string    // restaurants.postal_code
	Description  string    // restaurants.description
	WorkingDays  string    // restaurants.working_days
	OpeningHours string    // restaurants.opening_hours
	PasswordHash string    // restaurants.password_hash
	Balance      float64   // restaurants.balance
	CreatedAt    time.Time // restaurants.created_at
	UpdatedAt    time.Time // restaurants.updated_at
}

// MenuItem is a dish on a restaurant's menu. Each item belongs to
// exactly one restaurant and may only be changed or deleted by it.
type MenuItem struct {
	ID           uint64    // menu_items.id
	RestaurantID uint64    // menu_items.restaurant_id
	Name         string    // menu_items.name
	Description  string    // menu_items.description
	Price        float64   // menu_items.price (non-negative)
	CreatedAt    time.Time // menu_items.created_at
	UpdatedAt    time.Time // menu_items.updated_at
}

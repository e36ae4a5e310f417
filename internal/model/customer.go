package model

import "time"

// Customer represents an end user record as stored in the `customers`
// table. Each field corresponds to a column in the database. The json
// tags are omitted here because these structs are primarily used
// internally by the repository layer; handlers define separate response
// types with appropriate JSON tags.
//
// Fields:
//
//	ID           – primary key identifier of the customer.
//	FirstName    – given name.
//	LastName     – family name.
//	Email        – unique email address.
//	Address      – street address used for delivery.
//	PostalCode   – postal code of the delivery address.
//	PasswordHash – bcrypt hashed password.
//	Balance      – prepaid account balance in euros (defaults to 100.00).
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type Customer struct {
	ID           uint64    // customers.id
	FirstName    string    // customers.first_name
	LastName     string    // customers.last_name
	Email        string    // customers.email
	Address      string    // customers.address
	PostalCode   string    // customers.postal_code
	PasswordHash string    // customers.password_hash
	Balance      float64   // customers.balance
	CreatedAt    time.Time // customers.created_at
	UpdatedAt    time.Time // customers.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to either a customer or a restaurant account
// and contains metadata for expiry and revocation. The plain token is
// not stored; only its SHA‑256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	Role      string     // refresh_tokens.role (CUSTOMER or RESTAURANT)
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

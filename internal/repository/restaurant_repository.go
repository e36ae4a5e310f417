package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mealmarkt/marketplace/internal/model"
	"github.com/mealmarkt/marketplace/internal/utils"
)

// RestaurantRepo provides persistence for restaurant accounts.
type RestaurantRepo struct{ DB *sql.DB }

func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{DB: db} }

// Create inserts a restaurant with a zero balance and returns its ID.
func (r *RestaurantRepo) Create(ctx context.Context, rest *model.Restaurant, password string, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(rest.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO restaurants (name, email, address, postal_code, description, working_days, opening_hours, password_hash, balance) VALUES (?,?,?,?,?,?,?,?,0)",
		rest.Name, email, rest.Address, rest.PostalCode, rest.Description,
		rest.WorkingDays, rest.OpeningHours, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const restaurantCols = "id,name,email,address,postal_code,description,working_days,opening_hours,password_hash,balance,created_at,updated_at"

func scanRestaurantRow(scan func(dest ...any) error) (model.Restaurant, error) {
	var rest model.Restaurant
	err := scan(&rest.ID, &rest.Name, &rest.Email, &rest.Address, &rest.PostalCode,
		&rest.Description, &rest.WorkingDays, &rest.OpeningHours,
		&rest.PasswordHash, &rest.Balance, &rest.CreatedAt, &rest.UpdatedAt)
	return rest, err
}

// GetByEmail fetches a restaurant by normalized email.
func (r *RestaurantRepo) GetByEmail(ctx context.Context, email string) (model.Restaurant, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+restaurantCols+" FROM restaurants WHERE email=? LIMIT 1", email)
	return scanRestaurantRow(row.Scan)
}

// GetByID fetches a restaurant by id.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (model.Restaurant, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+restaurantCols+" FROM restaurants WHERE id=? LIMIT 1", id)
	return scanRestaurantRow(row.Scan)
}

// List returns all restaurants ordered by name. Filtering by opening
// hours happens in the handler via the hours package; the descriptor
// strings are returned as stored.
func (r *RestaurantRepo) List(ctx context.Context) ([]model.Restaurant, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+restaurantCols+" FROM restaurants ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Restaurant, 0)
	for rows.Next() {
		rest, err := scanRestaurantRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rest)
	}
	return out, rows.Err()
}

// UpdateProfile overwrites the restaurant's editable profile fields.
// The hours descriptors must be validated by the caller beforehand.
func (r *RestaurantRepo) UpdateProfile(ctx context.Context, rest *model.Restaurant) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE restaurants SET name=?, address=?, postal_code=?, description=?, working_days=?, opening_hours=? WHERE id=?",
		rest.Name, rest.Address, rest.PostalCode, rest.Description,
		rest.WorkingDays, rest.OpeningHours, rest.ID)
	return err
}

// GetForUpdateTx loads a restaurant row with a row lock inside the given
// transaction so settlement credits serialize per restaurant.
func (r *RestaurantRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Restaurant, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+restaurantCols+" FROM restaurants WHERE id=? FOR UPDATE", id)
	return scanRestaurantRow(row.Scan)
}

// AddBalanceTx adjusts the restaurant balance by delta within the given
// transaction.
func (r *RestaurantRepo) AddBalanceTx(ctx context.Context, tx *sql.Tx, id uint64, delta float64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE restaurants SET balance = balance + ? WHERE id=?", delta, id)
	return err
}

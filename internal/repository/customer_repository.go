package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mealmarkt/marketplace/internal/model"
	"github.com/mealmarkt/marketplace/internal/utils"
)

// DefaultCustomerBalance is the starting prepaid balance granted to
// every newly registered customer.
const DefaultCustomerBalance = 100.0

// CustomerRepo provides persistence for customer accounts.
type CustomerRepo struct{ DB *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{DB: db} }

// Create inserts a customer with the default balance and returns its ID.
// The password is hashed with bcrypt before storage.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer, password string, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(c.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO customers (first_name, last_name, email, address, postal_code, password_hash, balance) VALUES (?,?,?,?,?,?,?)",
		c.FirstName, c.LastName, email, c.Address, c.PostalCode, hash, DefaultCustomerBalance)
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

const customerCols = "id,first_name,last_name,email,address,postal_code,password_hash,balance,created_at,updated_at"

func scanCustomer(row *sql.Row) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Address,
		&c.PostalCode, &c.PasswordHash, &c.Balance, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetByEmail fetches a customer by normalized email.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (model.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanCustomer(r.DB.QueryRowContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE email=? LIMIT 1", email))
}

// GetByID fetches a customer by id.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (model.Customer, error) {
	return scanCustomer(r.DB.QueryRowContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE id=? LIMIT 1", id))
}

// UpdateProfile overwrites the customer's editable profile fields.
func (r *CustomerRepo) UpdateProfile(ctx context.Context, c *model.Customer) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE customers SET first_name=?, last_name=?, address=?, postal_code=? WHERE id=?",
		c.FirstName, c.LastName, c.Address, c.PostalCode, c.ID)
	return err
}

// GetForUpdateTx loads a customer row with a row lock inside the given
// transaction. Settlement uses it so two concurrent checkouts can never
// both pass the balance check against a stale balance.
func (r *CustomerRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Customer, error) {
	var c model.Customer
	err := tx.QueryRowContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE id=? FOR UPDATE", id).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Address,
			&c.PostalCode, &c.PasswordHash, &c.Balance, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// AddBalanceTx adjusts the customer balance by delta (negative to debit)
// within the given transaction.
func (r *CustomerRepo) AddBalanceTx(ctx context.Context, tx *sql.Tx, id uint64, delta float64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE customers SET balance = balance + ? WHERE id=?", delta, id)
	return err
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mealmarkt/marketplace/internal/model"
)

// OrderRepo provides persistence for placed orders. The line-item
// snapshot is stored as JSON in the orders.content column and must
// round-trip exactly; it is the durable wire format for confirmation
// and detail pages.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// CreateTx inserts a new order within the scope of an existing
// transaction and populates the generated ID and created_at on the
// provided record. The caller must commit or rollback the transaction.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	content, err := json.Marshal(o.Lines)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (customer_id, restaurant_id, content, notes, status, total_cost) VALUES (?,?,?,?,?,?)",
		o.CustomerID, o.RestaurantID, content, o.Notes, string(o.Status), o.TotalCost)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	// Query back created_at so the caller sees the DB default.
	return tx.QueryRowContext(ctx,
		"SELECT created_at FROM orders WHERE id=?", o.ID).Scan(&o.CreatedAt)
}

const orderCols = "id,customer_id,restaurant_id,content,notes,status,total_cost,created_at"

func scanOrder(scan func(dest ...any) error) (model.Order, error) {
	var (
		o       model.Order
		content []byte
		status  string
	)
	if err := scan(&o.ID, &o.CustomerID, &o.RestaurantID, &content, &o.Notes,
		&status, &o.TotalCost, &o.CreatedAt); err != nil {
		return model.Order{}, err
	}
	o.Status = model.OrderStatus(status)
	if err := json.Unmarshal(content, &o.Lines); err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// GetByID returns a single order. It returns sql.ErrNoRows when the
// order does not exist; ownership checks are left to the caller since
// customers and restaurants gate access differently.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+orderCols+" FROM orders WHERE id=? LIMIT 1", id)
	return scanOrder(row.Scan)
}

// statusSet builds the IN (...) clause arguments for a history view.
func statusSet(statuses []model.OrderStatus) (string, []any) {
	placeholders := ""
	args := make([]any, 0, len(statuses))
	for i, s := range statuses {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, string(s))
	}
	return placeholders, args
}

func (r *OrderRepo) listByColumn(ctx context.Context, column string, id uint64, statuses []model.OrderStatus) ([]model.Order, error) {
	placeholders, args := statusSet(statuses)
	q := "SELECT " + orderCols + " FROM orders WHERE " + column + "=? AND status IN (" + placeholders + ") ORDER BY created_at DESC"
	rows, err := r.DB.QueryContext(ctx, q, append([]any{id}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

var (
	activeStatuses   = []model.OrderStatus{model.StatusReceived, model.StatusAccepted}
	finishedStatuses = []model.OrderStatus{model.StatusCompleted, model.StatusRejected}
)

// ListActiveByCustomer returns the customer's orders still in progress,
// most recent first.
func (r *OrderRepo) ListActiveByCustomer(ctx context.Context, customerID uint64) ([]model.Order, error) {
	return r.listByColumn(ctx, "customer_id", customerID, activeStatuses)
}

// ListFinishedByCustomer returns the customer's completed and rejected
// orders, most recent first.
func (r *OrderRepo) ListFinishedByCustomer(ctx context.Context, customerID uint64) ([]model.Order, error) {
	return r.listByColumn(ctx, "customer_id", customerID, finishedStatuses)
}

// ListActiveByRestaurant returns the restaurant's orders still in
// progress, most recent first.
func (r *OrderRepo) ListActiveByRestaurant(ctx context.Context, restaurantID uint64) ([]model.Order, error) {
	return r.listByColumn(ctx, "restaurant_id", restaurantID, activeStatuses)
}

// ListFinishedByRestaurant returns the restaurant's completed and
// rejected orders, most recent first.
func (r *OrderRepo) ListFinishedByRestaurant(ctx context.Context, restaurantID uint64) ([]model.Order, error) {
	return r.listByColumn(ctx, "restaurant_id", restaurantID, finishedStatuses)
}

// GetForUpdateTx loads an order's status and owning restaurant with a
// row lock so status transitions serialize per order. Returns
// sql.ErrNoRows when the order does not exist.
func (r *OrderRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, orderID uint64) (model.OrderStatus, uint64, error) {
	var (
		status       string
		restaurantID uint64
	)
	err := tx.QueryRowContext(ctx,
		"SELECT status, restaurant_id FROM orders WHERE id=? FOR UPDATE", orderID).
		Scan(&status, &restaurantID)
	if err != nil {
		return "", 0, err
	}
	return model.OrderStatus(status), restaurantID, nil
}

// UpdateStatusTx persists a new status for an order. Only the status
// column changes; all other fields are immutable after creation.
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID uint64, status model.OrderStatus) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE orders SET status=? WHERE id=?", string(status), orderID)
	return err
}

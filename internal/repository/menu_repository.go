package repository

import (
	"context"
	"database/sql"

	"github.com/mealmarkt/marketplace/internal/model"
)

// MenuRepo provides CRUD operations for menu items. Every write
// verifies that the acting restaurant owns the item; reads are public
// since menus are browsable by guests.
type MenuRepo struct{ DB *sql.DB }

func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{DB: db} }

const menuCols = "id,restaurant_id,name,description,price,created_at,updated_at"

func scanMenuItem(scan func(dest ...any) error) (model.MenuItem, error) {
	var m model.MenuItem
	err := scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Price,
		&m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// Create inserts a new menu item for the given restaurant and populates
// the generated ID on the provided record.
func (r *MenuRepo) Create(ctx context.Context, item *model.MenuItem) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO menu_items (restaurant_id, name, description, price) VALUES (?,?,?,?)",
		item.RestaurantID, item.Name, item.Description, item.Price)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = uint64(id)
	return nil
}

// GetByID fetches a single menu item. Returns sql.ErrNoRows when the
// item does not exist.
func (r *MenuRepo) GetByID(ctx context.Context, id uint64) (model.MenuItem, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+menuCols+" FROM menu_items WHERE id=? LIMIT 1", id)
	return scanMenuItem(row.Scan)
}

// GetByIDTx is GetByID inside an existing transaction. The pricing pass
// of settlement uses it so prices are read under the same snapshot that
// commits the order.
func (r *MenuRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.MenuItem, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+menuCols+" FROM menu_items WHERE id=? LIMIT 1", id)
	return scanMenuItem(row.Scan)
}

// ListByRestaurant returns all menu items of a restaurant ordered by name.
func (r *MenuRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]model.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+menuCols+" FROM menu_items WHERE restaurant_id=? ORDER BY name", restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.MenuItem, 0)
	for rows.Next() {
		m, err := scanMenuItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// Update overwrites name, description and price of an item. It returns
// sql.ErrNoRows when the item does not exist and ErrForbidden when it
// belongs to a different restaurant.
func (r *MenuRepo) Update(ctx context.Context, item *model.MenuItem, actorRestaurantID uint64) error {
	if err := r.checkOwner(ctx, item.ID, actorRestaurantID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE menu_items SET name=?, description=?, price=? WHERE id=?",
		item.Name, item.Description, item.Price, item.ID)
	return err
}

// Delete removes an item after verifying ownership. Orders keep their
// frozen snapshot lines, so deleting an item never rewrites history.
func (r *MenuRepo) Delete(ctx context.Context, itemID, actorRestaurantID uint64) error {
	if err := r.checkOwner(ctx, itemID, actorRestaurantID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, "DELETE FROM menu_items WHERE id=?", itemID)
	return err
}

func (r *MenuRepo) checkOwner(ctx context.Context, itemID, actorRestaurantID uint64) error {
	var ownerID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT restaurant_id FROM menu_items WHERE id=?", itemID).Scan(&ownerID)
	if err != nil {
		return err
	}
	if ownerID != actorRestaurantID {
		return ErrForbidden
	}
	return nil
}

// Package cart implements the per-session shopping cart on top of
// Redis. Each customer session owns one cart serialized as a JSON blob
// under cart:customer:<id>. Carts are ephemeral: they expire with the
// session TTL and are never written to the primary database. The core
// never reaches into ambient session storage; handlers pass the
// customer ID explicitly on every call.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mealmarkt/marketplace/internal/model"
)

// cartTTL is refreshed on every touch so an active session never loses
// its cart while an abandoned one eventually disappears.
const cartTTL = 24 * time.Hour

// Store reads and mutates session carts in Redis.
type Store struct {
	rdb *redis.Client
}

// NewStore returns a Store bound to the given Redis client. The client
// must be non-nil; carts are core state, not an optional cache.
func NewStore(rdb *redis.Client) *Store {
	if rdb == nil {
		panic("nil redis client passed to cart.NewStore")
	}
	return &Store{rdb: rdb}
}

func key(customerID uint64) string {
	return fmt.Sprintf("cart:customer:%d", customerID)
}

// Snapshot returns the current cart for the session, or an empty cart
// when none exists.
func (s *Store) Snapshot(ctx context.Context, customerID uint64) (model.Cart, error) {
	raw, err := s.rdb.Get(ctx, key(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Cart{}, nil
	}
	if err != nil {
		return model.Cart{}, err
	}
	var c model.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return model.Cart{}, err
	}
	return c, nil
}

func (s *Store) save(ctx context.Context, customerID uint64, c model.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(customerID), raw, cartTTL).Err()
}

// Add puts quantity units of the given menu item into the cart and
// returns the updated cart. Repeated adds of the same item accumulate.
// The item must already be resolved from the menu catalog; its current
// price is cached on the line for display only. Adding an item from a
// different restaurant than the cart's current one starts a fresh cart
// for that restaurant.
func (s *Store) Add(ctx context.Context, customerID uint64, item model.MenuItem, quantity uint32) (model.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	c, err := s.Snapshot(ctx, customerID)
	if err != nil {
		return model.Cart{}, err
	}
	if c.RestaurantID != item.RestaurantID {
		c = model.Cart{RestaurantID: item.RestaurantID}
	}
	found := false
	for i := range c.Lines {
		if c.Lines[i].ItemID == item.ID {
			c.Lines[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		c.Lines = append(c.Lines, model.CartLine{
			ItemID:      item.ID,
			Name:        item.Name,
			Quantity:    quantity,
			CachedPrice: item.Price,
		})
	}
	if err := s.save(ctx, customerID, c); err != nil {
		return model.Cart{}, err
	}
	return c, nil
}

// UpdateQuantity sets the quantity of a line, clamped to a minimum of 1.
// It is a no-op when the item is not in the cart.
func (s *Store) UpdateQuantity(ctx context.Context, customerID, itemID uint64, quantity int) (model.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	c, err := s.Snapshot(ctx, customerID)
	if err != nil {
		return model.Cart{}, err
	}
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			c.Lines[i].Quantity = uint32(quantity)
			if err := s.save(ctx, customerID, c); err != nil {
				return model.Cart{}, err
			}
			break
		}
	}
	return c, nil
}

// Remove deletes the line for itemID if present; absent items are not
// an error.
func (s *Store) Remove(ctx context.Context, customerID, itemID uint64) (model.Cart, error) {
	c, err := s.Snapshot(ctx, customerID)
	if err != nil {
		return model.Cart{}, err
	}
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ItemID != itemID {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
	if err := s.save(ctx, customerID, c); err != nil {
		return model.Cart{}, err
	}
	return c, nil
}

// Clear empties the cart unconditionally.
func (s *Store) Clear(ctx context.Context, customerID uint64) error {
	return s.rdb.Del(ctx, key(customerID)).Err()
}

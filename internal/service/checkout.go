package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"math"
	"time"

	"github.com/mealmarkt/marketplace/internal/cart"
	"github.com/mealmarkt/marketplace/internal/model"
	"github.com/mealmarkt/marketplace/internal/queue"
	"github.com/mealmarkt/marketplace/internal/repository"
)

// RestaurantShareRate is the fraction of an order total credited to the
// restaurant; the platform keeps the rest. The platform share is
// computed as the exact remainder after rounding the restaurant share
// to cents, so the two credits always sum to the customer debit and no
// fraction of a cent leaks.
const RestaurantShareRate = 0.85

// round2 rounds a currency amount to cents.
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// EventPublisher emits order events after a successful settlement.
// Publishing is best-effort: failures are logged and never fail the
// checkout.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, ev queue.OrderPlacedEvent) error
}

// CheckoutService performs order settlement: pricing the session cart
// against live menu data, moving money between the customer, the
// restaurant and the platform account, and persisting the order, all
// inside one database transaction. Partial failure is impossible by
// construction; a rollback leaves balances and the cart untouched.
type CheckoutService struct {
	DB          *sql.DB
	Carts       *cart.Store
	Menu        *repository.MenuRepo
	Customers   *repository.CustomerRepo
	Restaurants *repository.RestaurantRepo
	Ledger      *repository.LedgerRepo
	Orders      *repository.OrderRepo
	Events      EventPublisher // optional
}

func NewCheckoutService(db *sql.DB, carts *cart.Store, menu *repository.MenuRepo,
	customers *repository.CustomerRepo, restaurants *repository.RestaurantRepo,
	ledger *repository.LedgerRepo, orders *repository.OrderRepo, events EventPublisher) *CheckoutService {
	if db == nil || carts == nil || menu == nil || customers == nil || restaurants == nil || ledger == nil || orders == nil {
		panic("nil dependency passed to NewCheckoutService")
	}
	return &CheckoutService{
		DB: db, Carts: carts, Menu: menu, Customers: customers,
		Restaurants: restaurants, Ledger: ledger, Orders: orders, Events: events,
	}
}

// priceLines re-derives authoritative prices for every cart line from
// the current menu catalog, inside the settlement transaction. Cached
// cart prices are display hints and are never trusted here. Lines whose
// menu item no longer exists are silently dropped from the snapshot;
// checkout proceeds with whatever remains.
func (s *CheckoutService) priceLines(ctx context.Context, tx *sql.Tx, c model.Cart) ([]model.OrderLine, float64, error) {
	lines := make([]model.OrderLine, 0, len(c.Lines))
	var total float64
	for _, l := range c.Lines {
		item, err := s.Menu.GetByIDTx(ctx, tx, l.ItemID)
		if errors.Is(err, sql.ErrNoRows) {
			continue // item deleted since it was added to the cart
		}
		if err != nil {
			return nil, 0, err
		}
		lines = append(lines, model.OrderLine{
			ItemID:       item.ID,
			Name:         item.Name,
			Description:  item.Description,
			PriceAtOrder: item.Price,
			Quantity:     l.Quantity,
		})
		total += item.Price * float64(l.Quantity)
	}
	return lines, round2(total), nil
}

// Checkout settles the customer's session cart. On success the order is
// durably committed, the cart is cleared and the new order is returned.
// On any failure the transaction is rolled back and the cart is left
// intact so the customer may retry.
//
// Preconditions (checked in order, no side effects on failure): the
// cart must resolve to an existing restaurant (ErrNoRestaurant), the
// cart must be non-empty (ErrEmptyCart), and the customer balance must
// cover the total (ErrInsufficientFunds).
func (s *CheckoutService) Checkout(ctx context.Context, customerID uint64, notes string) (model.Order, error) {
	c, err := s.Carts.Snapshot(ctx, customerID)
	if err != nil {
		return model.Order{}, err
	}
	if c.RestaurantID == 0 {
		return model.Order{}, ErrNoRestaurant
	}
	if c.Empty() {
		return model.Order{}, ErrEmptyCart
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	restaurant, err := s.Restaurants.GetForUpdateTx(ctx, tx, c.RestaurantID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrNoRestaurant
	}
	if err != nil {
		return model.Order{}, err
	}

	customer, err := s.Customers.GetForUpdateTx(ctx, tx, customerID)
	if err != nil {
		return model.Order{}, err
	}

	lines, total, err := s.priceLines(ctx, tx, c)
	if err != nil {
		return model.Order{}, err
	}
	if len(lines) == 0 {
		// every cart line pointed at a vanished menu item
		return model.Order{}, ErrEmptyCart
	}

	if customer.Balance < total {
		return model.Order{}, ErrInsufficientFunds
	}

	restaurantShare := round2(total * RestaurantShareRate)
	platformShare := round2(total - restaurantShare)

	if err := s.Customers.AddBalanceTx(ctx, tx, customer.ID, -total); err != nil {
		return model.Order{}, err
	}
	if _, err := s.Ledger.GetForUpdateTx(ctx, tx); err != nil {
		return model.Order{}, err
	}
	if err := s.Restaurants.AddBalanceTx(ctx, tx, restaurant.ID, restaurantShare); err != nil {
		return model.Order{}, err
	}
	if err := s.Ledger.AddBalanceTx(ctx, tx, platformShare); err != nil {
		return model.Order{}, err
	}

	order := model.Order{
		CustomerID:   customer.ID,
		RestaurantID: restaurant.ID,
		Lines:        lines,
		Notes:        notes,
		Status:       model.StatusReceived,
		TotalCost:    total,
	}
	if err := s.Orders.CreateTx(ctx, tx, &order); err != nil {
		return model.Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Order{}, err
	}
	committed = true

	// The order is durable from here on; cart cleanup and event
	// publishing must not fail the checkout.
	if err := s.Carts.Clear(ctx, customerID); err != nil {
		log.Printf("checkout: clear cart for customer %d: %v", customerID, err)
	}
	if s.Events != nil {
		ev := queue.OrderPlacedEvent{
			OrderID:      order.ID,
			CustomerID:   order.CustomerID,
			RestaurantID: order.RestaurantID,
			Restaurant:   restaurant.Name,
			ItemCount:    len(order.Lines),
			TotalCost:    order.TotalCost,
			PlacedAt:     order.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := s.Events.PublishOrderPlaced(ctx, ev); err != nil {
			log.Printf("checkout: publish order.placed for order %d: %v", order.ID, err)
		}
	}
	return order, nil
}

package service

import (
	"context"
	"database/sql"

	"github.com/mealmarkt/marketplace/internal/model"
	"github.com/mealmarkt/marketplace/internal/repository"
)

// StatusService applies restaurant-driven order status transitions. All
// transitions are operator-initiated; there are no time-based ones.
type StatusService struct {
	DB     *sql.DB
	Orders *repository.OrderRepo
}

func NewStatusService(db *sql.DB, orders *repository.OrderRepo) *StatusService {
	if db == nil || orders == nil {
		panic("nil dependency passed to NewStatusService")
	}
	return &StatusService{DB: db, Orders: orders}
}

// Transition moves an order to next on behalf of the acting restaurant.
// It returns sql.ErrNoRows when the order does not exist,
// repository.ErrForbidden when the order belongs to another restaurant
// and ErrInvalidTransition when the transition table does not allow the
// move from the current status. The row lock keeps concurrent
// transitions on the same order serialized.
func (s *StatusService) Transition(ctx context.Context, orderID uint64, next model.OrderStatus, actorRestaurantID uint64) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	current, ownerID, err := s.Orders.GetForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if ownerID != actorRestaurantID {
		return repository.ErrForbidden
	}
	if !current.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	if err := s.Orders.UpdateStatusTx(ctx, tx, orderID, next); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

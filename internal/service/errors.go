// Package service implements the checkout settlement and order-status
// workflow on top of the repository layer. Handlers translate the
// sentinel errors defined here into HTTP responses; none of these
// conditions is process-fatal.
package service

import "errors"

// ErrEmptyCart is returned when checkout is attempted with no cart
// lines, including the case where every line referenced a menu item
// that has since been deleted.
var ErrEmptyCart = errors.New("cart is empty")

// ErrNoRestaurant is returned when the cart does not resolve to an
// existing restaurant.
var ErrNoRestaurant = errors.New("restaurant not selected")

// ErrInsufficientFunds is returned when the customer balance does not
// cover the order total. No partial debit occurs.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidTransition is returned when a status change is not allowed
// from the order's current status, including re-applying the same
// status.
var ErrInvalidTransition = errors.New("invalid status transition")

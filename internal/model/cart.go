package model

// CartLine is one entry of a session cart. CachedPrice is the menu
// price at the time the item was added and is only a display hint;
// settlement re-reads live prices and never trusts it.
type CartLine struct {
	ItemID      uint64  `json:"item_id"`
	Name        string  `json:"name"`
	Quantity    uint32  `json:"quantity"`
	CachedPrice float64 `json:"price"`
}

// Cart is the per-session shopping cart. It lives in Redis keyed by the
// customer's session and is never persisted beyond it. A cart holds
// items of a single restaurant; adding an item from another restaurant
// starts a fresh cart.
type Cart struct {
	RestaurantID uint64     `json:"restaurant_id"`
	Lines        []CartLine `json:"lines"`
}

// DisplayTotal sums cached price times quantity over all lines. It is
// shown while shopping; the authoritative total is computed at checkout
// from live menu prices.
func (c *Cart) DisplayTotal() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.CachedPrice * float64(l.Quantity)
	}
	return total
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool { return len(c.Lines) == 0 }

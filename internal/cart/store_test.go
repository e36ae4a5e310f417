package cart

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealmarkt/marketplace/internal/model"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewStore(rdb), mr
}

func pizza() model.MenuItem {
	return model.MenuItem{ID: 11, RestaurantID: 3, Name: "Margherita", Price: 8.5}
}

func cola() model.MenuItem {
	return model.MenuItem{ID: 12, RestaurantID: 3, Name: "Cola", Price: 2.0}
}

func TestSnapshotEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	c, err := s.Snapshot(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, c.Empty())
	assert.Zero(t, c.RestaurantID)
}

func TestAddAccumulates(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	c, err := s.Add(ctx, 1, pizza(), 2)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, uint32(2), c.Lines[0].Quantity)
	assert.Equal(t, uint64(3), c.RestaurantID)
	assert.Equal(t, 8.5, c.Lines[0].CachedPrice)

	// Adding the same item again bumps the quantity instead of creating
	// a second line.
	c, err = s.Add(ctx, 1, pizza(), 3)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, uint32(5), c.Lines[0].Quantity)

	c, err = s.Add(ctx, 1, cola(), 1)
	require.NoError(t, err)
	assert.Len(t, c.Lines, 2)
}

func TestAddClampsQuantity(t *testing.T) {
	s, _ := newTestStore(t)
	c, err := s.Add(context.Background(), 1, pizza(), 0)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, uint32(1), c.Lines[0].Quantity)
}

func TestAddFromOtherRestaurantResetsCart(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, 1, pizza(), 2)
	require.NoError(t, err)

	sushi := model.MenuItem{ID: 40, RestaurantID: 9, Name: "Sake Nigiri", Price: 4.5}
	c, err := s.Add(ctx, 1, sushi, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), c.RestaurantID)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, uint64(40), c.Lines[0].ItemID)
}

func TestUpdateQuantity(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, 1, pizza(), 2)
	require.NoError(t, err)

	c, err := s.UpdateQuantity(ctx, 1, 11, 7)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), c.Lines[0].Quantity)

	// Zero and negative quantities clamp to 1 rather than removing.
	c, err = s.UpdateQuantity(ctx, 1, 11, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), c.Lines[0].Quantity)

	// Absent item is a no-op.
	c, err = s.UpdateQuantity(ctx, 1, 999, 4)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, uint64(11), c.Lines[0].ItemID)
}

func TestRemove(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, 1, pizza(), 1)
	require.NoError(t, err)
	_, err = s.Add(ctx, 1, cola(), 2)
	require.NoError(t, err)

	c, err := s.Remove(ctx, 1, 11)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, uint64(12), c.Lines[0].ItemID)

	// Removing an absent item succeeds without changing anything.
	c, err = s.Remove(ctx, 1, 11)
	require.NoError(t, err)
	assert.Len(t, c.Lines, 1)
}

func TestClear(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, 1, pizza(), 1)
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx, 1))

	assert.False(t, mr.Exists("cart:customer:1"))
	c, err := s.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.True(t, c.Empty())
}

func TestCartsAreIsolatedPerCustomer(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, 1, pizza(), 1)
	require.NoError(t, err)

	c, err := s.Snapshot(ctx, 2)
	require.NoError(t, err)
	assert.True(t, c.Empty())
}

func TestCartExpiresWithSession(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, 1, pizza(), 1)
	require.NoError(t, err)

	mr.FastForward(cartTTL + 1)
	c, err := s.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.True(t, c.Empty())
}

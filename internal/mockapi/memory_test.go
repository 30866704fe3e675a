package mockapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_IDsPerCollection(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a, err := s.Create(ctx, "categories", map[string]any{"title": "Sofas"}, "")
	require.NoError(t, err)
	b, err := s.Create(ctx, "products", map[string]any{"name": "Table"}, "")
	require.NoError(t, err)
	c, err := s.Create(ctx, "categories", map[string]any{"title": "Beds"}, "")
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(1), b.ID)
	assert.Equal(t, int64(2), c.ID)

	rows, err := s.List(ctx, "categories")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Sofas", rows[0].Data["title"])
	assert.Equal(t, "Beds", rows[1].Data["title"])
}

func TestMemoryStore_UpdateMerges(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	row, err := s.Create(ctx, "products", map[string]any{"name": "Table", "cost": 100, "images": []any{"uploads/a.png"}}, "")
	require.NoError(t, err)

	got, err := s.Update(ctx, "products", row.ID, map[string]any{"cost": 120}, "")
	require.NoError(t, err)
	assert.Equal(t, 120, got.Data["cost"])
	assert.Equal(t, "Table", got.Data["name"])
	assert.Equal(t, []any{"uploads/a.png"}, got.Data["images"])

	_, err = s.Update(ctx, "products", 99, map[string]any{"cost": 1}, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Unique(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	first, err := s.Create(ctx, "users", map[string]any{"email": "a@example.com"}, "email")
	require.NoError(t, err)
	second, err := s.Create(ctx, "users", map[string]any{"email": "b@example.com"}, "email")
	require.NoError(t, err)

	_, err = s.Create(ctx, "users", map[string]any{"email": "a@example.com"}, "email")
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = s.Update(ctx, "users", second.ID, map[string]any{"email": "a@example.com"}, "email")
	assert.ErrorIs(t, err, ErrDuplicate)

	// a record may keep its own value
	_, err = s.Update(ctx, "users", first.ID, map[string]any{"email": "a@example.com"}, "email")
	assert.NoError(t, err)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	row, err := s.Create(ctx, "coupon", map[string]any{"name": "SAVE"}, "")
	require.NoError(t, err)

	row.Data["name"] = "changed"
	got, err := s.Get(ctx, "coupon", row.ID)
	require.NoError(t, err)
	assert.Equal(t, "SAVE", got.Data["name"])
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	row, err := s.Create(ctx, "coupon", map[string]any{"name": "SAVE"}, "")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "coupon", row.ID))
	assert.ErrorIs(t, s.Delete(ctx, "coupon", row.ID), ErrNotFound)
	_, err = s.Get(ctx, "coupon", row.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeed_SkipsFilledCollections(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Create(ctx, "categories", map[string]any{"title": "Mine"}, "")
	require.NoError(t, err)

	require.NoError(t, Seed(ctx, s))

	cats, err := s.List(ctx, "categories")
	require.NoError(t, err)
	assert.Len(t, cats, 1)

	orders, err := s.List(ctx, "orders")
	require.NoError(t, err)
	require.NotEmpty(t, orders)
	assert.Contains(t, orders[0].Data, "customer")

	// running twice does not duplicate
	require.NoError(t, Seed(ctx, s))
	again, err := s.List(ctx, "orders")
	require.NoError(t, err)
	assert.Len(t, again, len(orders))
}

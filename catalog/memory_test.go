package catalog

import (
	"context"
	"testing"

	"go_trial/cravewave/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededCatalog(t *testing.T) {
	ctx := context.Background()
	c := NewSeeded()

	rs, err := c.ListRestaurants(ctx)
	require.NoError(t, err)
	require.Len(t, rs, 3)
	assert.Equal(t, "Bella Italia", rs[0].Name)
	assert.Equal(t, 3, ActiveRestaurants(rs))

	menu, err := c.ListMenu(ctx, "res1")
	require.NoError(t, err)
	require.Len(t, menu, 2)
	assert.Equal(t, "m1", menu[0].ID)
	assert.True(t, decimal.NewFromInt(14).Equal(menu[0].Price))

	empty, err := c.ListMenu(ctx, "nope")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMenuItemLookup(t *testing.T) {
	c := NewSeeded()
	it, err := c.MenuItem(context.Background(), "m3")
	require.NoError(t, err)
	assert.Equal(t, "res2", it.RestaurantID)

	_, err = c.MenuItem(context.Background(), "m99")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateMenuItem(t *testing.T) {
	ctx := context.Background()

	t.Run("reprices and disables", func(t *testing.T) {
		c := NewSeeded()
		it, err := c.MenuItem(ctx, "m1")
		require.NoError(t, err)
		it.Price = decimal.NewFromInt(20)
		it.Available = false
		require.NoError(t, c.UpdateMenuItem(ctx, it))

		got, err := c.MenuItem(ctx, "m1")
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(20).Equal(got.Price))
		assert.False(t, got.Available)
	})

	t.Run("cannot move to another restaurant", func(t *testing.T) {
		c := NewSeeded()
		it, err := c.MenuItem(ctx, "m1")
		require.NoError(t, err)
		it.RestaurantID = "res2"
		assert.ErrorIs(t, c.UpdateMenuItem(ctx, it), models.ErrValidation)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		c := NewSeeded()
		it, err := c.MenuItem(ctx, "m1")
		require.NoError(t, err)
		it.Price = decimal.NewFromInt(-1)
		assert.ErrorIs(t, c.UpdateMenuItem(ctx, it), models.ErrValidation)
	})

	t.Run("unknown item", func(t *testing.T) {
		c := NewSeeded()
		err := c.UpdateMenuItem(ctx, models.MenuItem{ID: "m99", RestaurantID: "res1", Name: "Ghost"})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestListRestaurantsReturnsCopies(t *testing.T) {
	c := NewSeeded()
	rs, err := c.ListRestaurants(context.Background())
	require.NoError(t, err)
	rs[0].Cuisine[0] = "Changed"

	again, err := c.ListRestaurants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Italian", again[0].Cuisine[0])
}

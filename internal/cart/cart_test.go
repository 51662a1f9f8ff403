package cart_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sagepos/backend/internal/cart"
	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/store"
)

func catalog() cart.Resolver {
	items := map[string]cart.Item{
		"1000": {ID: "1000", Name: "Potato", UnitPrice: decimal.RequireFromString("1.00"), Stock: 5},
		"1001": {ID: "1001", Name: "Tomato", UnitPrice: decimal.RequireFromString("2.00"), Stock: 10},
		"1002": {ID: "1002", Name: "Onion", UnitPrice: decimal.RequireFromString("0.50"), Stock: 0},
	}
	return cart.ResolverFunc(func(_ context.Context, id string) (cart.Item, error) {
		item, ok := items[id]
		if !ok {
			return cart.Item{}, store.NotFound("product", id)
		}
		return item, nil
	})
}

func TestAddItemMergesDuplicateIDs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := cart.New()

	require.NoError(t, c.AddItem(ctx, catalog(), "1000", 1))
	require.NoError(t, c.AddItem(ctx, catalog(), "1001", 2))
	require.NoError(t, c.AddItem(ctx, catalog(), "1000", 3))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "1000", lines[0].ItemID)
	assert.Equal(t, 4, lines[0].Quantity)
	assert.Equal(t, "Potato", lines[0].Name)
	assert.Equal(t, "1001", lines[1].ItemID)
	assert.Equal(t, 2, lines[1].Quantity)
}

func TestAddItemRejectsBadInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := cart.New()

	assert.ErrorIs(t, c.AddItem(ctx, catalog(), "1000", 0), store.ErrValidation)
	assert.ErrorIs(t, c.AddItem(ctx, catalog(), "1000", -2), store.ErrValidation)
	assert.ErrorIs(t, c.AddItem(ctx, catalog(), "9999", 1), store.ErrNotFound)
	assert.ErrorIs(t, c.AddItem(ctx, catalog(), "1002", 1), store.ErrInsufficientStock)
	assert.True(t, c.IsEmpty())
}

func TestAddItemLeavesCartUnchangedWhenStockExceeded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := cart.New()

	require.NoError(t, c.AddItem(ctx, catalog(), "1000", 4))

	err := c.AddItem(ctx, catalog(), "1000", 2)
	var stockErr *store.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 6, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)
}

func TestRemoveItemKeepsOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := cart.New()

	require.NoError(t, c.AddItem(ctx, catalog(), "1000", 1))
	require.NoError(t, c.AddItem(ctx, catalog(), "1001", 1))

	c.RemoveItem("does-not-exist")
	assert.Equal(t, 2, c.Len())

	c.RemoveItem("1000")
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "1001", c.Lines()[0].ItemID)

	require.NoError(t, c.AddItem(ctx, catalog(), "1001", 1))
	require.NoError(t, c.AddItem(ctx, catalog(), "1000", 2))
	assert.Equal(t, []domain.CartItemRef{
		{ItemID: "1001", Quantity: 2},
		{ItemID: "1000", Quantity: 2},
	}, c.Refs())
}

func TestLinesReturnsCopy(t *testing.T) {
	t.Parallel()
	c := cart.New()
	require.NoError(t, c.AddItem(context.Background(), catalog(), "1000", 1))

	lines := c.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 1, c.Lines()[0].Quantity)
}

func TestBuildUsesResolverPrices(t *testing.T) {
	t.Parallel()

	c, err := cart.Build(context.Background(), catalog(), []domain.CartItemRef{
		{ItemID: "1001", Quantity: 1},
		{ItemID: "1000", Quantity: 2},
		{ItemID: "1001", Quantity: 1},
	})
	require.NoError(t, err)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.True(t, lines[0].UnitPrice.Equal(decimal.RequireFromString("2.00")))
	assert.Equal(t, 2, lines[0].Quantity)

	_, err = cart.Build(context.Background(), catalog(), []domain.CartItemRef{{ItemID: "nope", Quantity: 1}})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

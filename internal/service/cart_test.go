package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/service"
)

func TestAddToCart_ReservesStockAndMergesLines(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "alice")
	p := e.product(t, "Lamp", 10, "12.50")

	item, err := e.Cart.AddToCart(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)
	assert.True(t, dec("37.50").Equal(item.TotalPrice), item.TotalPrice.String())
	assert.True(t, dec("12.50").Equal(item.SinglePrice))
	require.NotNil(t, item.Product)
	assert.Equal(t, 7, item.Product.StockQuantity)
	assert.Equal(t, 7, e.stock(t, p.ID))

	item2, err := e.Cart.AddToCart(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, item.ID, item2.ID)
	assert.Equal(t, 5, item2.Quantity)
	assert.True(t, dec("62.50").Equal(item2.TotalPrice), item2.TotalPrice.String())
	assert.Equal(t, 5, e.stock(t, p.ID))

	content, err := e.Cart.GetCartContent(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, content.Quantity)
	assert.True(t, dec("62.50").Equal(content.TotalPrice))
	e.requireCartConsistent(t, u.ID)

	assert.Equal(t, []string{mykafka.EventCartItemAdded, mykafka.EventCartItemAdded}, e.eventTypes(mykafka.TopicCart))
}

func TestAddToCart_OutOfStockLeavesStock(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "bob")
	p := e.product(t, "Chair", 3, "40")

	_, err := e.Cart.AddToCart(ctx, u.ID, p.ID, 5)
	require.ErrorIs(t, err, service.ErrOutOfStock)
	assert.Contains(t, err.Error(), "Available: 3, Required: 5")
	assert.Equal(t, 3, e.stock(t, p.ID))

	content, err := e.Cart.GetCartContent(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, content.CartItems)
	assert.Empty(t, e.eventTypes(mykafka.TopicCart))
}

func TestAddToCart_Rejects(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "carol")
	p := e.product(t, "Desk", 5, "100")

	tests := []struct {
		name      string
		productID uint
		quantity  int
		want      error
	}{
		{name: "unknown product", productID: p.ID + 100, quantity: 1, want: service.ErrNotFound},
		{name: "zero quantity", productID: p.ID, quantity: 0, want: service.ErrInvalidArgument},
		{name: "negative quantity", productID: p.ID, quantity: -2, want: service.ErrInvalidArgument},
	}

	for _, tt := range tests {
		_, err := e.Cart.AddToCart(ctx, u.ID, tt.productID, tt.quantity)
		assert.ErrorIs(t, err, tt.want, tt.name)
	}
	assert.Equal(t, 5, e.stock(t, p.ID))
}

func TestAddToCart_SnapshotsSpecialPrice(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "dave")
	p := e.product(t, "Mug", 10, "20")
	p.Discount = dec("25")
	require.NoError(t, e.Repo.SaveProduct(ctx, p))

	item, err := e.Cart.AddToCart(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	assert.True(t, dec("15").Equal(item.SinglePrice), item.SinglePrice.String())
	assert.True(t, dec("30").Equal(item.TotalPrice))

	p.Price = dec("99")
	require.NoError(t, e.Repo.SaveProduct(ctx, p))

	item, err = e.Cart.AddToCart(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)
	assert.True(t, dec("15").Equal(item.SinglePrice))
	assert.True(t, dec("45").Equal(item.TotalPrice))
}

func TestRemoveFromCart_RestoresStock(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "erin")
	a := e.product(t, "Pen", 8, "1.20")
	b := e.product(t, "Ink", 4, "3")

	ia, err := e.Cart.AddToCart(ctx, u.ID, a.ID, 6)
	require.NoError(t, err)
	_, err = e.Cart.AddToCart(ctx, u.ID, b.ID, 1)
	require.NoError(t, err)

	require.NoError(t, e.Cart.RemoveFromCart(ctx, u.ID, ia.ID))
	assert.Equal(t, 8, e.stock(t, a.ID))
	assert.Equal(t, 3, e.stock(t, b.ID))
	e.requireCartConsistent(t, u.ID)

	totals, err := e.Cart.GetTotals(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, totals.TotalQuantity)
	assert.True(t, dec("3").Equal(totals.TotalPrice))

	err = e.Cart.RemoveFromCart(ctx, u.ID, ia.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRemoveFromCart_OtherUsersItem(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "frank")
	other := e.user(t, "grace")
	p := e.product(t, "Book", 5, "9")

	item, err := e.Cart.AddToCart(ctx, owner.ID, p.ID, 2)
	require.NoError(t, err)
	_, err = e.Cart.GetCartContent(ctx, other.ID)
	require.NoError(t, err)

	err = e.Cart.RemoveFromCart(ctx, other.ID, item.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
	assert.Equal(t, 3, e.stock(t, p.ID))
}

func TestUpdateCartItemQuantity(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "heidi")
	p := e.product(t, "Cable", 10, "2.50")

	item, err := e.Cart.AddToCart(ctx, u.ID, p.ID, 4)
	require.NoError(t, err)
	require.Equal(t, 6, e.stock(t, p.ID))

	up, err := e.Cart.UpdateCartItemQuantity(ctx, u.ID, item.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, up.Quantity)
	assert.True(t, dec("17.50").Equal(up.TotalPrice))
	assert.True(t, dec("2.50").Equal(up.SinglePrice))
	assert.Equal(t, 3, e.stock(t, p.ID))
	e.requireCartConsistent(t, u.ID)

	up, err = e.Cart.UpdateCartItemQuantity(ctx, u.ID, item.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, up.Quantity)
	assert.Equal(t, 8, e.stock(t, p.ID))
	e.requireCartConsistent(t, u.ID)

	_, err = e.Cart.UpdateCartItemQuantity(ctx, u.ID, item.ID, 11)
	require.ErrorIs(t, err, service.ErrOutOfStock)
	assert.Equal(t, 8, e.stock(t, p.ID))

	_, err = e.Cart.UpdateCartItemQuantity(ctx, u.ID, item.ID, -1)
	require.ErrorIs(t, err, service.ErrInvalidArgument)

	_, err = e.Cart.UpdateCartItemQuantity(ctx, u.ID, item.ID+50, 1)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateCartItemQuantity_ZeroRemoves(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "ivan")
	p := e.product(t, "Plate", 6, "5")

	item, err := e.Cart.AddToCart(ctx, u.ID, p.ID, 6)
	require.NoError(t, err)

	up, err := e.Cart.UpdateCartItemQuantity(ctx, u.ID, item.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, up)
	assert.Equal(t, 6, e.stock(t, p.ID))

	content, err := e.Cart.GetCartContent(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, content.CartItems)
	assert.True(t, content.TotalPrice.IsZero())

	assert.Equal(t, []string{mykafka.EventCartItemAdded, mykafka.EventCartItemRemoved}, e.eventTypes(mykafka.TopicCart))
}

func TestClearCart(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "judy")
	a := e.product(t, "Fork", 10, "1")
	b := e.product(t, "Knife", 10, "2")

	// no cart yet
	require.NoError(t, e.Cart.ClearCart(ctx, u.ID))

	_, err := e.Cart.AddToCart(ctx, u.ID, a.ID, 3)
	require.NoError(t, err)
	_, err = e.Cart.AddToCart(ctx, u.ID, b.ID, 4)
	require.NoError(t, err)

	require.NoError(t, e.Cart.ClearCart(ctx, u.ID))
	assert.Equal(t, 10, e.stock(t, a.ID))
	assert.Equal(t, 10, e.stock(t, b.ID))

	content, err := e.Cart.GetCartContent(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, content.CartItems)
	assert.True(t, content.TotalPrice.IsZero())

	// already empty
	require.NoError(t, e.Cart.ClearCart(ctx, u.ID))
	assert.Equal(t, 1, countType(e.eventTypes(mykafka.TopicCart), mykafka.EventCartCleared))
}

func TestGetTotals_NoCart(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "leo")

	totals, err := e.Cart.GetTotals(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, totals.TotalQuantity)
	assert.True(t, totals.TotalPrice.IsZero())

	_, err = e.Repo.GetCartByUser(ctx, u.ID)
	assert.Error(t, err)
}

func TestGetCartContent_CreatesEmptyCart(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "mia")

	content, err := e.Cart.GetCartContent(ctx, u.ID)
	require.NoError(t, err)
	assert.NotZero(t, content.ID)
	assert.Equal(t, 0, content.Quantity)
	assert.NotNil(t, content.CartItems)

	again, err := e.Cart.GetCartContent(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, content.ID, again.ID)
}

func TestCartTotal_StaysConsistent(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "nina")
	a := e.product(t, "Soap", 50, "0.99")
	b := e.product(t, "Towel", 50, "7.45")

	ia, err := e.Cart.AddToCart(ctx, u.ID, a.ID, 3)
	require.NoError(t, err)
	e.requireCartConsistent(t, u.ID)

	ib, err := e.Cart.AddToCart(ctx, u.ID, b.ID, 2)
	require.NoError(t, err)
	e.requireCartConsistent(t, u.ID)

	_, err = e.Cart.UpdateCartItemQuantity(ctx, u.ID, ia.ID, 9)
	require.NoError(t, err)
	e.requireCartConsistent(t, u.ID)

	require.NoError(t, e.Cart.RemoveFromCart(ctx, u.ID, ib.ID))
	e.requireCartConsistent(t, u.ID)

	totals, err := e.Cart.GetTotals(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, dec("8.91").Equal(totals.TotalPrice), totals.TotalPrice.String())
}

func countType(types []string, want string) int {
	n := 0
	for _, t := range types {
		if t == want {
			n++
		}
	}
	return n
}

package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestAddItem_FirstUseCreatesCart(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, 100)
	ctx := context.Background()

	view, err := env.carts.AddItem(ctx, "u1", 1, 3)
	require.NoError(t, err)

	assert.Equal(t, "u1", view.UserID)
	assert.Equal(t, []CartItemView{{ProductID: 1, Quantity: 3}}, view.Items)
	assert.Equal(t, int64(3), view.TotalQuantity)
	assert.Equal(t, int64(97), env.stock(t, 1))
	assert.Equal(t, int64(1), env.cartRows(t, "u1"))
}

func TestAddItem_MergesIntoExistingItem(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, 100)
	ctx := context.Background()

	_, err := env.carts.AddItem(ctx, "u1", 1, 4)
	require.NoError(t, err)
	view, err := env.carts.AddItem(ctx, "u1", 1, 9)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(13), view.Items[0].Quantity)
	assert.Equal(t, int64(87), env.stock(t, 1))
}

// 初回ユーザーが在庫不足で失敗したら、カート行も残らない
func TestAddItem_InsufficientStock_RollsBackEverything(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, 5)

	_, err := env.carts.AddItem(context.Background(), "fresh", 1, 10)
	require.Error(t, err)
	assert.Equal(t, KindInsufficientStock, KindOf(err))

	assert.Equal(t, int64(5), env.stock(t, 1))
	assert.Equal(t, int64(0), env.cartRows(t, "fresh"))
}

func TestAddItem_InsufficientStock_KeepsExistingCart(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, 5)
	ctx := context.Background()

	_, err := env.carts.AddItem(ctx, "u1", 1, 2)
	require.NoError(t, err)

	_, err = env.carts.AddItem(ctx, "u1", 1, 4)
	assert.Equal(t, KindInsufficientStock, KindOf(err))

	assert.Equal(t, int64(3), env.stock(t, 1))
	assert.Equal(t, int64(2), env.quantity(t, "u1", 1))
}

func TestAddItem_ProductNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.carts.AddItem(context.Background(), "u1", 42, 1)
	assert.Equal(t, KindProductNotFound, KindOf(err))
	assert.Equal(t, int64(0), env.cartRows(t, "u1"))
}

func TestAddItem_InvalidInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		userID    string
		productID int64
		qty       int64
	}{
		{"empty user", "", 1, 1},
		{"blank user", "  ", 1, 1},
		{"zero product", "u1", 0, 1},
		{"zero qty", "u1", 1, 0},
		{"negative qty", "u1", 1, -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.carts.AddItem(ctx, tt.userID, tt.productID, tt.qty)
			assert.Equal(t, KindInvalidInput, KindOf(err))

			_, err = env.carts.RemoveItem(ctx, tt.userID, tt.productID, tt.qty)
			assert.Equal(t, KindInvalidInput, KindOf(err))
		})
	}
}

// 5個持っていて10個外すと、明細は消えて在庫は5だけ戻る
func TestRemoveItem_MoreThanHeld(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, 15)
	ctx := context.Background()

	_, err := env.carts.AddItem(ctx, "u1", 1, 5)
	require.NoError(t, err)
	require.Equal(t, int64(10), env.stock(t, 1))

	view, err := env.carts.RemoveItem(ctx, "u1", 1, 10)
	require.NoError(t, err)

	assert.Empty(t, view.Items)
	assert.Equal(t, int64(15), env.stock(t, 1))
	assert.Equal(t, int64(0), env.quantity(t, "u1", 1))
}

func TestRemoveItem_Partial(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, 20)
	ctx := context.Background()

	_, err := env.carts.AddItem(ctx, "u1", 1, 2)
	require.NoError(t, err)

	view, err := env.carts.RemoveItem(ctx, "u1", 1, 1)
	require.NoError(t, err)

	assert.Equal(t, []CartItemView{{ProductID: 1, Quantity: 1}}, view.Items)
	assert.Equal(t, int64(19), env.stock(t, 1))
}

func TestRemoveItem_NoCart(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, 10)

	_, err := env.carts.RemoveItem(context.Background(), "ghost", 1, 1)
	assert.Equal(t, KindCartNotFound, KindOf(err))

	// removeでカートは作らない
	assert.Equal(t, int64(0), env.cartRows(t, "ghost"))
	assert.Equal(t, int64(10), env.stock(t, 1))
}

func TestRemoveItem_ItemNotInCart(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, 10)
	env.seedProduct(t, 3, 8)
	ctx := context.Background()

	_, err := env.carts.AddItem(ctx, "u1", 1, 2)
	require.NoError(t, err)

	_, err = env.carts.RemoveItem(ctx, "u1", 3, 1)
	assert.Equal(t, KindItemNotFoundInCart, KindOf(err))

	assert.Equal(t, int64(8), env.stock(t, 3))
	assert.Equal(t, int64(8), env.stock(t, 1))
	assert.Equal(t, int64(2), env.quantity(t, "u1", 1))
}

func TestRemoveItem_ProductNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, 10)
	ctx := context.Background()

	require.NoError(t, env.carts.EnsureCart(ctx, "u1"))

	_, err := env.carts.RemoveItem(ctx, "u1", 99, 1)
	assert.Equal(t, KindProductNotFound, KindOf(err))
}

func TestGetCart(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, 10)
	env.seedProduct(t, 2, 10)
	ctx := context.Background()

	view, err := env.carts.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", view.UserID)
	assert.Empty(t, view.Items)
	// 参照だけでは作らない
	assert.Equal(t, int64(0), env.cartRows(t, "u1"))

	_, err = env.carts.AddItem(ctx, "u1", 1, 1)
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, "u1", 2, 4)
	require.NoError(t, err)

	view, err = env.carts.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []CartItemView{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 4}}, view.Items)
	assert.Equal(t, int64(5), view.TotalQuantity)
}

func TestEnsureCart_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, env.carts.EnsureCart(ctx, "u1"))
	}
	assert.Equal(t, int64(1), env.cartRows(t, "u1"))
}

func TestEnsureCart_Concurrent(t *testing.T) {
	env := newTestEnv(t)

	g, ctx := errgroup.WithContext(context.Background())
	for range 10 {
		g.Go(func() error {
			return env.carts.EnsureCart(ctx, "same-user")
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(1), env.cartRows(t, "same-user"))
}

// 在庫100に20人が同時に1個ずつ追加
func TestAddItem_ConcurrentSameProduct(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, 100)

	g, ctx := errgroup.WithContext(context.Background())
	for range 20 {
		g.Go(func() error {
			_, err := env.carts.AddItem(ctx, "u1", 1, 1)
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(80), env.stock(t, 1))
	assert.Equal(t, int64(20), env.quantity(t, "u1", 1))
	assert.Equal(t, int64(1), env.cartRows(t, "u1"))
}

// 追加と削除を交互に流しても在庫+カートの合計は変わらない
func TestConcurrent_AddRemove_ConservesStock(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, 30)
	ctx := context.Background()

	users := []string{"a", "b", "c"}
	for _, u := range users {
		_, err := env.carts.AddItem(ctx, u, 1, 2)
		require.NoError(t, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range 30 {
		u := users[i%len(users)]
		if i%2 == 0 {
			g.Go(func() error {
				_, err := env.carts.AddItem(gctx, u, 1, 1)
				return err
			})
			continue
		}
		g.Go(func() error {
			_, err := env.carts.RemoveItem(gctx, u, 1, 1)
			if err != nil && KindOf(err) != KindItemNotFoundInCart {
				return fmt.Errorf("remove %s: %w", u, err)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var held int64
	for _, u := range users {
		held += env.quantity(t, u, 1)
	}
	stock := env.stock(t, 1)
	assert.GreaterOrEqual(t, stock, int64(0))
	assert.Equal(t, int64(30), stock+held)
}

func TestAddItem_RecordsMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, 1)
	ctx := context.Background()

	_, err := env.carts.AddItem(ctx, "u1", 1, 1)
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, "u1", 1, 1)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CartOperations.WithLabelValues("add_item", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CartOperations.WithLabelValues("add_item", "insufficient_stock")))
}

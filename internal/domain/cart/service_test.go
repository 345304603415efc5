package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItemToCart_Success(t *testing.T) {
	c := &Cart{UserID: "u1"}
	p := &Product{ID: 1, Stock: 10}

	require.NoError(t, AddItemToCart(c, p, 4))
	assert.Equal(t, int64(6), p.Stock)
	assert.Equal(t, int64(4), c.Quantity(1))
}

// 在庫不足ならカートも在庫も変わらない
func TestAddItemToCart_InsufficientStock_NoSideEffects(t *testing.T) {
	c := &Cart{UserID: "u1", Items: []CartItem{{ProductID: 1, Quantity: 2}}}
	p := &Product{ID: 1, Stock: 5}

	err := AddItemToCart(c, p, 10)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, int64(5), p.Stock)
	assert.Equal(t, []CartItem{{ProductID: 1, Quantity: 2}}, c.Items)
}

// 5個持っていて10個外すと、明細は消えて在庫は5だけ戻る
func TestRemoveItemFromCart_RestocksOnlyHeld(t *testing.T) {
	c := &Cart{UserID: "u1", Items: []CartItem{{ProductID: 1, Quantity: 5}}}
	p := &Product{ID: 1, Stock: 10}

	returned, err := RemoveItemFromCart(c, p, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), returned)
	assert.Equal(t, int64(15), p.Stock)
	assert.Empty(t, c.Items)
}

func TestRemoveItemFromCart_NotInCart_NoSideEffects(t *testing.T) {
	c := &Cart{UserID: "u1"}
	p := &Product{ID: 3, Stock: 8}

	_, err := RemoveItemFromCart(c, p, 1)
	assert.ErrorIs(t, err, ErrItemNotFoundInCart)
	assert.Equal(t, int64(8), p.Stock)
	assert.Empty(t, c.Items)
}

func TestAddThenRemove_RoundTrip(t *testing.T) {
	c := &Cart{UserID: "u1"}
	p := &Product{ID: 1, Stock: 20}

	require.NoError(t, AddItemToCart(c, p, 2))
	_, err := RemoveItemFromCart(c, p, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(19), p.Stock)
	assert.Equal(t, int64(1), c.Quantity(1))
	// 在庫+カートの合計は不変
	assert.Equal(t, int64(20), p.Stock+c.TotalQuantity())
}

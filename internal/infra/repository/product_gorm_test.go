package repository

import (
	"context"
	"testing"

	"shopcart/internal/domain/cart"
	"shopcart/internal/domain/model"
	repo "shopcart/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepo_GetForUpdateAndSaveStock(t *testing.T) {
	gdb := newTestDB(t)
	seedProduct(t, gdb, 1, 100)

	r := NewProductGormRepository(gdb)
	ctx := context.Background()

	p, err := r.GetForUpdate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, cart.Product{ID: 1, Stock: 100}, p)

	p.Stock = 42
	require.NoError(t, r.SaveStock(ctx, p))

	got, err := r.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Stock)
}

func TestProductRepo_NotFound(t *testing.T) {
	r := NewProductGormRepository(newTestDB(t))
	ctx := context.Background()

	_, err := r.GetForUpdate(ctx, 7)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = r.FindByID(ctx, 7)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	err = r.SaveStock(ctx, cart.Product{ID: 7, Stock: 1})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestProductRepo_CreateAndList(t *testing.T) {
	r := NewProductGormRepository(newTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"Apple", "Banana", "Pineapple"} {
		_, err := r.Create(ctx, model.Product{Name: name, Stock: 5})
		require.NoError(t, err)
	}

	list, total, err := r.List(ctx, repo.ProductListQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, "Apple", list[0].Name)

	list, total, err = r.List(ctx, repo.ProductListQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 1)
	assert.Equal(t, "Pineapple", list[0].Name)

	list, total, err = r.List(ctx, repo.ProductListQuery{Page: 1, Limit: 10, Q: "apple"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)
}

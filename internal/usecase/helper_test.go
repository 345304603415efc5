package usecase

import (
	"testing"

	"shopcart/internal/domain/model"
	"shopcart/internal/infra/db"
	"shopcart/internal/infra/logger"
	"shopcart/internal/infra/metrics"
	infra "shopcart/internal/infra/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	metrics  *metrics.Metrics
	carts    *CartUsecase
	products *ProductUsecase
}

// SQLiteのインメモリDBで組み立てる
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log := logger.NewNop()
	m := metrics.New()
	tx := infra.NewTxManagerGorm(gdb, 0)

	return &testEnv{
		db:       gdb,
		metrics:  m,
		carts:    NewCartUsecase(tx, infra.NewCartGormRepository(gdb), log, m),
		products: NewProductUsecase(tx, infra.NewProductGormRepository(gdb), infra.NewInventoryGormRepository(gdb), log, m),
	}
}

func (e *testEnv) seedProduct(t *testing.T, id, stock int64) {
	t.Helper()
	require.NoError(t, e.db.Create(&model.Product{ID: id, Name: "p", Stock: stock}).Error)
}

func (e *testEnv) stock(t *testing.T, id int64) int64 {
	t.Helper()
	var p model.Product
	require.NoError(t, e.db.First(&p, id).Error)
	return p.Stock
}

func (e *testEnv) cartRows(t *testing.T, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Cart{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func (e *testEnv) quantity(t *testing.T, userID string, productID int64) int64 {
	t.Helper()
	var items []model.CartItem
	require.NoError(t, e.db.
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ? AND cart_items.product_id = ?", userID, productID).
		Find(&items).Error)
	if len(items) == 0 {
		return 0
	}
	return items[0].Quantity
}

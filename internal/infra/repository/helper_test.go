package repository

import (
	"testing"

	"shopcart/internal/domain/model"
	"shopcart/internal/infra/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func seedProduct(t *testing.T, gdb *gorm.DB, id, stock int64) {
	t.Helper()
	require.NoError(t, gdb.Create(&model.Product{ID: id, Name: "p", Stock: stock}).Error)
}

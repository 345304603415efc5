package db

import (
	"context"
	"fmt"

	"shopcart/internal/domain/model"

	"gorm.io/gorm"
)

// テーブルと制約を作る
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// 初期在庫
var DefaultProducts = []model.Product{
	{ID: 1, Name: "Product 1", Stock: 100},
	{ID: 2, Name: "Product 2", Stock: 50},
	{ID: 3, Name: "Product 3", Stock: 20},
}

// productsが空のときだけ投入する。投入したらtrue。
func SeedProducts(ctx context.Context, db *gorm.DB, products []model.Product) (bool, error) {
	seeded := false

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Product{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		rows := make([]model.Product, len(products))
		copy(rows, products)
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}

		//ID指定で入れたのでシーケンスを進めておく
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec(
				"SELECT setval(pg_get_serial_sequence('products', 'id'), (SELECT MAX(id) FROM products))",
			).Error; err != nil {
				return err
			}
		}

		seeded = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed products: %w", err)
	}
	return seeded, nil
}

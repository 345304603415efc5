package model

import "time"

// productsテーブル。stockはDBのCHECK制約でも0以上を保証する。
type Product struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;default:''" json:"name"`
	Stock     int64     `gorm:"not null;check:chk_products_stock_non_negative,stock >= 0" json:"stock"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

package model

import "time"

// カートの明細
// (cart_id, product_id) は一意。quantityは1以上。
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64     `gorm:"not null;uniqueIndex:uq_cart_items_cart_product,priority:1" json:"cart_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:uq_cart_items_cart_product,priority:2;index" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
	Quantity  int64     `gorm:"not null;check:chk_cart_items_quantity_positive,quantity > 0" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

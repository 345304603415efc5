package repository

import (
	"context"
	"errors"

	"shopcart/internal/domain/cart"
	"shopcart/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page  int
	Limit int
	Q     string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	// 行ロック付きで取得（SELECT ... FOR UPDATE）。トランザクション終了まで保持される。
	GetForUpdate(ctx context.Context, productID int64) (cart.Product, error)
	// ロック済み商品の在庫を保存
	SaveStock(ctx context.Context, p cart.Product) error

	// ロックなしの参照
	FindByID(ctx context.Context, id int64) (model.Product, error)
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	Create(ctx context.Context, p model.Product) (model.Product, error)
}

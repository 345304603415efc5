package repository

import (
	"context"

	"shopcart/internal/domain/cart"
)

type CartRepository interface {
	// ユーザーのカート行をロックして、明細ごと読み出す
	GetForUpdate(ctx context.Context, userID string) (cart.Cart, error)
	// カートが無ければ作る。既にあれば何もしない（エラーにしない）
	CreateIfAbsent(ctx context.Context, userID string) error
	// 明細を集約の状態に合わせる（upsert + 消えた明細の削除）
	Save(ctx context.Context, c cart.Cart) error

	// ロックなしの参照
	FindByUserID(ctx context.Context, userID string) (cart.Cart, error)
}

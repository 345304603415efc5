package repository

import (
	"context"

	"shopcart/internal/domain/model"
)

type InventoryRepository interface {
	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
	ListAdjustments(ctx context.Context, productID int64, limit int) ([]model.InventoryAdjustment, error)
}

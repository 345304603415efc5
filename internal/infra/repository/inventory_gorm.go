package repository

import (
	"context"

	"shopcart/internal/domain/model"
	repo "shopcart/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

var _ repo.InventoryRepository = (*InventoryGormRepository)(nil)

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return classify(err)
	}
	return nil
}

// 新しい順
func (r *InventoryGormRepository) ListAdjustments(ctx context.Context, productID int64, limit int) ([]model.InventoryAdjustment, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var list []model.InventoryAdjustment
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id desc").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, classify(err)
	}
	return list, nil
}

package repository

import (
	"context"
	"errors"
	"strings"

	"shopcart/internal/domain/cart"
	"shopcart/internal/domain/model"
	repo "shopcart/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

var _ repo.ProductRepository = (*ProductGormRepository)(nil)

// 商品行をロックして取得。別トランザクションが保持中ならここで待つ。
func (r *ProductGormRepository) GetForUpdate(ctx context.Context, productID int64) (cart.Product, error) {
	var p model.Product

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", productID).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cart.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return cart.Product{}, classify(err)
	}
	return cart.Product{ID: p.ID, Stock: p.Stock}, nil
}

// products.stockを更新
func (r *ProductGormRepository) SaveStock(ctx context.Context, p cart.Product) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", p.ID).
		Update("stock", p.Stock)

	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, classify(err)
	}
	return p, nil
}

// 名前検索とページング付きの一覧
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if s := strings.TrimSpace(q.Q); s != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, classify(err)
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("id asc").Offset(offset).Limit(q.Limit).Find(&products).Error; err != nil {
		return []model.Product{}, 0, classify(err)
	}

	return products, total, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, classify(err)
	}
	return p, nil
}

package usecase

import (
	"context"
	"errors"
	"strings"

	"shopcart/internal/domain/model"
	"shopcart/internal/infra/logger"
	"shopcart/internal/infra/metrics"
	repo "shopcart/internal/repository"
)

type ProductUsecase struct {
	tx        repo.TransactionManager
	products  repo.ProductRepository
	inventory repo.InventoryRepository
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// DI
func NewProductUsecase(
	tx repo.TransactionManager,
	products repo.ProductRepository,
	inventory repo.InventoryRepository,
	log *logger.Logger,
	m *metrics.Metrics,
) *ProductUsecase {
	return &ProductUsecase{
		tx:        tx,
		products:  products,
		inventory: inventory,
		log:       log,
		metrics:   m,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page  int
	Limit int
	Q     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) List(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewError(KindInvalidInput, "invalid page", nil)
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewError(KindInvalidInput, "invalid limit", nil)
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewError(KindInvalidInput, "invalid q", nil)
	}

	items, total, err := u.products.List(ctx, repo.ProductListQuery{
		Page:  in.Page,
		Limit: in.Limit,
		Q:     strings.TrimSpace(in.Q),
	})
	if err != nil {
		return ProductListOutput{}, wrapInfra(err, "list products failed")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// 商品詳細。ロックは取らない。
func (u *ProductUsecase) Get(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewError(KindInvalidInput, "invalid product id", nil)
	}

	p, err := u.products.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewError(KindProductNotFound, "product not found", err)
	}
	if err != nil {
		return model.Product{}, wrapInfra(err, "get product failed")
	}
	return p, nil
}

type CreateProductInput struct {
	Name  string
	Stock int64
}

// 管理者が商品を登録
func (u *ProductUsecase) Create(ctx context.Context, in CreateProductInput) (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 255 {
		return model.Product{}, NewError(KindInvalidInput, "invalid name", nil)
	}
	if in.Stock < 0 {
		return model.Product{}, NewError(KindInvalidInput, "stock must not be negative", nil)
	}

	p, err := u.products.Create(ctx, model.Product{Name: name, Stock: in.Stock})
	if err != nil {
		return model.Product{}, wrapInfra(err, "create product failed")
	}

	u.log.Info("product created", "product_id", p.ID, "stock", p.Stock)
	return p, nil
}

type SetStockInput struct {
	ActorUserID string
	ProductID   int64
	Stock       int64
	Reason      string
}

type SetStockOutput struct {
	ProductID int64 `json:"product_id"`
	Stock     int64 `json:"stock"`
	Delta     int64 `json:"delta"`
}

// SetStock は商品行をロックして在庫を上書きし、差分を履歴に残す。
// 商品1つだけをロックするのでカートとのロック順序には関係しない。
func (u *ProductUsecase) SetStock(ctx context.Context, in SetStockInput) (SetStockOutput, error) {
	if strings.TrimSpace(in.ActorUserID) == "" {
		return SetStockOutput{}, NewError(KindInvalidInput, "actor is required", nil)
	}
	if in.ProductID <= 0 {
		return SetStockOutput{}, NewError(KindInvalidInput, "invalid product id", nil)
	}
	if in.Stock < 0 {
		return SetStockOutput{}, NewError(KindInvalidInput, "stock must not be negative", nil)
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "admin set stock"
	}

	var out SetStockOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().GetForUpdate(ctx, in.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(KindProductNotFound, "product not found", err)
		}
		if err != nil {
			return wrapInfra(err, "lock product failed")
		}

		delta := in.Stock - p.Stock
		if delta < 0 {
			if err := p.DecreaseStock(-delta); err != nil {
				return fromDomain(err)
			}
		} else {
			p.IncreaseStock(delta)
		}

		if err := r.Products().SaveStock(ctx, p); err != nil {
			return wrapInfra(err, "save stock failed")
		}
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   p.ID,
			ActorUserID: in.ActorUserID,
			Delta:       delta,
			Reason:      reason,
		}); err != nil {
			return wrapInfra(err, "record adjustment failed")
		}

		out = SetStockOutput{ProductID: p.ID, Stock: p.Stock, Delta: delta}
		return nil
	})
	if err != nil {
		return SetStockOutput{}, wrapInfra(err, "set stock failed")
	}

	if u.metrics != nil {
		u.metrics.InventoryAdjustments.Inc()
	}
	u.log.Info("stock set", "product_id", out.ProductID, "stock", out.Stock, "delta", out.Delta, "actor", in.ActorUserID)
	return out, nil
}

// 在庫調整の履歴（新しい順）
func (u *ProductUsecase) ListAdjustments(ctx context.Context, productID int64, limit int) ([]model.InventoryAdjustment, error) {
	if productID <= 0 {
		return nil, NewError(KindInvalidInput, "invalid product id", nil)
	}
	if _, err := u.Get(ctx, productID); err != nil {
		return nil, err
	}

	list, err := u.inventory.ListAdjustments(ctx, productID, limit)
	if err != nil {
		return nil, wrapInfra(err, "list adjustments failed")
	}
	return list, nil
}

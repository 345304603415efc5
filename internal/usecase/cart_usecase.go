package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"shopcart/internal/domain/cart"
	"shopcart/internal/infra/logger"
	"shopcart/internal/infra/metrics"
	repo "shopcart/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	opAddItem    = "add_item"
	opRemoveItem = "remove_item"
)

// CartUsecase はカートと在庫をまたぐ更新を1トランザクションで行う。
//
// ロック順序は全体で Cart → Product に固定する。
// 2つ以上の集約をロックする処理は必ず lockCartThenProduct を通すこと。
type CartUsecase struct {
	tx      repo.TransactionManager
	carts   repo.CartRepository
	log     *logger.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// DI
func NewCartUsecase(
	tx repo.TransactionManager,
	carts repo.CartRepository,
	log *logger.Logger,
	m *metrics.Metrics,
) *CartUsecase {
	return &CartUsecase{
		tx:      tx,
		carts:   carts,
		log:     log,
		metrics: m,
		tracer:  otel.Tracer("shopcart/usecase"),
	}
}

type CartItemView struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// コミット後のカート
type CartView struct {
	UserID        string         `json:"user_id"`
	Items         []CartItemView `json:"items"`
	TotalQuantity int64          `json:"total_quantity"`
}

func toView(c cart.Cart) CartView {
	v := CartView{
		UserID: c.UserID,
		Items:  make([]CartItemView, 0, len(c.Items)),
	}
	for _, it := range c.Items {
		v.Items = append(v.Items, CartItemView{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	v.TotalQuantity = c.TotalQuantity()
	return v
}

// AddItem は在庫を確保してカートに積む。カートが無ければ同じTx内で作る。
// 在庫不足で失敗した場合は、作ったカート行も含めてロールバックされる。
func (u *CartUsecase) AddItem(ctx context.Context, userID string, productID, qty int64) (view CartView, err error) {
	ctx, done := u.begin(ctx, opAddItem, userID, productID, qty)
	defer func() { done(err) }()

	if err := validateCartInput(userID, productID, qty); err != nil {
		return CartView{}, err
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, p, err := u.lockCartThenProduct(ctx, r, userID, productID, true)
		if err != nil {
			return err
		}

		if err := cart.AddItemToCart(&c, &p, qty); err != nil {
			return fromDomain(err)
		}

		if err := r.Products().SaveStock(ctx, p); err != nil {
			return wrapInfra(err, "save stock failed")
		}
		if err := r.Carts().Save(ctx, c); err != nil {
			return wrapInfra(err, "save cart failed")
		}

		view = toView(c)
		return nil
	})
	if err != nil {
		return CartView{}, wrapInfra(err, "add item failed")
	}

	u.log.Info("item added to cart", "user_id", userID, "product_id", productID, "quantity", qty)
	return view, nil
}

// RemoveItem はカートから外して、実際に外した数だけ在庫へ戻す。
// カートが無い場合はKindCartNotFound（作成はしない）。
func (u *CartUsecase) RemoveItem(ctx context.Context, userID string, productID, qty int64) (view CartView, err error) {
	ctx, done := u.begin(ctx, opRemoveItem, userID, productID, qty)
	defer func() { done(err) }()

	if err := validateCartInput(userID, productID, qty); err != nil {
		return CartView{}, err
	}

	var returned int64
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, p, err := u.lockCartThenProduct(ctx, r, userID, productID, false)
		if err != nil {
			return err
		}

		returned, err = cart.RemoveItemFromCart(&c, &p, qty)
		if err != nil {
			return fromDomain(err)
		}

		if err := r.Products().SaveStock(ctx, p); err != nil {
			return wrapInfra(err, "save stock failed")
		}
		if err := r.Carts().Save(ctx, c); err != nil {
			return wrapInfra(err, "save cart failed")
		}

		view = toView(c)
		return nil
	})
	if err != nil {
		return CartView{}, wrapInfra(err, "remove item failed")
	}

	u.log.Info("item removed from cart", "user_id", userID, "product_id", productID, "requested", qty, "returned", returned)
	return view, nil
}

// GetCart はコミット済みのカートを返す。無ければ空。
func (u *CartUsecase) GetCart(ctx context.Context, userID string) (CartView, error) {
	if strings.TrimSpace(userID) == "" {
		return CartView{}, NewError(KindInvalidInput, "user id is required", nil)
	}

	c, err := u.carts.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{UserID: userID, Items: []CartItemView{}}, nil
	}
	if err != nil {
		return CartView{}, wrapInfra(err, "get cart failed")
	}
	return toView(c), nil
}

// EnsureCart はカート行を冪等に作る
func (u *CartUsecase) EnsureCart(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return NewError(KindInvalidInput, "user id is required", nil)
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Carts().CreateIfAbsent(ctx, userID)
	})
	if err != nil {
		if repo.IsRetryable(err) {
			return wrapInfra(err, "")
		}
		return NewError(KindProvisioningFailed, "could not create cart", err)
	}
	return nil
}

// lockCartThenProduct はCart、Productの順に行ロックを取る。
// provisionがtrueならカートが無いときに作成して取り直す。
func (u *CartUsecase) lockCartThenProduct(
	ctx context.Context,
	r repo.TxRepos,
	userID string,
	productID int64,
	provision bool,
) (cart.Cart, cart.Product, error) {
	c, err := r.Carts().GetForUpdate(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		if !provision {
			u.log.Warn("cart not found", "user_id", userID)
			return cart.Cart{}, cart.Product{}, NewError(KindCartNotFound, "cart not found", err)
		}

		u.log.Info("cart not found, creating", "user_id", userID)
		if err := r.Carts().CreateIfAbsent(ctx, userID); err != nil {
			if repo.IsRetryable(err) {
				return cart.Cart{}, cart.Product{}, wrapInfra(err, "")
			}
			u.log.Error("cart provisioning failed", "user_id", userID, "error", err)
			return cart.Cart{}, cart.Product{}, NewError(KindProvisioningFailed, "could not create cart", err)
		}

		c, err = r.Carts().GetForUpdate(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			u.log.Error("cart still missing after provisioning", "user_id", userID)
			return cart.Cart{}, cart.Product{}, NewError(KindProvisioningFailed, "cart not found after creation", err)
		}
	}
	if err != nil {
		return cart.Cart{}, cart.Product{}, wrapInfra(err, "lock cart failed")
	}
	u.log.Debug("cart locked", "user_id", userID, "cart_id", c.ID)

	p, err := r.Products().GetForUpdate(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		u.log.Warn("product not found", "product_id", productID)
		return cart.Cart{}, cart.Product{}, NewError(KindProductNotFound, "product not found", err)
	}
	if err != nil {
		return cart.Cart{}, cart.Product{}, wrapInfra(err, "lock product failed")
	}
	u.log.Debug("product locked", "product_id", productID, "stock", p.Stock)

	return c, p, nil
}

func validateCartInput(userID string, productID, qty int64) error {
	if strings.TrimSpace(userID) == "" {
		return NewError(KindInvalidInput, "user id is required", nil)
	}
	if productID <= 0 {
		return NewError(KindInvalidInput, "invalid product id", nil)
	}
	if qty <= 0 {
		return NewError(KindInvalidInput, "quantity must be positive", nil)
	}
	return nil
}

// スパン開始。返した関数で指標とスパンを閉じる。
func (u *CartUsecase) begin(ctx context.Context, op, userID string, productID, qty int64) (context.Context, func(error)) {
	started := time.Now()
	name := "cart.AddItem"
	if op == opRemoveItem {
		name = "cart.RemoveItem"
	}

	ctx, span := u.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("cart.user_id", userID),
		attribute.Int64("cart.product_id", productID),
		attribute.Int64("cart.quantity", qty),
	))

	return ctx, func(err error) {
		result := "ok"
		if err != nil {
			result = string(KindOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
		}
		u.metrics.ObserveCartOp(op, result, started)
		span.End()
	}
}

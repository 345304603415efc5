package repository

import (
	"context"
	"errors"
	"time"

	"shopcart/internal/domain/cart"
	"shopcart/internal/domain/model"
	repo "shopcart/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

var _ repo.CartRepository = (*CartGormRepository)(nil)

// ユーザーのカートを行ロック付きで取得
// 明細はカート行のロックを持ったまま同じトランザクションで読む
func (r *CartGormRepository) GetForUpdate(ctx context.Context, userID string) (cart.Cart, error) {
	var row model.Cart

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cart.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return cart.Cart{}, classify(err)
	}

	return r.load(ctx, row)
}

// 無ければ作る。既にあれば ON CONFLICT (user_id) DO NOTHING で何もしない。
// Postgresでは制約違反でTx自体がabortされるので、ここで握りつぶさない。
func (r *CartGormRepository) CreateIfAbsent(ctx context.Context, userID string) error {
	now := time.Now()
	row := model.Cart{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&row).Error

	return classify(err)
}

// 明細を集約に合わせる
func (r *CartGormRepository) Save(ctx context.Context, c cart.Cart) error {
	db := r.db.WithContext(ctx)
	now := time.Now()

	keep := make([]int64, 0, len(c.Items))
	for _, it := range c.Items {
		if it.Quantity <= 0 {
			continue
		}

		row := model.CartItem{
			CartID:    c.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return classify(err)
		}

		keep = append(keep, it.ProductID)
	}

	//集約から消えた明細を削除
	del := db.Where("cart_id = ?", c.ID)
	if len(keep) > 0 {
		del = del.Where("product_id NOT IN ?", keep)
	}
	if err := del.Delete(&model.CartItem{}).Error; err != nil {
		return classify(err)
	}

	res := db.Model(&model.Cart{}).
		Where("id = ?", c.ID).
		Update("updated_at", now)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// ロックなしで取得
func (r *CartGormRepository) FindByUserID(ctx context.Context, userID string) (cart.Cart, error) {
	var row model.Cart

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cart.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return cart.Cart{}, classify(err)
	}

	return r.load(ctx, row)
}

func (r *CartGormRepository) load(ctx context.Context, row model.Cart) (cart.Cart, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", row.ID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return cart.Cart{}, classify(err)
	}

	c := cart.Cart{
		ID:     row.ID,
		UserID: row.UserID,
		Items:  make([]cart.CartItem, 0, len(items)),
	}
	for _, it := range items {
		c.Items = append(c.Items, cart.CartItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return c, nil
}

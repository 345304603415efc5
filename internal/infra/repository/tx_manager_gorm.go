package repository

import (
	"context"
	"fmt"
	"time"

	repo "shopcart/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	carts     repo.CartRepository
	products  repo.ProductRepository
	inventory repo.InventoryRepository
}

func (r *txReposGorm) Carts() repo.CartRepository          { return r.carts }
func (r *txReposGorm) Products() repo.ProductRepository    { return r.products }
func (r *txReposGorm) Inventory() repo.InventoryRepository { return r.inventory }

type TxManagerGorm struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// lockTimeoutが0より大きければ、Postgresでは SET LOCAL lock_timeout を各Txの先頭で流す。
func NewTxManagerGorm(db *gorm.DB, lockTimeout time.Duration) *TxManagerGorm {
	return &TxManagerGorm{db: db, lockTimeout: lockTimeout}
}

var _ repo.TransactionManager = (*TxManagerGorm)(nil)

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	tx := tm.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return classify(tx.Error)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if tm.lockTimeout > 0 && tx.Dialector.Name() == "postgres" {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", tm.lockTimeout.Milliseconds())
		if err := tx.Exec(stmt).Error; err != nil {
			tx.Rollback()
			return classify(err)
		}
	}

	//repoはtxを持ったDBで作り直す
	r := &txReposGorm{
		carts:     NewCartGormRepository(tx),
		products:  NewProductGormRepository(tx),
		inventory: NewInventoryGormRepository(tx),
	}

	if err := fn(r); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return classify(err)
	}
	return nil
}

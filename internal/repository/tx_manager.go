package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Carts() CartRepository
	Products() ProductRepository
	Inventory() InventoryRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがnilを返せばcommit、エラーならrollback。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}

package model

// マイグレーション対象のテーブル
func All() []any {
	return []any{
		&Product{},
		&Cart{},
		&CartItem{},
		&InventoryAdjustment{},
	}
}

// Package cart はカートと在庫の集約。I/O は持たない。
package cart

import (
	"errors"
	"slices"
)

var (
	// 在庫不足
	ErrInsufficientStock = errors.New("insufficient stock")
	// カートに該当商品が無い
	ErrItemNotFoundInCart = errors.New("item not found in cart")
)

// 予約可能な在庫を持つ商品。
// ロック済みの行から作られ、同じトランザクション内でだけ変更される。
type Product struct {
	ID    int64
	Stock int64
}

// 在庫を減らす。足りなければ何も変えずにErrInsufficientStock。
func (p *Product) DecreaseStock(qty int64) error {
	if qty > p.Stock {
		return ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

// 在庫を戻す
func (p *Product) IncreaseStock(qty int64) {
	p.Stock += qty
}

// カートの明細。Quantityは常に1以上。
type CartItem struct {
	ProductID int64
	Quantity  int64
}

// Cartは集約ルート。1ユーザーにつき1つ。
// 同じ商品の明細は1行にまとめる。
type Cart struct {
	ID     int64
	UserID string
	Items  []CartItem
}

// 明細を追加する（同一商品は数量加算）。在庫には触らない。
// Itemsは作り直すので、事前に取ったCartのコピーには影響しない。
func (c *Cart) AddItem(p Product, qty int64) {
	items := slices.Clone(c.Items)
	for i := range items {
		if items[i].ProductID == p.ID {
			items[i].Quantity += qty
			c.Items = items
			return
		}
	}
	c.Items = append(items, CartItem{ProductID: p.ID, Quantity: qty})
}

// RemoveItem は明細の数量を減らし、0以下になったら明細ごと消す。
// 戻り値は実際に戻せる数量 min(保有数, qty)。在庫には触らない。
func (c *Cart) RemoveItem(p Product, qty int64) (int64, error) {
	for i := range c.Items {
		if c.Items[i].ProductID != p.ID {
			continue
		}

		held := c.Items[i].Quantity
		actual := min(held, qty)

		items := slices.Clone(c.Items)
		if held-qty <= 0 {
			items = slices.Delete(items, i, i+1)
		} else {
			items[i].Quantity = held - qty
		}
		c.Items = items
		return actual, nil
	}
	return 0, ErrItemNotFoundInCart
}

// 商品IDで明細を探す
func (c *Cart) Item(productID int64) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}

func (c *Cart) Quantity(productID int64) int64 {
	it, _ := c.Item(productID)
	return it.Quantity
}

// 全明細の数量合計
func (c *Cart) TotalQuantity() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}

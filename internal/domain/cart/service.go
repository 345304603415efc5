package cart

// 失敗しうる処理を先に、失敗しない処理を後に実行する。
// 途中で失敗しても、CartとProductのどちらも変更されない。

// AddItemToCart は在庫を減らしてからカートに積む。
func AddItemToCart(c *Cart, p *Product, qty int64) error {
	if err := p.DecreaseStock(qty); err != nil {
		return err
	}
	c.AddItem(*p, qty)
	return nil
}

// RemoveItemFromCart はカートから外し、実際に外した分だけ在庫へ戻す。
func RemoveItemFromCart(c *Cart, p *Product, qty int64) (int64, error) {
	returned, err := c.RemoveItem(*p, qty)
	if err != nil {
		return 0, err
	}
	p.IncreaseStock(returned)
	return returned, nil
}

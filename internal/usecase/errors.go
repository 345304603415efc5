package usecase

import (
	"errors"
	"fmt"

	"shopcart/internal/domain/cart"
	repo "shopcart/internal/repository"
)

// エラーの種類。HTTPステータスへの変換はhandlerだけが行う。
type ErrorKind string

const (
	KindInvalidInput       ErrorKind = "invalid_input"
	KindCartNotFound       ErrorKind = "cart_not_found"
	KindProductNotFound    ErrorKind = "product_not_found"
	KindInsufficientStock  ErrorKind = "insufficient_stock"
	KindItemNotFoundInCart ErrorKind = "item_not_found_in_cart"
	KindProvisioningFailed ErrorKind = "provisioning_failed"
	KindRetryable          ErrorKind = "retryable"
	KindInternal           ErrorKind = "internal"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind ErrorKind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func AsError(err error) (*Error, bool) {
	var ue *Error
	ok := errors.As(err, &ue)
	return ue, ok
}

// 種類の分からないエラーはKindInternal、nilなら空文字
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if ue, ok := AsError(err); ok {
		return ue.Kind
	}
	return KindInternal
}

// usecase.Errorでないエラーを種類付きにする
func wrapInfra(err error, message string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsError(err); ok {
		return err
	}
	if repo.IsRetryable(err) {
		return NewError(KindRetryable, "storage busy, retry later", err)
	}
	return NewError(KindInternal, message, err)
}

// ドメインのsentinelを種類に変換
func fromDomain(err error) error {
	switch {
	case errors.Is(err, cart.ErrInsufficientStock):
		return NewError(KindInsufficientStock, "insufficient stock", err)
	case errors.Is(err, cart.ErrItemNotFoundInCart):
		return NewError(KindItemNotFoundInCart, "item not found in cart", err)
	}
	return wrapInfra(err, "cart operation failed")
}

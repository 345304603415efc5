package repository

import "errors"

// ロック待ちタイムアウト・デッドロック・接続断など。
// 呼び出し側がリトライしてよいインフラ起因のエラー。
var ErrRetryable = errors.New("retryable storage error")

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return "retryable: " + e.err.Error() }

func (e *retryableError) Unwrap() []error { return []error{ErrRetryable, e.err} }

// errをErrRetryableとして包む。元のエラーもerrors.Isで辿れる。
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

func IsRetryable(err error) bool {
	return errors.Is(err, ErrRetryable)
}

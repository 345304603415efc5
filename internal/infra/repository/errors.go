package repository

import (
	"context"
	"database/sql/driver"
	"errors"

	repo "shopcart/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresのSQLSTATE
const (
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
	pgDeadlockDetected     = "40P01"
	pgSerializationFailure = "40001"
)

// ロック待ちタイムアウトや接続断はErrRetryableで包む。それ以外はそのまま返す。
func classify(err error) error {
	if err == nil {
		return nil
	}
	if repo.IsRetryable(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgQueryCanceled, pgDeadlockDetected, pgSerializationFailure:
			return repo.Retryable(err)
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		pgconn.Timeout(err) ||
		pgconn.SafeToRetry(err) {
		return repo.Retryable(err)
	}
	return err
}

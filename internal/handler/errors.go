package handler

import (
	"net/http"

	"shopcart/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// ロック待ちで失敗したときにクライアントへ返す再試行目安（秒）
const retryAfterSeconds = "1"

// 種類 → HTTPステータス
func statusOf(kind usecase.ErrorKind) int {
	switch kind {
	case usecase.KindInvalidInput, usecase.KindInsufficientStock:
		return http.StatusBadRequest
	case usecase.KindCartNotFound, usecase.KindProductNotFound, usecase.KindItemNotFoundInCart:
		return http.StatusNotFound
	case usecase.KindRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	ue, ok := usecase.AsError(err)
	if !ok {
		//500
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	status := statusOf(ue.Kind)
	if ue.Kind == usecase.KindRetryable {
		c.Response().Header().Set("Retry-After", retryAfterSeconds)
	}

	//500系は中身を出さない
	msg := ue.Message
	if status == http.StatusInternalServerError {
		msg = "internal error"
		if ue.Kind == usecase.KindProvisioningFailed {
			msg = ue.Message
		}
	}
	return c.JSON(status, ErrorResponse{Error: msg})
}

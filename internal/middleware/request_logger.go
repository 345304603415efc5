package middleware

import (
	"time"

	"shopcart/internal/infra/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const HeaderRequestID = "X-Request-ID"

// リクエストIDを付けてアクセスログを出す
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()

			rid := c.Request().Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, rid)

			err := next(c)
			if err != nil {
				//echoのエラーハンドラにステータスを決めさせる
				c.Error(err)
			}

			kv := []any{
				"request_id", rid,
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", time.Since(started).Milliseconds(),
			}
			if uid, ok := UserID(c); ok {
				kv = append(kv, "user_id", uid)
			}

			switch {
			case c.Response().Status >= 500:
				log.Error("request", kv...)
			case c.Response().Status >= 400:
				log.Warn("request", kv...)
			default:
				log.Info("request", kv...)
			}
			return nil
		}
	}
}

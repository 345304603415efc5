package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

//contextに入っているroleがadminかどうかを確認します。

func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := UserID(c); !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			role, _ := c.Get(CtxUserRoleKey).(string)
			if !strings.EqualFold(role, "admin") {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}

			return next(c)
		}
	}
}

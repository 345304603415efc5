package server

import (
	"net/http"

	"shopcart/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Cart         *handler.CartHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Health       *handler.HealthHandler
}

// 全ルートを登録
func RegisterRoutes(e *echo.Echo, h Handlers, auth echo.MiddlewareFunc, metrics http.Handler) {
	h.Health.RegisterRoutes(e, metrics)
	h.Product.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, auth)
	h.AdminProduct.RegisterRoutes(e, auth)
}

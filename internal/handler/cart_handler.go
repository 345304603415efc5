package handler

import (
	"context"
	"net/http"

	"shopcart/internal/middleware"
	"shopcart/internal/usecase"

	"github.com/labstack/echo/v4"
)

// POST /cart/add-item, /cart/remove-item の入力。quantityは省略時1。
type CartItemRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  *int64 `json:"quantity"`
}

type CartMutationResponse struct {
	Status  string           `json:"status"`
	Message string           `json:"message"`
	Cart    usecase.CartView `json:"cart"`
}

// /cart
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

// カートは全部ログイン必須
func (h *CartHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	g := e.Group("/cart", auth)

	g.GET("", h.getCart)
	g.POST("/add-item", h.addItem)
	g.POST("/remove-item", h.removeItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	view, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) addItem(c echo.Context) error {
	return h.mutate(c, h.uc.AddItem, "Item added to cart")
}

func (h *CartHandler) removeItem(c echo.Context) error {
	return h.mutate(c, h.uc.RemoveItem, "Item removed from cart")
}

type cartMutation func(ctx context.Context, userID string, productID, qty int64) (usecase.CartView, error)

// add/removeの共通部分
func (h *CartHandler) mutate(c echo.Context, op cartMutation, message string) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
	}

	qty := int64(1)
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	view, err := op(c.Request().Context(), userID, req.ProductID, qty)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, CartMutationResponse{
		Status:  "success",
		Message: message,
		Cart:    view,
	})
}

package handler

import (
	"net/http"
	"strconv"

	"shopcart/internal/middleware"
	"shopcart/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ProductCreateRequest struct {
	Name  string `json:"name"`
	Stock int64  `json:"stock"`
}

// 在庫更新の入力。stockは上書き後の値。
type InventoryUpdateRequest struct {
	Stock  *int64 `json:"stock"`
	Reason string `json:"reason"`
}

// /admin/products と /admin/inventory をまとめる
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	admin := e.Group("/admin", auth, middleware.AdminRoleGuard())

	admin.POST("/products", h.createProduct)
	admin.PUT("/inventory/:product_id", h.updateInventory)
	admin.GET("/inventory/:product_id/adjustments", h.listAdjustments)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
	}

	p, err := h.uc.Create(c.Request().Context(), usecase.CreateProductInput{
		Name:  req.Name,
		Stock: req.Stock,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) updateInventory(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
	}
	if req.Stock == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "stock is required"})
	}

	actor, _ := middleware.UserID(c)
	out, err := h.uc.SetStock(c.Request().Context(), usecase.SetStockInput{
		ActorUserID: actor,
		ProductID:   productID,
		Stock:       *req.Stock,
		Reason:      req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) listAdjustments(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	list, err := h.uc.ListAdjustments(c.Request().Context(), productID, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

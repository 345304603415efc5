package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo, metrics http.Handler) {
	e.GET("/healthz", h.healthz)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
}

// DBにpingが通れば200
func (h *HealthHandler) healthz(c echo.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "db unavailable"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "db unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

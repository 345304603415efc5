package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"shopcart/internal/infra/logger"
	"shopcart/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo *echo.Echo
	log  *logger.Logger
}

// echoを組み立ててルートを登録する
func New(log *logger.Logger, h Handlers, auth echo.MiddlewareFunc, metrics http.Handler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.BodyLimit("1M"))

	RegisterRoutes(e, h, auth, metrics)

	return &Server{echo: e, log: log}
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Shutdownされるまで戻らない。Shutdownによる終了はnil。
func (s *Server) Start(port string) error {
	addr := port
	if !strings.HasPrefix(addr, ":") && !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	s.log.Info("http server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// 処理中のリクエストを待って止める
func (s *Server) Shutdown(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.log.Info("http server shutting down")
	return s.echo.Shutdown(ctx)
}

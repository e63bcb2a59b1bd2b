package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/HyunsDev/opize-calendar2notion-server/core/cache"
	"github.com/HyunsDev/opize-calendar2notion-server/core/config"
	"github.com/HyunsDev/opize-calendar2notion-server/core/constants"
	"github.com/HyunsDev/opize-calendar2notion-server/core/database"
	"github.com/HyunsDev/opize-calendar2notion-server/core/logger"
	"github.com/HyunsDev/opize-calendar2notion-server/core/queue"
	"github.com/HyunsDev/opize-calendar2notion-server/core/storage"
	"github.com/HyunsDev/opize-calendar2notion-server/core/utils"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/admin"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Run wires config, logging, storage and every module, then serves until
// SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.Server.LogLevel)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return err
	}

	c, err := cache.InitCache(cfg.Redis)
	if err != nil {
		return err
	}
	defer c.Close()

	q := queue.InitQueue(cfg.Redis)
	defer q.Close()

	uploader := storage.NewS3Uploader(cfg.S3)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		Generator: utils.GenerateRequestID,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	calendar.Init(e, &db, c, q)
	admin.Init(e, &db, c, uploader)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Starting server", "addr", addr)
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

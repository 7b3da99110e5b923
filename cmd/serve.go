package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}
		gin.DefaultWriter = logger.Writer()

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})

		// HTTP Server
		srv := &http.Server{
			Addr:           cfg.GetServerAddress(),
			Handler:        sentryHandler.Handle(a.Router()),
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			MaxHeaderBytes: 1 << 20,
		}

		serverErr := make(chan error, 1)

		// Запускаем сервер
		go func() {
			logger.Printf("Server starting on %s (storage: %s, cache: %s)", cfg.GetServerAddress(), cfg.Storage.Driver, cfg.Cache.Driver)
			logger.Printf("Endpoints: POST /create, GET /{code}, GET /api/links/{code}, GET /api/health")

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		// Graceful shutdown
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-serverErr:
			return err
		case <-quit:
		}

		logger.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return err
		}

		logger.Println("Server gracefully stopped")
		return nil
	},
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/api"
	"github.com/RoyceAzure/lab/barcheckout/internal/api/handler"
	"github.com/RoyceAzure/lab/barcheckout/internal/api/router"
	"github.com/RoyceAzure/lab/barcheckout/internal/appcontext"
	"github.com/RoyceAzure/lab/barcheckout/internal/config"
	"github.com/RoyceAzure/lab/barcheckout/internal/constants"
	"golang.org/x/sync/errgroup"
)

func main() {
	app, err := appcontext.NewApplicationContext(config.GetConfig())
	if err != nil {
		log.Fatal(err)
	}

	// 初始化 handler
	server := api.NewServer(
		handler.NewCartHandler(app.CartService),
		handler.NewCheckoutHandler(app.CheckoutService),
		handler.NewOrderHandler(app.OrderService),
		handler.NewCatalogHandler(app.CatalogService),
	)

	// 設置路由
	r := router.SetupRouter(server, router.Options{
		TokenMaker:     app.TokenMaker,
		Limiter:        app.Limiter,
		Gatherer:       app.Registry,
		Logger:         app.Logger,
		RequestTimeout: app.Cf.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 設置訊號監聽
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Info().Str("addr", srv.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return app.TicketService.RunRecovery(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info().Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error().Err(err).Msg("Server shutdown error")
		}
		if err := app.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error().Err(err).Msg("Application shutdown error")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		app.Logger.Fatal().Err(err).Msg("server stopped")
	}
	app.Logger.Info().Msg("closed completed")
}

package router

import (
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/api"
	m "github.com/RoyceAzure/lab/barcheckout/internal/api/middleware"
	"github.com/RoyceAzure/lab/barcheckout/internal/api/response"
	"github.com/RoyceAzure/lab/barcheckout/internal/constants"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/ratelimit"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/token"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Options struct {
	TokenMaker     token.Maker
	Limiter        ratelimit.ILimiter
	Gatherer       prometheus.Gatherer
	Logger         *zerolog.Logger
	RequestTimeout time.Duration
}

func SetupRouter(server *api.Server, opts Options) *chi.Mux {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = constants.DefaultRequestTimeout
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.AuthPayloadMiddleware(opts.TokenMaker))
	r.Use(m.LoggerMiddleware(opts.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response.SuccessJSON(w, http.StatusOK, nil, "ok")
	})
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/bar", func(r chi.Router) {
		r.Use(middleware.Timeout(opts.RequestTimeout))
		r.Use(m.AuthMiddleware)
		r.Use(m.NewRateLimitMiddleware(opts.Limiter))

		r.Route("/carrinho", func(r chi.Router) {
			r.Get("/", server.CartHandler.GetCart)
			r.Post("/{productId}", server.CartHandler.AddItem)
			r.Delete("/{productId}", server.CartHandler.RemoveItem)
			r.Patch("/quantidade/{productId}", server.CartHandler.ChangeQuantity)
			r.Post("/{userId}/pagamento", server.CheckoutHandler.Checkout)
		})

		r.Route("/pedidos", func(r chi.Router) {
			r.Get("/", server.OrderHandler.ListPending)
			r.Get("/historico", server.OrderHandler.ListAll)
			r.Get("/{orderId}", server.OrderHandler.GetOrder)
			r.With(m.AdminMiddleware).Patch("/{orderId}/estado", server.OrderHandler.UpdateStatus)
			r.With(m.AdminMiddleware).Post("/{orderId}/levantamento", server.OrderHandler.ConfirmPickup)
		})

		r.Route("/produtos", func(r chi.Router) {
			r.Get("/", server.CatalogHandler.ListProducts)
			r.With(m.AdminMiddleware).Post("/", server.CatalogHandler.CreateProduct)
		})
	})

	return r
}

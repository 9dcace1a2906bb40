package api

import "github.com/RoyceAzure/lab/barcheckout/internal/api/handler"

type Server struct {
	CartHandler     *handler.CartHandler
	CheckoutHandler *handler.CheckoutHandler
	OrderHandler    *handler.OrderHandler
	CatalogHandler  *handler.CatalogHandler
}

func NewServer(
	cartHandler *handler.CartHandler,
	checkoutHandler *handler.CheckoutHandler,
	orderHandler *handler.OrderHandler,
	catalogHandler *handler.CatalogHandler,
) *Server {
	return &Server{
		CartHandler:     cartHandler,
		CheckoutHandler: checkoutHandler,
		OrderHandler:    orderHandler,
		CatalogHandler:  catalogHandler,
	}
}

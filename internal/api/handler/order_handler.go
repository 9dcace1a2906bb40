package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/barcheckout/internal/api/dto"
	"github.com/RoyceAzure/lab/barcheckout/internal/api/response"
	"github.com/RoyceAzure/lab/barcheckout/internal/apperr"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"github.com/RoyceAzure/lab/barcheckout/internal/service"
	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orderService service.IOrderService
}

func NewOrderHandler(orderService service.IOrderService) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{orderService: orderService}
}

// GET /bar/pedidos/{orderId}
// 不存在或不是自己的訂單都回 404
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), chi.URLParam(r, "orderId"), payload.UserID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.ErrorJSON(w, http.StatusNotFound, service.ErrOrderNotFound.Message)
			return
		}
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, convertOrderToDTO(order), "success")
}

// GET /bar/pedidos
func (h *OrderHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.orderService.ListPending)
}

// GET /bar/pedidos/historico
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.orderService.ListAll)
}

// list 沒有訂單回 204
func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, fetch func(context.Context, int64) ([]model.Order, error)) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}

	orders, err := fetch(r.Context(), payload.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(orders) == 0 {
		response.NoContent(w)
		return
	}
	response.SuccessJSON(w, http.StatusOK, convertOrdersToDTO(orders), "success")
}

// PATCH /bar/pedidos/{orderId}/estado (admin)
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateOrderStatusDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), chi.URLParam(r, "orderId"), model.OrderStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, convertOrderToDTO(order), "order status updated")
}

// POST /bar/pedidos/{orderId}/levantamento (admin)
// 櫃台掃描 QR code 取得 token 後確認取貨
func (h *OrderHandler) ConfirmPickup(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmPickupDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Token == "" {
		writeError(w, r, apperr.New(apperr.KindValidation, "token is required"))
		return
	}

	order, err := h.orderService.ConfirmPickup(r.Context(), chi.URLParam(r, "orderId"), req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, convertOrderToDTO(order), "order picked up")
}

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/barcheckout/internal/api/dto"
	"github.com/RoyceAzure/lab/barcheckout/internal/api/response"
	"github.com/RoyceAzure/lab/barcheckout/internal/apperr"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/token"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"github.com/RoyceAzure/lab/barcheckout/internal/util"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

var errUnauthorized = apperr.New(apperr.KindUnauthorized, "unauthorized")

// writeError 依錯誤分類決定 status, internal 錯誤完整內容只寫 log
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("url", r.URL.Path).Msg("request failed")
	}
	response.ErrorJSON(w, apperr.HTTPStatus(kind), apperr.PublicMessage(err))
}

// requirePayload 路由已經掛 AuthMiddleware, 這裡只是保險
func requirePayload(w http.ResponseWriter, r *http.Request) (*token.Payload, bool) {
	payload := util.GetTokenPayloadFromContext(r.Context())
	if payload == nil {
		writeError(w, r, errUnauthorized)
		return nil, false
	}
	return payload, true
}

func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, apperr.New(apperr.KindValidation, "invalid "+name))
		return 0, false
	}
	return id, true
}

// decodeJSON 空 body 視為零值
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, err, "invalid request body")
	}
	return nil
}

func convertOrderToDTO(order *model.Order) dto.OrderDTO {
	items := make([]dto.OrderItemDTO, 0, len(order.Items))
	for _, it := range order.Items {
		item := dto.OrderItemDTO{ProductID: it.ProductID, Quantity: it.Quantity}
		if it.Product != nil {
			item.Name = it.Product.Name
			item.Price = it.Product.Price
		}
		items = append(items, item)
	}
	return dto.OrderDTO{
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		OrderDate:   order.OrderDate,
		Status:      string(order.Status),
		PaymentID:   order.PaymentID,
		Ticket:      order.Ticket,
		TicketReady: order.TicketReady(),
		Items:       items,
	}
}

func convertOrdersToDTO(orders []model.Order) []dto.OrderDTO {
	out := make([]dto.OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, convertOrderToDTO(&orders[i]))
	}
	return out
}

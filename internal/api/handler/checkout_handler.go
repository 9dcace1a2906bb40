package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/barcheckout/internal/api/dto"
	"github.com/RoyceAzure/lab/barcheckout/internal/api/response"
	"github.com/RoyceAzure/lab/barcheckout/internal/service"
)

type CheckoutHandler struct {
	checkoutService service.ICheckoutService
}

func NewCheckoutHandler(checkoutService service.ICheckoutService) *CheckoutHandler {
	if checkoutService == nil {
		panic("checkoutService cannot be nil")
	}
	return &CheckoutHandler{checkoutService: checkoutService}
}

// POST /bar/carrinho/{userId}/pagamento
// 路徑上的 userId 必須是 token 本人
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}
	userID, ok := pathInt64(w, r, "userId")
	if !ok {
		return
	}
	if userID != payload.UserID {
		writeError(w, r, errUnauthorized)
		return
	}

	var req dto.CheckoutRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	receipt, err := h.checkoutService.Checkout(r.Context(), userID, service.BillingInput{
		CardNumber: req.CardNumber,
		CVV:        req.CVV,
		ExpiryDate: req.ExpiryDate,
		HolderName: req.HolderName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.SuccessJSON(w, http.StatusOK, dto.ReceiptDTO{
		OrderID: receipt.OrderID,
		Status:  string(receipt.Status),
		Total:   receipt.Total,
	}, "order placed, ticket is being generated")
}

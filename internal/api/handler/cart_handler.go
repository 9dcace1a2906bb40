package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/barcheckout/internal/api/dto"
	"github.com/RoyceAzure/lab/barcheckout/internal/api/response"
	"github.com/RoyceAzure/lab/barcheckout/internal/service"
)

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{cartService: cartService}
}

// POST /bar/carrinho/{productId}
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}
	productID, ok := pathInt64(w, r, "productId")
	if !ok {
		return
	}

	item, err := h.cartService.AddItem(r.Context(), payload.UserID, productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, dto.CartLineDTO{ProductID: item.ProductID, Quantity: item.Quantity}, "product added to cart")
}

// GET /bar/carrinho
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), payload.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]dto.CartItemDTO, 0, len(cart.Items))
	for _, it := range cart.Items {
		item := dto.CartItemDTO{ProductID: it.ProductID, Quantity: it.Quantity, LineTotal: it.LineAmount()}
		if it.Product != nil {
			item.Name = it.Product.Name
			item.Description = it.Product.Description
			item.Price = it.Product.Price
		}
		items = append(items, item)
	}
	response.SuccessJSON(w, http.StatusOK, dto.CartDTO{Items: items, Total: cart.Total}, "success")
}

// DELETE /bar/carrinho/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}
	productID, ok := pathInt64(w, r, "productId")
	if !ok {
		return
	}

	if err := h.cartService.RemoveItem(r.Context(), payload.UserID, productID); err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, dto.CartLineDTO{ProductID: productID, Removed: true}, "product removed from cart")
}

// PATCH /bar/carrinho/quantidade/{productId}?operacao=aumentar|diminuir
func (h *CartHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}
	productID, ok := pathInt64(w, r, "productId")
	if !ok {
		return
	}

	item, err := h.cartService.ChangeQuantity(r.Context(), payload.UserID, productID, r.URL.Query().Get("operacao"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if item == nil {
		response.SuccessJSON(w, http.StatusOK, dto.CartLineDTO{ProductID: productID, Removed: true}, "product removed from cart")
		return
	}
	response.SuccessJSON(w, http.StatusOK, dto.CartLineDTO{ProductID: item.ProductID, Quantity: item.Quantity}, "quantity updated")
}

package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/barcheckout/internal/api/dto"
	"github.com/RoyceAzure/lab/barcheckout/internal/api/response"
	"github.com/RoyceAzure/lab/barcheckout/internal/service"
)

type CatalogHandler struct {
	catalogService service.ICatalogService
}

func NewCatalogHandler(catalogService service.ICatalogService) *CatalogHandler {
	if catalogService == nil {
		panic("catalogService cannot be nil")
	}
	return &CatalogHandler{catalogService: catalogService}
}

// GET /bar/produtos
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	sections, err := h.catalogService.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]dto.CatalogSectionDTO, 0, len(sections))
	for _, s := range sections {
		products := make([]dto.ProductDTO, 0, len(s.Products))
		for _, p := range s.Products {
			products = append(products, dto.ProductDTO{
				ProductID:   p.ProductID,
				Name:        p.Name,
				Description: p.Description,
				Price:       p.Price,
				Stock:       p.Stock,
			})
		}
		out = append(out, dto.CatalogSectionDTO{
			CategoryID: s.Category.CategoryID,
			Category:   s.Category.Name,
			Products:   products,
		})
	}
	response.SuccessJSON(w, http.StatusOK, out, "success")
}

// POST /bar/produtos (admin)
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}

	var req dto.CreateProductDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), payload.Role, service.CreateProductInput{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Stock:        req.Stock,
		CategoryName: req.Category,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.SuccessJSON(w, http.StatusCreated, dto.ProductDTO{
		ProductID:   product.ProductID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
	}, "product created")
}

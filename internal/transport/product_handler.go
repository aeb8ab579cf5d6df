package transport

import (
	"net/http"

	"vendas-escolares/internal/apperror"
	"vendas-escolares/internal/middleware"
	"vendas-escolares/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes mounts the catalog under /produtos and /api/produtos
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	for _, prefix := range []string{"/produtos", "/api/produtos"} {
		r.Route(prefix, func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Get("/{id}", h.Get)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	}
}

// List handles catalog queries: ?search=&categoria=&sort=campo:direcao
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	category := q.Get("categoria")
	if category == "" {
		category = q.Get("category")
	}

	products, err := h.catalog.List(r.Context(), service.ProductQuery{
		Search:   q.Get("search"),
		Category: category,
		Sort:     q.Get("sort"),
	})
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductListResponse(products))
}

// Get handles fetching a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponse(product))
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.catalog.Create(r.Context(), req.toDomain())
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, newProductResponse(product))
}

// Update handles partial product updates
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product update validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.catalog.Update(r.Context(), id, req.toPatch())
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponse(product))
}

// Delete handles product removal
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, apperror.KindValidation, "id de produto inválido")
	}
	return id, ok
}

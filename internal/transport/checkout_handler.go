package transport

import (
	"net/http"

	"vendas-escolares/internal/apperror"
	"vendas-escolares/internal/middleware"
	"vendas-escolares/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutHandler handles cart confirmation and order lookups
type CheckoutHandler struct {
	checkout service.CheckoutService
	logger   *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkout service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		logger:   logger,
	}
}

// RegisterRoutes mounts checkout and order routes, with and without the /api
// prefix. confirmMiddlewares wrap only the confirmation endpoint.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, confirmMiddlewares ...func(http.Handler) http.Handler) {
	for _, prefix := range []string{"", "/api"} {
		r.With(confirmMiddlewares...).Post(prefix+"/carrinho/confirmar", h.Confirm)
		r.Get(prefix+"/pedidos/{id}", h.GetOrder)
	}
}

// Confirm handles POST /carrinho/confirmar
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Checkout validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	order, err := h.checkout.Checkout(r.Context(), service.CheckoutRequest{
		Items:  req.cartItems(),
		Coupon: req.Coupon,
	})
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, newCheckoutResponse(order))
}

// GetOrder handles GET /pedidos/{id}
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, apperror.KindValidation, "id de pedido inválido")
		return
	}

	order, err := h.checkout.GetOrder(r.Context(), id)
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newOrderResponse(order))
}

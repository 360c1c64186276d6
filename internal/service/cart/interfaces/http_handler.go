// internal/service/cart/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/cart/application"
	"bazaar/internal/service/cart/domain"
)

// CartHandler 封装了购物车的 HTTP 处理器
type CartHandler struct {
	service *application.CartService
}

func NewCartHandler(service *application.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
// /healthz 和 /metrics 由同进程的订单处理器注册。
func (h *CartHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/carts/{customerId}", h.getCart)
	mux.HandleFunc("POST /api/v1/carts/{customerId}/items", h.addItem)
	mux.HandleFunc("PUT /api/v1/carts/{customerId}/items/{itemId}", h.updateItem)
	mux.HandleFunc("DELETE /api/v1/carts/{customerId}/items/{itemId}", h.removeItem)
	mux.HandleFunc("DELETE /api/v1/carts/{customerId}", h.clear)
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetCart(extractTraceContext(r), r.PathValue("customerId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID   string `json:"productId"`
		WarehouseID string `json:"warehouseId"`
		Quantity    int64  `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	view, err := h.service.AddItem(extractTraceContext(r), r.PathValue("customerId"), req.ProductID, req.WarehouseID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int64 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	view, err := h.service.UpdateItemQuantity(extractTraceContext(r), r.PathValue("customerId"), r.PathValue("itemId"), req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.RemoveItem(extractTraceContext(r), r.PathValue("customerId"), r.PathValue("itemId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(extractTraceContext(r), r.PathValue("customerId")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func extractTraceContext(r *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuantity):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrOutOfStock):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error().Err(err).Msg("cart request failed")
	}
	http.Error(w, err.Error(), status)
}

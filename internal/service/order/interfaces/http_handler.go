// internal/service/order/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/order/application"
	"bazaar/internal/service/order/domain"

	cartdomain "bazaar/internal/service/cart/domain"
	stockdomain "bazaar/internal/service/stock/domain"
)

// OrderHandler 封装了订单服务的 HTTP 处理器
type OrderHandler struct {
	service *application.OrderApplicationService
}

// NewOrderHandler 创建一个新的 HTTP 处理器实例
func NewOrderHandler(service *application.OrderApplicationService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/v1/orders/checkout", h.checkout)
	mux.HandleFunc("POST /api/v1/orders/checkout-cart", h.checkoutCart)
	mux.HandleFunc("GET /api/v1/orders", h.search)
	mux.HandleFunc("GET /api/v1/orders/{id}", h.getOrder)
	mux.HandleFunc("POST /api/v1/orders/{id}/confirm", h.confirm)
	mux.HandleFunc("POST /api/v1/orders/{id}/process", h.startProcessing)
	mux.HandleFunc("POST /api/v1/orders/{id}/ready", h.markReady)
	mux.HandleFunc("POST /api/v1/orders/{id}/cancel", h.cancel)
	mux.HandleFunc("POST /api/v1/orders/{id}/return", h.returnOrder)
}

func (h *OrderHandler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	var req application.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	view, err := h.service.Checkout(ctx, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *OrderHandler) checkoutCart(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	var req application.CheckoutCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	view, err := h.service.CheckoutCart(ctx, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetOrder(extractTraceContext(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domain.SearchQuery{
		CustomerID: q.Get("customerId"),
		SellerID:   q.Get("sellerId"),
		Status:     domain.Status(q.Get("status")),
		SortDesc:   q.Get("sort") != "asc",
	}
	if v := q.Get("dateFrom"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			query.DateFrom = t
		}
	}
	if v := q.Get("dateTo"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			query.DateTo = t
		}
	}
	query.Page, _ = strconv.Atoi(q.Get("page"))
	query.Limit, _ = strconv.Atoi(q.Get("limit"))

	result, err := h.service.SearchOrders(extractTraceContext(r), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *OrderHandler) confirm(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Confirm(extractTraceContext(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) startProcessing(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.StartProcessing(extractTraceContext(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) markReady(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PickupAddress domain.Address `json:"pickupAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	view, err := h.service.MarkReady(extractTraceContext(r), r.PathValue("id"), req.PickupAddress)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) cancel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	// 取消原因可选，空请求体也接受
	_ = json.NewDecoder(r.Body).Decode(&req)

	view, err := h.service.Cancel(extractTraceContext(r), r.PathValue("id"), req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) returnOrder(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Return(extractTraceContext(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func extractTraceContext(r *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError 把领域错误族翻译为 HTTP 状态码。
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, cartdomain.ErrNotFound),
		errors.Is(err, stockdomain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrReturnWindowClosed):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, stockdomain.ErrInsufficientStock):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrEmptyOrder):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error().Err(err).Msg("order request failed")
	}
	http.Error(w, err.Error(), status)
}

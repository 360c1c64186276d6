// internal/service/stock/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/stock/application"
	"bazaar/internal/service/stock/domain"
)

// StockHandler 暴露库存侧的查询与运营接口。
// 预占/提交/释放不走 HTTP——它们只被订单引擎进程内调用。
type StockHandler struct {
	ledger *application.LedgerService
}

func NewStockHandler(ledger *application.LedgerService) *StockHandler {
	return &StockHandler{ledger: ledger}
}

func (h *StockHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/stock/{productId}/{warehouseId}", h.availability)
	mux.HandleFunc("PUT /api/v1/stock/{productId}/{warehouseId}", h.adjust)
	mux.HandleFunc("POST /api/v1/stock/{productId}/{warehouseId}/restock", h.restock)
}

func (h *StockHandler) availability(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)
	available, err := h.ledger.Availability(ctx, r.PathValue("productId"), r.PathValue("warehouseId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"productId":   r.PathValue("productId"),
		"warehouseId": r.PathValue("warehouseId"),
		"available":   available,
	})
}

// adjust 把实物库存设置为盘点后的绝对值。
func (h *StockHandler) adjust(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int64 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	ctx := extractTraceContext(r)
	if err := h.ledger.AdjustStock(ctx, r.PathValue("productId"), r.PathValue("warehouseId"), req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// restock 增量入库。
func (h *StockHandler) restock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int64 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	ctx := extractTraceContext(r)
	if err := h.ledger.Restock(ctx, r.PathValue("productId"), r.PathValue("warehouseId"), req.Quantity); err != nil {
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
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidState):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error().Err(err).Msg("stock request failed")
	}
	http.Error(w, err.Error(), status)
}

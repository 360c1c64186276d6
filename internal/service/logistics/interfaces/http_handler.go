// internal/service/logistics/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/logistics/application"
	"bazaar/internal/service/logistics/domain"
)

// DeliveryHandler 封装了物流服务的 HTTP 处理器
type DeliveryHandler struct {
	service *application.DeliveryCoordinator
}

// NewDeliveryHandler 创建一个新的 HTTP 处理器实例
func NewDeliveryHandler(service *application.DeliveryCoordinator) *DeliveryHandler {
	return &DeliveryHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *DeliveryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/v1/deliveries", h.createDelivery)
	mux.HandleFunc("GET /api/v1/deliveries/{id}", h.getDelivery)
	mux.HandleFunc("POST /api/v1/deliveries/{id}/assign", h.assignCarrier)
	mux.HandleFunc("POST /api/v1/deliveries/{id}/advance", h.advanceStatus)
	mux.HandleFunc("POST /api/v1/deliveries/{id}/fail", h.failDelivery)
	mux.HandleFunc("POST /api/v1/deliveries/{id}/cancel", h.cancelDelivery)
	mux.HandleFunc("POST /api/v1/deliveries/{id}/location", h.reportLocation)
	mux.HandleFunc("GET /api/v1/deliveries/{id}/locations", h.locationHistory)

	mux.HandleFunc("POST /api/v1/carriers", h.registerCarrier)
	mux.HandleFunc("GET /api/v1/carriers", h.listCarriers)
	mux.HandleFunc("POST /api/v1/carriers/{id}/availability", h.setAvailability)
}

type createDeliveryRequest struct {
	OrderID         string         `json:"orderId"`
	PickupAddress   domain.Address `json:"pickupAddress"`
	DeliveryAddress domain.Address `json:"deliveryAddress"`
	Currency        string         `json:"currency"`
}

func (h *DeliveryHandler) createDelivery(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	var req createDeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	delivery, err := h.service.CreateDelivery(ctx, req.OrderID, req.PickupAddress, req.DeliveryAddress, req.Currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, deliveryView(delivery))
}

func (h *DeliveryHandler) getDelivery(w http.ResponseWriter, r *http.Request) {
	delivery, err := h.service.GetDelivery(extractTraceContext(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deliveryView(delivery))
}

type assignCarrierRequest struct {
	CarrierID         string    `json:"carrierId"`
	EstimatedPickup   time.Time `json:"estimatedPickup"`
	EstimatedDelivery time.Time `json:"estimatedDelivery"`
	Cost              float64   `json:"cost"`
}

func (h *DeliveryHandler) assignCarrier(w http.ResponseWriter, r *http.Request) {
	var req assignCarrierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	delivery, err := h.service.AssignCarrier(extractTraceContext(r), r.PathValue("id"),
		req.CarrierID, req.EstimatedPickup, req.EstimatedDelivery, req.Cost)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deliveryView(delivery))
}

func (h *DeliveryHandler) advanceStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	delivery, err := h.service.AdvanceStatus(extractTraceContext(r), r.PathValue("id"), domain.Status(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deliveryView(delivery))
}

func (h *DeliveryHandler) failDelivery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	delivery, err := h.service.Fail(extractTraceContext(r), r.PathValue("id"), req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deliveryView(delivery))
}

func (h *DeliveryHandler) cancelDelivery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason         string `json:"reason"`
		OrderCancelled bool   `json:"orderCancelled"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	delivery, err := h.service.CancelDelivery(extractTraceContext(r), r.PathValue("id"), req.Reason, req.OrderCancelled)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deliveryView(delivery))
}

func (h *DeliveryHandler) reportLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Note      string  `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.service.ReportLocation(extractTraceContext(r), r.PathValue("id"), req.Latitude, req.Longitude, req.Note); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *DeliveryHandler) locationHistory(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.LocationHistory(extractTraceContext(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *DeliveryHandler) registerCarrier(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Vehicle string `json:"vehicle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	carrier, err := h.service.RegisterCarrier(extractTraceContext(r), req.Name, req.Phone, req.Vehicle)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, carrier)
}

func (h *DeliveryHandler) listCarriers(w http.ResponseWriter, r *http.Request) {
	carriers, err := h.service.ListCarriers(extractTraceContext(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, carriers)
}

func (h *DeliveryHandler) setAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.service.SetCarrierAvailability(extractTraceContext(r), r.PathValue("id"), req.Available); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deliveryView 是配送单的对外 JSON 视图。
type deliveryViewBody struct {
	DeliveryID        string         `json:"deliveryId"`
	OrderID           string         `json:"orderId"`
	CarrierID         string         `json:"carrierId,omitempty"`
	Status            domain.Status  `json:"status"`
	PickupAddress     domain.Address `json:"pickupAddress"`
	DeliveryAddress   domain.Address `json:"deliveryAddress"`
	EstimatedPickup   *time.Time     `json:"estimatedPickup,omitempty"`
	EstimatedDelivery *time.Time     `json:"estimatedDelivery,omitempty"`
	ActualPickup      *time.Time     `json:"actualPickup,omitempty"`
	ActualDelivery    *time.Time     `json:"actualDelivery,omitempty"`
	Cost              float64        `json:"cost"`
	Currency          string         `json:"currency"`
	Notes             string         `json:"notes,omitempty"`
	CancelReason      string         `json:"cancelReason,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

func deliveryView(delivery *domain.Delivery) *deliveryViewBody {
	return &deliveryViewBody{
		DeliveryID:        delivery.ID,
		OrderID:           delivery.OrderID,
		CarrierID:         delivery.CarrierID,
		Status:            delivery.Status,
		PickupAddress:     delivery.PickupAddress,
		DeliveryAddress:   delivery.DeliveryAddress,
		EstimatedPickup:   delivery.EstimatedPickup,
		EstimatedDelivery: delivery.EstimatedDelivery,
		ActualPickup:      delivery.ActualPickup,
		ActualDelivery:    delivery.ActualDelivery,
		Cost:              delivery.Cost,
		Currency:          delivery.Currency,
		Notes:             delivery.Notes,
		CancelReason:      delivery.CancelReason,
		CreatedAt:         delivery.CreatedAt,
		UpdatedAt:         delivery.UpdatedAt,
	}
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
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrCarrierUnavailable):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error().Err(err).Msg("logistics request failed")
	}
	http.Error(w, err.Error(), status)
}

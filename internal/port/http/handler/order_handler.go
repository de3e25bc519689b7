package handler

import (
	"encoding/json"
	"net/http"

	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/port/http/middleware"
	"github.com/MaheshMoholkar/ignite-lms/internal/service"
)

type OrderHandler struct {
	orders service.OrderService
	log    logger.Logger
}

func NewOrderHandler(orders service.OrderService, log logger.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

type createOrderRequest struct {
	CourseID    string                 `json:"courseId"`
	PaymentInfo map[string]interface{} `json:"paymentInfo"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, service.ErrValidation)
		return
	}

	order, err := h.orders.Enroll(r.Context(), user.ID.Hex(), req.CourseID, req.PaymentInfo)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

package handler

import (
	"net/http"

	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/service"
)

type AnalyticsHandler struct {
	analytics service.AnalyticsService
	log       logger.Logger
}

func NewAnalyticsHandler(analytics service.AnalyticsService, log logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, log: log}
}

func (h *AnalyticsHandler) Users(w http.ResponseWriter, r *http.Request) {
	data, err := h.analytics.UsersLast12Months(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"last12Months": data})
}

func (h *AnalyticsHandler) Courses(w http.ResponseWriter, r *http.Request) {
	data, err := h.analytics.CoursesLast12Months(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"last12Months": data})
}

func (h *AnalyticsHandler) Orders(w http.ResponseWriter, r *http.Request) {
	data, err := h.analytics.OrdersLast12Months(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"last12Months": data})
}

func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Stats(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

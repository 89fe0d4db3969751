package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PaulPerea/paymentorder/internal/payment/application"
)

// Handler exposes the read-only ops surface: liveness, the persisted
// transaction count, and prometheus metrics.
type Handler struct {
	log *slog.Logger
	svc *application.Service
}

func NewHandler(log *slog.Logger, svc *application.Service) *Handler {
	return &Handler{log: log, svc: svc}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/health", h.health)
	r.Get("/api/health/transactions/count", h.transactionCount)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *Handler) transactionCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.TransactionCount(r.Context())
	if err != nil {
		h.log.Error("transaction count failed", "err", err)
		http.Error(w, "count unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int64{"count": count})
}

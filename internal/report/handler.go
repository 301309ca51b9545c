package report

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Poorani-S/pettycash-backend/internal/auth"
	"github.com/Poorani-S/pettycash-backend/internal/transport"
	"github.com/Poorani-S/pettycash-backend/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// TransactionsPDF streams the transaction report as a PDF download.
// @Summary Transaction report as PDF
// @Tags reports
// @Produce application/pdf
// @Security BearerAuth
// @Router /reports/transactions.pdf [get]
func (h *Handler) TransactionsPDF(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	rpt, err := h.Service.BuildTransactionReport(principal, parseFilters(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	data, err := RenderPDF(rpt)
	if err != nil {
		h.Logger.Error("failed to render pdf report", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	writeDownload(w, data, "application/pdf", reportFilename("transactions", "pdf"))
}

// TransactionsCSV streams the transaction report as a CSV download.
// @Summary Transaction report as CSV
// @Tags reports
// @Produce text/csv
// @Security BearerAuth
// @Router /reports/transactions.csv [get]
func (h *Handler) TransactionsCSV(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	rpt, err := h.Service.BuildTransactionReport(principal, parseFilters(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	data, err := RenderCSV(rpt)
	if err != nil {
		h.Logger.Error("failed to render csv report", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	writeDownload(w, data, "text/csv", reportFilename("transactions", "csv"))
}

// LoginActivityCSV streams login attempts as a CSV download.
// @Summary Login activity as CSV
// @Tags reports
// @Produce text/csv
// @Security BearerAuth
// @Router /reports/login-activity.csv [get]
func (h *Handler) LoginActivityCSV(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	filters := parseFilters(r)
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	rows, err := h.Service.LoginActivity(principal, filters.DateFrom, filters.DateTo, limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	data, err := RenderLoginActivityCSV(rows)
	if err != nil {
		h.Logger.Error("failed to render login activity csv", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	writeDownload(w, data, "text/csv", reportFilename("login-activity", "csv"))
}

func parseFilters(r *http.Request) Filters {
	q := r.URL.Query()
	filters := Filters{Status: q.Get("status")}
	if v := q.Get("category_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.CategoryID = id
		}
	}
	if v := q.Get("date_from"); v != "" {
		if t, err := time.Parse(dateLayout, v); err == nil {
			filters.DateFrom = &t
		}
	}
	if v := q.Get("date_to"); v != "" {
		if t, err := time.Parse(dateLayout, v); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			filters.DateTo = &end
		}
	}
	return filters
}

func reportFilename(prefix, ext string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, time.Now().Format("20060102"), ext)
}

func writeDownload(w http.ResponseWriter, data []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

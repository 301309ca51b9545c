package audit

import (
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

// GetAuditLogs lists audit trail entries.
// @Summary List audit logs
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Router /audit/logs [get]
func (h *Handler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	q := r.URL.Query()
	filters := ListFilters{Action: q.Get("action")}
	if v := q.Get("performed_by"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.PerformedBy = id
		}
	}
	filters.From, filters.To = parseDateRange(q.Get("from"), q.Get("to"))
	filters.Limit, filters.Offset = parsePagination(q.Get("limit"), q.Get("offset"))

	logs, err := h.Service.AuditLogs(principal, filters)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"audit_logs": logs})
}

// GetLoginActivity lists login attempts.
// @Summary List login activity
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Router /audit/login-activity [get]
func (h *Handler) GetLoginActivity(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	q := r.URL.Query()
	filters := LoginActivityFilters{Status: q.Get("status")}
	if v := q.Get("user_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.UserID = id
		}
	}
	filters.From, filters.To = parseDateRange(q.Get("from"), q.Get("to"))
	filters.Limit, filters.Offset = parsePagination(q.Get("limit"), q.Get("offset"))

	activity, err := h.Service.LoginActivity(principal, filters)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"login_activity": activity})
}

// GetUserActivity lists user management actions.
// @Summary List user activity
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Router /audit/user-activity [get]
func (h *Handler) GetUserActivity(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	q := r.URL.Query()
	var filters UserActivityFilters
	if v := q.Get("target_user_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.TargetUserID = id
		}
	}
	filters.Limit, filters.Offset = parsePagination(q.Get("limit"), q.Get("offset"))

	activity, err := h.Service.UserActivity(principal, filters)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"user_activity": activity})
}

func parseDateRange(fromStr, toStr string) (*time.Time, *time.Time) {
	var from, to *time.Time
	if fromStr != "" {
		if t, err := time.Parse("2006-01-02", fromStr); err == nil {
			from = &t
		}
	}
	if toStr != "" {
		if t, err := time.Parse("2006-01-02", toStr); err == nil {
			// inclusive end of day
			end := t.Add(24*time.Hour - time.Nanosecond)
			to = &end
		}
	}
	return from, to
}

func parsePagination(limitStr, offsetStr string) (int, int) {
	limit, _ := strconv.Atoi(limitStr)
	offset, _ := strconv.Atoi(offsetStr)
	return limit, offset
}

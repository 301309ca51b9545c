package ledger

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

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

// GetBalances lists all ledger accounts.
// @Summary List balances
// @Tags balances
// @Produce json
// @Security BearerAuth
// @Router /balances [get]
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.Service.GetBalances(r.Context())
	if err != nil {
		h.Logger.Error("failed to list balances", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"balances": balances})
}

// GetBalance returns one ledger account.
// @Summary Get balance by account type
// @Tags balances
// @Produce json
// @Security BearerAuth
// @Param accountType path string true "account type"
// @Router /balances/{accountType} [get]
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountType := chi.URLParam(r, "accountType")

	balance, err := h.Service.GetBalance(r.Context(), accountType)
	if err != nil {
		h.Logger.Error("failed to get balance", "error", err, "account_type", accountType)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, balance)
}

// GetAvailable returns the balance net of committed in-flight spend.
// @Summary Get available balance
// @Tags balances
// @Produce json
// @Security BearerAuth
// @Param accountType path string true "account type"
// @Router /balances/{accountType}/available [get]
func (h *Handler) GetAvailable(w http.ResponseWriter, r *http.Request) {
	accountType := chi.URLParam(r, "accountType")

	available, err := h.Service.CurrentAvailable(r.Context(), accountType)
	if err != nil {
		h.Logger.Error("failed to compute available balance", "error", err, "account_type", accountType)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"account_type": accountType,
		"available":    available,
	})
}

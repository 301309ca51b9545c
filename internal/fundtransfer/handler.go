package fundtransfer

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

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

// CreateFundTransfer records an incoming transfer and credits the ledger.
// @Summary Record fund transfer
// @Tags fund-transfers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param transfer body CreateFundTransferDTO true "transfer"
// @Router /fund-transfers [post]
func (h *Handler) CreateFundTransfer(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var dto CreateFundTransferDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transfer, err := h.Service.Create(r.Context(), principal, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, transfer)
}

// GetFundTransfers lists transfers.
// @Summary List fund transfers
// @Tags fund-transfers
// @Produce json
// @Security BearerAuth
// @Router /fund-transfers [get]
func (h *Handler) GetFundTransfers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	transfers, err := h.Service.List(r.Context(), limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"fund_transfers": transfers})
}

// GetFundTransfer returns one transfer.
// @Summary Get fund transfer
// @Tags fund-transfers
// @Produce json
// @Security BearerAuth
// @Param id path int true "transfer id"
// @Router /fund-transfers/{id} [get]
func (h *Handler) GetFundTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid transfer id")
		return
	}

	transfer, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, transfer)
}

// DeleteFundTransfer soft-deletes a transfer. Admin only.
// @Summary Delete fund transfer
// @Tags fund-transfers
// @Security BearerAuth
// @Param id path int true "transfer id"
// @Router /fund-transfers/{id} [delete]
func (h *Handler) DeleteFundTransfer(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid transfer id")
		return
	}

	if err := h.Service.Delete(r.Context(), principal, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

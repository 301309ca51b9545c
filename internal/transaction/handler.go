package transaction

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/Poorani-S/pettycash-backend/internal/auth"
	"github.com/Poorani-S/pettycash-backend/internal/transport"
	"github.com/Poorani-S/pettycash-backend/pkg/logger"
)

// FileStorer persists uploaded documents and returns a storable reference.
type FileStorer interface {
	Save(category, filename string, size int64, src io.Reader) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service *Service
	Files   FileStorer
}

func NewHandler(svc *Service, files FileStorer) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Files:       files,
	}
}

// CreateTransaction creates a new petty cash transaction.
// @Summary Create transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param transaction body CreateTransactionDTO true "transaction"
// @Router /transactions [post]
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var dto CreateTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.Create(r.Context(), principal, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, t)
}

// GetTransactions lists transactions visible to the caller.
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Router /transactions [get]
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	filters := parseListFilters(r)
	items, total, err := h.Service.List(r.Context(), principal, filters)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": items,
		"total":        total,
		"limit":        filters.Limit,
		"offset":       filters.Offset,
	})
}

// GetTransaction returns one transaction.
// @Summary Get transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "transaction id"
// @Router /transactions/{id} [get]
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	t, err := h.Service.Get(r.Context(), principal, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

// UpdateTransaction edits a draft.
// @Summary Update draft transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "transaction id"
// @Router /transactions/{id} [patch]
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	var dto UpdateTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.Update(r.Context(), principal, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

// SubmitTransaction moves a draft into review.
// @Summary Submit transaction for approval
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "transaction id"
// @Router /transactions/{id}/submit [patch]
func (h *Handler) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	t, err := h.Service.Submit(r.Context(), principal, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

// ApproveTransaction approves and debits the ledger.
// @Summary Approve transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "transaction id"
// @Router /transactions/{id}/approve [patch]
func (h *Handler) ApproveTransaction(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	t, err := h.Service.Approve(r.Context(), principal, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

// RejectTransaction rejects with a mandatory comment.
// @Summary Reject transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "transaction id"
// @Router /transactions/{id}/reject [patch]
func (h *Handler) RejectTransaction(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	var dto RejectTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.Reject(r.Context(), principal, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

// RequestTransactionInfo sends a transaction back for clarification.
// @Summary Request more information
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "transaction id"
// @Router /transactions/{id}/request-info [patch]
func (h *Handler) RequestTransactionInfo(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	var dto RequestInfoDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.RequestInfo(r.Context(), principal, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

// ResubmitTransaction loops an info-requested transaction back into review.
// @Summary Resubmit transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "transaction id"
// @Router /transactions/{id}/resubmit [patch]
func (h *Handler) ResubmitTransaction(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	var dto ResubmitTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.Resubmit(r.Context(), principal, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

// PayTransaction records payment on an approved transaction.
// @Summary Record payment
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "transaction id"
// @Router /transactions/{id}/pay [patch]
func (h *Handler) PayTransaction(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	t, err := h.Service.Pay(r.Context(), principal, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

// DeleteTransaction removes a transaction. Admin only.
// @Summary Delete transaction
// @Tags transactions
// @Security BearerAuth
// @Param id path int true "transaction id"
// @Router /transactions/{id} [delete]
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), principal, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadInvoice attaches an invoice document to the transaction.
// @Summary Upload invoice
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "transaction id"
// @Param file formData file true "invoice file"
// @Router /transactions/{id}/invoice [post]
func (h *Handler) UploadInvoice(w http.ResponseWriter, r *http.Request) {
	h.uploadDocument(w, r, "invoices", h.Service.AttachInvoice)
}

// UploadPaymentProof attaches a payment proof document.
// @Summary Upload payment proof
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "transaction id"
// @Param file formData file true "payment proof file"
// @Router /transactions/{id}/payment-proof [post]
func (h *Handler) UploadPaymentProof(w http.ResponseWriter, r *http.Request) {
	h.uploadDocument(w, r, "payment-proofs", h.Service.AttachPaymentProof)
}

func (h *Handler) uploadDocument(w http.ResponseWriter, r *http.Request, category string,
	attach func(ctx context.Context, principal *auth.Principal, id int64, path string) error) {
	principal, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	path, err := h.Files.Save(category, header.Filename, header.Size, file)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := attach(r.Context(), principal, id, path); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"path": path})
}

// maxUploadMemory bounds how much of a multipart body is buffered in memory.
const maxUploadMemory = 8 << 20

func (h *Handler) principalAndID(w http.ResponseWriter, r *http.Request) (*auth.Principal, int64, bool) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return nil, 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid transaction id")
		return nil, 0, false
	}
	return principal, id, true
}

func parseListFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	filters := ListFilters{
		Status:        q.Get("status"),
		PaymentMethod: q.Get("payment_method"),
	}
	if v := q.Get("category_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.CategoryID = id
		}
	}
	if v := q.Get("submitted_by"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.SubmittedBy = id
		}
	}
	if v := q.Get("date_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filters.DateFrom = &t
		}
	}
	if v := q.Get("date_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filters.DateTo = &t
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filters.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filters.Offset = n
		}
	}
	return filters
}

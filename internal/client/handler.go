package client

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/Poorani-S/pettycash-backend/internal/auth"
	"github.com/Poorani-S/pettycash-backend/internal/transport"
)

type ServiceAPI interface {
	List(filters ListFilters) ([]Client, error)
	GetByID(id int64) (*Client, error)
	Create(principal *auth.Principal, dto CreateClientDTO) (*Client, error)
	Update(principal *auth.Principal, id int64, dto UpdateClientDTO) (*Client, error)
	Delete(principal *auth.Principal, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetClients lists clients, optionally filtered by search term, category or
// active flag.
// @Summary List clients
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param search query string false "match name or GST number"
// @Param category query string false "client category"
// @Param is_active query bool false "active flag"
// @Router /clients [get]
func (h *Handler) GetClients(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
	}
	if raw := r.URL.Query().Get("is_active"); raw != "" {
		active := raw == "true"
		filters.IsActive = &active
	}

	clients, err := h.Service.List(filters)
	if err != nil {
		h.Logger.Error("GetClients: failed to list clients", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list clients")
		return
	}

	h.WriteJSON(w, http.StatusOK, ClientsResponse{Clients: clients, Count: len(clients)})
}

// GetClient returns one client.
// @Summary Get client
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param id path int true "client id"
// @Router /clients/{id} [get]
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	c, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

// CreateClient registers a payee.
// @Summary Create client
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param client body CreateClientDTO true "client"
// @Router /clients [post]
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var dto CreateClientDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.Create(principal, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

// UpdateClient edits a client.
// @Summary Update client
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "client id"
// @Router /clients/{id} [patch]
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	var dto UpdateClientDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.Update(principal, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

// DeleteClient removes a client.
// @Summary Delete client
// @Tags clients
// @Security BearerAuth
// @Param id path int true "client id"
// @Router /clients/{id} [delete]
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	if err := h.Service.Delete(principal, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/bats-attribution/internal/adapters/sheets"
	"github.com/eshaffer321/bats-attribution/internal/api/dto"
	"github.com/eshaffer321/bats-attribution/internal/application/reconcile"
	"github.com/eshaffer321/bats-attribution/internal/domain/table"
)

// SessionsHandler handles the working-session endpoints.
type SessionsHandler struct {
	*Base
	store       *reconcile.SessionStore
	service     *reconcile.Service
	previewRows int
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(store *reconcile.SessionStore, svc *reconcile.Service, previewRows int, logger *slog.Logger, maxUploadBytes int64) *SessionsHandler {
	return &SessionsHandler{
		Base:        NewBase(logger, maxUploadBytes),
		store:       store,
		service:     svc,
		previewRows: previewRows,
	}
}

// Create handles POST /api/sessions.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := h.store.Create()
	h.WriteJSON(w, http.StatusCreated, toSessionResponse(sess, h.previewRows))
}

// Get handles GET /api/sessions/{id}. ?preview=N overrides the preview size.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	preview := ParseIntParam(r, "preview", h.previewRows)
	h.WriteJSON(w, http.StatusOK, toSessionResponse(sess, preview))
}

// Delete handles DELETE /api/sessions/{id}.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(chi.URLParam(r, "id")); err != nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("session"))
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "session deleted"})
}

// PutLeads handles PUT /api/sessions/{id}/leads.
func (h *SessionsHandler) PutLeads(w http.ResponseWriter, r *http.Request) {
	h.load(w, r, sheets.Options{Header: sheets.HeaderLeads}, (*reconcile.Session).SetLeads)
}

// PutSales handles PUT /api/sessions/{id}/sales.
func (h *SessionsHandler) PutSales(w http.ResponseWriter, r *http.Request) {
	h.load(w, r, sheets.Options{Header: sheets.HeaderFirstRow}, (*reconcile.Session).SetSales)
}

func (h *SessionsHandler) load(w http.ResponseWriter, r *http.Request, opts sheets.Options, set func(*reconcile.Session, *table.Table, string)) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	t, name, err := h.BodyTable(w, r, opts)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}
	set(sess, t, name)

	h.logger.Info("dataset loaded", "session_id", sess.ID, "name", name, "rows", t.Len(), "columns", len(t.Columns))
	h.WriteJSON(w, http.StatusOK, toDatasetResponse(name, t, h.previewRows))
}

// Process handles POST /api/sessions/{id}/process.
func (h *SessionsHandler) Process(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	res, err := sess.Process(r.Context(), h.service)
	if err != nil {
		h.WriteRunError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, toResultResponse(res))
}

// Result handles GET /api/sessions/{id}/result.
func (h *SessionsHandler) Result(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	res := sess.Result()
	if res == nil {
		h.WriteError(w, http.StatusConflict, dto.NotProcessedError())
		return
	}
	h.WriteJSON(w, http.StatusOK, toResultResponse(res))
}

// Export handles GET /api/sessions/{id}/export.
func (h *SessionsHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	res := sess.Result()
	if res == nil {
		h.WriteError(w, http.StatusConflict, dto.NotProcessedError())
		return
	}
	h.WriteWorkbook(w, res)
}

func (h *SessionsHandler) session(w http.ResponseWriter, r *http.Request) (*reconcile.Session, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("session ID is required"))
		return nil, false
	}

	sess, err := h.store.Get(id)
	if err != nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("session"))
		return nil, false
	}
	return sess, true
}

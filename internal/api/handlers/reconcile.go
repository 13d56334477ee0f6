package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eshaffer321/bats-attribution/internal/adapters/sheets"
	"github.com/eshaffer321/bats-attribution/internal/api/dto"
	"github.com/eshaffer321/bats-attribution/internal/application/reconcile"
)

// ReconcileHandler runs one-shot reconciliations over uploaded files.
type ReconcileHandler struct {
	*Base
	service *reconcile.Service
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(svc *reconcile.Service, logger *slog.Logger, maxUploadBytes int64) *ReconcileHandler {
	return &ReconcileHandler{
		Base:    NewBase(logger, maxUploadBytes),
		service: svc,
	}
}

// Run handles POST /api/reconcile - multipart "leads" and optional "sales".
// With ?format=xlsx the workbook is returned instead of JSON.
func (h *ReconcileHandler) Run(w http.ResponseWriter, r *http.Request) {
	if err := h.ParseMultipart(w, r); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	leads, _, ok, err := h.FormTable(r, dto.FieldLeads, sheets.Options{Header: sheets.HeaderLeads})
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}
	if !ok {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("leads file is required"))
		return
	}

	sales, _, _, err := h.FormTable(r, dto.FieldSales, sheets.Options{Header: sheets.HeaderFirstRow})
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	res, err := h.service.Run(r.Context(), reconcile.Input{Leads: leads, Sales: sales})
	if err != nil {
		h.WriteRunError(w, err)
		return
	}

	if r.URL.Query().Get(dto.ParamFormat) == dto.FormatXLSX {
		h.WriteWorkbook(w, res)
		return
	}
	h.WriteJSON(w, http.StatusOK, toResultResponse(res))
}

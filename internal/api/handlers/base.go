package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/eshaffer321/bats-attribution/internal/adapters/sheets"
	"github.com/eshaffer321/bats-attribution/internal/api/dto"
	"github.com/eshaffer321/bats-attribution/internal/application/reconcile"
	"github.com/eshaffer321/bats-attribution/internal/domain/matcher"
	"github.com/eshaffer321/bats-attribution/internal/domain/report"
	"github.com/eshaffer321/bats-attribution/internal/domain/table"
)

// DefaultMaxUploadBytes caps request bodies when no limit is configured.
const DefaultMaxUploadBytes = 32 << 20

// Base provides shared functionality for all handlers.
type Base struct {
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewBase creates a base handler. maxUploadBytes <= 0 uses the default.
func NewBase(logger *slog.Logger, maxUploadBytes int64) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Base{logger: logger, maxUploadBytes: maxUploadBytes}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// WriteRunError maps a reconcile failure to a response.
func (b *Base) WriteRunError(w http.ResponseWriter, err error) {
	var missing *matcher.MissingColumnsError
	var empty *report.EmptySourceError

	switch {
	case errors.As(err, &missing):
		b.WriteError(w, http.StatusUnprocessableEntity, dto.MissingColumnsError(missing.Error(), missing.Roles))
	case errors.As(err, &empty):
		b.WriteError(w, http.StatusUnprocessableEntity, dto.NoReportError(empty.Error()))
	case errors.Is(err, reconcile.ErrNoLeads):
		b.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
	default:
		b.logger.Error("reconcile failed", "error", err)
		b.WriteError(w, http.StatusInternalServerError, dto.InternalError())
	}
}

// WriteWorkbook streams the result as an XLSX attachment.
func (b *Base) WriteWorkbook(w http.ResponseWriter, res *reconcile.Result) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "bats-report-"+res.StartedAt.Format("20060102-150405")+".xlsx"))
	if err := res.WriteWorkbook(w); err != nil {
		b.logger.Error("write workbook failed", "run_id", res.RunID, "error", err)
	}
}

// ParseMultipart parses a multipart body within the upload limit.
func (b *Base) ParseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, b.maxUploadBytes)
	if err := r.ParseMultipartForm(b.maxUploadBytes); err != nil {
		return fmt.Errorf("invalid multipart upload: %w", err)
	}
	return nil
}

// FormTable reads a spreadsheet from a parsed multipart form. ok is false
// when the field is absent.
func (b *Base) FormTable(r *http.Request, field string, opts sheets.Options) (t *table.Table, name string, ok bool, err error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("read %s upload: %w", field, err)
	}
	defer file.Close()

	t, err = sheets.Read(file, header.Filename, opts)
	if err != nil {
		return nil, "", true, fmt.Errorf("%s: %w", field, err)
	}
	return t, header.Filename, true, nil
}

// BodyTable reads a dataset from either a multipart "file" field or a raw
// body of pasted spreadsheet text.
func (b *Base) BodyTable(w http.ResponseWriter, r *http.Request, opts sheets.Options) (*table.Table, string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := b.ParseMultipart(w, r); err != nil {
			return nil, "", err
		}
		t, name, ok, err := b.FormTable(r, dto.FieldFile, opts)
		if err != nil {
			return nil, "", err
		}
		if !ok {
			return nil, "", fmt.Errorf("multipart field %q is required", dto.FieldFile)
		}
		return t, name, nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, b.maxUploadBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	t, err := sheets.ParsePasted(string(body))
	if err != nil {
		return nil, "", err
	}
	name := r.URL.Query().Get(dto.ParamName)
	if name == "" {
		name = "pasted"
	}
	return t, name, nil
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/bats-attribution/internal/api/dto"
	"github.com/eshaffer321/bats-attribution/internal/api/handlers"
	"github.com/eshaffer321/bats-attribution/internal/application/reconcile"
	"github.com/eshaffer321/bats-attribution/internal/infrastructure/logging"
)

func newSessionsHandler() (*handlers.SessionsHandler, *reconcile.SessionStore) {
	store := reconcile.NewSessionStore(time.Hour, nil, logging.Discard())
	return handlers.NewSessionsHandler(store, newService(), 2, logging.Discard(), 0), store
}

func sessionRequest(method, target, id, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(setChiURLParam(req.Context(), "id", id))
}

func TestSessionsHandler_Create(t *testing.T) {
	handler, store := newSessionsHandler()

	rec := httptest.NewRecorder()
	handler.Create(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var response dto.SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.NotEmpty(t, response.ID)
	assert.False(t, response.Processed)
	assert.Nil(t, response.Leads)
	assert.Equal(t, 1, store.Len())
}

func TestSessionsHandler_Get(t *testing.T) {
	t.Run("returns session with dataset previews", func(t *testing.T) {
		handler, store := newSessionsHandler()
		sess := store.Create()

		rec := httptest.NewRecorder()
		handler.PutLeads(rec, sessionRequest(http.MethodPut, "/leads?name=bats", sess.ID, leadsCSV))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = httptest.NewRecorder()
		handler.Get(rec, sessionRequest(http.MethodGet, "/", sess.ID, ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.SessionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		require.NotNil(t, response.Leads)
		assert.Equal(t, "bats", response.Leads.Name)
		assert.Equal(t, 3, response.Leads.Rows)
		assert.Len(t, response.Leads.Preview, 2)
		assert.Nil(t, response.Sales)
	})

	t.Run("preview query overrides default", func(t *testing.T) {
		handler, store := newSessionsHandler()
		sess := store.Create()
		handler.PutLeads(httptest.NewRecorder(), sessionRequest(http.MethodPut, "/leads", sess.ID, leadsCSV))

		rec := httptest.NewRecorder()
		handler.Get(rec, sessionRequest(http.MethodGet, "/?preview=1", sess.ID, ""))

		var response dto.SessionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Len(t, response.Leads.Preview, 1)
	})

	t.Run("returns 404 for unknown session", func(t *testing.T) {
		handler, _ := newSessionsHandler()

		rec := httptest.NewRecorder()
		handler.Get(rec, sessionRequest(http.MethodGet, "/", "nope", ""))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var response dto.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, dto.ErrCodeNotFound, response.Code)
	})
}

func TestSessionsHandler_Delete(t *testing.T) {
	handler, store := newSessionsHandler()
	sess := store.Create()

	rec := httptest.NewRecorder()
	handler.Delete(rec, sessionRequest(http.MethodDelete, "/", sess.ID, ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, store.Len())

	rec = httptest.NewRecorder()
	handler.Delete(rec, sessionRequest(http.MethodDelete, "/", sess.ID, ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionsHandler_PutSales(t *testing.T) {
	t.Run("accepts pasted tab separated text", func(t *testing.T) {
		handler, store := newSessionsHandler()
		sess := store.Create()
		pasted := "Order ID\tName\tAgent\tDeposit\nO1\tAnn\tx\t$1,000\n"

		rec := httptest.NewRecorder()
		handler.PutSales(rec, sessionRequest(http.MethodPut, "/sales", sess.ID, pasted))

		require.Equal(t, http.StatusOK, rec.Code)
		var response dto.DatasetResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "pasted", response.Name)
		assert.Equal(t, []string{"Order ID", "Name", "Agent", "Deposit"}, response.Columns)
		assert.Equal(t, 1, response.Rows)
	})

	t.Run("accepts a multipart file", func(t *testing.T) {
		handler, store := newSessionsHandler()
		sess := store.Create()
		body, contentType := multipartBody(t, upload{field: "file", filename: "sales.csv", content: salesCSV})

		req := httptest.NewRequest(http.MethodPut, "/sales", body)
		req.Header.Set("Content-Type", contentType)
		req = req.WithContext(setChiURLParam(req.Context(), "id", sess.ID))
		rec := httptest.NewRecorder()
		handler.PutSales(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var response dto.DatasetResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "sales.csv", response.Name)
		assert.Equal(t, 2, response.Rows)
	})

	t.Run("rejects empty paste", func(t *testing.T) {
		handler, store := newSessionsHandler()
		sess := store.Create()

		rec := httptest.NewRecorder()
		handler.PutSales(rec, sessionRequest(http.MethodPut, "/sales", sess.ID, "   "))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSessionsHandler_ProcessAndExport(t *testing.T) {
	// Arrange
	handler, store := newSessionsHandler()
	sess := store.Create()
	handler.PutLeads(httptest.NewRecorder(), sessionRequest(http.MethodPut, "/leads", sess.ID, leadsCSV))
	handler.PutSales(httptest.NewRecorder(), sessionRequest(http.MethodPut, "/sales", sess.ID, salesCSV))

	// Export before processing is refused
	rec := httptest.NewRecorder()
	handler.Export(rec, sessionRequest(http.MethodGet, "/export", sess.ID, ""))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Act
	rec = httptest.NewRecorder()
	handler.Process(rec, sessionRequest(http.MethodPost, "/process", sess.ID, ""))

	// Assert
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response dto.ResultResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.True(t, response.SalesLoaded)
	assert.InDelta(t, 1000.0, response.Totals.Deposits, 0.001)

	rec = httptest.NewRecorder()
	handler.Result(rec, sessionRequest(http.MethodGet, "/result", sess.ID, ""))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.Export(rec, sessionRequest(http.MethodGet, "/export", sess.ID, ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())

	// Reloading sales discards the result
	handler.PutSales(httptest.NewRecorder(), sessionRequest(http.MethodPut, "/sales", sess.ID, salesCSV))
	rec = httptest.NewRecorder()
	handler.Result(rec, sessionRequest(http.MethodGet, "/result", sess.ID, ""))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSessionsHandler_ProcessWithoutLeads(t *testing.T) {
	handler, store := newSessionsHandler()
	sess := store.Create()

	rec := httptest.NewRecorder()
	handler.Process(rec, sessionRequest(http.MethodPost, "/process", sess.ID, ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var response dto.APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, dto.ErrCodeValidation, response.Code)
}

package handlers

import (
	"net/http"

	"github.com/eshaffer321/bats-attribution/internal/api/dto"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	*Base
	sessions func() int
}

// NewHealthHandler creates a new health handler. sessions reports the
// number of live sessions and may be nil.
func NewHealthHandler(sessions func() int) *HealthHandler {
	return &HealthHandler{Base: NewBase(nil, 0), sessions: sessions}
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := 0
	if h.sessions != nil {
		n = h.sessions()
	}
	h.WriteJSON(w, http.StatusOK, dto.NewHealthResponse(n))
}

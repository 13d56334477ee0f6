package reconcile

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eshaffer321/bats-attribution/internal/domain/table"
)

// Session is one user's working set: the latest loaded leads and sales and
// the result of the last Process. Loading either dataset discards the
// previous result.
type Session struct {
	ID        string
	CreatedAt time.Time

	// lastUsed is unix nanoseconds, kept outside mu so the store can
	// check idleness while a run is in progress.
	lastUsed atomic.Int64

	mu        sync.Mutex
	leads     *table.Table
	sales     *table.Table
	leadsName string
	salesName string
	result    *Result
	gen       uint64 // bumped on every data change
}

// SessionState is a read-only snapshot of a session.
type SessionState struct {
	ID        string
	CreatedAt time.Time
	LastUsed  time.Time
	LeadsName string
	LeadsRows int
	SalesName string
	SalesRows int
	Processed bool
}

func newSession(id string, now time.Time) *Session {
	s := &Session{ID: id, CreatedAt: now}
	s.lastUsed.Store(now.UnixNano())
	return s
}

// SetLeads replaces the leads dataset. name describes where it came from.
func (s *Session) SetLeads(t *table.Table, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads = t
	s.leadsName = name
	s.result = nil
	s.gen++
}

// SetSales replaces the sales dataset.
func (s *Session) SetSales(t *table.Table, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sales = t
	s.salesName = name
	s.result = nil
	s.gen++
}

// Leads returns the loaded leads, or nil.
func (s *Session) Leads() *table.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leads
}

// Sales returns the loaded sales, or nil.
func (s *Session) Sales() *table.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sales
}

// Result returns the result of the last successful Process, or nil when
// nothing has been processed since the data last changed.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Process runs svc over the loaded data and keeps the result.
// A failed run clears any earlier result. The run itself does not hold the
// session lock; if the data changes while it runs, its result is returned
// but not kept.
func (s *Session) Process(ctx context.Context, svc *Service) (*Result, error) {
	s.mu.Lock()
	in := Input{Leads: s.leads, Sales: s.sales}
	gen := s.gen
	s.mu.Unlock()

	res, err := svc.Run(ctx, in)

	s.mu.Lock()
	if s.gen == gen {
		s.result = res
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return res, nil
}

// State returns a snapshot of the session.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionState{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		LastUsed:  s.idleSince(),
		LeadsName: s.leadsName,
		LeadsRows: s.leads.Len(),
		SalesName: s.salesName,
		SalesRows: s.sales.Len(),
		Processed: s.result != nil,
	}
}

func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

func (s *Session) idleSince() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

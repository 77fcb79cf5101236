package server

import (
	"sort"
	"sync"

	"github.com/shapec-dev/shapec/internal/compiler/pipeline"
	"github.com/shapec-dev/shapec/internal/compiler/snapshot"
)

// ServiceStatus summarizes the current state of one service.
type ServiceStatus struct {
	Name       string `json:"name"`
	SourceHash string `json:"source_hash,omitempty"`
	Records    int    `json:"records"`
	Literals   int    `json:"literals"`
	Methods    int    `json:"methods"`
	Warnings   int    `json:"warnings"`
	Cached     bool   `json:"cached"`
	Error      string `json:"error,omitempty"`
}

type entry struct {
	snapshot *snapshot.Snapshot
	status   ServiceStatus
}

// State holds the latest compilation of every service. A failed rebuild
// keeps the previous snapshot and records the error.
type State struct {
	mu       sync.RWMutex
	services map[string]*entry
}

// NewState creates an empty state.
func NewState() *State {
	return &State{services: make(map[string]*entry)}
}

// Update applies compilation results.
func (s *State) Update(results []*pipeline.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range results {
		e, ok := s.services[r.Service]
		if !ok {
			e = &entry{}
			s.services[r.Service] = e
		}
		if r.Err != nil {
			e.status.Name = r.Service
			e.status.Error = r.Err.Error()
			continue
		}
		e.snapshot = r.Snapshot
		e.status = ServiceStatus{
			Name:       r.Service,
			SourceHash: r.Hash,
			Records:    len(r.Snapshot.Records),
			Literals:   len(r.Snapshot.Literals),
			Methods:    r.Snapshot.MethodCount(),
			Warnings:   r.Warnings(),
			Cached:     r.CacheHit,
		}
	}
}

// Snapshot returns the latest successful snapshot of service.
func (s *State) Snapshot(service string) (*snapshot.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.services[service]
	if !ok || e.snapshot == nil {
		return nil, false
	}
	return e.snapshot, true
}

// Services lists every known service sorted by name.
func (s *State) Services() []ServiceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ServiceStatus, 0, len(s.services))
	for _, e := range s.services {
		out = append(out, e.status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names lists every known service.
func (s *State) Names() []string {
	statuses := s.Services()
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = st.Name
	}
	return names
}

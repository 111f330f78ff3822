package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// OMDBServer is a fake OMDb endpoint. Titles are matched case-insensitively;
// unknown titles get OMDb's {"Response":"False","Error":"Movie not found!"}.
type OMDBServer struct {
	*httptest.Server

	mu       sync.Mutex
	movies   map[string]map[string]any
	requests []url.Values
	gate     chan struct{}
}

// NewOMDBServer starts a fake OMDb server that is closed when the test completes.
func NewOMDBServer(t *testing.T, movies ...map[string]any) *OMDBServer {
	t.Helper()

	s := &OMDBServer{movies: make(map[string]map[string]any)}
	for _, m := range movies {
		s.Add(m)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(func() {
		s.Release()
		s.Close()
	})
	return s
}

// Add registers a movie payload under its Title.
func (s *OMDBServer) Add(movie map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	title, _ := movie["Title"].(string)
	s.movies[strings.ToLower(title)] = movie
}

// Hold makes every subsequent request block until Release is called.
func (s *OMDBServer) Hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = make(chan struct{})
}

// Release unblocks requests parked by Hold.
func (s *OMDBServer) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate != nil {
		close(s.gate)
		s.gate = nil
	}
}

// Requests returns a copy of the query parameters of every request received.
func (s *OMDBServer) Requests() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]url.Values, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestedTitles returns the t= parameter of every request received.
func (s *OMDBServer) RequestedTitles() []string {
	var titles []string
	for _, q := range s.Requests() {
		titles = append(titles, q.Get("t"))
	}
	return titles
}

func (s *OMDBServer) handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	s.mu.Lock()
	s.requests = append(s.requests, query)
	gate := s.gate
	movie, ok := s.movies[strings.ToLower(query.Get("t"))]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		_ = json.NewEncoder(w).Encode(map[string]string{"Response": "False", "Error": "Movie not found!"})
		return
	}
	_ = json.NewEncoder(w).Encode(movie)
}

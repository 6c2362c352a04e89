package testsupport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
)

// OMDbTestKey is the credential the fake metadata service accepts.
const OMDbTestKey = "test-key"

// OMDbServer is an httptest stand-in for the OMDb title endpoint.
type OMDbServer struct {
	server *httptest.Server
	calls  atomic.Int64

	mu      sync.Mutex
	posters map[string]string
	failing map[string]int
}

// NewOMDbServer starts a fake service that knows the titles in posters. A
// poster value of "N/A" mimics a known title without art.
func NewOMDbServer(t testing.TB, posters map[string]string) *OMDbServer {
	t.Helper()
	s := &OMDbServer{posters: make(map[string]string), failing: make(map[string]int)}
	for title, poster := range posters {
		s.posters[title] = poster
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.server.Close)
	return s
}

// URL returns the base URL of the fake service.
func (s *OMDbServer) URL() string {
	return s.server.URL + "/"
}

// Calls returns how many requests the service has received.
func (s *OMDbServer) Calls() int {
	return int(s.calls.Load())
}

// FailWith makes lookups for title answer with status.
func (s *OMDbServer) FailWith(title string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[title] = status
}

func (s *OMDbServer) handle(w http.ResponseWriter, r *http.Request) {
	s.calls.Add(1)
	query := r.URL.Query()
	title := query.Get("t")

	if query.Get("apikey") != OMDbTestKey {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = fmt.Fprint(w, `{"Response":"False","Error":"Invalid API key!"}`)
		return
	}

	s.mu.Lock()
	status, failing := s.failing[title]
	poster, known := s.posters[title]
	s.mu.Unlock()

	if failing {
		http.Error(w, "upstream failure", status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if !known {
		_, _ = fmt.Fprint(w, `{"Response":"False","Error":"Movie not found!"}`)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"Title":    title,
		"Year":     "1999",
		"imdbID":   "tt0000001",
		"Poster":   poster,
		"Response": "True",
	})
}

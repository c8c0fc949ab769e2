// Package bigidtest provides an in-process fake of the BigID and backup APIs
// and fresh payload fixtures for tests.
package bigidtest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	json "github.com/json-iterator/go"
)

// APIPrefix is the path under which the fake serves the BigID API.
const APIPrefix = "/api/v1/"

// Call is one request received by the fake.
type Call struct {
	Method string
	Path   string
	// EscapedPath is the request path as sent, still escaped.
	EscapedPath string
	RawQuery    string
	Query       url.Values
	Header      http.Header
	Body        []byte
}

// Server is a fake remote API. Routes are keyed by method and by the path
// below APIPrefix; unrouted requests get a 404.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []Call
}

// NewServer starts a fake that is closed when t finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{routes: make(map[string]http.HandlerFunc)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the value BigID would send as bigidBaseUrl.
func (s *Server) BaseURL() string { return s.URL + APIPrefix }

// Handle routes method + path to h, replacing any previous route.
func (s *Server) Handle(method, path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = h
}

// HandleJSON answers method + path with payload encoded as JSON.
func (s *Server) HandleJSON(method, path string, status int, payload interface{}) {
	s.Handle(method, path, JSON(status, payload))
}

// Calls returns the requests received for method + path, in order.
func (s *Server) Calls(method, path string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Count is len(Calls(method, path)).
func (s *Server) Count(method, path string) int { return len(s.Calls(method, path)) }

// AllCalls returns every request received, in order.
func (s *Server) AllCalls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, APIPrefix)

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Method:      r.Method,
		Path:        path,
		EscapedPath: r.URL.EscapedPath(),
		RawQuery:    r.URL.RawQuery,
		Query:       r.URL.Query(),
		Header:      r.Header.Clone(),
		Body:        body,
	})
	h, ok := s.routes[r.Method+" "+path]
	s.mu.Unlock()

	if !ok {
		http.Error(w, `{"message":"no route for `+r.Method+" "+path+`"}`, http.StatusNotFound)
		return
	}
	h(w, r)
}

// JSON returns a handler writing payload with the given status.
func JSON(status int, payload interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// Sequence answers successive calls with handlers in order, repeating the
// last one once they run out.
func Sequence(handlers ...http.HandlerFunc) http.HandlerFunc {
	var mu sync.Mutex
	next := 0
	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		h := handlers[next]
		if next < len(handlers)-1 {
			next++
		}
		mu.Unlock()
		h(w, r)
	}
}

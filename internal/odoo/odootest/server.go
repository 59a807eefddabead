// Package odootest provides an in-process fake of the ERP's JSON-RPC API.
package odootest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
)

// Fault is a scripted failure returned by the next call_kw request.
type Fault int

const (
	FaultRateLimit Fault = iota + 1
	FaultSessionExpired
	FaultMalformed
	FaultEmptyBody
	FaultServerError
	FaultApplicationError
)

// Call records one call_kw request.
type Call struct {
	Model     string
	Method    string
	SessionID string
}

// Server fakes the login and call_kw endpoints.
type Server struct {
	*httptest.Server

	Database string
	Username string
	Password string

	mu        sync.Mutex
	models    map[string][]map[string]any
	sessions  map[string]bool
	faults    []Fault
	calls     []Call
	logins    int
	nextToken int
	loginDown bool
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		Database: "erp",
		Username: "bot@example.com",
		Password: "secret",
		models:   make(map[string][]map[string]any),
		sessions: make(map[string]bool),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/web/session/authenticate", s.handleLogin)
	mux.HandleFunc("/web/dataset/call_kw", s.handleCall)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Server.Close)
	return s
}

// SetRecords replaces the rows stored for model.
func (s *Server) SetRecords(model string, records []map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[model] = records
}

// QueueFaults schedules failures for the next call_kw requests, in order.
func (s *Server) QueueFaults(faults ...Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, faults...)
}

// ExpireSessions invalidates every issued session.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]bool)
}

// SetLoginDown makes the login endpoint answer 503.
func (s *Server) SetLoginDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginDown = down
}

// Logins returns how many successful logins were served.
func (s *Server) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// Calls returns a copy of the recorded call_kw requests.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

type envelope struct {
	Params json.RawMessage `json:"params"`
	ID     any             `json:"id"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req envelope
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	var params struct {
		DB       string `json:"db"`
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	_ = json.Unmarshal(req.Params, &params)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loginDown {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	if params.DB != s.Database || params.Login != s.Username || params.Password != s.Password {
		writeError(w, req.ID, 200, "Access Denied", "odoo.exceptions.AccessDenied")
		return
	}

	s.logins++
	s.nextToken++
	token := fmt.Sprintf("sess-%d", s.nextToken)
	s.sessions[token] = true
	http.SetCookie(w, &http.Cookie{Name: "session_id", Value: token, Path: "/", HttpOnly: true})
	writeResult(w, req.ID, map[string]any{"uid": 2, "db": s.Database})
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req envelope
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	var params struct {
		Model  string            `json:"model"`
		Method string            `json:"method"`
		Args   []json.RawMessage `json:"args"`
		Kwargs struct {
			Fields []string `json:"fields"`
		} `json:"kwargs"`
	}
	_ = json.Unmarshal(req.Params, &params)

	sessionID := ""
	if cookie, err := r.Cookie("session_id"); err == nil {
		sessionID = cookie.Value
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Model: params.Model, Method: params.Method, SessionID: sessionID})

	if len(s.faults) > 0 {
		fault := s.faults[0]
		s.faults = s.faults[1:]
		switch fault {
		case FaultRateLimit:
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		case FaultSessionExpired:
			writeError(w, req.ID, 100, "Session expired", "odoo.http.SessionExpiredException")
			return
		case FaultMalformed:
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
			return
		case FaultEmptyBody:
			w.WriteHeader(http.StatusOK)
			return
		case FaultServerError:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		case FaultApplicationError:
			writeError(w, req.ID, 200, "Invalid field 'bogus' on model", "builtins.ValueError")
			return
		}
	}

	if !s.sessions[sessionID] {
		writeError(w, req.ID, 100, "Session expired", "odoo.http.SessionExpiredException")
		return
	}
	if params.Method != "search_read" {
		writeError(w, req.ID, 200, fmt.Sprintf("method %s not supported", params.Method), "builtins.NotImplementedError")
		return
	}

	var domain [][]json.RawMessage
	if len(params.Args) > 0 {
		_ = json.Unmarshal(params.Args[0], &domain)
	}

	rows := []map[string]any{}
	for _, rec := range s.models[params.Model] {
		if matchesDomain(rec, domain) {
			rows = append(rows, project(rec, params.Kwargs.Fields))
		}
	}
	writeResult(w, req.ID, rows)
}

func matchesDomain(rec map[string]any, domain [][]json.RawMessage) bool {
	for _, cond := range domain {
		if len(cond) != 3 {
			continue
		}
		var field, op string
		var value any
		_ = json.Unmarshal(cond[0], &field)
		_ = json.Unmarshal(cond[1], &op)
		_ = json.Unmarshal(cond[2], &value)

		got := scalar(rec[field])
		switch op {
		case "=":
			if !equal(got, value) {
				return false
			}
		case "!=":
			if equal(got, value) {
				return false
			}
		case "in":
			if !contains(value, got) {
				return false
			}
		case "not in":
			if contains(value, got) {
				return false
			}
		}
	}
	return true
}

// scalar reduces a many2one pair [id, name] to its id.
func scalar(v any) any {
	if pair, ok := v.([]any); ok && len(pair) == 2 {
		return pair[0]
	}
	return v
}

func equal(a, b any) bool {
	return fmt.Sprint(normalize(a)) == fmt.Sprint(normalize(b))
}

func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return v
	}
}

func contains(list any, v any) bool {
	items, ok := list.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if equal(item, v) {
			return true
		}
	}
	return false
}

func project(rec map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return rec
	}
	out := map[string]any{"id": rec["id"]}
	sort.Strings(fields)
	for _, f := range fields {
		if v, ok := rec[f]; ok {
			out[f] = v
		} else {
			out[f] = false
		}
	}
	return out
}

func writeResult(w http.ResponseWriter, id any, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": id, "result": result})
}

func writeError(w http.ResponseWriter, id any, code int, message, name string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]any{
			"code":    code,
			"message": "Odoo Server Error",
			"data":    map[string]any{"name": name, "message": message},
		},
	})
}

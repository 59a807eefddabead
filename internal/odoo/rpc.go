package odoo

import (
	"encoding/json"
	"errors"
	"strings"
)

// Condition is one domain predicate, encoded as [field, operator, value].
type Condition struct {
	Field    string
	Operator string
	Value    any
}

func (c Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Field, c.Operator, c.Value})
}

// Domain is a conjunction of conditions.
type Domain []Condition

// Where builds a single condition.
func Where(field, operator string, value any) Condition {
	return Condition{Field: field, Operator: operator, Value: value}
}

// Record is one row as returned by the ERP. Its shape is defined remotely.
type Record map[string]any

// Request describes one remote call. Treat it as immutable once built.
type Request struct {
	Model  string
	Method string
	Domain Domain
	Fields []string
	Kwargs map[string]any
}

// SearchRead builds a search_read request.
func SearchRead(model string, domain Domain, fields ...string) Request {
	return Request{Model: model, Method: "search_read", Domain: domain, Fields: fields}
}

func (r Request) validate() error {
	if r.Model == "" || r.Method == "" {
		return errors.New("odoo request requires model and method")
	}
	return nil
}

func (r Request) params() callParams {
	kwargs := make(map[string]any, len(r.Kwargs)+1)
	for k, v := range r.Kwargs {
		kwargs[k] = v
	}
	fields := r.Fields
	if fields == nil {
		fields = []string{}
	}
	kwargs["fields"] = fields

	domain := r.Domain
	if domain == nil {
		domain = Domain{}
	}
	return callParams{
		Model:  r.Model,
		Method: r.Method,
		Args:   []any{domain},
		Kwargs: kwargs,
	}
}

type callParams struct {
	Model  string         `json:"model"`
	Method string         `json:"method"`
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs"`
}

type loginParams struct {
	DB       string `json:"db"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

// rpcRequest is a JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

// rpcResponse is a JSON-RPC 2.0 response envelope.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// rpcError is the ERP's error object.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"data"`
}

// Text prefers the detailed message carried in data.
func (e *rpcError) Text() string {
	if e.Data.Message != "" {
		return e.Data.Message
	}
	return e.Message
}

func (e *rpcError) sessionExpired() bool {
	if e.Code == 100 || strings.Contains(e.Data.Name, "SessionExpired") {
		return true
	}
	return strings.Contains(strings.ToLower(e.Text()), "session expired")
}

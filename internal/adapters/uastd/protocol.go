// Package uastd is the client for a remote UAST parse service speaking
// newline-delimited JSON over a unix or TCP socket. Each pipeline worker
// holds its own connection for the whole run so responses never interleave.
package uastd

import "encoding/json"

// Method names accepted by the parse service.
const (
	MethodParse  = "parse"
	MethodHealth = "health"
)

// Request is one line sent to the service.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is one line read back. Exactly one response per request.
type Response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ParseParams asks the service to parse one file. The service reads the file
// itself; path must be absolute. TimeoutMS tells the service how long the
// client is willing to wait so it can give up server-side too.
type ParseParams struct {
	Path      string `json:"path"`
	Language  string `json:"language"`
	TimeoutMS int64  `json:"timeout_ms"`
}

// ParseResult is the service's answer. NoResult set means the service gave
// up (its own timeout or an unparseable file) — the explicit no-tree marker.
type ParseResult struct {
	NoResult    bool     `json:"no_result,omitempty"`
	NodeCount   int      `json:"node_count"`
	Identifiers []string `json:"identifiers"`
}

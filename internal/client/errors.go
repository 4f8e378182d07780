package client

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// TransportError is any failure talking to the API: network errors and
// non-2xx responses alike. The caller keeps its local state and may retry.
type TransportError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	Fields     map[string][]string
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status=%d", e.StatusCode)
	}
	if e.Code != "" {
		b.WriteString(" " + e.Code)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "; %s: %s", k, strings.Join(e.Fields[k], ", "))
		}
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Conflict reports a lifecycle transition the server refused.
func (e *TransportError) Conflict() bool {
	return e.StatusCode == http.StatusConflict
}

func (e *TransportError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *TransportError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsTransport reports whether err came from the API boundary.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

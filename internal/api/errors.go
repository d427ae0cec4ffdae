package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized matches any *Error with status 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound matches any *Error with status 404.
	ErrNotFound = errors.New("not found")
)

// Error is a non-2xx response from the service. The service replies with
// a flat JSON object: "error" carries a general message and any other key
// names the request field it rejects (e.g. {"name": "..."}).
type Error struct {
	Status  int
	Method  string
	Path    string
	Message string
	Fields  map[string]string
}

func newError(status int, method, path string, body []byte) *Error {
	e := &Error{Status: status, Method: method, Path: path}

	var raw map[string]interface{}
	if json.Unmarshal(body, &raw) != nil {
		return e
	}
	for k, v := range raw {
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		if k == "error" {
			e.Message = s
			continue
		}
		if e.Fields == nil {
			e.Fields = make(map[string]string)
		}
		e.Fields[k] = s
	}
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "api error (%d) on %s %s", e.Status, e.Method, e.Path)
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
			fmt.Fprintf(&b, " [%s: %s]", k, e.Fields[k])
		}
	}
	return b.String()
}

// Is lets errors.Is match the status sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// FieldError returns the server's message for the named request field,
// or "" when err carries none.
func FieldError(err error, field string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Fields[field]
	}
	return ""
}

// ServerMessage returns the server's general error message, or "" when err
// is not a service response or the body had no "error" key.
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// IsTransport reports whether err happened before any response arrived.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *Error
	return !errors.As(err, &apiErr)
}

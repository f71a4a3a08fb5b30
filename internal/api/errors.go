// Package api is a JSON:API client for the Commerce Layer exports endpoints.
package api

import (
	"errors"
	"fmt"
	nethttp "net/http"
	"strings"
)

// Sentinels matched against *Error with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrThrottled    = errors.New("too many requests")
)

// ErrorObject is one entry of a JSON:API errors array.
type ErrorObject struct {
	Code   string         `json:"code"`
	Title  string         `json:"title"`
	Detail string         `json:"detail"`
	Status string         `json:"status"`
	Source map[string]any `json:"source,omitempty"`
}

// Error is a non-2xx API response.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Errors     []ErrorObject
	Body       string // raw body when it was not a JSON:API error document
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %d %s", e.Method, e.Path, e.StatusCode, nethttp.StatusText(e.StatusCode))

	for i, obj := range e.Errors {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(obj.Title)
		if obj.Detail != "" && obj.Detail != obj.Title {
			b.WriteString(" - ")
			b.WriteString(obj.Detail)
		}
	}
	if len(e.Errors) == 0 && e.Body != "" {
		b.WriteString(": ")
		b.WriteString(e.Body)
	}
	return b.String()
}

// Is maps well-known status codes onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == nethttp.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == nethttp.StatusNotFound
	case ErrThrottled:
		return e.StatusCode == nethttp.StatusTooManyRequests
	}
	return false
}

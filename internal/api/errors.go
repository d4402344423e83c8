package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code   int
	Status string // status text without the code, e.g. "Internal Server Error"
	Detail string // backend "detail" field, when the body carried one
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %d %s", e.Code, e.Status)
}

// IsConflict reports whether err is a 409, which the backend uses for
// "collection already running".
func IsConflict(err error) bool {
	return HasStatus(err, http.StatusConflict)
}

// HasStatus reports whether err wraps a StatusError with the given code.
func HasStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

func newStatusError(code int, status string, body []byte) *StatusError {
	text := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	if text == "" {
		text = http.StatusText(code)
	}
	se := &StatusError{Code: code, Status: text}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && len(payload.Detail) > 0 {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil {
			se.Detail = s
		} else {
			se.Detail = string(payload.Detail)
		}
	}
	return se
}

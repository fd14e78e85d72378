package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrSessionExpired means the refresh token could not renew the access token.
// Callers send the user back to the login page.
var ErrSessionExpired = errors.New("backend: session expired")

// Kind classifies a backend failure.
type Kind string

const (
	KindNetwork      Kind = "network"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindServer       Kind = "server"
)

// AlternativeVeterinarian is offered when the chosen slot was taken.
type AlternativeVeterinarian struct {
	ID         FlexInt `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email,omitempty"`
	TimeSlotID FlexInt `json:"time_slot_id"`
}

// Error is a failed backend call.
type Error struct {
	Op     string
	Kind   Kind
	Status int
	// Fields holds field-level validation messages verbatim.
	Fields map[string][]string
	// Detail is the backend's "detail" or "error" text.
	Detail       string
	Alternatives []AlternativeVeterinarian
	Err          error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if msg := e.Message(); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// priorityFields are surfaced first when several fields failed.
var priorityFields = []string{"time_slot", "pet", "client", "veterinarian"}

// Message is the text shown to the user.
func (e *Error) Message() string {
	for _, f := range priorityFields {
		if msgs := e.Fields[f]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if len(e.Fields[k]) == 0 {
				continue
			}
			parts = append(parts, k+": "+e.Fields[k][0])
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}
	switch e.Kind {
	case KindNetwork:
		return "No se pudo conectar con el servidor. Verifique su conexión."
	case KindUnauthorized:
		return "Su sesión ha expirado. Inicie sesión nuevamente."
	case KindForbidden:
		return "No tiene permiso para realizar esta acción."
	case KindNotFound:
		return "El recurso solicitado no existe."
	case KindServer:
		return "Error del servidor. Intente nuevamente más tarde."
	}
	return ""
}

// AsError extracts a backend *Error from err.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsKind reports whether err is a backend error of kind k.
func IsKind(err error, k Kind) bool {
	be, ok := AsError(err)
	return ok && be.Kind == k
}

// UserMessage returns the text to show for any error.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrSessionExpired) {
		return "Su sesión ha expirado. Inicie sesión nuevamente."
	}
	if be, ok := AsError(err); ok {
		if msg := be.Message(); msg != "" {
			return msg
		}
	}
	return fallback
}

// errorFromResponse builds the typed error of a non-2xx response.
func errorFromResponse(op string, status int, body []byte) *Error {
	e := &Error{Op: op, Status: status}
	parseErrorBody(e, body)

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindUnauthorized
	case status == http.StatusForbidden:
		e.Kind = KindForbidden
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusConflict, len(e.Alternatives) > 0:
		e.Kind = KindConflict
	case status >= 500:
		e.Kind = KindServer
	case status >= 400:
		e.Kind = KindValidation
	default:
		e.Kind = KindServer
	}
	return e
}

func parseErrorBody(e *Error, body []byte) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		// Non-JSON bodies (proxy pages, plain text) are kept short.
		var list []string
		if json.Unmarshal(body, &list) == nil && len(list) > 0 {
			e.Detail = list[0]
			return
		}
		msg := string(body)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		e.Err = errors.New(msg)
		return
	}

	for key, raw := range obj {
		switch key {
		case "alternative_veterinarians":
			var alts []AlternativeVeterinarian
			if err := json.Unmarshal(raw, &alts); err == nil {
				e.Alternatives = alts
			}
		case "detail", "error", "message":
			if e.Detail == "" {
				if msgs := messages(raw); len(msgs) > 0 {
					e.Detail = msgs[0]
				}
			}
		default:
			if msgs := messages(raw); len(msgs) > 0 {
				if e.Fields == nil {
					e.Fields = map[string][]string{}
				}
				e.Fields[key] = msgs
			}
		}
	}
}

// messages flattens a DRF error value: a string, a list of strings, or a
// nested object of those.
func messages(raw json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		var out []string
		for _, item := range list {
			out = append(out, messages(item)...)
		}
		return out
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err == nil {
		keys := make([]string, 0, len(nested))
		for k := range nested {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			for _, m := range messages(nested[k]) {
				out = append(out, k+": "+m)
			}
		}
		return out
	}
	return nil
}

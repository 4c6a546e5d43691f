package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/asauntung/bumdes/internal/apperr"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// WriteAppError maps err to its code's status. Errors outside the taxonomy
// are reported as internal without leaking their text.
func WriteAppError(w http.ResponseWriter, err error) {
	e := apperr.As(err)
	if e == nil {
		e = apperr.New(apperr.CodeInternal, "internal error")
	}
	meta := apperr.MetadataFor(e.Code())
	msg := e.Message()
	if msg == "" {
		msg = meta.PublicMessage
	}
	var details interface{}
	if meta.DetailsAllowed {
		details = e.Details()
	}
	WriteError(w, meta.HTTPStatus, string(e.Code()), msg, details)
}

package api

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Envelope is the wrapper every backend response uses
type Envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  json.RawMessage `json:"errors,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Response is a well-formed backend reply, whatever its status
type Response struct {
	StatusCode int
	Envelope   Envelope
	RequestID  string
}

// DecodeData unmarshals the envelope's data into out
func (r *Response) DecodeData(out any) error {
	if len(r.Envelope.Data) == 0 || bytes.Equal(r.Envelope.Data, []byte("null")) {
		return nil
	}
	return json.Unmarshal(r.Envelope.Data, out)
}

// ErrorMessage returns the backend-provided error payload, or "" when there is none
func (r *Response) ErrorMessage() string {
	if msg := rawMessageText(r.Envelope.Errors); msg != "" {
		return msg
	}
	return strings.TrimSpace(r.Envelope.Error)
}

// StatusIn reports whether the response status is one of codes
func (r *Response) StatusIn(codes ...int) bool {
	for _, code := range codes {
		if r.StatusCode == code {
			return true
		}
	}
	return false
}

func rawMessageText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}

	// Structured payloads (maps, lists) are surfaced verbatim.
	return string(raw)
}

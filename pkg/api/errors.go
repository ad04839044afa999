package api

import "fmt"

// TransportError means no usable response was obtained: the request never completed or
// the body was not valid JSON. It is distinct from a well-formed error response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

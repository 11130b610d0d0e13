package api

import (
	"fmt"
	"net/http"
)

// StatusError is returned when the backend replies with a body the client
// cannot decode. Err holds the decode failure.
type StatusError struct {
	Status int
	Body   string
	Err    error
}

func (e *StatusError) Error() string {
	if e.Status >= 400 {
		return fmt.Sprintf("%s (HTTP %d %s)", e.Err, e.Status, http.StatusText(e.Status))
	}
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Package apierr attaches an HTTP status and a stable code to an error.
package apierr

import (
	"errors"
	"net/http"
	"strconv"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	case e.Status != 0:
		return "api error (" + strconv.Itoa(e.Status) + ")"
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// StatusOf reports the status carried by err, or 500 when err carries none.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

package web

import (
	"errors"
	"io/fs"
	"net/http"

	"portfolio-terminal/internal/content"
	"portfolio-terminal/internal/theme"
	"portfolio-terminal/internal/view"
)

// RequestError is a client-facing error with a stable code.
type RequestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error { return e.Cause }

func badParam(code, message string, cause error) error {
	return &RequestError{Code: code, Message: message, Cause: cause}
}

// mapError picks the status, code and message written for err.
func mapError(err error) (int, string, string) {
	var reqErr *RequestError
	switch {
	case errors.Is(err, theme.ErrUnknownTheme):
		return http.StatusBadRequest, "UNKNOWN_THEME", "theme is not one of the known themes"
	case errors.Is(err, view.ErrUnknownView):
		return http.StatusNotFound, "UNKNOWN_VIEW", "view does not exist"
	case errors.Is(err, content.ErrInvalidContent):
		return http.StatusUnprocessableEntity, "INVALID_CONTENT", "content document failed validation; previous content kept"
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusServiceUnavailable, "CONTENT_UNAVAILABLE", "content document is missing; previous content kept"
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, reqErr.Code, reqErr.Message
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "portfolio preview internal error"
}

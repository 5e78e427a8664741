package documents

import (
	"errors"
	"strings"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("document not found")
	ErrConflict      = errors.New("document already confirmed")
	ErrForbidden     = errors.New("document belongs to another user")
	ErrUploadMissing = errors.New("uploaded object not found")
	ErrUploadExpired = errors.New("upload ticket expired")
	ErrSizeMismatch  = errors.New("uploaded object size mismatch")
	ErrStorage       = errors.New("storage error")
)

// detail strips the sentinel prefix from a wrapped error message.
func detail(err, sentinel error) string {
	msg := err.Error()
	if trimmed := strings.TrimPrefix(msg, sentinel.Error()+": "); trimmed != msg {
		return trimmed
	}
	return msg
}

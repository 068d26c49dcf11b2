package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"github.com/joshua-takyi/evently/internal/models"
)

var (
	ErrTimeout           = errors.New("Request timed out. Please check your connection.")
	ErrConnectionRefused = errors.New("Cannot reach the server. Please check your connection or server.")
)

// APIError is a non-2xx response. Message is the server's own text.
type APIError struct {
	Status  int
	Message string
	// Code and Field are empty when the server sent none.
	Code  models.ErrorCode
	Field string
}

func (e *APIError) Error() string {
	return e.Message
}

func newAPIError(status int, env *envelope) *APIError {
	msg := env.Error
	if msg == "" {
		msg = env.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg, Code: models.ErrorCode(env.Code), Field: env.Field}
}

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code models.ErrorCode) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Code == code
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == status
}

// ValidationError is raised before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// classify maps transport failures onto the two user-facing network errors.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrConnectionRefused
	}
	var oe *net.OpError
	if errors.As(err, &oe) && oe.Op == "dial" {
		return ErrConnectionRefused
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrConnectionRefused
	}
	return fmt.Errorf("request failed: %w", err)
}

package aggregates

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/siteproof-backend/internal/data/db"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
)

var (
	// ErrConflict marks a lost optimistic-concurrency race or a reused key.
	ErrConflict = errors.New("write conflict")
	// ErrTransient marks a failure the caller may resolve by resubmitting.
	ErrTransient = errors.New("transient write failure")
)

func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

func TransientError(msg string) error {
	return errors.Join(ErrTransient, errors.New(strings.TrimSpace(msg)))
}

// MapError turns infrastructure and domain failures into API errors. Errors
// that already carry an HTTP status pass through untouched.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apierr.As(err); ok {
		return err
	}

	var statusErr *assets.InvalidStatusError
	var transitionErr *assets.TransitionError
	switch {
	case errors.As(err, &statusErr):
		return apierr.New(http.StatusBadRequest, "invalid_status", err)
	case errors.As(err, &transitionErr):
		return apierr.New(http.StatusConflict, "invalid_transition", err)
	case errors.Is(err, assets.ErrInvalidSpec):
		return apierr.New(http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, ErrConflict):
		return apierr.New(http.StatusConflict, "conflict", err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierr.New(http.StatusNotFound, "not_found", err)
	case db.IsUniqueViolation(err):
		return apierr.New(http.StatusConflict, "conflict", err)
	case isTransient(err):
		return apierr.Internal("transient", fmt.Errorf("%s: %w", op, err))
	}
	return apierr.Internal("internal", fmt.Errorf("%s: %w", op, err))
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) || db.IsTransient(err) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") || strings.Contains(msg, "could not serialize") || strings.Contains(msg, "database is locked")
}

func errorStatus(err error) string {
	if err == nil {
		return "success"
	}
	if ae, ok := apierr.As(err); ok && ae.Code != "" {
		return ae.Code
	}
	return "failure"
}

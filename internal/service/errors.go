package service

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrValidation        = errors.New("validation")          // 400
	ErrUnauthorized      = errors.New("unauthorized")        // 401
	ErrForbidden         = errors.New("forbidden")           // 403
	ErrNotFound          = errors.New("not found")           // 404
	ErrConflict          = errors.New("conflict")            // 409
	ErrInvalidTransition = errors.New("invalid transition")  // 409
	ErrVerification      = errors.New("verification failed") // 400
	ErrGateway           = errors.New("gateway error")       // 502
	ErrUnavailable       = errors.New("unavailable")         // 503
)

// Caller is the authenticated principal a request runs as.
type Caller struct {
	UserID uuid.UUID
	Email  string
	Admin  bool
}

func (c Caller) CanAccess(owner uuid.UUID) bool {
	return c.Admin || c.UserID == owner
}

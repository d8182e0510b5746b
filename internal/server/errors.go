// Package server provides the HTTP API for the CV builder.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/types"
)

// Auth error codes.
const (
	CodeEmailInUse         = "auth/email-already-in-use"
	CodeInvalidCredential  = "auth/invalid-credential"
	CodeWeakPassword       = "auth/weak-password"
	CodeInvalidRequest     = "auth/invalid-request"
	CodeInvalidToken       = "auth/invalid-token"
	CodeInvalidResetToken  = "auth/invalid-reset-token"
	CodeAccountIncomplete  = "auth/account-incomplete"
	CodeUserNotFound       = "auth/user-not-found"
	CodeInternal           = "auth/internal-error"
	accountIncompleteText  = "Your account setup isn't finished yet. Use \"Forgot password\" to choose a password and finish setting up your account."
	genericExportMessage   = "We couldn't export your CV. Please try again."
	genericPersistMessage  = "We couldn't save your changes. Your edits are still here, please try again."
	genericInternalMessage = "Something went wrong. Please try again."
)

// AuthError is the only error shape that crosses the auth boundary.
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// newAuthError builds an AuthError. The account-incomplete code always carries
// the friendly setup message regardless of msg.
func newAuthError(code, msg string) *AuthError {
	if code == CodeAccountIncomplete {
		msg = accountIncompleteText
	}
	return &AuthError{Code: code, Message: msg}
}

// HTTPStatus returns the status code for err.
func HTTPStatus(err error) int {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		switch authErr.Code {
		case CodeEmailInUse:
			return http.StatusConflict
		case CodeInvalidCredential, CodeInvalidToken:
			return http.StatusUnauthorized
		case CodeAccountIncomplete:
			return http.StatusForbidden
		case CodeWeakPassword, CodeInvalidRequest, CodeInvalidResetToken:
			return http.StatusBadRequest
		case CodeUserNotFound:
			return http.StatusNotFound
		default:
			return http.StatusInternalServerError
		}
	}

	var (
		validationErr *types.ValidationError
		schemaErr     *schemas.ValidationError
		optionsErr    *export.OptionsError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &schemaErr), errors.As(err, &optionsErr):
		return http.StatusBadRequest
	case errors.Is(err, export.ErrExportInFlight):
		return http.StatusConflict
	case errors.Is(err, export.ErrCaptureTargetMissing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound), errors.Is(err, types.ErrEntityNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage converts err into the single message shown to the user.
// Validation messages are safe to show; export and persistence details are not.
func UserMessage(err error) string {
	var (
		authErr       *AuthError
		validationErr *types.ValidationError
		schemaErr     *schemas.ValidationError
		optionsErr    *export.OptionsError
		persistErr    *store.PersistenceError
	)
	switch {
	case errors.As(err, &authErr):
		return authErr.Message
	case errors.As(err, &validationErr), errors.As(err, &schemaErr), errors.As(err, &optionsErr):
		return err.Error()
	case errors.Is(err, export.ErrExportInFlight):
		return "An export of this CV is already running."
	case errors.Is(err, store.ErrNotFound):
		return "CV not found."
	case errors.Is(err, types.ErrEntityNotFound):
		return "Entry not found."
	case errors.Is(err, store.ErrForbidden):
		return "You don't have access to this CV."
	case errors.As(err, &persistErr):
		return genericPersistMessage
	case isExportFailure(err):
		return genericExportMessage
	default:
		return genericInternalMessage
	}
}

func isExportFailure(err error) bool {
	var (
		rasterErr *export.RasterizationError
		encodeErr *export.EncodingError
		printErr  *export.PrintError
	)
	return errors.As(err, &rasterErr) || errors.As(err, &encodeErr) || errors.As(err, &printErr) ||
		errors.Is(err, export.ErrCaptureTargetMissing)
}

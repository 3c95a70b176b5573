// Package apperr carries the uniform domain error value every service layer
// returns. The HTTP boundary converts it into the standard error envelope;
// anything that is not an *Error maps to 500 INTERNAL_ERROR.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// WithDetails returns a copy so the shared sentinels stay immutable.
func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// WithMessage returns a copy with a more specific message.
func (e *Error) WithMessage(message string) *Error {
	cp := *e
	cp.Message = message
	return &cp
}

// From extracts the domain error or wraps unknown errors as INTERNAL_ERROR.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return ErrInternal
}

var (
	ErrValidation         = New(http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed")
	ErrInvalidStatus      = New(http.StatusBadRequest, "INVALID_STATUS", "invalid status value")
	ErrInvalidDate        = New(http.StatusBadRequest, "INVALID_DATE", "invalid date value")
	ErrInvalidOperation   = New(http.StatusBadRequest, "INVALID_OPERATION", "operation not allowed for the study leader")
	ErrUnauthorized       = New(http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	ErrInvalidCredentials = New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	ErrInvalidToken       = New(http.StatusUnauthorized, "INVALID_TOKEN", "token is invalid or expired")
	ErrTokenRevoked       = New(http.StatusUnauthorized, "TOKEN_REVOKED", "token has been revoked")
	ErrForbidden          = New(http.StatusForbidden, "FORBIDDEN", "insufficient permission")
	ErrNotAMember         = New(http.StatusForbidden, "NOT_A_MEMBER", "approved membership required")
	ErrUserNotFound       = New(http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	ErrStudyNotFound      = New(http.StatusNotFound, "STUDY_NOT_FOUND", "study not found")
	ErrMemberNotFound     = New(http.StatusNotFound, "MEMBER_NOT_FOUND", "membership not found")
	ErrSessionNotFound    = New(http.StatusNotFound, "SESSION_NOT_FOUND", "attendance session not found")
	ErrEmailTaken         = New(http.StatusConflict, "EMAIL_TAKEN", "email is already registered")
	ErrAlreadyJoined      = New(http.StatusConflict, "ALREADY_JOINED", "user is already an approved member")
	ErrCapacityExceeded   = New(http.StatusConflict, "CAPACITY_EXCEEDED", "study has reached its member capacity")
	ErrInternal           = New(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
)

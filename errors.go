package jwtx

import (
	"errors"
	"fmt"
)

// ErrorCode represents token generation and verification error categories.
type ErrorCode string

const (
	ErrCodeMissingCredential ErrorCode = "missing_credential"
	ErrCodeUnsupportedKey    ErrorCode = "unsupported_key"
	ErrCodeKeyParse          ErrorCode = "key_parse_error"
	ErrCodeSigning           ErrorCode = "signing_error"
	ErrCodeInvalidExpiry     ErrorCode = "invalid_expiry"
	ErrCodeInvalidToken      ErrorCode = "invalid_token"
	ErrCodeExpired           ErrorCode = "token_expired"
	ErrCodeInvalidConfig     ErrorCode = "invalid_config"
)

var errorMessages = map[ErrorCode]string{
	ErrCodeMissingCredential: "Neither a token nor a private key was provided",
	ErrCodeUnsupportedKey:    "Unsupported private key",
	ErrCodeKeyParse:          "Invalid private key",
	ErrCodeSigning:           "Token signing failed",
	ErrCodeInvalidExpiry:     "Invalid expiry",
	ErrCodeInvalidToken:      "Invalid token",
	ErrCodeExpired:           "Token expired",
	ErrCodeInvalidConfig:     "Invalid configuration",
}

// Error wraps failures with a stable code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	base := e.Message
	if base == "" {
		base = string(e.Code)
	}
	if e.Err == nil {
		return base
	}
	return fmt.Sprintf("%s: %v", base, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// HasCode reports whether err, or any error it wraps, is an *Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

func newError(code ErrorCode, err error) error {
	msg, ok := errorMessages[code]
	if !ok {
		msg = string(code)
	}
	return &Error{Code: code, Message: msg, Err: err}
}

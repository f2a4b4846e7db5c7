package domain

import (
	"errors"
	"strings"
)

const (
	CodeEmailAlreadyInUse = "auth/email-already-in-use"
	CodeWeakPassword      = "auth/weak-password"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeInvalidCredential = "auth/invalid-credential"
	CodeUserNotFound      = "auth/user-not-found"
	CodeTooManyRequests   = "auth/too-many-requests"
	CodeInvalidToken      = "auth/invalid-token"
)

// Error carries a provider error code that callers translate for end users.
type Error struct {
	Code string
}

func (e *Error) Error() string { return e.Code }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrEmailAlreadyInUse = &Error{Code: CodeEmailAlreadyInUse}
	ErrWeakPassword      = &Error{Code: CodeWeakPassword}
	ErrInvalidEmail      = &Error{Code: CodeInvalidEmail}
	ErrInvalidCredential = &Error{Code: CodeInvalidCredential}
	ErrUserNotFound      = &Error{Code: CodeUserNotFound}
	ErrTooManyRequests   = &Error{Code: CodeTooManyRequests}
	ErrInvalidToken      = &Error{Code: CodeInvalidToken}
)

// Code extracts the provider code, or "" for non-identity errors.
func Code(err error) string {
	var idErr *Error
	if errors.As(err, &idErr) {
		return idErr.Code
	}
	return ""
}

const defaultMessage = "No se pudo completar la operación. Intenta más tarde."

var messages = map[string]string{
	CodeWeakPassword:      "La contraseña es muy débil.",
	CodeEmailAlreadyInUse: "Este correo ya está registrado.",
	CodeInvalidEmail:      "Correo inválido.",
	CodeInvalidCredential: "Correo o contraseña incorrectos.",
	CodeUserNotFound:      "Usuario no registrado.",
	CodeTooManyRequests:   "Demasiados intentos. Intenta más tarde.",
	CodeInvalidToken:      "Tu sesión expiró. Inicia sesión de nuevo.",
}

// Message returns the user-facing Spanish text for err.
func Message(err error) string {
	if msg, ok := messages[Code(err)]; ok {
		return msg
	}
	return defaultMessage
}

// SignUpMessage mirrors Message but falls back to the registration wording.
func SignUpMessage(err error) string {
	if msg, ok := messages[Code(err)]; ok {
		return msg
	}
	return "No se pudo registrar. Intenta más tarde."
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

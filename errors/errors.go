package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// Credential errors stay on the login form.
	ErrUsernameTaken           = fmt.Errorf("username already taken")
	ErrUserNotFound            = fmt.Errorf("user not found")
	ErrWrongSecret             = fmt.Errorf("wrong secret")
	ErrEmptyCredentials        = fmt.Errorf("username and secret are required")
	ErrNotLoggedIn             = fmt.Errorf("not logged in")
	ErrUnknownChannel          = fmt.Errorf("unknown channel")
	ErrMalformedPersistedState = fmt.Errorf("malformed persisted state")

	ErrAIUninitialized   = fmt.Errorf("assistant not initialized")
	ErrAINotConfigured   = fmt.Errorf("assistant credential not configured")
	ErrAIProviderFailure = fmt.Errorf("assistant provider failure")
	ErrAssistantBusy     = fmt.Errorf("assistant is still answering")

	ErrEmptyInput   = fmt.Errorf("empty input")
	ErrBridgeClosed = fmt.Errorf("broadcast bridge closed")
)

// UserMessage maps a credential error to the text shown under the login form.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, ErrEmptyCredentials):
		return "Por favor completa todos los campos"
	case stderrors.Is(err, ErrUsernameTaken):
		return "El nombre de usuario ya existe. Intenta iniciar sesión."
	case stderrors.Is(err, ErrUserNotFound):
		return "Usuario no encontrado. ¿Quieres registrarte?"
	case stderrors.Is(err, ErrWrongSecret):
		return "Contraseña incorrecta."
	default:
		return err.Error()
	}
}

// Is lets callers importing this package avoid aliasing the standard one.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

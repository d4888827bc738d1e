package mobileautherrors

import (
	"net/http"

	"github.com/SiwoTech/asistencias/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"Usuario o contraseña incorrectos",
		http.StatusUnauthorized,
	)
	ErrTooManyAttempts = apperror.New(
		apperror.CodeTooManyRequests,
		"Demasiados intentos fallidos, espera unos minutos e intenta de nuevo",
		http.StatusTooManyRequests,
	)
	ErrMobileDisabled = apperror.New(
		apperror.CodeForbidden,
		"El acceso móvil no está habilitado para este empleado",
		http.StatusForbidden,
	)
	ErrSessionInvalid = apperror.New(
		apperror.CodeUnauthorized,
		"Sesión inválida o expirada",
		http.StatusUnauthorized,
	)
	ErrPasswordTooShort = apperror.New(
		apperror.CodeInvalidInput,
		"La nueva contraseña debe tener al menos 6 caracteres",
		http.StatusBadRequest,
	)
)

package attendanceerrors

import (
	"fmt"
	"net/http"

	"github.com/SiwoTech/asistencias/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Empleado no encontrado o inactivo",
		http.StatusNotFound,
	)
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"Registro de asistencia no encontrado",
		http.StatusNotFound,
	)
	ErrNoZoneConfigured = apperror.New(
		apperror.CodeInvalidState,
		"No hay zona de chequeo configurada para el empleado",
		http.StatusConflict,
	)
	ErrCoordinatesRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Se requiere la ubicación GPS para registrar la entrada",
		http.StatusBadRequest,
	)
	ErrInvalidCoordinates = apperror.New(
		apperror.CodeInvalidInput,
		"Las coordenadas proporcionadas no son válidas",
		http.StatusBadRequest,
	)
	ErrDuplicateEntrance = apperror.New(
		apperror.CodeConflict,
		"Ya registraste tu entrada el día de hoy",
		http.StatusConflict,
	)
	ErrDuplicateExit = apperror.New(
		apperror.CodeConflict,
		"Ya registraste tu salida el día de hoy",
		http.StatusConflict,
	)
	ErrNoEntranceRecorded = apperror.New(
		apperror.CodeInvalidState,
		"No has registrado tu entrada el día de hoy",
		http.StatusConflict,
	)
	// ErrLateUnauthorized is the soft-block result: the late entrance
	// IS persisted (retardo, no autorizado) but the punch is reported
	// as a failure so the client starts the justification flow.
	ErrLateUnauthorized = apperror.New(
		apperror.CodeConflict,
		"Retardo registrado, requiere autorización del administrador",
		http.StatusConflict,
	)
	ErrInvalidPunchType = apperror.New(
		apperror.CodeInvalidInput,
		"Tipo de chequeo inválido, se espera entrada o salida",
		http.StatusBadRequest,
	)
	ErrInvalidDayType = apperror.New(
		apperror.CodeInvalidInput,
		"Tipo de día inválido, se espera normal, falta o vacaciones",
		http.StatusBadRequest,
	)
)

// OutOfGeofenceError carries the measured distance so the client can
// render how far away the employee is.
type OutOfGeofenceError struct {
	*apperror.AppError
	DistanceMeters float64
}

func (e *OutOfGeofenceError) Unwrap() error {
	return e.AppError
}

func NewOutOfGeofence(distanceMeters float64) *OutOfGeofenceError {
	return &OutOfGeofenceError{
		AppError: apperror.New(
			apperror.CodeForbidden,
			fmt.Sprintf("Estás fuera de la zona de chequeo, te encuentras a %.0f metros", distanceMeters),
			http.StatusForbidden,
		),
		DistanceMeters: distanceMeters,
	}
}

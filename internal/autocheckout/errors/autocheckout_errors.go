package autocheckouterrors

import (
	"net/http"

	"github.com/SiwoTech/asistencias/internal/shared/apperror"
)

var (
	ErrSweepInProgress = apperror.New(
		apperror.CodeConflict,
		"Ya hay un procesamiento de salidas automáticas en curso",
		http.StatusConflict,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Empleado no encontrado o inactivo",
		http.StatusNotFound,
	)
	ErrNoOpenRecord = apperror.New(
		apperror.CodeInvalidState,
		"El empleado no tiene una entrada abierta el día de hoy",
		http.StatusConflict,
	)
)

package payrollerrors

import (
	"net/http"

	"github.com/SiwoTech/asistencias/internal/shared/apperror"
)

var (
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"Periodo inválido, formato esperado YYYY-WNN",
		http.StatusBadRequest,
	)
	ErrPeriodAlreadyGenerated = apperror.New(
		apperror.CodeConflict,
		"La nómina de este periodo ya fue generada, usa regenerar para reemplazarla",
		http.StatusConflict,
	)
	ErrPeriodAlreadyPaid = apperror.New(
		apperror.CodeInvalidState,
		"El periodo contiene nóminas pagadas y no puede modificarse",
		http.StatusConflict,
	)
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"Registro de nómina no encontrado",
		http.StatusNotFound,
	)
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"No hay nómina generada para el periodo solicitado",
		http.StatusNotFound,
	)
	ErrNoActiveEmployees = apperror.New(
		apperror.CodeInvalidState,
		"No hay empleados activos para generar la nómina",
		http.StatusConflict,
	)
)

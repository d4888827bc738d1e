package attendance

import (
	"errors"
	"math"
	"net/http"

	attendanceerrors "github.com/SiwoTech/asistencias/internal/attendance/errors"
	"github.com/SiwoTech/asistencias/internal/shared/apperror"
	"github.com/SiwoTech/asistencias/internal/shared/contextutil"
	"github.com/SiwoTech/asistencias/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeServiceError(c *gin.Context, err error) {
	var geoErr *attendanceerrors.OutOfGeofenceError
	if errors.As(err, &geoErr) {
		response.Error(c, geoErr.HTTPStatus, geoErr.Code, geoErr.Message, gin.H{
			"distancia_metros": math.Round(geoErr.DistanceMeters),
		})
		return
	}

	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// Punch handles POST /asistencia/checar for the authenticated mobile
// employee.
func (h *Handler) Punch(c *gin.Context) {
	employeeID := contextutil.GetEmployeeID(c.Request.Context())
	if employeeID == "" {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, apperror.ErrUnauthorized.Message, nil)
		return
	}

	var req PunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.RecordPunch(c.Request.Context(), employeeID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	filter := ListFilter{
		Fecha:       c.Query("fecha"),
		EmpleadoID:  c.Query("empleado_id"),
		FechaInicio: c.Query("fecha_inicio"),
		FechaFin:    c.Query("fecha_fin"),
	}

	resp, err := h.service.ListByFilter(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.UpdateRecord(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"eliminado": true}, nil)
}

package schedule

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	horarios := r.Group("/horarios")
	{
		horarios.GET("", h.GetWeek)
		horarios.PUT("/:empleadoId", h.ReplaceWeek)
	}
}

package attendance

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the attendance surface. The punch endpoint is
// guarded by the mobile session middleware; the rest is the admin
// surface.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, mobileAuth gin.HandlerFunc) {
	asistencia := r.Group("/asistencia")
	{
		asistencia.POST("/checar", mobileAuth, h.Punch)
		asistencia.GET("", h.List)
		asistencia.PUT("/:id", h.Update)
		asistencia.DELETE("/:id", h.Delete)
	}
}

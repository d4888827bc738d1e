package checkzone

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	zonas := r.Group("/zonas")
	{
		zonas.GET("", h.GetAll)
		zonas.POST("", h.Save)
	}
}

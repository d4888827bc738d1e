package autocheckout

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	autocheckout := r.Group("/autocheckout")
	{
		autocheckout.POST("/process", h.Process)
		autocheckout.GET("/status", h.Status)
		autocheckout.POST("/manual", h.Manual)
	}
}

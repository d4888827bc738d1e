package mobileauth

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler, loginLimiter gin.HandlerFunc) {
	group := r.Group("/movil")
	{
		if loginLimiter != nil {
			group.POST("/login", loginLimiter, h.Login)
		} else {
			group.POST("/login", h.Login)
		}
		group.POST("/verificar", h.Verify)
		group.POST("/cambiar-password", h.ChangePassword)
		group.POST("/logout", h.Logout)
	}
}

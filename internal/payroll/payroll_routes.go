package payroll

import (
	"github.com/SiwoTech/asistencias/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rdb ...*redis.Client) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	nomina := r.Group("/nomina")
	{
		nomina.GET("", h.GetByPeriod)
		nomina.GET("/periodos", h.ListPeriods)
		nomina.GET("/:id/detalle", h.GetDetail)
		nomina.PUT("/:id", h.Update)
		nomina.DELETE("", h.DeletePeriod)

		if redisClient != nil {
			nomina.POST("/generar", middleware.Idempotency(redisClient), h.Generate)
		} else {
			nomina.POST("/generar", h.Generate)
		}
	}
}

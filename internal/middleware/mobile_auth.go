package middleware

import (
	"net/http"

	"github.com/SiwoTech/asistencias/internal/mobileauth"
	"github.com/SiwoTech/asistencias/internal/shared/apperror"
	"github.com/SiwoTech/asistencias/internal/shared/contextutil"
	"github.com/SiwoTech/asistencias/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// MobileAuth validates the mobile session token and puts the employee
// id on the request context. Temporary sessions issued on first login
// can only change the password, never punch.
func MobileAuth(service mobileauth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := mobileauth.TokenFromRequest(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Sesión requerida", nil)
			c.Abort()
			return
		}

		res, err := service.VerifySession(c.Request.Context(), token)
		if err != nil {
			httpErr := apperror.ToHTTP(err)
			response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
			c.Abort()
			return
		}
		if res.CambiarPassword {
			response.Error(c, http.StatusForbidden, apperror.CodeForbidden, "Debes cambiar tu contraseña antes de continuar", nil)
			c.Abort()
			return
		}

		c.Set("empleado_id", res.Empleado.ID)
		ctx := contextutil.WithEmployeeID(c.Request.Context(), res.Empleado.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

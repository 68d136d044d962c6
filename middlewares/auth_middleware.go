package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jfcastellanos/marketplace-app/utils"
)

// sessionToken saca el token de la cookie de sesion o, como fallback, del
// header Authorization.
func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(utils.SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	auth := c.GetHeader("Authorization")
	return strings.TrimPrefix(auth, "Bearer ")
}

// SessionClaims lee la sesion si existe, sin exigirla.
func SessionClaims(c *gin.Context) *utils.SessionClaims {
	token := sessionToken(c)
	if token == "" {
		return nil
	}
	claims, err := utils.ParseSessionToken(token)
	if err != nil {
		return nil
	}
	return claims
}

// RequireSession corta con 401 cuando no hay sesion valida y deja los
// claims en el contexto.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := SessionClaims(c)
		if claims == nil || claims.UsuarioID == 0 {
			utils.RespondFail(c, 401, "No autenticado")
			c.Abort()
			return
		}
		c.Set("sesion", claims)
		c.Next()
	}
}

// SesionActual devuelve los claims dejados por RequireSession.
func SesionActual(c *gin.Context) *utils.SessionClaims {
	if v, ok := c.Get("sesion"); ok {
		if claims, ok := v.(*utils.SessionClaims); ok {
			return claims
		}
	}
	return SessionClaims(c)
}

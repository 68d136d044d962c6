package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondError responde {"error": "..."}; es la forma que usa el CRUD de
// catalogo, imagenes y productos.
func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"error": err.Error()})
}

// RespondFail responde {"ok": false, "msg": "..."}; forma de login/checkout.
func RespondFail(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"ok": false, "msg": msg})
}

// RespondOK mezcla data con {"ok": true}.
func RespondOK(c *gin.Context, code int, data gin.H) {
	out := gin.H{"ok": true}
	for k, v := range data {
		out[k] = v
	}
	c.JSON(code, out)
}

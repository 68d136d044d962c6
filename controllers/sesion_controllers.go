package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/middlewares"
	"github.com/jfcastellanos/marketplace-app/models"
	"github.com/jfcastellanos/marketplace-app/utils"
)

// SesionController maneja el login por storefront y el ciclo de la cookie
// de sesion (sid, HTTP-only, 7 dias).
type SesionController struct {
	DB *gorm.DB
}

func NewSesionController(db *gorm.DB) *SesionController {
	return &SesionController{DB: db}
}

func buscarNegocioPorSlug(db *gorm.DB, slug string) (*models.Negocio, error) {
	var negocio models.Negocio
	err := db.Where("slug = ? AND estado = 1", slug).First(&negocio).Error
	if err != nil {
		return nil, err
	}
	return &negocio, nil
}

// LoginNegocio: POST /api/negocio/:slug/login
func (sc *SesionController) LoginNegocio(c *gin.Context) {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		utils.RespondFail(c, http.StatusBadRequest, "Email y contraseña son requeridos")
		return
	}

	negocio, err := buscarNegocioPorSlug(sc.DB, c.Param("slug"))
	if err != nil {
		utils.RespondFail(c, http.StatusNotFound, "Negocio no encontrado o inactivo")
		return
	}

	var usuario models.Usuario
	err = sc.DB.Where("email = ? AND negocio_id = ?", req.Email, negocio.ID).First(&usuario).Error
	if err != nil || usuario.Estado != 1 {
		utils.RespondFail(c, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usuario.Password), []byte(req.Password)); err != nil {
		utils.RespondFail(c, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}

	claims := &utils.SessionClaims{
		UsuarioID: usuario.ID,
		NegocioID: negocio.ID,
		Nombre:    usuario.Nombre,
		Apellido:  usuario.Apellido,
		Email:     usuario.Email,
		Telefono:  usuario.Telefono,
	}
	token, err := utils.GenerateSessionToken(claims)
	if err != nil {
		utils.RespondFail(c, http.StatusInternalServerError, "Error interno del servidor")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.SessionCookieName, token, int(utils.SessionTTL.Seconds()), "/", "", false, true)

	utils.RespondOK(c, http.StatusOK, gin.H{
		"usuario": gin.H{
			"id":         usuario.ID,
			"negocio_id": usuario.NegocioID,
			"nombre":     usuario.Nombre,
			"apellido":   usuario.Apellido,
			"email":      usuario.Email,
			"telefono":   usuario.Telefono,
		},
		"negocio": gin.H{
			"id":           negocio.ID,
			"razon_social": negocio.RazonSocial,
			"logo":         negocio.Logo,
			"slug":         negocio.Slug,
		},
	})
}

// Sesion: GET /api/sesion — estado de la sesion actual.
func (sc *SesionController) Sesion(c *gin.Context) {
	claims := middlewares.SessionClaims(c)
	if claims == nil {
		c.JSON(http.StatusOK, gin.H{"ok": false, "usuario": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"usuario": gin.H{
			"id":         claims.UsuarioID,
			"negocio_id": claims.NegocioID,
			"nombre":     claims.Nombre,
			"apellido":   claims.Apellido,
			"email":      claims.Email,
			"telefono":   claims.Telefono,
		},
	})
}

// Logout: POST /api/logout — borra la cookie.
func (sc *SesionController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

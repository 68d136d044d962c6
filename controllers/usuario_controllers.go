package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/models"
	"github.com/jfcastellanos/marketplace-app/utils"
)

// Validaciones espejo de las del formulario del front.
var (
	nombreRegex = regexp.MustCompile(`^[A-Za-zÁÉÍÓÚáéíóúÑñ ]{1,20}$`)
	emailRegex  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.(com|co)$`)
)

// passwordValida: minimo 10 caracteres con letra, numero y un caracter
// especial. (RE2 no soporta lookaheads, asi que se chequea por partes.)
func passwordValida(pass string) bool {
	if len(pass) < 10 {
		return false
	}
	hasLetter := strings.ContainsFunc(pass, unicode.IsLetter)
	hasDigit := strings.ContainsFunc(pass, unicode.IsDigit)
	hasSpecial := strings.ContainsFunc(pass, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return hasLetter && hasDigit && hasSpecial
}

type UsuarioController struct {
	DB *gorm.DB
}

func NewUsuarioController(db *gorm.DB) *UsuarioController {
	return &UsuarioController{DB: db}
}

// Registro crea un admin (rol=0) o un usuario de negocio (rol=1) segun
// venga negocio_id.
func (uc *UsuarioController) Registro(c *gin.Context) {
	type request struct {
		Nombre    string `json:"nombre"`
		Apellido  string `json:"apellido"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Telefono  string `json:"telefono"`
		NegocioID *uint  `json:"negocio_id"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Nombre == "" || req.Apellido == "" || req.Email == "" || req.Password == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Faltan datos obligatorios."))
		return
	}
	if !nombreRegex.MatchString(req.Nombre) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Nombre inválido (solo letras y espacios, máx. 20)."))
		return
	}
	if !nombreRegex.MatchString(req.Apellido) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Apellido inválido (solo letras y espacios, máx. 20)."))
		return
	}
	if !emailRegex.MatchString(req.Email) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Correo inválido (debe terminar en .com o .co)."))
		return
	}
	if !passwordValida(req.Password) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Contraseña inválida: mínimo 10 caracteres, con letras, números y al menos un carácter especial."))
		return
	}

	var existing models.Usuario
	if err := uc.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("El correo ya está registrado."))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	rol := models.RolAdmin
	if req.NegocioID != nil {
		rol = models.RolNegocio
	}

	usuario := models.Usuario{
		Nombre:    req.Nombre,
		Apellido:  req.Apellido,
		Email:     req.Email,
		Password:  string(hashed),
		Telefono:  req.Telefono,
		Rol:       rol,
		NegocioID: req.NegocioID,
		Estado:    1,
	}
	if err := uc.DB.Create(&usuario).Error; err != nil {
		// un registro concurrente puede pasar el chequeo previo
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "Duplicate") {
			utils.RespondError(c, http.StatusConflict, errors.New("El correo ya está registrado."))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error interno al registrar."))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje": "Usuario registrado correctamente.",
		"usuario": gin.H{
			"id":         usuario.ID,
			"nombre":     usuario.Nombre,
			"apellido":   usuario.Apellido,
			"email":      usuario.Email,
			"rol":        usuario.Rol,
			"negocio_id": usuario.NegocioID,
		},
	})
}

// Login valida credenciales; con negocio_id ademas exige pertenencia.
func (uc *UsuarioController) Login(c *gin.Context) {
	type request struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		NegocioID *uint  `json:"negocio_id"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Faltan correo o contraseña."))
		return
	}

	var usuario models.Usuario
	err := uc.DB.Where("email = ? AND estado = 1", req.Email).First(&usuario).Error
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("Credenciales incorrectas."))
		return
	}

	if req.NegocioID != nil {
		if usuario.Rol != models.RolNegocio || usuario.NegocioID == nil || *usuario.NegocioID != *req.NegocioID {
			utils.RespondError(c, http.StatusForbidden, errors.New("No autorizado para este negocio."))
			return
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usuario.Password), []byte(req.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("Credenciales incorrectas."))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje": "Login exitoso.",
		"usuario": gin.H{
			"id":         usuario.ID,
			"nombre":     usuario.Nombre,
			"apellido":   usuario.Apellido,
			"email":      usuario.Email,
			"rol":        usuario.Rol,
			"negocio_id": usuario.NegocioID,
		},
	})
}

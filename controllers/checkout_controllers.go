package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/middlewares"
	"github.com/jfcastellanos/marketplace-app/models"
	"github.com/jfcastellanos/marketplace-app/services"
	"github.com/jfcastellanos/marketplace-app/utils"
)

type CheckoutController struct {
	DB       *gorm.DB
	Checkout *services.CheckoutService
	Cart     *services.CartService
}

func NewCheckoutController(db *gorm.DB, checkout *services.CheckoutService, cart *services.CartService) *CheckoutController {
	return &CheckoutController{DB: db, Checkout: checkout, Cart: cart}
}

// Prefill: GET /api/checkout/:slug — datos de contacto de la sesion, la
// ultima direccion guardada del usuario y la tarifa de domicilio del
// negocio, para precargar el formulario.
func (cc *CheckoutController) Prefill(c *gin.Context) {
	negocio, err := buscarNegocioPorSlug(cc.DB, c.Param("slug"))
	if err != nil {
		utils.RespondFail(c, http.StatusNotFound, "Negocio no encontrado")
		return
	}
	sesion := middlewares.SesionActual(c)

	if _, err := cc.Checkout.ValidarUsuario(sesion.UsuarioID, negocio.ID); err != nil {
		if errors.Is(err, services.ErrNegocioNoCoincide) {
			utils.RespondFail(c, http.StatusForbidden, "El usuario no pertenece al negocio")
			return
		}
		utils.RespondFail(c, http.StatusUnauthorized, "Sesión inválida")
		return
	}

	var direccion *models.DireccionUsuario
	var d models.DireccionUsuario
	err = cc.DB.Where("usuario_id = ?", sesion.UsuarioID).
		Order("id DESC").
		First(&d).Error
	if err == nil {
		direccion = &d
	}

	utils.RespondOK(c, http.StatusOK, gin.H{
		"contacto": gin.H{
			"nombre":   sesion.Nombre,
			"apellido": sesion.Apellido,
			"email":    sesion.Email,
			"telefono": sesion.Telefono,
		},
		"direccion":      direccion,
		"costoDomicilio": cc.Checkout.CostoDomicilio(negocio.ID, nil),
	})
}

// Confirmar: POST /api/checkout/:slug — crea el pedido en una transaccion.
// El subtotal y el total los recalcula el servidor; del cliente solo se
// acepta el costo de domicilio cuando viene y no es negativo.
func (cc *CheckoutController) Confirmar(c *gin.Context) {
	negocio, err := buscarNegocioPorSlug(cc.DB, c.Param("slug"))
	if err != nil {
		utils.RespondFail(c, http.StatusNotFound, "Negocio no encontrado")
		return
	}
	sesion := middlewares.SesionActual(c)

	type request struct {
		Contacto       services.CheckoutContacto  `json:"contacto"`
		Direccion      services.CheckoutDireccion `json:"direccion"`
		TipoEntrega    string                     `json:"tipo_entrega"`
		MetodoPago     string                     `json:"metodo_pago"`
		Notas          string                     `json:"notas"`
		CostoDomicilio *float64                   `json:"costoDomicilio"`
		Items          []services.CheckoutItem    `json:"items"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondFail(c, http.StatusBadRequest, "Cuerpo inválido")
		return
	}

	pedidoID, totals, err := cc.Checkout.Crear(services.CheckoutInput{
		NegocioID:      negocio.ID,
		UsuarioID:      sesion.UsuarioID,
		Contacto:       req.Contacto,
		Direccion:      req.Direccion,
		TipoEntrega:    req.TipoEntrega,
		MetodoPago:     req.MetodoPago,
		Notas:          req.Notas,
		CostoDomicilio: req.CostoDomicilio,
		Items:          req.Items,
	})

	var imgErr *services.ImagenAjenaError
	switch {
	case errors.Is(err, services.ErrUsuarioInvalido):
		utils.RespondFail(c, http.StatusUnauthorized, "Sesión inválida")
		return
	case errors.Is(err, services.ErrNegocioNoCoincide):
		utils.RespondFail(c, http.StatusForbidden, "El usuario no pertenece al negocio")
		return
	case errors.Is(err, services.ErrSinItems):
		utils.RespondFail(c, http.StatusBadRequest, "El pedido no contiene ítems válidos")
		return
	case errors.As(err, &imgErr):
		utils.RespondFail(c, http.StatusBadRequest, imgErr.Error())
		return
	case errors.Is(err, services.ErrSubtotalInvalido):
		utils.RespondFail(c, http.StatusBadRequest, "El subtotal del pedido es inválido")
		return
	case err != nil:
		utils.ErrorLogger.Printf("Error creando pedido: %v", err)
		utils.RespondFail(c, http.StatusInternalServerError, "Error creando el pedido")
		return
	}

	// pedido creado: el borrador del carrito ya no aplica
	if cc.Cart != nil {
		if err := cc.Cart.Vaciar(sesion.UsuarioID, negocio.ID); err != nil {
			utils.ErrorLogger.Printf("Error vaciando carrito tras el pedido %d: %v", pedidoID, err)
		}
	}

	utils.InfoLogger.Printf("Pedido %d creado en negocio %d por %s", pedidoID, negocio.ID, utils.FormatCOP(totals.Total))
	utils.RespondOK(c, http.StatusCreated, gin.H{
		"pedidoId": pedidoID,
		"totals":   totals,
	})
}

// Pedido: GET /api/pedidos/:pedidoId — detalle del pedido del usuario.
func (cc *CheckoutController) Pedido(c *gin.Context) {
	pedidoID, ok := paramUint(c, "pedidoId")
	if !ok {
		utils.RespondFail(c, http.StatusBadRequest, "pedidoId inválido")
		return
	}
	sesion := middlewares.SesionActual(c)

	var pedido models.Pedido
	err := cc.DB.Preload("Items").First(&pedido, pedidoID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondFail(c, http.StatusNotFound, "Pedido no encontrado")
		return
	}
	if err != nil {
		utils.RespondFail(c, http.StatusInternalServerError, "Error consultando el pedido")
		return
	}
	if pedido.UsuarioID != sesion.UsuarioID {
		utils.RespondFail(c, http.StatusForbidden, "El pedido no pertenece al usuario")
		return
	}

	utils.RespondOK(c, http.StatusOK, gin.H{"pedido": pedido})
}

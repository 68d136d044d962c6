package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/middlewares"
	"github.com/jfcastellanos/marketplace-app/services"
	"github.com/jfcastellanos/marketplace-app/utils"
)

// CarritoController expone el pedido en borrador del usuario autenticado.
// Todas las rutas van detras de RequireSession y resuelven el negocio por
// slug.
type CarritoController struct {
	DB   *gorm.DB
	Cart *services.CartService
}

func NewCarritoController(db *gorm.DB, cart *services.CartService) *CarritoController {
	return &CarritoController{DB: db, Cart: cart}
}

// Listar: GET /api/carrito/:slug
func (cc *CarritoController) Listar(c *gin.Context) {
	negocio, err := buscarNegocioPorSlug(cc.DB, c.Param("slug"))
	if err != nil {
		utils.RespondFail(c, http.StatusNotFound, "Negocio no encontrado")
		return
	}
	sesion := middlewares.SesionActual(c)

	lineas, subtotal, err := cc.Cart.Listar(sesion.UsuarioID, negocio.ID)
	if err != nil {
		utils.RespondFail(c, http.StatusInternalServerError, "Error consultando el carrito")
		return
	}
	utils.RespondOK(c, http.StatusOK, gin.H{
		"items":    lineas,
		"subtotal": subtotal,
	})
}

// Agregar: POST /api/carrito/:slug/items
// {producto_id, cantidad?, seleccion?: {categoriaId: itemId}}
func (cc *CarritoController) Agregar(c *gin.Context) {
	negocio, err := buscarNegocioPorSlug(cc.DB, c.Param("slug"))
	if err != nil {
		utils.RespondFail(c, http.StatusNotFound, "Negocio no encontrado")
		return
	}
	sesion := middlewares.SesionActual(c)

	type request struct {
		ProductoID uint          `json:"producto_id"`
		Cantidad   int           `json:"cantidad"`
		Seleccion  map[uint]uint `json:"seleccion"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductoID == 0 {
		utils.RespondFail(c, http.StatusBadRequest, "producto_id es requerido")
		return
	}
	if req.Seleccion == nil {
		req.Seleccion = map[uint]uint{}
	}

	linea, err := cc.Cart.Agregar(sesion.UsuarioID, negocio.ID, req.ProductoID, req.Cantidad, req.Seleccion)
	switch {
	case errors.Is(err, services.ErrProductoNoDisponible):
		utils.RespondFail(c, http.StatusNotFound, "El producto no está disponible")
		return
	case errors.Is(err, services.ErrSeleccionIncompleta), errors.Is(err, services.ErrSeleccionInvalida):
		utils.RespondFail(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		utils.RespondFail(c, http.StatusInternalServerError, "Error agregando al carrito")
		return
	}
	utils.RespondOK(c, http.StatusCreated, gin.H{"item": linea})
}

// Cantidad: PATCH /api/carrito/items/:itemId {op: "inc"|"dec"}
func (cc *CarritoController) Cantidad(c *gin.Context) {
	itemID, ok := paramUint(c, "itemId")
	if !ok {
		utils.RespondFail(c, http.StatusBadRequest, "itemId inválido")
		return
	}
	sesion := middlewares.SesionActual(c)

	type request struct {
		Op string `json:"op"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil || (req.Op != "inc" && req.Op != "dec") {
		utils.RespondFail(c, http.StatusBadRequest, `op debe ser "inc" o "dec"`)
		return
	}

	var linea interface{}
	var err error
	if req.Op == "inc" {
		linea, err = cc.Cart.Incrementar(sesion.UsuarioID, itemID)
	} else {
		linea, err = cc.Cart.Decrementar(sesion.UsuarioID, itemID)
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondFail(c, http.StatusNotFound, "Línea no encontrada")
		return
	case errors.Is(err, services.ErrLineaAjena):
		utils.RespondFail(c, http.StatusForbidden, "La línea no pertenece al usuario")
		return
	case err != nil:
		utils.RespondFail(c, http.StatusInternalServerError, "Error actualizando cantidad")
		return
	}
	utils.RespondOK(c, http.StatusOK, gin.H{"item": linea})
}

// Quitar: DELETE /api/carrito/items/:itemId
func (cc *CarritoController) Quitar(c *gin.Context) {
	itemID, ok := paramUint(c, "itemId")
	if !ok {
		utils.RespondFail(c, http.StatusBadRequest, "itemId inválido")
		return
	}
	sesion := middlewares.SesionActual(c)

	err := cc.Cart.Quitar(sesion.UsuarioID, itemID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondFail(c, http.StatusNotFound, "Línea no encontrada")
		return
	case errors.Is(err, services.ErrLineaAjena):
		utils.RespondFail(c, http.StatusForbidden, "La línea no pertenece al usuario")
		return
	case err != nil:
		utils.RespondFail(c, http.StatusInternalServerError, "Error quitando la línea")
		return
	}
	utils.RespondOK(c, http.StatusOK, nil)
}

// Vaciar: DELETE /api/carrito/:slug
func (cc *CarritoController) Vaciar(c *gin.Context) {
	negocio, err := buscarNegocioPorSlug(cc.DB, c.Param("slug"))
	if err != nil {
		utils.RespondFail(c, http.StatusNotFound, "Negocio no encontrado")
		return
	}
	sesion := middlewares.SesionActual(c)

	if err := cc.Cart.Vaciar(sesion.UsuarioID, negocio.ID); err != nil {
		utils.RespondFail(c, http.StatusInternalServerError, "Error vaciando el carrito")
		return
	}
	utils.RespondOK(c, http.StatusOK, nil)
}

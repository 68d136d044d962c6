package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/models"
	"github.com/jfcastellanos/marketplace-app/utils"
)

type ProductoController struct {
	DB *gorm.DB
}

func NewProductoController(db *gorm.DB) *ProductoController {
	return &ProductoController{DB: db}
}

// productoVista junta el producto con los datos visibles de su imagen.
type productoVista struct {
	models.Producto
	ImgURL    string `json:"img_url"`
	ImgTitulo string `json:"img_titulo"`
	ImgEstado int    `json:"img_estado"`
}

// Listar: GET /api/negocios/:negocioId/productos?estado=
func (pc *ProductoController) Listar(c *gin.Context) {
	negocioID, ok := paramUint(c, "negocioId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("negocioId inválido"))
		return
	}

	q := pc.DB.Table("productos p").
		Select("p.*, i.url AS img_url, i.titulo AS img_titulo, i.estado AS img_estado").
		Joins("JOIN imagenes i ON i.id = p.imagen_id").
		Where("p.negocio_id = ?", negocioID)
	if estado := c.Query("estado"); estado == "0" || estado == "1" {
		q = q.Where("p.estado = ?", estado)
	}

	var productos []productoVista
	if err := q.Order("p.id DESC").Scan(&productos).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error listando productos"))
		return
	}
	if productos == nil {
		productos = []productoVista{}
	}
	c.JSON(http.StatusOK, productos)
}

// imagenPropia valida que la imagen exista y pertenezca al negocio.
func (pc *ProductoController) imagenPropia(negocioID, imagenID uint) error {
	var count int64
	err := pc.DB.Model(&models.Imagen{}).
		Where("id = ? AND negocio_id = ?", imagenID, negocioID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Crear: POST /api/negocios/:negocioId/productos
// {imagen_id, nombre?, descripcion?, base_precio?} — 404 si la imagen es
// ajena, 409 si la imagen ya respalda otro producto.
func (pc *ProductoController) Crear(c *gin.Context) {
	negocioID, ok := paramUint(c, "negocioId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("negocioId inválido"))
		return
	}

	type request struct {
		ImagenID    uint     `json:"imagen_id"`
		Nombre      *string  `json:"nombre"`
		Descripcion *string  `json:"descripcion"`
		BasePrecio  *float64 `json:"base_precio"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil || req.ImagenID == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("imagen_id es requerido"))
		return
	}

	if err := pc.imagenPropia(negocioID, req.ImagenID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("La imagen no existe o no pertenece al negocio"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error validando imagen"))
		return
	}

	prod := models.Producto{
		NegocioID: negocioID,
		ImagenID:  req.ImagenID,
		Estado:    1,
	}
	if req.Nombre != nil {
		n := strings.TrimSpace(*req.Nombre)
		if n != "" {
			prod.Nombre = &n
		}
	}
	if req.Descripcion != nil {
		d := strings.TrimSpace(*req.Descripcion)
		if d != "" {
			prod.Descripcion = &d
		}
	}
	if req.BasePrecio != nil && *req.BasePrecio >= 0 {
		prod.BasePrecio = utils.RoundCOP(*req.BasePrecio)
	}

	if err := pc.DB.Create(&prod).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "Duplicate") {
			utils.RespondError(c, http.StatusConflict, errors.New("La imagen ya tiene un producto"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error creando producto"))
		return
	}
	c.JSON(http.StatusCreated, prod)
}

// Actualizar: PUT /api/productos/:productoId — puede mover el producto a
// otra imagen del mismo negocio, con los mismos 404/409 del alta.
func (pc *ProductoController) Actualizar(c *gin.Context) {
	productoID, ok := paramUint(c, "productoId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("productoId inválido"))
		return
	}

	var prod models.Producto
	if err := pc.DB.First(&prod, productoID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Producto no encontrado"))
		return
	}

	type request struct {
		ImagenID    *uint    `json:"imagen_id"`
		Nombre      *string  `json:"nombre"`
		Descripcion *string  `json:"descripcion"`
		BasePrecio  *float64 `json:"base_precio"`
		Estado      *int     `json:"estado"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{}
	if req.ImagenID != nil && *req.ImagenID != 0 && *req.ImagenID != prod.ImagenID {
		if err := pc.imagenPropia(prod.NegocioID, *req.ImagenID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondError(c, http.StatusNotFound, errors.New("La imagen no existe o no pertenece al negocio"))
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, errors.New("Error validando imagen"))
			return
		}
		updates["imagen_id"] = *req.ImagenID
	}
	if req.Nombre != nil {
		updates["nombre"] = strings.TrimSpace(*req.Nombre)
	}
	if req.Descripcion != nil {
		updates["descripcion"] = strings.TrimSpace(*req.Descripcion)
	}
	if req.BasePrecio != nil && *req.BasePrecio >= 0 {
		updates["base_precio"] = utils.RoundCOP(*req.BasePrecio)
	}
	if req.Estado != nil && (*req.Estado == 0 || *req.Estado == 1) {
		updates["estado"] = *req.Estado
	}
	if len(updates) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Nada que actualizar"))
		return
	}

	err := pc.DB.Model(&models.Producto{}).Where("id = ?", productoID).Updates(updates).Error
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "Duplicate") {
			utils.RespondError(c, http.StatusConflict, errors.New("La imagen ya tiene un producto"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error actualizando producto"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// CambiarEstado: PATCH /api/productos/:productoId {estado}
func (pc *ProductoController) CambiarEstado(c *gin.Context) {
	productoID, ok := paramUint(c, "productoId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("productoId inválido"))
		return
	}

	type request struct {
		Estado *int `json:"estado"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil || req.Estado == nil || (*req.Estado != 0 && *req.Estado != 1) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("estado debe ser 0 o 1"))
		return
	}

	res := pc.DB.Model(&models.Producto{}).Where("id = ?", productoID).Update("estado", *req.Estado)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error actualizando producto"))
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("Producto no encontrado"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Eliminar: DELETE /api/productos/:productoId — borra tambien sus
// overrides de precio.
func (pc *ProductoController) Eliminar(c *gin.Context) {
	productoID, ok := paramUint(c, "productoId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("productoId inválido"))
		return
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productoID).
			Delete(&models.ProductoOpcionPrecio{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Producto{}, productoID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, errors.New("Producto no encontrado"))
		return
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error eliminando producto"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Opciones: GET /api/productos/:productoId/opciones — overrides de precio
// por item del producto.
func (pc *ProductoController) Opciones(c *gin.Context) {
	productoID, ok := paramUint(c, "productoId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("productoId inválido"))
		return
	}

	var prod models.Producto
	if err := pc.DB.First(&prod, productoID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Producto no encontrado"))
		return
	}

	var opciones []models.ProductoOpcionPrecio
	if err := pc.DB.Where("product_id = ?", productoID).Find(&opciones).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error consultando opciones"))
		return
	}
	if opciones == nil {
		opciones = []models.ProductoOpcionPrecio{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "opciones": opciones})
}

type opcionPrecioReq struct {
	CategoriaID uint    `json:"categoria_id"`
	ItemID      uint    `json:"item_id"`
	Precio      float64 `json:"precio"`
}

// GuardarOpciones: PUT /api/productos/:productoId/opciones
// {opciones:[{categoria_id,item_id,precio}]} — replace-set: borra las
// anteriores y escribe las enviadas en una transaccion.
func (pc *ProductoController) GuardarOpciones(c *gin.Context) {
	productoID, ok := paramUint(c, "productoId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("productoId inválido"))
		return
	}

	var prod models.Producto
	if err := pc.DB.First(&prod, productoID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Producto no encontrado"))
		return
	}

	type request struct {
		Opciones []opcionPrecioReq `json:"opciones"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	for _, o := range req.Opciones {
		if o.CategoriaID == 0 || o.ItemID == 0 || o.Precio < 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("Cada opción requiere categoria_id, item_id y precio >= 0"))
			return
		}
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productoID).
			Delete(&models.ProductoOpcionPrecio{}).Error; err != nil {
			return err
		}
		if len(req.Opciones) == 0 {
			return nil
		}
		rows := make([]models.ProductoOpcionPrecio, 0, len(req.Opciones))
		for _, o := range req.Opciones {
			rows = append(rows, models.ProductoOpcionPrecio{
				ProductoID:  productoID,
				CategoriaID: o.CategoriaID,
				ItemID:      o.ItemID,
				Precio:      utils.RoundCOP(o.Precio),
			})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error guardando opciones"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": len(req.Opciones)})
}

// PreciosGlobales: GET /api/negocios/:negocioId/atributos/precios —
// recargos globales del negocio por item.
func (pc *ProductoController) PreciosGlobales(c *gin.Context) {
	negocioID, ok := paramUint(c, "negocioId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("negocioId inválido"))
		return
	}

	var precios []models.NegocioItemPrecio
	if err := pc.DB.Where("negocio_id = ?", negocioID).Find(&precios).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error consultando precios"))
		return
	}
	if precios == nil {
		precios = []models.NegocioItemPrecio{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "precios": precios})
}

// GuardarPreciosGlobales: PUT /api/negocios/:negocioId/atributos/precios
// {precios:[{categoria_id,item_id,precio}]} — replace-set.
func (pc *ProductoController) GuardarPreciosGlobales(c *gin.Context) {
	negocioID, ok := paramUint(c, "negocioId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("negocioId inválido"))
		return
	}

	type request struct {
		Precios []opcionPrecioReq `json:"precios"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	for _, p := range req.Precios {
		if p.CategoriaID == 0 || p.ItemID == 0 || p.Precio < 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("Cada precio requiere categoria_id, item_id y precio >= 0"))
			return
		}
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("negocio_id = ?", negocioID).
			Delete(&models.NegocioItemPrecio{}).Error; err != nil {
			return err
		}
		if len(req.Precios) == 0 {
			return nil
		}
		rows := make([]models.NegocioItemPrecio, 0, len(req.Precios))
		for _, p := range req.Precios {
			rows = append(rows, models.NegocioItemPrecio{
				NegocioID:   negocioID,
				CategoriaID: p.CategoriaID,
				ItemID:      p.ItemID,
				Precio:      utils.RoundCOP(p.Precio),
			})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error guardando precios"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": len(req.Precios)})
}

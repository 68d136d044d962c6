package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/models"
	"github.com/jfcastellanos/marketplace-app/services"
	"github.com/jfcastellanos/marketplace-app/utils"
)

type CategoriaController struct {
	DB      *gorm.DB
	Catalog *services.CatalogService
}

func NewCategoriaController(db *gorm.DB, catalog *services.CatalogService) *CategoriaController {
	return &CategoriaController{DB: db, Catalog: catalog}
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// Listar: GET /api/negocios/:negocioId/categorias?rol=atributo|filtro
// Las categorias de rol filtro siempre salen con items vacios, aunque
// queden residuos en la base.
func (cc *CategoriaController) Listar(c *gin.Context) {
	negocioID, ok := paramUint(c, "negocioId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("negocioId inválido"))
		return
	}

	q := cc.DB.Where("negocio_id = ?", negocioID)
	rol := c.Query("rol")
	if rol == models.RolAtributo || rol == models.RolFiltro {
		q = q.Where("rol = ?", rol)
	}

	var cats []models.Categoria
	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("orden ASC, label ASC")
	}).Order("orden ASC, nombre ASC").Find(&cats).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error listando categorías"))
		return
	}

	for i := range cats {
		if cats[i].Rol == models.RolFiltro || cats[i].Items == nil {
			cats[i].Items = []models.CategoriaItem{}
		}
	}
	c.JSON(http.StatusOK, cats)
}

// Tree: GET /api/negocios/:negocioId/categorias/tree — mismo contenido que
// Listar sin filtro de rol; se mantiene por compatibilidad con el front.
func (cc *CategoriaController) Tree(c *gin.Context) {
	cc.Listar(c)
}

// Crear: POST /api/negocios/:negocioId/categorias {nombre, rol?}
func (cc *CategoriaController) Crear(c *gin.Context) {
	negocioID, ok := paramUint(c, "negocioId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("negocioId inválido"))
		return
	}

	type request struct {
		Nombre string `json:"nombre"`
		Rol    string `json:"rol"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Nombre) == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("nombre es requerido"))
		return
	}

	rol := models.RolAtributo
	if req.Rol == models.RolFiltro {
		rol = models.RolFiltro
	}

	cat := models.Categoria{
		NegocioID: negocioID,
		Nombre:    strings.TrimSpace(req.Nombre),
		Estado:    1,
		Orden:     0,
		Rol:       rol,
	}
	if err := cc.DB.Create(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "Duplicate") {
			utils.RespondError(c, http.StatusConflict, errors.New("La categoría ya existe"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error creando categoría"))
		return
	}

	cat.Items = []models.CategoriaItem{}
	c.JSON(http.StatusCreated, cat)
}

// CrearItems: POST /api/categorias/:categoriaId/items
// Acepta bulk {items:[label,...]} o unitario {label, valor}. Prohibido en
// categorias de rol filtro.
func (cc *CategoriaController) CrearItems(c *gin.Context) {
	categoriaID, ok := paramUint(c, "categoriaId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("categoriaId inválido"))
		return
	}

	var cat models.Categoria
	if err := cc.DB.First(&cat, categoriaID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Categoría no encontrada"))
		return
	}
	if cat.Rol == models.RolFiltro {
		utils.RespondError(c, http.StatusBadRequest, errors.New(`Las categorías con rol "filtro" no aceptan ítems.`))
		return
	}

	type request struct {
		Items []string `json:"items"`
		Label string   `json:"label"`
		Valor string   `json:"valor"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var nuevos []models.CategoriaItem
	switch {
	case len(req.Items) > 0:
		for _, raw := range req.Items {
			label := strings.TrimSpace(raw)
			if label == "" {
				continue
			}
			nuevos = append(nuevos, models.CategoriaItem{
				CategoriaID: categoriaID,
				Label:       label,
				Estado:      1,
			})
		}
	case strings.TrimSpace(req.Label) != "":
		item := models.CategoriaItem{
			CategoriaID: categoriaID,
			Label:       strings.TrimSpace(req.Label),
			Estado:      1,
		}
		if v := strings.TrimSpace(req.Valor); v != "" {
			item.Valor = &v
		}
		nuevos = append(nuevos, item)
	}

	if len(nuevos) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Debe enviar items[] o label"))
		return
	}

	if err := cc.DB.Create(&nuevos).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "Duplicate") {
			utils.RespondError(c, http.StatusConflict, errors.New("Alguno de los ítems ya existe en la categoría"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error agregando ítems"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "items": nuevos})
}

// Actualizar: PATCH /api/categorias/:categoriaId
// estado->0 limpia todas las asociaciones con imagenes; rol->filtro borra
// los items y sus asociaciones. Ambas cascadas son destructivas y corren
// en la misma transaccion que el update.
func (cc *CategoriaController) Actualizar(c *gin.Context) {
	categoriaID, ok := paramUint(c, "categoriaId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("categoriaId inválido"))
		return
	}

	var cat models.Categoria
	if err := cc.DB.First(&cat, categoriaID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Categoría no encontrada"))
		return
	}

	type request struct {
		Nombre *string `json:"nombre"`
		Estado *int    `json:"estado"`
		Orden  *int    `json:"orden"`
		Rol    *string `json:"rol"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Nombre != nil && strings.TrimSpace(*req.Nombre) != "" {
		updates["nombre"] = strings.TrimSpace(*req.Nombre)
	}
	desactiva := false
	if req.Estado != nil && (*req.Estado == 0 || *req.Estado == 1) {
		updates["estado"] = *req.Estado
		desactiva = *req.Estado == 0
	}
	if req.Orden != nil {
		updates["orden"] = *req.Orden
	}
	pasaAFiltro := false
	if req.Rol != nil && (*req.Rol == models.RolAtributo || *req.Rol == models.RolFiltro) {
		updates["rol"] = *req.Rol
		pasaAFiltro = *req.Rol == models.RolFiltro
	}

	if len(updates) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Nada que actualizar"))
		return
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Categoria{}).Where("id = ?", categoriaID).Updates(updates).Error; err != nil {
			return err
		}
		if desactiva {
			if err := services.LimpiarCategoriaDesactivada(tx, categoriaID); err != nil {
				return err
			}
		}
		if pasaAFiltro {
			if err := services.ConvertirEnFiltro(tx, categoriaID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error actualizando categoría"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ActualizarItem: PATCH /api/categorias/:categoriaId/items/:itemId
// estado->0 borra las asociaciones del item con imagenes.
func (cc *CategoriaController) ActualizarItem(c *gin.Context) {
	categoriaID, okCat := paramUint(c, "categoriaId")
	itemID, okItem := paramUint(c, "itemId")
	if !okCat || !okItem {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Parámetros inválidos"))
		return
	}

	var cat models.Categoria
	if err := cc.DB.First(&cat, categoriaID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Categoría no encontrada"))
		return
	}
	if cat.Rol == models.RolFiltro {
		utils.RespondError(c, http.StatusBadRequest, errors.New(`La categoría es de rol "filtro"; los ítems no aplican.`))
		return
	}

	type request struct {
		Label  *string `json:"label"`
		Valor  *string `json:"valor"`
		Estado *int    `json:"estado"`
		Orden  *int    `json:"orden"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Label != nil && strings.TrimSpace(*req.Label) != "" {
		updates["label"] = strings.TrimSpace(*req.Label)
	}
	if req.Valor != nil {
		updates["valor"] = strings.TrimSpace(*req.Valor)
	}
	desactiva := false
	if req.Estado != nil && (*req.Estado == 0 || *req.Estado == 1) {
		updates["estado"] = *req.Estado
		desactiva = *req.Estado == 0
	}
	if req.Orden != nil {
		updates["orden"] = *req.Orden
	}

	if len(updates) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Nada que actualizar"))
		return
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CategoriaItem{}).
			Where("id = ? AND categoria_id = ?", itemID, categoriaID).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if desactiva {
			return tx.Where("item_id = ?", itemID).Delete(&models.ImagenItem{}).Error
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, errors.New("Ítem no encontrado"))
		return
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error actualizando ítem"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Eliminar: DELETE /api/categorias/:categoriaId — borra categoria, items
// y asociaciones.
func (cc *CategoriaController) Eliminar(c *gin.Context) {
	categoriaID, ok := paramUint(c, "categoriaId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("categoriaId inválido"))
		return
	}

	err := cc.Catalog.EliminarCategoria(categoriaID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, errors.New("Categoría no encontrada"))
		return
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error eliminando categoría"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// EliminarItem: DELETE /api/categorias/:categoriaId/items/:itemId
func (cc *CategoriaController) EliminarItem(c *gin.Context) {
	categoriaID, okCat := paramUint(c, "categoriaId")
	itemID, okItem := paramUint(c, "itemId")
	if !okCat || !okItem {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Parámetros inválidos"))
		return
	}

	err := cc.Catalog.EliminarItem(categoriaID, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, errors.New("Ítem no encontrado"))
		return
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error eliminando ítem"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

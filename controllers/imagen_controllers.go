package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/models"
	"github.com/jfcastellanos/marketplace-app/services"
	"github.com/jfcastellanos/marketplace-app/utils"
)

const (
	maxArchivosPorCarga = 10
	maxBytesPorArchivo  = 10 << 20
)

// esImagen acepta por Content-Type o por extension; los clientes no
// siempre mandan el tipo correcto.
func esImagen(filename, contentType string) bool {
	if strings.HasPrefix(contentType, "image/") {
		return true
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif":
		return true
	}
	return false
}

type ImagenController struct {
	DB      *gorm.DB
	Store   services.ImageStore
	Catalog *services.CatalogService
}

func NewImagenController(db *gorm.DB, store services.ImageStore, catalog *services.CatalogService) *ImagenController {
	return &ImagenController{DB: db, Store: store, Catalog: catalog}
}

// imagenVista es la imagen con sus etiquetas ya agrupadas en memoria. El
// agrupado se hace con dos consultas sobre las tablas de union en vez de
// GROUP_CONCAT, para no reparsear strings.
type imagenVista struct {
	models.Imagen
	Categorias []etiqueta `json:"categorias"`
	Items      []etiqueta `json:"items"`
}

type etiqueta struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
}

// etiquetasDeImagenes arma los mapas imagen->categorias e imagen->items.
// Excluye categorias inactivas, items inactivos y los items colgados de
// categorias de rol filtro.
func (ic *ImagenController) etiquetasDeImagenes(ids []uint) (map[uint][]etiqueta, map[uint][]etiqueta, error) {
	cats := make(map[uint][]etiqueta, len(ids))
	items := make(map[uint][]etiqueta, len(ids))
	if len(ids) == 0 {
		return cats, items, nil
	}

	var catRows []struct {
		ImagenID uint
		ID       uint
		Nombre   string
	}
	err := ic.DB.Table("imagen_categoria ic").
		Select("ic.imagen_id, c.id, c.nombre").
		Joins("JOIN categorias c ON c.id = ic.categoria_id AND c.estado = 1").
		Where("ic.imagen_id IN ?", ids).
		Order("c.nombre ASC").
		Scan(&catRows).Error
	if err != nil {
		return nil, nil, err
	}
	for _, r := range catRows {
		cats[r.ImagenID] = append(cats[r.ImagenID], etiqueta{ID: r.ID, Label: r.Nombre})
	}

	var itemRows []struct {
		ImagenID uint
		ID       uint
		Label    string
	}
	err = ic.DB.Table("imagen_item ii").
		Select("ii.imagen_id, i.id, i.label").
		Joins("JOIN categoria_items i ON i.id = ii.item_id AND i.estado = 1").
		Joins("JOIN categorias c ON c.id = i.categoria_id AND c.estado = 1 AND c.rol <> ?", models.RolFiltro).
		Where("ii.imagen_id IN ?", ids).
		Order("i.label ASC").
		Scan(&itemRows).Error
	if err != nil {
		return nil, nil, err
	}
	for _, r := range itemRows {
		items[r.ImagenID] = append(items[r.ImagenID], etiqueta{ID: r.ID, Label: r.Label})
	}
	return cats, items, nil
}

func (ic *ImagenController) agrupar(imgs []models.Imagen) ([]imagenVista, error) {
	ids := make([]uint, len(imgs))
	for i, img := range imgs {
		ids[i] = img.ID
	}
	cats, items, err := ic.etiquetasDeImagenes(ids)
	if err != nil {
		return nil, err
	}

	out := make([]imagenVista, len(imgs))
	for i, img := range imgs {
		v := imagenVista{Imagen: img, Categorias: cats[img.ID], Items: items[img.ID]}
		if v.Categorias == nil {
			v.Categorias = []etiqueta{}
		}
		if v.Items == nil {
			v.Items = []etiqueta{}
		}
		out[i] = v
	}
	return out, nil
}

// Listar: GET /api/negocios/:negocioId/imagenes?estado=
func (ic *ImagenController) Listar(c *gin.Context) {
	negocioID, ok := paramUint(c, "negocioId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("negocioId inválido"))
		return
	}

	q := ic.DB.Where("negocio_id = ?", negocioID)
	if estado := c.Query("estado"); estado == "0" || estado == "1" {
		q = q.Where("estado = ?", estado)
	}

	var imgs []models.Imagen
	if err := q.Order("fecha_cargue DESC, id DESC").Find(&imgs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error listando imágenes"))
		return
	}

	vistas, err := ic.agrupar(imgs)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error listando imágenes"))
		return
	}
	c.JSON(http.StatusOK, vistas)
}

// Detalle: GET /api/imagenes/:imagenId
func (ic *ImagenController) Detalle(c *gin.Context) {
	imagenID, ok := paramUint(c, "imagenId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("imagenId inválido"))
		return
	}

	var img models.Imagen
	if err := ic.DB.First(&img, imagenID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Imagen no encontrada"))
		return
	}

	vistas, err := ic.agrupar([]models.Imagen{img})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error consultando imagen"))
		return
	}
	c.JSON(http.StatusOK, vistas[0])
}

// Cargar: POST /api/negocios/:negocioId/imagenes (multipart, campo
// "imagenes", hasta 10 archivos de 10MB). Cada archivo sube al almacen
// externo y queda como fila nueva del catalogo.
func (ic *ImagenController) Cargar(c *gin.Context) {
	negocioID, ok := paramUint(c, "negocioId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("negocioId inválido"))
		return
	}

	var negocio models.Negocio
	if err := ic.DB.First(&negocio, negocioID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Negocio no encontrado"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Formulario multipart inválido"))
		return
	}
	files := form.File["imagenes"]
	if len(files) == 0 {
		files = form.File["imagen"]
	}
	if len(files) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("No se enviaron archivos"))
		return
	}
	if len(files) > maxArchivosPorCarga {
		utils.RespondError(c, http.StatusBadRequest,
			fmt.Errorf("Máximo %d archivos por carga", maxArchivosPorCarga))
		return
	}
	for _, f := range files {
		if f.Size > maxBytesPorArchivo {
			utils.RespondError(c, http.StatusBadRequest,
				fmt.Errorf("%s supera el límite de 10MB", f.Filename))
			return
		}
		if !esImagen(f.Filename, f.Header.Get("Content-Type")) {
			utils.RespondError(c, http.StatusBadRequest,
				fmt.Errorf("%s no es una imagen", f.Filename))
			return
		}
	}

	var creadas []models.Imagen
	for _, f := range files {
		stored, err := ic.Store.Upload(c.Request.Context(), &negocio, f)
		if err != nil {
			utils.ErrorLogger.Printf("Error subiendo %s: %v", f.Filename, err)
			utils.RespondError(c, http.StatusInternalServerError, errors.New("Error subiendo imagen"))
			return
		}

		img := models.Imagen{
			NegocioID: negocioID,
			URL:       stored.URL,
			PublicID:  stored.PublicID,
			Ancho:     stored.Ancho,
			Alto:      stored.Alto,
			Formato:   stored.Formato,
			Bytes:     stored.Bytes,
			Estado:    1,
			Titulo:    services.TituloDesdeArchivo(f.Filename),
		}
		if err := ic.DB.Create(&img).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, errors.New("Error guardando imagen"))
			return
		}
		creadas = append(creadas, img)
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "imagenes": creadas})
}

// Actualizar: PATCH /api/imagenes/:imagenId {titulo?, alt_text?, estado?}
func (ic *ImagenController) Actualizar(c *gin.Context) {
	imagenID, ok := paramUint(c, "imagenId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("imagenId inválido"))
		return
	}

	type request struct {
		Titulo  *string `json:"titulo"`
		AltText *string `json:"alt_text"`
		Estado  *int    `json:"estado"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Titulo != nil {
		titulo := strings.TrimSpace(*req.Titulo)
		if r := []rune(titulo); len(r) > 30 {
			titulo = string(r[:30])
		}
		updates["titulo"] = titulo
	}
	if req.AltText != nil {
		updates["alt_text"] = strings.TrimSpace(*req.AltText)
	}
	if req.Estado != nil && (*req.Estado == 0 || *req.Estado == 1) {
		updates["estado"] = *req.Estado
	}
	if len(updates) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Nada que actualizar"))
		return
	}

	res := ic.DB.Model(&models.Imagen{}).Where("id = ?", imagenID).Updates(updates)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error actualizando imagen"))
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("Imagen no encontrada"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Eliminar: DELETE /api/imagenes/:imagenId — destruye el asset en el
// almacen externo y borra la fila con sus asociaciones. Si la destruccion
// remota falla se registra y se sigue: la fila local manda.
func (ic *ImagenController) Eliminar(c *gin.Context) {
	imagenID, ok := paramUint(c, "imagenId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("imagenId inválido"))
		return
	}

	var img models.Imagen
	if err := ic.DB.First(&img, imagenID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Imagen no encontrada"))
		return
	}

	if img.PublicID != "" {
		if err := ic.Store.Destroy(c.Request.Context(), img.PublicID); err != nil {
			utils.ErrorLogger.Printf("Error destruyendo asset %s: %v", img.PublicID, err)
		}
	}

	err := ic.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("imagen_id = ?", imagenID).Delete(&models.ImagenCategoria{}).Error; err != nil {
			return err
		}
		if err := tx.Where("imagen_id = ?", imagenID).Delete(&models.ImagenItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Imagen{}, imagenID).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error eliminando imagen"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Asignar: POST /api/negocios/:negocioId/imagenes/asignaciones
// {imagen_ids, categoria_ids?, item_ids?, mode: add|replace}
func (ic *ImagenController) Asignar(c *gin.Context) {
	negocioID, ok := paramUint(c, "negocioId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("negocioId inválido"))
		return
	}

	type request struct {
		ImagenIDs    []uint `json:"imagen_ids"`
		CategoriaIDs []uint `json:"categoria_ids"`
		ItemIDs      []uint `json:"item_ids"`
		Mode         string `json:"mode"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if len(req.ImagenIDs) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("imagen_ids es requerido"))
		return
	}
	mode := req.Mode
	if mode != "replace" {
		mode = "add"
	}

	resumen, err := ic.Catalog.Asignar(negocioID, req.ImagenIDs, req.CategoriaIDs, req.ItemIDs, mode)
	var ownErr *services.OwnershipError
	if errors.As(err, &ownErr) {
		utils.RespondError(c, http.StatusBadRequest, ownErr)
		return
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error aplicando asignaciones"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "resumen": resumen})
}

// LimpiarAsignaciones: POST /api/negocios/:negocioId/imagenes/asignaciones/clear
// {imagen_ids, categorias?, items?} — por defecto limpia ambas.
func (ic *ImagenController) LimpiarAsignaciones(c *gin.Context) {
	negocioID, ok := paramUint(c, "negocioId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("negocioId inválido"))
		return
	}

	type request struct {
		ImagenIDs  []uint `json:"imagen_ids"`
		Categorias *bool  `json:"categorias"`
		Items      *bool  `json:"items"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if len(req.ImagenIDs) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("imagen_ids es requerido"))
		return
	}
	categorias := req.Categorias == nil || *req.Categorias
	items := req.Items == nil || *req.Items

	cleared, err := ic.Catalog.LimpiarAsignaciones(negocioID, req.ImagenIDs, categorias, items)
	var ownErr *services.OwnershipError
	if errors.As(err, &ownErr) {
		utils.RespondError(c, http.StatusBadRequest, ownErr)
		return
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error limpiando asignaciones"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "cleared": cleared})
}

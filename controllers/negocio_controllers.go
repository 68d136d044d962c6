package controllers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/models"
	"github.com/jfcastellanos/marketplace-app/services"
	"github.com/jfcastellanos/marketplace-app/utils"
)

type NegocioController struct {
	DB    *gorm.DB
	Store services.ImageStore
	// BaseURL arma la url_publica de los negocios nuevos.
	BaseURL string
	// FrontendDir es la raiz de los HTML estaticos del storefront.
	FrontendDir string
}

func NewNegocioController(db *gorm.DB, store services.ImageStore, baseURL, frontendDir string) *NegocioController {
	return &NegocioController{DB: db, Store: store, BaseURL: baseURL, FrontendDir: frontendDir}
}

// Crear registra un negocio nuevo (multipart, logo opcional).
func (nc *NegocioController) Crear(c *gin.Context) {
	razonSocial := strings.TrimSpace(c.PostForm("razon_social"))
	if razonSocial == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("razon_social es requerida"))
		return
	}

	negocio := models.Negocio{
		RazonSocial: razonSocial,
		NIT:         strings.TrimSpace(c.PostForm("nit")),
		Telefono:    strings.TrimSpace(c.PostForm("telefono")),
		Descripcion: strings.TrimSpace(c.PostForm("descripcion")),
		RecibePagos: c.PostForm("recibe_pagos") == "1" || c.PostForm("recibe_pagos") == "true",
		Estado:      1,
	}
	if v, err := strconv.ParseFloat(c.PostForm("costo_domicilio"), 64); err == nil && v >= 0 {
		negocio.CostoDomicilio = utils.RoundCOP(v)
	}

	negocio.Slug = services.GenerarSlug(razonSocial)
	negocio.URLPublica = services.URLPublica(nc.BaseURL, negocio.Slug)

	if file, err := c.FormFile("logo"); err == nil {
		stored, err := nc.Store.Upload(c.Request.Context(), &negocio, file)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, errors.New("Error al guardar negocio"))
			return
		}
		negocio.Logo = stored.URL
	}

	if err := nc.DB.Create(&negocio).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error al guardar negocio"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje":     "Negocio creado correctamente",
		"id":          negocio.ID,
		"slug":        negocio.Slug,
		"url_publica": negocio.URLPublica,
	})
}

// Consultar lista negocios con filtros dinamicos: rango de fechas, razon
// social parcial, nit (exacto si es numerico), estado.
func (nc *NegocioController) Consultar(c *gin.Context) {
	q := nc.DB.Model(&models.Negocio{})

	fechaInicio := c.Query("fecha_inicio")
	fechaFin := c.Query("fecha_fin")
	if fechaInicio != "" && fechaFin != "" {
		q = q.Where("DATE(fecha_creacion) BETWEEN ? AND ?", fechaInicio, fechaFin)
	}

	if rs := strings.TrimSpace(c.Query("razon_social")); rs != "" {
		q = q.Where("razon_social LIKE ?", "%"+rs+"%")
	}

	if nit := strings.TrimSpace(c.Query("nit")); nit != "" {
		if _, err := strconv.Atoi(nit); err == nil {
			q = q.Where("nit = ?", nit)
		} else {
			q = q.Where("nit LIKE ?", "%"+nit+"%")
		}
	}

	if estado := c.Query("estado"); estado != "" {
		q = q.Where("estado = ?", estado)
	}

	var negocios []models.Negocio
	if err := q.Order("fecha_creacion DESC").Find(&negocios).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error al obtener negocios"))
		return
	}
	c.JSON(http.StatusOK, negocios)
}

// Actualizar: PUT /api/negocios/:negocioId
func (nc *NegocioController) Actualizar(c *gin.Context) {
	id, ok := paramUint(c, "negocioId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("negocioId inválido"))
		return
	}

	type request struct {
		RazonSocial    string   `json:"razon_social"`
		NIT            string   `json:"nit"`
		Telefono       string   `json:"telefono"`
		Descripcion    string   `json:"descripcion"`
		RecibePagos    bool     `json:"recibe_pagos"`
		CostoDomicilio *float64 `json:"costo_domicilio"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{
		"razon_social": req.RazonSocial,
		"nit":          req.NIT,
		"telefono":     req.Telefono,
		"descripcion":  req.Descripcion,
		"recibe_pagos": req.RecibePagos,
	}
	if req.CostoDomicilio != nil && *req.CostoDomicilio >= 0 {
		updates["costo_domicilio"] = utils.RoundCOP(*req.CostoDomicilio)
	}

	res := nc.DB.Model(&models.Negocio{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error al actualizar negocio"))
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("Negocio no encontrado"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "Negocio actualizado correctamente"})
}

// CambiarEstado: PUT /api/negocios/:negocioId/estado — soft enable/disable.
func (nc *NegocioController) CambiarEstado(c *gin.Context) {
	id, ok := paramUint(c, "negocioId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("negocioId inválido"))
		return
	}

	type request struct {
		NuevoEstado *int `json:"nuevo_estado"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil || req.NuevoEstado == nil ||
		(*req.NuevoEstado != 0 && *req.NuevoEstado != 1) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("nuevo_estado inválido (use 0 o 1)"))
		return
	}

	res := nc.DB.Model(&models.Negocio{}).Where("id = ?", id).Update("estado", *req.NuevoEstado)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error al cambiar estado"))
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("Negocio no encontrado"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "Estado actualizado correctamente"})
}

// Info: GET /api/negocio/info/:slug — datos publicos del storefront.
func (nc *NegocioController) Info(c *gin.Context) {
	negocio, err := buscarNegocioPorSlug(nc.DB, c.Param("slug"))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Negocio no encontrado o inactivo"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":             negocio.ID,
		"razon_social":   negocio.RazonSocial,
		"nit":            negocio.NIT,
		"logo":           negocio.Logo,
		"portada":        negocio.Portada,
		"url_publica":    negocio.URLPublica,
		"slug":           negocio.Slug,
		"costoDomicilio": negocio.CostoDomicilio,
	})
}

// PaginaStorefront sirve un HTML estatico del storefront solo si el
// negocio del slug existe y esta activo.
func (nc *NegocioController) PaginaStorefront(page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := buscarNegocioPorSlug(nc.DB, c.Param("slug")); err != nil {
			c.String(http.StatusNotFound, "Negocio no encontrado o inactivo")
			return
		}
		c.File(filepath.Join(nc.FrontendDir, "negocio", page))
	}
}

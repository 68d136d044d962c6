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

type MarketplaceController struct {
	DB     *gorm.DB
	Market *services.MarketplaceService
}

func NewMarketplaceController(db *gorm.DB, market *services.MarketplaceService) *MarketplaceController {
	return &MarketplaceController{DB: db, Market: market}
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

// Feed: GET /api/marketplace/:slug/feed?q=&categoriaId=&page=&size=
// Resuelve el negocio por slug y devuelve la pagina de productos con
// filtros, atributos y recargos segun el modo configurado.
func (mc *MarketplaceController) Feed(c *gin.Context) {
	negocio, err := buscarNegocioPorSlug(mc.DB, c.Param("slug"))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Negocio no encontrado"))
		return
	}

	var categoriaID uint
	if raw := c.Query("categoriaId"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("categoriaId inválido"))
			return
		}
		categoriaID = uint(v)
	}

	page, err := mc.Market.Feed(services.FeedParams{
		NegocioID:   negocio.ID,
		Q:           strings.TrimSpace(c.Query("q")),
		CategoriaID: categoriaID,
		Page:        queryInt(c, "page", 1),
		Size:        queryInt(c, "size", 20),
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error consultando el feed"))
		return
	}
	c.JSON(http.StatusOK, page)
}

// Filtros: GET /api/marketplace/:slug/filtros — categorias de rol filtro
// activas del negocio, para la barra de navegacion del storefront.
func (mc *MarketplaceController) Filtros(c *gin.Context) {
	negocio, err := buscarNegocioPorSlug(mc.DB, c.Param("slug"))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Negocio no encontrado"))
		return
	}

	var filtros []services.CategoriaRef
	err = mc.DB.Table("categorias").
		Select("id, nombre").
		Where("negocio_id = ? AND rol = ? AND estado = 1", negocio.ID, models.RolFiltro).
		Order("orden, nombre").
		Scan(&filtros).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Error consultando filtros"))
		return
	}
	if filtros == nil {
		filtros = []services.CategoriaRef{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "filtros": filtros})
}

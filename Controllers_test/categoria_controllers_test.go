package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/controllers"
	"github.com/jfcastellanos/marketplace-app/models"
	"github.com/jfcastellanos/marketplace-app/services"
	"github.com/jfcastellanos/marketplace-app/utils"
)

func setupTestDBForCategorias(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:categorias_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Negocio{}, &models.Categoria{}, &models.CategoriaItem{},
		&models.Imagen{}, &models.ImagenCategoria{}, &models.ImagenItem{},
	)
	if err != nil {
		t.Fatal(err)
	}
	db.Create(&models.Negocio{RazonSocial: "Pizzeria Test", Estado: 1, Slug: "pizzeria-test~abc12345"})
	return db
}

func setupCategoriaRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	catalog := services.NewCatalogService(db)
	catCtrl := controllers.NewCategoriaController(db, catalog)
	router.GET("/api/negocios/:negocioId/categorias", catCtrl.Listar)
	router.POST("/api/negocios/:negocioId/categorias", catCtrl.Crear)
	router.POST("/api/categorias/:categoriaId/items", catCtrl.CrearItems)
	router.PATCH("/api/categorias/:categoriaId", catCtrl.Actualizar)
	router.PATCH("/api/categorias/:categoriaId/items/:itemId", catCtrl.ActualizarItem)
	router.DELETE("/api/categorias/:categoriaId", catCtrl.Eliminar)
	router.DELETE("/api/categorias/:categoriaId/items/:itemId", catCtrl.EliminarItem)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, url string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, url, body)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCategoriaCRUD(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCategorias(t)
	router := setupCategoriaRouter(db)

	// crear categoria de atributo
	w := doJSON(t, router, "POST", "/api/negocios/1/categorias", map[string]interface{}{
		"nombre": "Tamaño",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var cat models.Categoria
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &cat))
	assert.Equal(t, "atributo", cat.Rol)

	// duplicado en el mismo negocio -> 409
	w = doJSON(t, router, "POST", "/api/negocios/1/categorias", map[string]interface{}{
		"nombre": "Tamaño",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// sin nombre -> 400
	w = doJSON(t, router, "POST", "/api/negocios/1/categorias", map[string]interface{}{
		"nombre": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// items en bloque
	w = doJSON(t, router, "POST", "/api/categorias/1/items", map[string]interface{}{
		"items": []string{"Pequeño", "Grande"},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var count int64
	db.Model(&models.CategoriaItem{}).Where("categoria_id = ?", 1).Count(&count)
	assert.Equal(t, int64(2), count)

	// renombrar item
	w = doJSON(t, router, "PATCH", "/api/categorias/1/items/1", map[string]interface{}{
		"label": "Personal",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// eliminar item
	w = doJSON(t, router, "DELETE", "/api/categorias/1/items/2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	db.Model(&models.CategoriaItem{}).Where("categoria_id = ?", 1).Count(&count)
	assert.Equal(t, int64(1), count)

	// eliminar categoria
	w = doJSON(t, router, "DELETE", "/api/categorias/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	db.Model(&models.CategoriaItem{}).Where("categoria_id = ?", 1).Count(&count)
	assert.Equal(t, int64(0), count)

	w = doJSON(t, router, "DELETE", "/api/categorias/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoriaFiltroNoAceptaItems(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCategorias(t)
	router := setupCategoriaRouter(db)

	w := doJSON(t, router, "POST", "/api/negocios/1/categorias", map[string]interface{}{
		"nombre": "Promociones",
		"rol":    "filtro",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	var cat models.Categoria
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &cat))
	assert.Equal(t, "filtro", cat.Rol)

	w = doJSON(t, router, "POST", "/api/categorias/"+itoa(cat.ID)+"/items", map[string]interface{}{
		"items": []string{"No debería entrar"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategoriaDesactivarBorraAsociaciones(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCategorias(t)
	router := setupCategoriaRouter(db)

	cat := models.Categoria{NegocioID: 1, Nombre: "Sabores", Estado: 1, Rol: models.RolAtributo}
	db.Create(&cat)
	item := models.CategoriaItem{CategoriaID: cat.ID, Label: "Queso", Estado: 1}
	db.Create(&item)
	img := models.Imagen{NegocioID: 1, URL: "https://cdn/img.jpg", Estado: 1}
	db.Create(&img)
	db.Create(&models.ImagenCategoria{ImagenID: img.ID, CategoriaID: cat.ID})
	db.Create(&models.ImagenItem{ImagenID: img.ID, ItemID: item.ID})

	w := doJSON(t, router, "PATCH", "/api/categorias/"+itoa(cat.ID), map[string]interface{}{
		"estado": 0,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var nCat, nItem int64
	db.Model(&models.ImagenCategoria{}).Where("categoria_id = ?", cat.ID).Count(&nCat)
	db.Model(&models.ImagenItem{}).Where("item_id = ?", item.ID).Count(&nItem)
	assert.Equal(t, int64(0), nCat)
	assert.Equal(t, int64(0), nItem)

	// el item sobrevive; solo las asociaciones se pierden
	var vivos int64
	db.Model(&models.CategoriaItem{}).Where("categoria_id = ?", cat.ID).Count(&vivos)
	assert.Equal(t, int64(1), vivos)

	// reactivar no restaura nada
	w = doJSON(t, router, "PATCH", "/api/categorias/"+itoa(cat.ID), map[string]interface{}{
		"estado": 1,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	db.Model(&models.ImagenCategoria{}).Where("categoria_id = ?", cat.ID).Count(&nCat)
	assert.Equal(t, int64(0), nCat)
}

func TestCategoriaCambioARolFiltroBorraItems(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCategorias(t)
	router := setupCategoriaRouter(db)

	cat := models.Categoria{NegocioID: 1, Nombre: "Adiciones", Estado: 1, Rol: models.RolAtributo}
	db.Create(&cat)
	item := models.CategoriaItem{CategoriaID: cat.ID, Label: "Tocineta", Estado: 1}
	db.Create(&item)
	img := models.Imagen{NegocioID: 1, URL: "https://cdn/otra.jpg", Estado: 1}
	db.Create(&img)
	db.Create(&models.ImagenItem{ImagenID: img.ID, ItemID: item.ID})

	w := doJSON(t, router, "PATCH", "/api/categorias/"+itoa(cat.ID), map[string]interface{}{
		"rol": "filtro",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var nItems, nAsoc int64
	db.Model(&models.CategoriaItem{}).Where("categoria_id = ?", cat.ID).Count(&nItems)
	db.Model(&models.ImagenItem{}).Where("item_id = ?", item.ID).Count(&nAsoc)
	assert.Equal(t, int64(0), nItems)
	assert.Equal(t, int64(0), nAsoc)
}

func TestCategoriaItemDesactivarBorraAsociaciones(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCategorias(t)
	router := setupCategoriaRouter(db)

	cat := models.Categoria{NegocioID: 1, Nombre: "Bordes", Estado: 1, Rol: models.RolAtributo}
	db.Create(&cat)
	item := models.CategoriaItem{CategoriaID: cat.ID, Label: "Relleno", Estado: 1}
	db.Create(&item)
	img := models.Imagen{NegocioID: 1, URL: "https://cdn/borde.jpg", Estado: 1}
	db.Create(&img)
	db.Create(&models.ImagenItem{ImagenID: img.ID, ItemID: item.ID})

	w := doJSON(t, router, "PATCH", "/api/categorias/"+itoa(cat.ID)+"/items/"+itoa(item.ID), map[string]interface{}{
		"estado": 0,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var n int64
	db.Model(&models.ImagenItem{}).Where("item_id = ?", item.ID).Count(&n)
	assert.Equal(t, int64(0), n)
}

func TestCategoriaListarFiltroSiempreSinItems(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCategorias(t)
	router := setupCategoriaRouter(db)

	// negocio propio para no mezclarse con los filtros de otros tests
	filtro := models.Categoria{NegocioID: 77, Nombre: "Destacados", Estado: 1, Rol: models.RolFiltro}
	db.Create(&filtro)
	// residuo directo en la tabla; el listado no debe exponerlo
	db.Create(&models.CategoriaItem{CategoriaID: filtro.ID, Label: "Residuo", Estado: 1})

	req, _ := http.NewRequest("GET", "/api/negocios/77/categorias?rol=filtro", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var cats []models.Categoria
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &cats))
	assert.Len(t, cats, 1)
	assert.Equal(t, "Destacados", cats[0].Nombre)
	assert.Empty(t, cats[0].Items)
}

package Controllers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/controllers"
	"github.com/jfcastellanos/marketplace-app/models"
	"github.com/jfcastellanos/marketplace-app/utils"
)

func setupTestDBForNegocios(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:negocios_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Negocio{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func setupNegocioRouter(db *gorm.DB, store *stubStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	negocioCtrl := controllers.NewNegocioController(db, store, "http://localhost:3000", "")
	router.POST("/api/negocios", negocioCtrl.Crear)
	router.GET("/api/negocios", negocioCtrl.Consultar)
	router.PUT("/api/negocios/:negocioId", negocioCtrl.Actualizar)
	router.PUT("/api/negocios/:negocioId/estado", negocioCtrl.CambiarEstado)
	router.GET("/api/negocio/info/:slug", negocioCtrl.Info)
	return router
}

func crearNegocioForm(t *testing.T, router *gin.Engine, campos map[string]string) *bytes.Buffer {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range campos {
		assert.NoError(t, writer.WriteField(k, v))
	}
	assert.NoError(t, writer.Close())

	req, _ := http.NewRequest("POST", "/api/negocios", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := doRaw(router, req)
	assert.Equal(t, http.StatusOK, w.Code)
	return w.Body
}

func TestNegocioCrearYConsultar(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForNegocios(t)
	router := setupNegocioRouter(db, &stubStore{})

	body := crearNegocioForm(t, router, map[string]string{
		"razon_social":    "Café del Parque",
		"nit":             "900123456",
		"telefono":        "6015551234",
		"costo_domicilio": "3500",
	})

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(body.Bytes(), &resp))
	slug := resp["slug"].(string)
	assert.True(t, strings.HasPrefix(slug, "cafe-del-parque~"))
	assert.Contains(t, resp["url_publica"], "/negocio/"+slug)

	var negocio models.Negocio
	assert.NoError(t, db.Where("slug = ?", slug).First(&negocio).Error)
	assert.Equal(t, 3500.0, negocio.CostoDomicilio)
	assert.Equal(t, 1, negocio.Estado)

	// filtro por razon social parcial
	req, _ := http.NewRequest("GET", "/api/negocios?razon_social=Parque", nil)
	w := doRaw(router, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var listado []models.Negocio
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listado))
	assert.Len(t, listado, 1)

	// nit numerico filtra exacto
	req, _ = http.NewRequest("GET", "/api/negocios?nit=900123456", nil)
	w = doRaw(router, req)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listado))
	assert.Len(t, listado, 1)

	req, _ = http.NewRequest("GET", "/api/negocios?nit=999999999", nil)
	w = doRaw(router, req)
	listado = nil
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listado))
	assert.Len(t, listado, 0)

	// sin razon social -> 400
	body2 := &bytes.Buffer{}
	writer := multipart.NewWriter(body2)
	assert.NoError(t, writer.WriteField("nit", "1"))
	assert.NoError(t, writer.Close())
	req, _ = http.NewRequest("POST", "/api/negocios", body2)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w = doRaw(router, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNegocioActualizarYEstado(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForNegocios(t)
	router := setupNegocioRouter(db, &stubStore{})

	negocio := models.Negocio{RazonSocial: "Mutable", Estado: 1, Slug: "mutable~mut00001"}
	db.Create(&negocio)

	w := doJSON(t, router, "PUT", "/api/negocios/"+itoa(negocio.ID), map[string]interface{}{
		"razon_social":    "Mutable SAS",
		"nit":             "800100200",
		"telefono":        "3109998877",
		"descripcion":     "Ahora con descripción",
		"recibe_pagos":    true,
		"costo_domicilio": 5000,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var refetch models.Negocio
	db.First(&refetch, negocio.ID)
	assert.Equal(t, "Mutable SAS", refetch.RazonSocial)
	assert.True(t, refetch.RecibePagos)
	assert.Equal(t, 5000.0, refetch.CostoDomicilio)

	// desactivar
	w = doJSON(t, router, "PUT", "/api/negocios/"+itoa(negocio.ID)+"/estado", map[string]interface{}{
		"nuevo_estado": 0,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	db.First(&refetch, negocio.ID)
	assert.Equal(t, 0, refetch.Estado)

	// el negocio inactivo desaparece de la info publica
	req, _ := http.NewRequest("GET", "/api/negocio/info/"+negocio.Slug, nil)
	w2 := doRaw(router, req)
	assert.Equal(t, http.StatusNotFound, w2.Code)

	// estado invalido -> 400
	w = doJSON(t, router, "PUT", "/api/negocios/"+itoa(negocio.ID)+"/estado", map[string]interface{}{
		"nuevo_estado": 7,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// id inexistente -> 404
	w = doJSON(t, router, "PUT", "/api/negocios/99999", map[string]interface{}{
		"razon_social": "Nadie",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNegocioInfoPublica(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForNegocios(t)
	router := setupNegocioRouter(db, &stubStore{})

	negocio := models.Negocio{
		RazonSocial: "Publico", Estado: 1, Slug: "publico~pub00001",
		CostoDomicilio: 2500, URLPublica: "http://localhost:3000/negocio/publico~pub00001",
	}
	db.Create(&negocio)

	req, _ := http.NewRequest("GET", "/api/negocio/info/"+negocio.Slug, nil)
	w := doRaw(router, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Publico", resp["razon_social"])
	assert.Equal(t, 2500.0, resp["costoDomicilio"])
}

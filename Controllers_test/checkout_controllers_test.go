package Controllers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/controllers"
	"github.com/jfcastellanos/marketplace-app/middlewares"
	"github.com/jfcastellanos/marketplace-app/models"
	"github.com/jfcastellanos/marketplace-app/services"
	"github.com/jfcastellanos/marketplace-app/utils"
)

func setupTestDBForCheckout(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:checkout_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Negocio{}, &models.Usuario{}, &models.DireccionUsuario{},
		&models.Imagen{}, &models.Producto{}, &models.CarritoItem{},
		&models.Pedido{}, &models.PedidoItem{},
	)
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func setupCheckoutRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	market := services.NewMarketplaceService(db, services.PriceModeGlobal)
	cart := services.NewCartService(db, market)
	checkout := services.NewCheckoutService(db)
	ckCtrl := controllers.NewCheckoutController(db, checkout, cart)

	privado := router.Group("/api")
	privado.Use(middlewares.RequireSession())
	{
		privado.GET("/checkout/:slug", ckCtrl.Prefill)
		privado.POST("/checkout/:slug", ckCtrl.Confirmar)
		privado.GET("/pedidos/:pedidoId", ckCtrl.Pedido)
	}
	return router
}

type checkoutFixture struct {
	negocio models.Negocio
	usuario models.Usuario
	img     models.Imagen
	cookie  *http.Cookie
}

func seedCheckout(t *testing.T, db *gorm.DB, sufijo string, costoDomicilio float64) checkoutFixture {
	var fx checkoutFixture
	fx.negocio = models.Negocio{
		RazonSocial: "Checkout " + sufijo, Estado: 1,
		Slug: "checkout-" + sufijo + "~chk00000", CostoDomicilio: costoDomicilio,
	}
	assert.NoError(t, db.Create(&fx.negocio).Error)

	fx.usuario = models.Usuario{
		Nombre: "Luis", Apellido: "Comprador", Email: "luis+" + sufijo + "@test.com",
		Password: "x", Rol: models.RolNegocio, NegocioID: &fx.negocio.ID, Estado: 1,
		Telefono: "3000000000",
	}
	assert.NoError(t, db.Create(&fx.usuario).Error)

	fx.img = models.Imagen{NegocioID: fx.negocio.ID, URL: "https://cdn.test/checkout.jpg", Estado: 1}
	assert.NoError(t, db.Create(&fx.img).Error)

	token, err := utils.GenerateSessionToken(&utils.SessionClaims{
		UsuarioID: fx.usuario.ID,
		NegocioID: fx.negocio.ID,
		Nombre:    fx.usuario.Nombre,
		Apellido:  fx.usuario.Apellido,
		Email:     fx.usuario.Email,
		Telefono:  fx.usuario.Telefono,
	})
	assert.NoError(t, err)
	fx.cookie = &http.Cookie{Name: utils.SessionCookieName, Value: token}
	return fx
}

func TestCheckoutPrefill(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCheckout(t)
	fx := seedCheckout(t, db, "prefill", 4000)

	db.Create(&models.DireccionUsuario{
		UsuarioID: fx.usuario.ID, Direccion1: "Calle 1 # 2-3", Ciudad: "Bogotá",
	})
	db.Create(&models.DireccionUsuario{
		UsuarioID: fx.usuario.ID, Direccion1: "Carrera 9 # 8-7", Ciudad: "Medellín",
	})

	router := setupCheckoutRouter(db)
	w := doJSONConSesion(t, router, "GET", "/api/checkout/"+fx.negocio.Slug, nil, fx.cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK       bool `json:"ok"`
		Contacto struct {
			Nombre string `json:"nombre"`
			Email  string `json:"email"`
		} `json:"contacto"`
		Direccion      *models.DireccionUsuario `json:"direccion"`
		CostoDomicilio float64                  `json:"costoDomicilio"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "Luis", resp.Contacto.Nombre)
	assert.Equal(t, 4000.0, resp.CostoDomicilio)
	// llega la direccion mas reciente
	assert.NotNil(t, resp.Direccion)
	assert.Equal(t, "Carrera 9 # 8-7", resp.Direccion.Direccion1)
}

func TestCheckoutExitoso(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCheckout(t)
	fx := seedCheckout(t, db, "exitoso", 3000)
	router := setupCheckoutRouter(db)

	w := doJSONConSesion(t, router, "POST", "/api/checkout/"+fx.negocio.Slug, map[string]interface{}{
		"contacto": map[string]string{
			"nombre": "Luis", "apellido": "Comprador",
			"email": "luis@test.com", "telefono": "3000000000",
		},
		"direccion": map[string]string{
			"direccion1": "Calle 1 # 2-3", "barrio": "Centro", "ciudad": "Bogotá",
		},
		"items": []map[string]interface{}{
			// cantidad 0 sube al piso 1; el subtotal del cliente no viaja
			{"imagen_id": fx.img.ID, "nombre": "Combo", "precio": 15000, "cantidad": 2},
			{"imagen_id": fx.img.ID, "nombre": "Postre", "precio": 5000, "cantidad": 0},
		},
	}, fx.cookie)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		OK       bool            `json:"ok"`
		PedidoID uint            `json:"pedidoId"`
		Totals   services.Totals `json:"totals"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.NotZero(t, resp.PedidoID)
	assert.Equal(t, 35000.0, resp.Totals.Subtotal)
	assert.Equal(t, 3000.0, resp.Totals.CostoDomicilio)
	assert.Equal(t, 38000.0, resp.Totals.Total)

	var pedido models.Pedido
	assert.NoError(t, db.Preload("Items").First(&pedido, resp.PedidoID).Error)
	assert.Equal(t, models.PedidoEstadoPendiente, pedido.Estado)
	assert.Len(t, pedido.Items, 2)
	assert.Equal(t, 1, pedido.Items[1].Cantidad)
	assert.Equal(t, "efectivo", pedido.MetodoPago)
	assert.Equal(t, "Calle 1 # 2-3, Centro, Bogotá", *pedido.DireccionTexto)
}

func TestCheckoutCostoDomicilioDelCliente(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCheckout(t)
	fx := seedCheckout(t, db, "domicilio", 3000)
	router := setupCheckoutRouter(db)

	// el valor del cliente (>= 0) manda sobre el del negocio
	w := doJSONConSesion(t, router, "POST", "/api/checkout/"+fx.negocio.Slug, map[string]interface{}{
		"costoDomicilio": 0,
		"items": []map[string]interface{}{
			{"imagen_id": fx.img.ID, "precio": 10000, "cantidad": 1},
		},
	}, fx.cookie)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Totals services.Totals `json:"totals"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0.0, resp.Totals.CostoDomicilio)
	assert.Equal(t, 10000.0, resp.Totals.Total)

	// valor negativo se ignora y cae a la tarifa del negocio
	w = doJSONConSesion(t, router, "POST", "/api/checkout/"+fx.negocio.Slug, map[string]interface{}{
		"costoDomicilio": -1,
		"items": []map[string]interface{}{
			{"imagen_id": fx.img.ID, "precio": 10000, "cantidad": 1},
		},
	}, fx.cookie)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3000.0, resp.Totals.CostoDomicilio)
}

func TestCheckoutSinItems(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCheckout(t)
	fx := seedCheckout(t, db, "vacio", 0)
	router := setupCheckoutRouter(db)

	// sin items
	w := doJSONConSesion(t, router, "POST", "/api/checkout/"+fx.negocio.Slug, map[string]interface{}{
		"items": []map[string]interface{}{},
	}, fx.cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// todos los items se descartan en la normalizacion (sin imagen_id)
	w = doJSONConSesion(t, router, "POST", "/api/checkout/"+fx.negocio.Slug, map[string]interface{}{
		"items": []map[string]interface{}{
			{"nombre": "Sin imagen", "precio": 5000, "cantidad": 1},
		},
	}, fx.cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var n int64
	db.Model(&models.Pedido{}).Where("negocio_id = ?", fx.negocio.ID).Count(&n)
	assert.Equal(t, int64(0), n)
}

func TestCheckoutImagenAjenaNoDejaPedido(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCheckout(t)
	fx := seedCheckout(t, db, "ajena", 0)
	otro := seedCheckout(t, db, "ajena-otro", 0)
	router := setupCheckoutRouter(db)

	w := doJSONConSesion(t, router, "POST", "/api/checkout/"+fx.negocio.Slug, map[string]interface{}{
		"items": []map[string]interface{}{
			{"imagen_id": fx.img.ID, "precio": 8000, "cantidad": 1},
			{"imagen_id": otro.img.ID, "precio": 9000, "cantidad": 1},
		},
	}, fx.cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// nada parcial: ni pedido ni lineas
	var nPedidos, nItems int64
	db.Model(&models.Pedido{}).Where("negocio_id = ?", fx.negocio.ID).Count(&nPedidos)
	db.Model(&models.PedidoItem{}).
		Joins("JOIN pedidos p ON p.id = pedido_items.pedido_id").
		Where("p.negocio_id = ?", fx.negocio.ID).
		Count(&nItems)
	assert.Equal(t, int64(0), nPedidos)
	assert.Equal(t, int64(0), nItems)
}

func TestCheckoutFallaEnLineaRevierteTodo(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCheckout(t)
	fx := seedCheckout(t, db, "revierte", 0)
	router := setupCheckoutRouter(db)

	// la segunda linea del pedido falla al insertarse
	intentos := 0
	err := db.Callback().Create().Before("gorm:create").Register("falla_segunda_linea", func(tx *gorm.DB) {
		if tx.Statement.Table != "pedido_items" {
			return
		}
		intentos++
		if intentos == 2 {
			tx.AddError(errors.New("disco lleno"))
		}
	})
	assert.NoError(t, err)

	w := doJSONConSesion(t, router, "POST", "/api/checkout/"+fx.negocio.Slug, map[string]interface{}{
		"items": []map[string]interface{}{
			{"imagen_id": fx.img.ID, "precio": 8000, "cantidad": 1},
			{"imagen_id": fx.img.ID, "precio": 9000, "cantidad": 2},
			{"imagen_id": fx.img.ID, "precio": 5000, "cantidad": 1},
		},
	}, fx.cookie)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 2, intentos)

	// rollback completo: ni el pedido ni la primera linea quedan
	var nPedidos, nItems int64
	db.Model(&models.Pedido{}).Where("negocio_id = ?", fx.negocio.ID).Count(&nPedidos)
	db.Model(&models.PedidoItem{}).
		Joins("JOIN pedidos p ON p.id = pedido_items.pedido_id").
		Where("p.negocio_id = ?", fx.negocio.ID).
		Count(&nItems)
	assert.Equal(t, int64(0), nPedidos)
	assert.Equal(t, int64(0), nItems)
}

func TestCheckoutUsuarioDeOtroNegocio(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCheckout(t)
	fx := seedCheckout(t, db, "cruzado", 0)
	otro := seedCheckout(t, db, "cruzado-otro", 0)
	router := setupCheckoutRouter(db)

	// sesion del usuario de "otro" contra el negocio de "fx" -> 403
	w := doJSONConSesion(t, router, "POST", "/api/checkout/"+fx.negocio.Slug, map[string]interface{}{
		"items": []map[string]interface{}{
			{"imagen_id": fx.img.ID, "precio": 8000, "cantidad": 1},
		},
	}, otro.cookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// sin sesion -> 401
	w = doJSONConSesion(t, router, "POST", "/api/checkout/"+fx.negocio.Slug, map[string]interface{}{
		"items": []map[string]interface{}{
			{"imagen_id": fx.img.ID, "precio": 8000, "cantidad": 1},
		},
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckoutVaciaElCarrito(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCheckout(t)
	fx := seedCheckout(t, db, "limpia", 0)
	router := setupCheckoutRouter(db)

	prod := models.Producto{NegocioID: fx.negocio.ID, ImagenID: fx.img.ID, BasePrecio: 7000, Estado: 1}
	db.Create(&prod)
	db.Create(&models.CarritoItem{
		UsuarioID: fx.usuario.ID, NegocioID: fx.negocio.ID,
		ProductoID: prod.ID, ImagenID: fx.img.ID, Nombre: "Combo",
		Cantidad: 1, PrecioUnit: 7000,
	})

	w := doJSONConSesion(t, router, "POST", "/api/checkout/"+fx.negocio.Slug, map[string]interface{}{
		"items": []map[string]interface{}{
			{"imagen_id": fx.img.ID, "producto_id": prod.ID, "precio": 7000, "cantidad": 1},
		},
	}, fx.cookie)
	assert.Equal(t, http.StatusCreated, w.Code)

	var n int64
	db.Model(&models.CarritoItem{}).Where("usuario_id = ?", fx.usuario.ID).Count(&n)
	assert.Equal(t, int64(0), n)
}

func TestPedidoConsulta(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCheckout(t)
	fx := seedCheckout(t, db, "consulta", 0)
	ajeno := seedCheckout(t, db, "consulta-ajeno", 0)
	router := setupCheckoutRouter(db)

	w := doJSONConSesion(t, router, "POST", "/api/checkout/"+fx.negocio.Slug, map[string]interface{}{
		"items": []map[string]interface{}{
			{"imagen_id": fx.img.ID, "precio": 12000, "cantidad": 1},
		},
	}, fx.cookie)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		PedidoID uint `json:"pedidoId"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = doJSONConSesion(t, router, "GET", "/api/pedidos/"+itoa(resp.PedidoID), nil, fx.cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	// el pedido de otro usuario no se expone
	w = doJSONConSesion(t, router, "GET", "/api/pedidos/"+itoa(resp.PedidoID), nil, ajeno.cookie)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/config"
	"github.com/jfcastellanos/marketplace-app/controllers"
	"github.com/jfcastellanos/marketplace-app/middlewares"
	"github.com/jfcastellanos/marketplace-app/services"
)

// SetupRouter arma el arbol de rutas completo: API publica, rutas de
// administracion, rutas de storefront gateadas por sesion y estaticos.
func SetupRouter(db *gorm.DB, cfg config.Config, store services.ImageStore) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	// Servicios compartidos; el modo de precios entra por construccion.
	catalog := services.NewCatalogService(db)
	market := services.NewMarketplaceService(db, cfg.PriceMode)
	cart := services.NewCartService(db, market)
	checkout := services.NewCheckoutService(db)

	usuarioCtrl := controllers.NewUsuarioController(db)
	sesionCtrl := controllers.NewSesionController(db)
	negocioCtrl := controllers.NewNegocioController(db, store, cfg.BaseURL, cfg.FrontendDir)
	categoriaCtrl := controllers.NewCategoriaController(db, catalog)
	imagenCtrl := controllers.NewImagenController(db, store, catalog)
	productoCtrl := controllers.NewProductoController(db)
	marketCtrl := controllers.NewMarketplaceController(db, market)
	carritoCtrl := controllers.NewCarritoController(db, cart)
	checkoutCtrl := controllers.NewCheckoutController(db, checkout, cart)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Login y registro con rate limit estricto.
	auth := r.Group("/api")
	auth.Use(middlewares.NewStrictRateLimiter())
	{
		auth.POST("/registro", usuarioCtrl.Registro)
		auth.POST("/login", usuarioCtrl.Login)
		auth.POST("/negocio/:slug/login", sesionCtrl.LoginNegocio)
	}

	api := r.Group("/api")
	{
		// sesion
		api.GET("/sesion", sesionCtrl.Sesion)
		api.POST("/logout", sesionCtrl.Logout)

		// negocios (administracion)
		api.POST("/negocios", negocioCtrl.Crear)
		api.GET("/negocios", negocioCtrl.Consultar)
		api.PUT("/negocios/:negocioId", negocioCtrl.Actualizar)
		api.PUT("/negocios/:negocioId/estado", negocioCtrl.CambiarEstado)
		api.GET("/negocio/info/:slug", negocioCtrl.Info)

		// categorias e items
		api.GET("/negocios/:negocioId/categorias", categoriaCtrl.Listar)
		api.GET("/negocios/:negocioId/categorias/tree", categoriaCtrl.Tree)
		api.POST("/negocios/:negocioId/categorias", categoriaCtrl.Crear)
		api.POST("/categorias/:categoriaId/items", categoriaCtrl.CrearItems)
		api.PATCH("/categorias/:categoriaId", categoriaCtrl.Actualizar)
		api.PATCH("/categorias/:categoriaId/items/:itemId", categoriaCtrl.ActualizarItem)
		api.DELETE("/categorias/:categoriaId", categoriaCtrl.Eliminar)
		api.DELETE("/categorias/:categoriaId/items/:itemId", categoriaCtrl.EliminarItem)

		// imagenes del catalogo
		api.GET("/negocios/:negocioId/imagenes", imagenCtrl.Listar)
		api.POST("/negocios/:negocioId/imagenes", imagenCtrl.Cargar)
		api.POST("/negocios/:negocioId/imagenes/asignaciones", imagenCtrl.Asignar)
		api.POST("/negocios/:negocioId/imagenes/asignaciones/clear", imagenCtrl.LimpiarAsignaciones)
		api.GET("/imagenes/:imagenId", imagenCtrl.Detalle)
		api.PATCH("/imagenes/:imagenId", imagenCtrl.Actualizar)
		api.DELETE("/imagenes/:imagenId", imagenCtrl.Eliminar)

		// productos y precios
		api.GET("/negocios/:negocioId/productos", productoCtrl.Listar)
		api.POST("/negocios/:negocioId/productos", productoCtrl.Crear)
		api.PUT("/productos/:productoId", productoCtrl.Actualizar)
		api.PATCH("/productos/:productoId", productoCtrl.CambiarEstado)
		api.DELETE("/productos/:productoId", productoCtrl.Eliminar)
		api.GET("/productos/:productoId/opciones", productoCtrl.Opciones)
		api.PUT("/productos/:productoId/opciones", productoCtrl.GuardarOpciones)
		api.GET("/negocios/:negocioId/atributos/precios", productoCtrl.PreciosGlobales)
		api.PUT("/negocios/:negocioId/atributos/precios", productoCtrl.GuardarPreciosGlobales)

		// marketplace publico
		api.GET("/marketplace/:slug/feed", marketCtrl.Feed)
		api.GET("/marketplace/:slug/filtros", marketCtrl.Filtros)
	}

	// carrito y checkout requieren sesion
	privado := r.Group("/api")
	privado.Use(middlewares.RequireSession())
	{
		privado.GET("/carrito/:slug", carritoCtrl.Listar)
		privado.POST("/carrito/:slug/items", carritoCtrl.Agregar)
		privado.PATCH("/carrito/items/:itemId", carritoCtrl.Cantidad)
		privado.DELETE("/carrito/items/:itemId", carritoCtrl.Quitar)
		privado.DELETE("/carrito/:slug", carritoCtrl.Vaciar)

		privado.GET("/checkout/:slug", checkoutCtrl.Prefill)
		privado.POST("/checkout/:slug", checkoutCtrl.Confirmar)
		privado.GET("/pedidos/:pedidoId", checkoutCtrl.Pedido)
	}

	// storefront estatico gateado por negocio activo
	if cfg.FrontendDir != "" {
		r.Static("/assets", cfg.FrontendDir+"/assets")
		r.GET("/negocio/:slug", negocioCtrl.PaginaStorefront("index.html"))
		r.GET("/negocio/:slug/carrito", negocioCtrl.PaginaStorefront("carrito.html"))
		r.GET("/negocio/:slug/checkout", negocioCtrl.PaginaStorefront("checkout.html"))
	}

	return r
}

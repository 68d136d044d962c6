package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/config"
	"github.com/jfcastellanos/marketplace-app/models"
	"github.com/jfcastellanos/marketplace-app/router"
	"github.com/jfcastellanos/marketplace-app/services"
	"github.com/jfcastellanos/marketplace-app/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}
	utils.InitLogger()
}

func main() {
	cfg := config.Load()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	store, err := services.NewCloudinaryStore()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to init image store: %v", err)
	}

	r := router.SetupRouter(db, cfg, store)

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	utils.InfoLogger.Printf("Price mode: %s", cfg.PriceMode)
	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Negocio{},
		&models.Usuario{},
		&models.DireccionUsuario{},
		&models.Categoria{},
		&models.CategoriaItem{},
		&models.Imagen{},
		&models.ImagenCategoria{},
		&models.ImagenItem{},
		&models.Producto{},
		&models.ProductoOpcionPrecio{},
		&models.NegocioItemPrecio{},
		&models.CarritoItem{},
		&models.Pedido{},
		&models.PedidoItem{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}

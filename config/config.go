package config

import (
	"fmt"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/services"
)

// Config agrupa todo lo que main necesita al arrancar. PRICE_MODE se lee
// una sola vez aqui y se pasa por valor a los servicios.
type Config struct {
	Port        string
	PriceMode   services.PriceMode
	FrontendDir string
	// BaseURL arma la url_publica de los negocios nuevos.
	BaseURL string
}

func Load() Config {
	port := getEnv("PORT", "3000")
	cfg := Config{
		Port:        port,
		PriceMode:   services.ParsePriceMode(os.Getenv("PRICE_MODE")),
		FrontendDir: getEnv("FRONTEND_DIR", "./frontend"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:"+port),
	}
	return cfg
}

// InitDB abre la conexion MySQL con los datos del entorno.
func InitDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		getEnv("DB_USER", "root"),
		os.Getenv("DB_PASS"),
		getEnv("DB_HOST", "127.0.0.1"),
		getEnv("DB_PORT", "3306"),
		getEnv("DB_NAME", "marketplace"),
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName es la cookie HTTP-only que lleva el token de sesion.
const SessionCookieName = "sid"

// SessionTTL: 7 dias, igual que la cookie del storefront.
const SessionTTL = 7 * 24 * time.Hour

var jwtSecret []byte

func init() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// secreto de desarrollo; en produccion siempre viene del entorno
		secret = "dev-secret-change-me"
	}
	jwtSecret = []byte(secret)
}

// SessionClaims identifica al usuario de negocio logueado.
type SessionClaims struct {
	UsuarioID uint   `json:"usuario_id"`
	NegocioID uint   `json:"negocio_id"`
	Nombre    string `json:"nombre"`
	Apellido  string `json:"apellido"`
	Email     string `json:"email"`
	Telefono  string `json:"telefono,omitempty"`
	jwt.RegisteredClaims
}

func GenerateSessionToken(claims *SessionClaims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    "marketplace-app",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ParseSessionToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("token invalido o expirado")
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, errors.New("claims invalidos")
	}
	return claims, nil
}

package services

import (
	"strings"

	"github.com/google/uuid"
)

var acentos = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", "Ü", "U", "Ñ", "N",
)

// GenerarSlug construye el identificador publico de un negocio a partir de
// su razon social: minusculas sin tildes, espacios a guiones y un sufijo
// corto de uuid para evitar colisiones. Ej: "cafe-del-parque~3f9a1c2b".
func GenerarSlug(razonSocial string) string {
	s := acentos.Replace(razonSocial)

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}

	slug := strings.ToLower(strings.Join(strings.Fields(b.String()), "-"))
	if slug == "" {
		slug = "negocio"
	}

	suffix := strings.Split(uuid.NewString(), "-")[0]
	return slug + "~" + suffix
}

// URLPublica arma la URL del storefront para un slug.
func URLPublica(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/negocio/" + slug
}

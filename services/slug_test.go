package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerarSlug(t *testing.T) {
	slug := GenerarSlug("Café El Ñandú #1")

	parts := strings.Split(slug, "~")
	assert.Len(t, parts, 2)
	assert.Equal(t, "cafe-el-nandu-1", parts[0])
	assert.Len(t, parts[1], 8)

	// dos llamadas con el mismo nombre nunca chocan
	assert.NotEqual(t, slug, GenerarSlug("Café El Ñandú #1"))
}

func TestGenerarSlugNombreVacio(t *testing.T) {
	slug := GenerarSlug("   ")
	parts := strings.Split(slug, "~")
	assert.Len(t, parts, 2)
	assert.Equal(t, "negocio", parts[0])
}

func TestTituloDesdeArchivo(t *testing.T) {
	assert.Equal(t, "pizza margarita", TituloDesdeArchivo("C:\\fotos\\pizza  margarita.jpg"))
	assert.Equal(t, "combo especial", TituloDesdeArchivo("/tmp/combo especial.png"))

	largo := strings.Repeat("a", 40) + ".webp"
	assert.Len(t, TituloDesdeArchivo(largo), 30)
}

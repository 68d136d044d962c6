package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestParsePriceMode(t *testing.T) {
	assert.Equal(t, PriceModeGlobal, ParsePriceMode(""))
	assert.Equal(t, PriceModeGlobal, ParsePriceMode("global"))
	assert.Equal(t, PriceModeGlobal, ParsePriceMode("cualquier-cosa"))
	assert.Equal(t, PriceModeProduct, ParsePriceMode("product"))
	assert.Equal(t, PriceModeProductOverGlobal, ParsePriceMode("product_over_global"))
}

func TestRecargoPorModo(t *testing.T) {
	// modo global: solo cuenta la fila global
	assert.Equal(t, 500.0, PriceModeGlobal.Recargo(f(900), f(500)))
	assert.Equal(t, 0.0, PriceModeGlobal.Recargo(f(900), nil))

	// modo product: solo cuenta el override del producto
	assert.Equal(t, 900.0, PriceModeProduct.Recargo(f(900), f(500)))
	assert.Equal(t, 0.0, PriceModeProduct.Recargo(nil, f(500)))

	// product_over_global: producto primero, global de fallback
	assert.Equal(t, 900.0, PriceModeProductOverGlobal.Recargo(f(900), f(500)))
	assert.Equal(t, 500.0, PriceModeProductOverGlobal.Recargo(nil, f(500)))
	assert.Equal(t, 0.0, PriceModeProductOverGlobal.Recargo(nil, nil))
}

func gruposDePrueba() []AtributoGrupo {
	return []AtributoGrupo{
		{
			Categoria: CategoriaRef{ID: 1, Nombre: "Tamaño"},
			Items: []AtributoItem{
				{ID: 10, Label: "Pequeño", Recargo: 0},
				{ID: 11, Label: "Grande", Recargo: 2000},
			},
		},
		{
			Categoria: CategoriaRef{ID: 2, Nombre: "Borde"},
			Items: []AtributoItem{
				{ID: 20, Label: "Normal", Recargo: 0},
				{ID: 21, Label: "Relleno", Recargo: 3500},
			},
		},
	}
}

func TestPrecioUnitario(t *testing.T) {
	grupos := gruposDePrueba()

	precio, err := PrecioUnitario(10000, grupos, map[uint]uint{1: 11, 2: 21})
	assert.NoError(t, err)
	assert.Equal(t, 15500.0, precio)

	precio, err = PrecioUnitario(10000, grupos, map[uint]uint{1: 10, 2: 20})
	assert.NoError(t, err)
	assert.Equal(t, 10000.0, precio)

	// sin grupos ni seleccion: el precio es la base
	precio, err = PrecioUnitario(8000, nil, map[uint]uint{})
	assert.NoError(t, err)
	assert.Equal(t, 8000.0, precio)
}

func TestPrecioUnitarioSeleccionIncompleta(t *testing.T) {
	grupos := gruposDePrueba()

	_, err := PrecioUnitario(10000, grupos, map[uint]uint{1: 11})
	assert.ErrorIs(t, err, ErrSeleccionIncompleta)

	_, err = PrecioUnitario(10000, grupos, nil)
	assert.ErrorIs(t, err, ErrSeleccionIncompleta)
}

func TestPrecioUnitarioSeleccionInvalida(t *testing.T) {
	grupos := gruposDePrueba()

	// el item 21 pertenece al grupo 2, no al 1
	_, err := PrecioUnitario(10000, grupos, map[uint]uint{1: 21, 2: 20})
	assert.ErrorIs(t, err, ErrSeleccionInvalida)

	// una clave que no corresponde a ningun grupo del producto tampoco
	// tiene precio, aunque los grupos esten cubiertos
	_, err = PrecioUnitario(10000, grupos, map[uint]uint{1: 10, 2: 20, 99: 5})
	assert.ErrorIs(t, err, ErrSeleccionInvalida)

	// producto sin atributos: toda seleccion sobra
	_, err = PrecioUnitario(8000, nil, map[uint]uint{99: 5})
	assert.ErrorIs(t, err, ErrSeleccionInvalida)
}

func TestFirmaSeleccion(t *testing.T) {
	assert.Equal(t, "", FirmaSeleccion(nil))
	assert.Equal(t, "1:10", FirmaSeleccion(map[uint]uint{1: 10}))
	// la firma es canonica sin importar el orden de insercion
	assert.Equal(t, "1:10|2:21|5:3", FirmaSeleccion(map[uint]uint{5: 3, 1: 10, 2: 21}))
}

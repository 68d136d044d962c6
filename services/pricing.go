package services

import (
	"errors"

	"github.com/jfcastellanos/marketplace-app/utils"
)

// PriceMode decide de donde sale el recargo de un item de atributo.
// Se fija una sola vez al construir los servicios; no es estado global.
type PriceMode string

const (
	// PriceModeGlobal usa solo el precio global del negocio.
	PriceModeGlobal PriceMode = "global"
	// PriceModeProduct usa solo el precio especifico del producto.
	PriceModeProduct PriceMode = "product"
	// PriceModeProductOverGlobal prefiere el del producto y cae al global.
	PriceModeProductOverGlobal PriceMode = "product_over_global"
)

func ParsePriceMode(s string) PriceMode {
	switch PriceMode(s) {
	case PriceModeProduct, PriceModeProductOverGlobal:
		return PriceMode(s)
	default:
		return PriceModeGlobal
	}
}

// Recargo resuelve el recargo para un triple (producto, categoria, item).
// Los punteros son nil cuando no existe fila de override; sin fila el
// recargo es 0 en cualquier modo.
func (m PriceMode) Recargo(producto, global *float64) float64 {
	switch m {
	case PriceModeProduct:
		if producto != nil {
			return utils.RoundCOP(*producto)
		}
		return 0
	case PriceModeProductOverGlobal:
		if producto != nil {
			return utils.RoundCOP(*producto)
		}
		if global != nil {
			return utils.RoundCOP(*global)
		}
		return 0
	default:
		if global != nil {
			return utils.RoundCOP(*global)
		}
		return 0
	}
}

// CategoriaRef y los tipos siguientes forman la vista de un producto en el
// feed: sus filtros y sus grupos de atributos con items ya precio-tageados.
type CategoriaRef struct {
	ID     uint   `json:"id"`
	Nombre string `json:"nombre"`
}

type AtributoItem struct {
	ID      uint    `json:"id"`
	Label   string  `json:"label"`
	Recargo float64 `json:"recargo"`
}

type AtributoGrupo struct {
	Categoria CategoriaRef   `json:"categoria"`
	Items     []AtributoItem `json:"items"`
}

var (
	// ErrSeleccionIncompleta: falta elegir un item en alguna categoria de
	// atributo; la seleccion no es precificable.
	ErrSeleccionIncompleta = errors.New("seleccion incompleta: falta elegir un item por cada atributo")
	// ErrSeleccionInvalida: la seleccion referencia un item que no
	// pertenece al grupo.
	ErrSeleccionInvalida = errors.New("seleccion invalida: item no pertenece al atributo")
)

// PrecioUnitario calcula base + suma de recargos de los items elegidos.
// La seleccion mapea categoria -> item y su conjunto de claves debe ser
// exactamente el de los grupos del producto; si no, la seleccion no tiene
// precio.
func PrecioUnitario(base float64, grupos []AtributoGrupo, seleccion map[uint]uint) (float64, error) {
	if len(seleccion) > len(grupos) {
		return 0, ErrSeleccionInvalida
	}
	total := utils.RoundCOP(base)
	for _, g := range grupos {
		itemID, ok := seleccion[g.Categoria.ID]
		if !ok {
			return 0, ErrSeleccionIncompleta
		}
		found := false
		for _, it := range g.Items {
			if it.ID == itemID {
				total += it.Recargo
				found = true
				break
			}
		}
		if !found {
			return 0, ErrSeleccionInvalida
		}
	}
	return total, nil
}

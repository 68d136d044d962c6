package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/models"
)

var (
	ErrProductoNoDisponible = errors.New("producto no existe o no esta disponible")
	ErrLineaAjena           = errors.New("la linea no pertenece al usuario")
)

// CartService mantiene el pedido en borrador de cada usuario por negocio.
// El precio unitario siempre se calcula del lado servidor; una seleccion
// incompleta no entra al carrito.
type CartService struct {
	DB     *gorm.DB
	Market *MarketplaceService
}

func NewCartService(db *gorm.DB, market *MarketplaceService) *CartService {
	return &CartService{DB: db, Market: market}
}

// seleccionDetalle es lo que se persiste como JSON en la linea: la vista
// completa de cada item elegido, no solo su id.
type seleccionDetalle struct {
	CategoriaID uint    `json:"categoria_id"`
	Categoria   string  `json:"categoria"`
	ItemID      uint    `json:"item_id"`
	Label       string  `json:"label"`
	Recargo     float64 `json:"recargo"`
}

// FirmaSeleccion produce la forma canonica "cat:item|cat:item" (ordenada
// por categoria). Dos lineas del mismo producto con la misma firma se
// consolidan.
func FirmaSeleccion(seleccion map[uint]uint) string {
	cats := make([]uint, 0, len(seleccion))
	for c := range seleccion {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	pairs := make([]string, 0, len(cats))
	for _, c := range cats {
		pairs = append(pairs, fmt.Sprintf("%d:%d", c, seleccion[c]))
	}
	return strings.Join(pairs, "|")
}

// Agregar valida producto y seleccion, calcula el precio unitario y crea o
// consolida la linea.
func (s *CartService) Agregar(usuarioID, negocioID, productoID uint, cantidad int, seleccion map[uint]uint) (*models.CarritoItem, error) {
	if cantidad < 1 {
		cantidad = 1
	}

	var prod models.Producto
	err := s.DB.Preload("Imagen").
		Where("id = ? AND negocio_id = ? AND estado = 1", productoID, negocioID).
		First(&prod).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductoNoDisponible
	}
	if err != nil {
		return nil, err
	}
	if prod.Imagen.Estado != 1 {
		return nil, ErrProductoNoDisponible
	}

	grupos, err := s.Market.GruposDeProducto(&prod)
	if err != nil {
		return nil, err
	}

	precioUnit, err := PrecioUnitario(prod.BasePrecio, grupos, seleccion)
	if err != nil {
		return nil, err
	}

	detalle := make([]seleccionDetalle, 0, len(grupos))
	for _, g := range grupos {
		itemID := seleccion[g.Categoria.ID]
		for _, it := range g.Items {
			if it.ID == itemID {
				detalle = append(detalle, seleccionDetalle{
					CategoriaID: g.Categoria.ID,
					Categoria:   g.Categoria.Nombre,
					ItemID:      it.ID,
					Label:       it.Label,
					Recargo:     it.Recargo,
				})
				break
			}
		}
	}
	seleccionJSON, err := json.Marshal(detalle)
	if err != nil {
		return nil, err
	}

	nombre := prod.Imagen.Titulo
	if prod.Nombre != nil && *prod.Nombre != "" {
		nombre = *prod.Nombre
	}
	if nombre == "" {
		nombre = fmt.Sprintf("Producto %d", prod.ID)
	}

	firma := FirmaSeleccion(seleccion)
	var linea models.CarritoItem

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where(
			"usuario_id = ? AND negocio_id = ? AND producto_id = ? AND firma = ?",
			usuarioID, negocioID, productoID, firma,
		).First(&linea).Error

		switch {
		case err == nil:
			linea.Cantidad += cantidad
			linea.PrecioUnit = precioUnit
			return tx.Save(&linea).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			linea = models.CarritoItem{
				UsuarioID:  usuarioID,
				NegocioID:  negocioID,
				ProductoID: prod.ID,
				ImagenID:   prod.ImagenID,
				Nombre:     nombre,
				ImgURL:     prod.Imagen.URL,
				Cantidad:   cantidad,
				PrecioUnit: precioUnit,
				Seleccion:  string(seleccionJSON),
				Firma:      firma,
			}
			return tx.Create(&linea).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &linea, nil
}

func (s *CartService) Listar(usuarioID, negocioID uint) ([]models.CarritoItem, float64, error) {
	var lineas []models.CarritoItem
	err := s.DB.Where("usuario_id = ? AND negocio_id = ?", usuarioID, negocioID).
		Order("id").
		Find(&lineas).Error
	if err != nil {
		return nil, 0, err
	}

	var subtotal float64
	for _, l := range lineas {
		subtotal += l.Subtotal()
	}
	return lineas, subtotal, nil
}

func (s *CartService) linea(usuarioID, itemID uint) (*models.CarritoItem, error) {
	var linea models.CarritoItem
	err := s.DB.First(&linea, itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	if linea.UsuarioID != usuarioID {
		return nil, ErrLineaAjena
	}
	return &linea, nil
}

// Incrementar suma 1 a la cantidad.
func (s *CartService) Incrementar(usuarioID, itemID uint) (*models.CarritoItem, error) {
	linea, err := s.linea(usuarioID, itemID)
	if err != nil {
		return nil, err
	}
	linea.Cantidad++
	return linea, s.DB.Save(linea).Error
}

// Decrementar resta 1 con piso en 1; quitar la linea es una operacion
// explicita, no un decremento.
func (s *CartService) Decrementar(usuarioID, itemID uint) (*models.CarritoItem, error) {
	linea, err := s.linea(usuarioID, itemID)
	if err != nil {
		return nil, err
	}
	if linea.Cantidad > 1 {
		linea.Cantidad--
	}
	return linea, s.DB.Save(linea).Error
}

func (s *CartService) Quitar(usuarioID, itemID uint) error {
	linea, err := s.linea(usuarioID, itemID)
	if err != nil {
		return err
	}
	return s.DB.Delete(linea).Error
}

func (s *CartService) Vaciar(usuarioID, negocioID uint) error {
	return s.DB.Where("usuario_id = ? AND negocio_id = ?", usuarioID, negocioID).
		Delete(&models.CarritoItem{}).Error
}

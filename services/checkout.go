package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/models"
	"github.com/jfcastellanos/marketplace-app/utils"
)

var (
	ErrUsuarioInvalido   = errors.New("usuario invalido o inactivo")
	ErrNegocioNoCoincide = errors.New("el usuario no pertenece al negocio")
	ErrSinItems          = errors.New("el pedido no contiene items validos")
	ErrSubtotalInvalido  = errors.New("subtotal invalido")
)

// ImagenAjenaError: un item referencia una imagen que no es del negocio.
type ImagenAjenaError struct {
	ImagenID uint
}

func (e *ImagenAjenaError) Error() string {
	return fmt.Sprintf("la imagen %d no pertenece al negocio", e.ImagenID)
}

// CheckoutService crea pedidos. El subtotal y el total persistidos se
// recalculan SIEMPRE del lado servidor a partir de las lineas enviadas;
// los totales del cliente se ignoran.
type CheckoutService struct {
	DB *gorm.DB
}

func NewCheckoutService(db *gorm.DB) *CheckoutService {
	return &CheckoutService{DB: db}
}

// CheckoutItem es una linea tal como la envia el cliente.
type CheckoutItem struct {
	ProductoID *uint           `json:"producto_id"`
	ImagenID   *uint           `json:"imagen_id"`
	Nombre     string          `json:"nombre"`
	Precio     float64         `json:"precio"`
	Cantidad   int             `json:"cantidad"`
	Variante   json.RawMessage `json:"variante"`
	ImgURL     *string         `json:"img_url"`
}

type CheckoutContacto struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
	Telefono string `json:"telefono"`
}

type CheckoutDireccion struct {
	ID         *uint  `json:"id"`
	Direccion1 string `json:"direccion1"`
	Direccion2 string `json:"direccion2"`
	Barrio     string `json:"barrio"`
	Ciudad     string `json:"ciudad"`
}

type CheckoutInput struct {
	NegocioID      uint
	UsuarioID      uint
	Contacto       CheckoutContacto
	Direccion      CheckoutDireccion
	TipoEntrega    string
	MetodoPago     string
	Notas          string
	CostoDomicilio *float64 // valor del cliente; nil o negativo cae al del negocio
	Items          []CheckoutItem
}

type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	CostoDomicilio float64 `json:"costoDomicilio"`
	Total          float64 `json:"total"`
}

// NormalizarItems descarta lineas sin imagen o con precio negativo y fija
// piso 1 en cantidad.
func NormalizarItems(raw []CheckoutItem) []CheckoutItem {
	items := make([]CheckoutItem, 0, len(raw))
	for _, it := range raw {
		if it.ImagenID == nil {
			continue
		}
		it.Precio = utils.RoundCOP(it.Precio)
		if it.Precio < 0 {
			continue
		}
		if it.Cantidad < 1 {
			it.Cantidad = 1
		}
		if strings.TrimSpace(it.Nombre) == "" {
			it.Nombre = "Item"
		}
		items = append(items, it)
	}
	return items
}

func Subtotal(items []CheckoutItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Precio * float64(it.Cantidad)
	}
	return utils.RoundCOP(sum)
}

// ValidarUsuario confirma que el usuario existe, esta activo y pertenece
// al negocio. Distingue 401 (ErrUsuarioInvalido) de 403
// (ErrNegocioNoCoincide).
func (s *CheckoutService) ValidarUsuario(usuarioID, negocioID uint) (*models.Usuario, error) {
	var u models.Usuario
	err := s.DB.First(&u, usuarioID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUsuarioInvalido
	}
	if err != nil {
		return nil, err
	}
	if u.Estado != 1 {
		return nil, ErrUsuarioInvalido
	}
	if u.NegocioID == nil || *u.NegocioID != negocioID {
		return nil, ErrNegocioNoCoincide
	}
	return &u, nil
}

// CostoDomicilio resuelve la tarifa: valor del cliente si viene y no es
// negativo, si no la configuracion del negocio, si no 0.
func (s *CheckoutService) CostoDomicilio(negocioID uint, cliente *float64) float64 {
	if cliente != nil && *cliente >= 0 {
		return utils.RoundCOP(*cliente)
	}
	var n models.Negocio
	if err := s.DB.First(&n, negocioID).Error; err != nil {
		return 0
	}
	if n.CostoDomicilio < 0 {
		return 0
	}
	return utils.RoundCOP(n.CostoDomicilio)
}

func direccionTexto(d CheckoutDireccion) *string {
	parts := make([]string, 0, 4)
	for _, s := range []string{d.Direccion1, d.Direccion2, d.Barrio, d.Ciudad} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	if len(parts) == 0 {
		return nil
	}
	texto := strings.Join(parts, ", ")
	return &texto
}

func opcional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Crear inserta el pedido y sus N lineas como una sola transaccion; un
// fallo en cualquier linea revierte todo y no queda pedido parcial.
func (s *CheckoutService) Crear(in CheckoutInput) (uint, Totals, error) {
	if _, err := s.ValidarUsuario(in.UsuarioID, in.NegocioID); err != nil {
		return 0, Totals{}, err
	}

	items := NormalizarItems(in.Items)
	if len(items) == 0 {
		return 0, Totals{}, ErrSinItems
	}

	// cada imagen referenciada debe ser del negocio
	for _, it := range items {
		var count int64
		err := s.DB.Model(&models.Imagen{}).
			Where("id = ? AND negocio_id = ?", *it.ImagenID, in.NegocioID).
			Count(&count).Error
		if err != nil {
			return 0, Totals{}, err
		}
		if count == 0 {
			return 0, Totals{}, &ImagenAjenaError{ImagenID: *it.ImagenID}
		}
	}

	subtotal := Subtotal(items)
	if subtotal <= 0 {
		return 0, Totals{}, ErrSubtotalInvalido
	}

	costoDomicilio := s.CostoDomicilio(in.NegocioID, in.CostoDomicilio)
	totals := Totals{
		Subtotal:       subtotal,
		CostoDomicilio: costoDomicilio,
		Total:          utils.RoundCOP(subtotal + costoDomicilio),
	}

	metodoPago := in.MetodoPago
	if metodoPago == "" {
		metodoPago = "efectivo"
	}
	tipoEntrega := in.TipoEntrega
	if tipoEntrega == "" {
		tipoEntrega = "domicilio"
	}

	pedido := models.Pedido{
		NegocioID:        in.NegocioID,
		UsuarioID:        in.UsuarioID,
		DireccionID:      in.Direccion.ID,
		Estado:           models.PedidoEstadoPendiente,
		Subtotal:         totals.Subtotal,
		CostoDomicilio:   totals.CostoDomicilio,
		Total:            totals.Total,
		MetodoPago:       metodoPago,
		TipoEntrega:      tipoEntrega,
		Notas:            opcional(in.Notas),
		ContactoNombre:   opcional(in.Contacto.Nombre),
		ContactoApellido: opcional(in.Contacto.Apellido),
		ContactoEmail:    opcional(in.Contacto.Email),
		ContactoTelefono: opcional(in.Contacto.Telefono),
		DireccionTexto:   direccionTexto(in.Direccion),
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&pedido).Error; err != nil {
			return err
		}
		for _, it := range items {
			var variante *string
			if len(it.Variante) > 0 && string(it.Variante) != "null" {
				v := string(it.Variante)
				variante = &v
			}
			linea := models.PedidoItem{
				PedidoID:   pedido.ID,
				ProductoID: it.ProductoID,
				ImagenID:   it.ImagenID,
				Nombre:     it.Nombre,
				PrecioUnit: it.Precio,
				Cantidad:   it.Cantidad,
				Variante:   variante,
				ImgURL:     it.ImgURL,
			}
			if err := tx.Create(&linea).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, Totals{}, err
	}

	return pedido.ID, totals, nil
}

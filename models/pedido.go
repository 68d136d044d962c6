package models

import "time"

// PedidoEstadoPendiente es el unico estado que asigna la creacion; los
// demas estados se fijan fuera de este sistema.
const PedidoEstadoPendiente = "pendiente"

type Pedido struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	NegocioID   uint    `gorm:"not null;index" json:"negocio_id"`
	Negocio     Negocio `gorm:"foreignKey:NegocioID" json:"-"`
	UsuarioID   uint    `gorm:"not null;index" json:"usuario_id"`
	Usuario     Usuario `gorm:"foreignKey:UsuarioID" json:"-"`
	DireccionID *uint   `json:"direccion_id"`
	Estado      string  `gorm:"type:varchar(20);not null;default:'pendiente'" json:"estado"`

	Subtotal       float64 `gorm:"type:decimal(18,2);not null" json:"subtotal"`
	CostoDomicilio float64 `gorm:"type:decimal(18,2);not null" json:"costo_domicilio"`
	Total          float64 `gorm:"type:decimal(18,2);not null" json:"total"`

	MetodoPago  string  `gorm:"type:varchar(30);not null;default:'efectivo'" json:"metodo_pago"`
	TipoEntrega string  `gorm:"type:varchar(30);not null;default:'domicilio'" json:"tipo_entrega"`
	Notas       *string `gorm:"type:text" json:"notas"`

	// snapshot de contacto y direccion al momento de la compra
	ContactoNombre   *string `gorm:"type:varchar(50)" json:"contacto_nombre"`
	ContactoApellido *string `gorm:"type:varchar(50)" json:"contacto_apellido"`
	ContactoEmail    *string `gorm:"type:varchar(255)" json:"contacto_email"`
	ContactoTelefono *string `gorm:"type:varchar(30)" json:"contacto_telefono"`
	DireccionTexto   *string `gorm:"type:varchar(500)" json:"direccion_texto"`

	FechaCreacion time.Time    `gorm:"autoCreateTime" json:"fecha_creacion"`
	Items         []PedidoItem `gorm:"foreignKey:PedidoID" json:"items"`
}

func (Pedido) TableName() string { return "pedidos" }

type PedidoItem struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PedidoID   uint   `gorm:"not null;index" json:"pedido_id"`
	Pedido     Pedido `gorm:"foreignKey:PedidoID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ProductoID *uint  `json:"producto_id"`
	ImagenID   *uint  `json:"imagen_id"`
	Nombre     string `gorm:"type:varchar(255);not null" json:"nombre"`

	PrecioUnit float64 `gorm:"type:decimal(18,2);not null" json:"precio_unit"`
	Cantidad   int     `gorm:"not null" json:"cantidad"`

	// Variante serializa la seleccion {categoria -> item} elegida.
	Variante *string `gorm:"type:text" json:"variante"`
	ImgURL   *string `gorm:"type:varchar(500)" json:"img_url"`
}

func (PedidoItem) TableName() string { return "pedido_items" }

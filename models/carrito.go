package models

import "time"

// CarritoItem es una linea del pedido en borrador de un usuario dentro de
// un negocio. Dos lineas con mismo producto y misma Firma de seleccion se
// consolidan sumando cantidades.
type CarritoItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	UsuarioID uint `gorm:"not null;index:idx_carrito_usuario_negocio" json:"usuario_id"`
	NegocioID uint `gorm:"not null;index:idx_carrito_usuario_negocio" json:"negocio_id"`

	ProductoID uint     `gorm:"not null" json:"producto_id"`
	Producto   Producto `gorm:"foreignKey:ProductoID" json:"-"`
	ImagenID   uint     `gorm:"not null" json:"imagen_id"`
	Nombre     string   `gorm:"type:varchar(255);not null" json:"nombre"`
	ImgURL     string   `gorm:"type:varchar(500)" json:"img_url"`

	Cantidad   int     `gorm:"not null" json:"cantidad"`
	PrecioUnit float64 `gorm:"type:decimal(18,2);not null" json:"precio_unit"`

	// Seleccion es el JSON {categoriaId: {itemId, label, recargo}}.
	// Firma es la forma canonica "cat:item|cat:item" usada para consolidar.
	Seleccion string `gorm:"type:text" json:"seleccion"`
	Firma     string `gorm:"type:varchar(500);index" json:"-"`

	FechaCreacion time.Time `gorm:"autoCreateTime" json:"fecha_creacion"`
}

func (CarritoItem) TableName() string { return "carrito_items" }

func (ci *CarritoItem) Subtotal() float64 {
	return ci.PrecioUnit * float64(ci.Cantidad)
}

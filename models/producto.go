package models

// Producto publica una imagen del catalogo con precio base. Una imagen
// solo puede respaldar un producto por negocio.
type Producto struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	NegocioID   uint    `gorm:"not null;uniqueIndex:idx_producto_negocio_imagen" json:"negocio_id"`
	Negocio     Negocio `gorm:"foreignKey:NegocioID" json:"-"`
	ImagenID    uint    `gorm:"not null;uniqueIndex:idx_producto_negocio_imagen" json:"imagen_id"`
	Imagen      Imagen  `gorm:"foreignKey:ImagenID" json:"-"`
	Nombre      *string `gorm:"type:varchar(255)" json:"nombre"`
	Descripcion *string `gorm:"type:text" json:"descripcion"`
	BasePrecio  float64 `gorm:"type:decimal(18,2);not null;default:0" json:"base_precio"`
	Estado      int     `gorm:"not null;default:1" json:"estado"`
}

func (Producto) TableName() string { return "productos" }

// ProductoOpcionPrecio es el recargo especifico de un producto para un item
// de atributo.
type ProductoOpcionPrecio struct {
	ID          uint    `gorm:"primaryKey" json:"-"`
	ProductoID  uint    `gorm:"column:product_id;not null;uniqueIndex:idx_pop_triple" json:"-"`
	CategoriaID uint    `gorm:"not null;uniqueIndex:idx_pop_triple" json:"categoria_id"`
	ItemID      uint    `gorm:"not null;uniqueIndex:idx_pop_triple" json:"item_id"`
	Precio      float64 `gorm:"type:decimal(18,2);not null;default:0" json:"precio"`
}

func (ProductoOpcionPrecio) TableName() string { return "producto_opcion_precio" }

// NegocioItemPrecio es el recargo global del negocio para un item de
// atributo; aplica a todos sus productos salvo override.
type NegocioItemPrecio struct {
	ID          uint    `gorm:"primaryKey" json:"-"`
	NegocioID   uint    `gorm:"not null;uniqueIndex:idx_nip_triple" json:"-"`
	CategoriaID uint    `gorm:"not null;uniqueIndex:idx_nip_triple" json:"categoria_id"`
	ItemID      uint    `gorm:"not null;uniqueIndex:idx_nip_triple" json:"item_id"`
	Precio      float64 `gorm:"type:decimal(18,2);not null;default:0" json:"precio"`
}

func (NegocioItemPrecio) TableName() string { return "negocio_item_precio" }

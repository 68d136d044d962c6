package models

import "time"

// Imagen es un registro del catalogo; los bytes viven en el almacen externo
// (Cloudinary) y aqui solo se persiste URL + metadatos.
type Imagen struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	NegocioID   uint      `gorm:"not null;index" json:"negocio_id"`
	Negocio     Negocio   `gorm:"foreignKey:NegocioID" json:"-"`
	URL         string    `gorm:"type:varchar(500);not null" json:"url"`
	PublicID    string    `gorm:"type:varchar(255)" json:"public_id"`
	Ancho       int       `json:"ancho"`
	Alto        int       `json:"alto"`
	Formato     string    `gorm:"type:varchar(10)" json:"formato"`
	Bytes       int64     `json:"bytes"`
	Estado      int       `gorm:"not null;default:1" json:"estado"`
	FechaCargue time.Time `gorm:"autoCreateTime" json:"fecha_cargue"`
	Titulo      string    `gorm:"type:varchar(30)" json:"titulo"`
	AltText     string    `gorm:"type:varchar(255)" json:"alt_text"`
}

func (Imagen) TableName() string { return "imagenes" }

// ImagenCategoria etiqueta una imagen con una categoria (cualquier rol).
type ImagenCategoria struct {
	ImagenID    uint `gorm:"primaryKey" json:"imagen_id"`
	CategoriaID uint `gorm:"primaryKey" json:"categoria_id"`
}

func (ImagenCategoria) TableName() string { return "imagen_categoria" }

// ImagenItem etiqueta una imagen con un item de categoria de rol atributo.
type ImagenItem struct {
	ImagenID uint `gorm:"primaryKey" json:"imagen_id"`
	ItemID   uint `gorm:"primaryKey" json:"item_id"`
}

func (ImagenItem) TableName() string { return "imagen_item" }

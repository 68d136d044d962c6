package models

// Roles de categoria. Las de rol "filtro" sirven solo para navegacion
// facetada y nunca llevan items; las de rol "atributo" agrupan variantes
// con recargo de precio.
const (
	RolFiltro   = "filtro"
	RolAtributo = "atributo"
)

type Categoria struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	NegocioID uint    `gorm:"not null;uniqueIndex:idx_cat_negocio_nombre" json:"negocio_id"`
	Negocio   Negocio `gorm:"foreignKey:NegocioID" json:"-"`
	Nombre    string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_cat_negocio_nombre" json:"nombre"`
	Estado    int     `gorm:"not null;default:1" json:"estado"`
	Orden     int     `gorm:"not null;default:0" json:"orden"`
	Rol       string  `gorm:"type:varchar(10);not null;default:'atributo'" json:"rol"`

	Items []CategoriaItem `gorm:"foreignKey:CategoriaID" json:"items"`
}

func (Categoria) TableName() string { return "categorias" }

type CategoriaItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CategoriaID uint      `gorm:"not null;uniqueIndex:idx_item_categoria_label" json:"categoria_id"`
	Categoria   Categoria `gorm:"foreignKey:CategoriaID" json:"-"`
	Label       string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_item_categoria_label" json:"label"`
	Valor       *string   `gorm:"type:varchar(100)" json:"valor"`
	Estado      int       `gorm:"not null;default:1" json:"estado"`
	Orden       int       `gorm:"not null;default:0" json:"orden"`
}

func (CategoriaItem) TableName() string { return "categoria_items" }

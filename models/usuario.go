package models

import "time"

// Roles de usuario: 0 = admin de plataforma, 1 = usuario de negocio.
const (
	RolAdmin   = 0
	RolNegocio = 1
)

type Usuario struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Nombre        string    `gorm:"type:varchar(50);not null" json:"nombre"`
	Apellido      string    `gorm:"type:varchar(50);not null" json:"apellido"`
	Email         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password      string    `gorm:"type:varchar(255);not null" json:"-"`
	Telefono      string    `gorm:"type:varchar(30)" json:"telefono"`
	Rol           int       `gorm:"not null;default:0" json:"rol"`
	NegocioID     *uint     `gorm:"index" json:"negocio_id"`
	Negocio       *Negocio  `gorm:"foreignKey:NegocioID" json:"-"`
	Estado        int       `gorm:"not null;default:1" json:"estado"`
	FechaCreacion time.Time `gorm:"autoCreateTime" json:"fecha_creacion"`
}

func (Usuario) TableName() string { return "usuarios" }

// DireccionUsuario guarda las direcciones de entrega; el prefill de checkout
// toma la mas reciente.
type DireccionUsuario struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	UsuarioID    uint    `gorm:"not null;index" json:"usuario_id"`
	Usuario      Usuario `gorm:"foreignKey:UsuarioID" json:"-"`
	Etiqueta     string  `gorm:"type:varchar(50)" json:"etiqueta"`
	Direccion1   string  `gorm:"type:varchar(255)" json:"direccion1"`
	Direccion2   string  `gorm:"type:varchar(255)" json:"direccion2"`
	Barrio       string  `gorm:"type:varchar(100)" json:"barrio"`
	Ciudad       string  `gorm:"type:varchar(100)" json:"ciudad"`
	Departamento string  `gorm:"type:varchar(100)" json:"departamento"`
	Referencia   string  `gorm:"type:varchar(255)" json:"referencia"`
	Telefono     string  `gorm:"type:varchar(30)" json:"telefono"`
}

func (DireccionUsuario) TableName() string { return "direcciones_usuario" }

package models

import "time"

// Negocio es el tenant: dueno de su catalogo, usuarios y pedidos.
// Nunca se borra fisicamente; se desactiva con Estado=0.
type Negocio struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	RazonSocial        string    `gorm:"type:varchar(255);not null" json:"razon_social"`
	NIT                string    `gorm:"column:nit;type:varchar(50)" json:"nit"`
	Telefono           string    `gorm:"type:varchar(30)" json:"telefono"`
	Descripcion        string    `gorm:"type:text" json:"descripcion"`
	Logo               string    `gorm:"type:varchar(500)" json:"logo"`
	Portada            string    `gorm:"type:varchar(500)" json:"portada"`
	RecibePagos        bool      `gorm:"not null;default:false" json:"recibe_pagos"`
	CostoDomicilio     float64   `gorm:"type:decimal(18,2);not null;default:0" json:"costo_domicilio"`
	Slug               string    `gorm:"type:varchar(120);uniqueIndex" json:"slug"`
	URLPublica         string    `gorm:"type:varchar(255)" json:"url_publica"`
	Estado             int       `gorm:"not null;default:1" json:"estado"`
	FechaCreacion      time.Time `gorm:"autoCreateTime" json:"fecha_creacion"`
	FechaActualizacion time.Time `gorm:"autoUpdateTime" json:"fecha_actualizacion"`
}

func (Negocio) TableName() string { return "negocios" }

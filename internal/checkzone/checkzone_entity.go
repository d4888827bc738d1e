package checkzone

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CheckZone struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre        string     `gorm:"column:nombre;type:varchar(100);not null"`
	Latitud       float64    `gorm:"column:latitud;type:numeric(10,7);not null"`
	Longitud      float64    `gorm:"column:longitud;type:numeric(10,7);not null"`
	Radio         float64    `gorm:"column:radio;type:numeric(8,2);not null;default:100"`
	EmpleadoID    *uuid.UUID `gorm:"column:empleado_id;type:uuid;index"`
	CentroTrabajo *string    `gorm:"column:centro_trabajo;type:varchar(150)"`
	Activo        bool       `gorm:"column:activo;not null;default:true"`

	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (CheckZone) TableName() string {
	return "zonas_chequeo"
}

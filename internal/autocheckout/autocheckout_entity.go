package autocheckout

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReasonAuto   = "salida_automatica"
	ReasonManual = "manual_checkout"
)

// LogEntry is the append-only audit trail of forced closures. The
// sweeper checks it before closing so overlapping runs never process
// the same employee twice on one date.
type LogEntry struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpleadoID       uuid.UUID  `gorm:"column:empleado_id;type:uuid;not null;uniqueIndex:uq_salida_automatica_dia"`
	Fecha            time.Time  `gorm:"column:fecha;type:date;not null;uniqueIndex:uq_salida_automatica_dia"`
	Motivo           string     `gorm:"column:motivo;type:varchar(30);not null;uniqueIndex:uq_salida_automatica_dia"`
	SalidaProgramada *time.Time `gorm:"column:salida_programada;type:timestamptz"`
	SalidaReal       time.Time  `gorm:"column:salida_real;type:timestamptz;not null"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
}

func (LogEntry) TableName() string {
	return "salidas_automaticas"
}

package attendance

import (
	"time"

	"github.com/google/uuid"
)

const (
	DayTypeNormal   = "normal"
	DayTypeAbsence  = "falta"
	DayTypeVacation = "vacaciones"
)

const (
	PunchEntrance = "entrada"
	PunchExit     = "salida"
)

// AttendanceRecord is the attendance ledger: one row per employee per
// calendar date, enforced by uq_asistencia_empleado_fecha.
type AttendanceRecord struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpleadoID    uuid.UUID  `gorm:"column:empleado_id;type:uuid;not null;uniqueIndex:uq_asistencia_empleado_fecha"`
	Fecha         time.Time  `gorm:"column:fecha;type:date;not null;uniqueIndex:uq_asistencia_empleado_fecha"`
	HoraEntrada   *time.Time `gorm:"column:hora_entrada;type:timestamptz"`
	HoraSalida    *time.Time `gorm:"column:hora_salida;type:timestamptz"`
	TipoDia       string     `gorm:"column:tipo_dia;type:varchar(20);not null;default:normal"`
	Retardo       bool       `gorm:"column:retardo;not null;default:false"`
	Autorizado    bool       `gorm:"column:autorizado;not null;default:true"`
	Justificacion *string    `gorm:"column:justificacion;type:text"`
	Observaciones *string    `gorm:"column:observaciones;type:text"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (AttendanceRecord) TableName() string {
	return "asistencia"
}

// Open reports whether the record has an entrance waiting for its exit.
func (r AttendanceRecord) Open() bool {
	return r.HoraEntrada != nil && r.HoraSalida == nil
}

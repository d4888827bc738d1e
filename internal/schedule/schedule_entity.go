package schedule

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleEntry holds the expected entrance/exit for one weekday. The
// absence of a row for a weekday means the employee does not work that
// day. Times are stored as HH:MM:SS strings in the site timezone.
type ScheduleEntry struct {
	ID          uuid.UUID    `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpleadoID  uuid.UUID    `gorm:"column:empleado_id;type:uuid;not null;uniqueIndex:uq_horario_empleado_dia"`
	DiaSemana   time.Weekday `gorm:"column:dia_semana;type:smallint;not null;uniqueIndex:uq_horario_empleado_dia"`
	HoraEntrada string       `gorm:"column:hora_entrada;type:time;not null"`
	HoraSalida  string       `gorm:"column:hora_salida;type:time;not null"`
	Activo      bool         `gorm:"column:activo;not null;default:true"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (ScheduleEntry) TableName() string {
	return "horarios"
}

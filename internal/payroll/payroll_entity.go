package payroll

import (
	"time"

	"github.com/google/uuid"
)

// PayrollRecord is one employee's settlement for one week period.
// A paid record is immutable: generation and deletion both refuse to
// touch a period containing one.
type PayrollRecord struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpleadoID     uuid.UUID `gorm:"column:empleado_id;type:uuid;not null;uniqueIndex:uq_nomina_empleado_periodo"`
	Periodo        string    `gorm:"column:periodo;type:varchar(10);not null;uniqueIndex:uq_nomina_empleado_periodo"`
	FechaInicio    time.Time `gorm:"column:fecha_inicio;type:date;not null"`
	FechaFin       time.Time `gorm:"column:fecha_fin;type:date;not null"`
	SalarioBase    float64   `gorm:"column:salario_base;type:numeric(10,2);not null"`
	DiasTrabajados int       `gorm:"column:dias_trabajados;not null"`
	Vacaciones     int       `gorm:"column:vacaciones;not null;default:0"`
	Faltas         int       `gorm:"column:faltas;not null;default:0"`
	Retardos       int       `gorm:"column:retardos;not null;default:0"`
	Deduccion      float64   `gorm:"column:deduccion;type:numeric(10,2);not null;default:0"`
	Comisiones     float64   `gorm:"column:comisiones;type:numeric(10,2);not null;default:0"`
	Total          float64   `gorm:"column:total;type:numeric(10,2);not null"`
	Pagado         bool      `gorm:"column:pagado;not null;default:false"`
	Observaciones  *string   `gorm:"column:observaciones;type:text"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (PayrollRecord) TableName() string {
	return "nomina"
}

// Commission is an extra amount credited to an employee for a period,
// captured by the admin surface and summed into the settlement.
type Commission struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpleadoID uuid.UUID `gorm:"column:empleado_id;type:uuid;not null;index"`
	Periodo    string    `gorm:"column:periodo;type:varchar(10);not null;index"`
	Concepto   string    `gorm:"column:concepto;type:varchar(200);not null"`
	Monto      float64   `gorm:"column:monto;type:numeric(10,2);not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (Commission) TableName() string {
	return "comisiones"
}

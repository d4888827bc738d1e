package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is master data owned by the admin CRUD surface; this
// subsystem only reads it (plus the mobile credential columns, which
// the mobile authenticator maintains).
type Employee struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroEmpleado  string     `gorm:"column:numero_empleado;type:varchar(20);uniqueIndex;not null"`
	Nombre          string     `gorm:"column:nombre;type:varchar(100);not null"`
	Apellidos       string     `gorm:"column:apellidos;type:varchar(150);not null"`
	Email           *string    `gorm:"column:email;type:varchar(255)"`
	Telefono        *string    `gorm:"column:telefono;type:varchar(30)"`
	Puesto          *string    `gorm:"column:puesto;type:varchar(100)"`
	Departamento    *string    `gorm:"column:departamento;type:varchar(100)"`
	SalarioSemanal  float64    `gorm:"column:salario_semanal;type:numeric(10,2);not null;default:0"`
	FechaIngreso    *time.Time `gorm:"column:fecha_ingreso;type:date"`
	FechaNacimiento *time.Time `gorm:"column:fecha_nacimiento;type:date"`
	Activo          bool       `gorm:"column:activo;not null;default:true"`

	// Mobile punch-clock credentials
	Usuario      *string    `gorm:"column:usuario;type:varchar(60);uniqueIndex"`
	Password     *string    `gorm:"column:password;type:varchar(255)"`
	ActivoMovil  bool       `gorm:"column:activo_movil;not null;default:false"`
	UltimoAcceso *time.Time `gorm:"column:ultimo_acceso;type:timestamptz"`

	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Employee) TableName() string {
	return "empleados"
}

func (e Employee) NombreCompleto() string {
	return e.Nombre + " " + e.Apellidos
}

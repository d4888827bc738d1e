package attendance

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type ListFilter struct {
	Fecha       string
	EmpleadoID  string
	FechaInicio string
	FechaFin    string
}

// ListRow is an attendance row joined with the employee it belongs to.
type ListRow struct {
	ID             string     `gorm:"column:id"`
	EmpleadoID     string     `gorm:"column:empleado_id"`
	NumeroEmpleado string     `gorm:"column:numero_empleado"`
	Nombre         string     `gorm:"column:nombre"`
	Apellidos      string     `gorm:"column:apellidos"`
	Fecha          time.Time  `gorm:"column:fecha"`
	HoraEntrada    *time.Time `gorm:"column:hora_entrada"`
	HoraSalida     *time.Time `gorm:"column:hora_salida"`
	TipoDia        string     `gorm:"column:tipo_dia"`
	Retardo        bool       `gorm:"column:retardo"`
	Autorizado     bool       `gorm:"column:autorizado"`
	Justificacion  *string    `gorm:"column:justificacion"`
	Observaciones  *string    `gorm:"column:observaciones"`
}

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByID(ctx context.Context, id string) (*AttendanceRecord, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*AttendanceRecord, error)
	Create(ctx context.Context, rec *AttendanceRecord) error
	Update(ctx context.Context, rec *AttendanceRecord) error
	Delete(ctx context.Context, id string) error
	ListByFilter(ctx context.Context, f ListFilter) ([]ListRow, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) FindByID(ctx context.Context, id string) (*AttendanceRecord, error) {
	var rec AttendanceRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	return &rec, err
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*AttendanceRecord, error) {
	var rec AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("empleado_id = ?", employeeID).
		Where("fecha = ?", date).
		First(&rec).Error
	return &rec, err
}

func (r *repository) Create(ctx context.Context, rec *AttendanceRecord) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
			INSERT INTO asistencia (
				id, empleado_id, fecha, hora_entrada, hora_salida,
				tipo_dia, retardo, autorizado, justificacion, observaciones,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		`,
			rec.ID, rec.EmpleadoID, rec.Fecha.Format("2006-01-02"),
			rec.HoraEntrada, rec.HoraSalida, rec.TipoDia,
			rec.Retardo, rec.Autorizado, rec.Justificacion, rec.Observaciones,
		)
		return err
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *repository) Update(ctx context.Context, rec *AttendanceRecord) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
			UPDATE asistencia SET
				hora_entrada = $2, hora_salida = $3, tipo_dia = $4,
				retardo = $5, autorizado = $6, justificacion = $7,
				observaciones = $8, updated_at = now()
			WHERE id = $1
		`,
			rec.ID, rec.HoraEntrada, rec.HoraSalida, rec.TipoDia,
			rec.Retardo, rec.Autorizado, rec.Justificacion, rec.Observaciones,
		)
		return err
	}
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&AttendanceRecord{}, "id = ?", id).Error
}

func (r *repository) ListByFilter(ctx context.Context, f ListFilter) ([]ListRow, error) {
	q := r.db.WithContext(ctx).
		Table("asistencia a").
		Select(`a.id, a.empleado_id, e.numero_empleado, e.nombre, e.apellidos,
			a.fecha, a.hora_entrada, a.hora_salida, a.tipo_dia,
			a.retardo, a.autorizado, a.justificacion, a.observaciones`).
		Joins("JOIN empleados e ON e.id = a.empleado_id")

	if f.Fecha != "" {
		q = q.Where("a.fecha = ?", f.Fecha)
	}
	if f.EmpleadoID != "" {
		q = q.Where("a.empleado_id = ?", f.EmpleadoID)
	}
	if f.FechaInicio != "" && f.FechaFin != "" {
		q = q.Where("a.fecha BETWEEN ? AND ?", f.FechaInicio, f.FechaFin)
	}

	var rows []ListRow
	err := q.Order("a.fecha DESC, e.nombre").Scan(&rows).Error
	return rows, err
}

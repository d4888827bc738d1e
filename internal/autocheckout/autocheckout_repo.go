package autocheckout

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// Candidate is one active employee scheduled to work today, joined
// with today's attendance row when it exists.
type Candidate struct {
	EmpleadoID     string     `gorm:"column:empleado_id"`
	Nombre         string     `gorm:"column:nombre"`
	Apellidos      string     `gorm:"column:apellidos"`
	SalidaHorario  string     `gorm:"column:salida_horario"`
	RecordID       *string    `gorm:"column:record_id"`
	HoraEntrada    *time.Time `gorm:"column:hora_entrada"`
	HoraSalidaReal *time.Time `gorm:"column:hora_salida_real"`
}

//go:generate mockgen -source=autocheckout_repo.go -destination=mock/autocheckout_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	ListCandidates(ctx context.Context, date string, day time.Weekday) ([]Candidate, error)
	HasLog(ctx context.Context, employeeID string, date string, motivo string) (bool, error)
	InsertLog(ctx context.Context, entry *LogEntry) error
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

func (r *repository) ListCandidates(ctx context.Context, date string, day time.Weekday) ([]Candidate, error) {
	var rows []Candidate
	err := r.db.WithContext(ctx).
		Table("empleados e").
		Select(`e.id AS empleado_id, e.nombre, e.apellidos,
			h.hora_salida AS salida_horario,
			a.id AS record_id, a.hora_entrada, a.hora_salida AS hora_salida_real`).
		Joins("JOIN horarios h ON h.empleado_id = e.id AND h.dia_semana = ? AND h.activo", int(day)).
		Joins("LEFT JOIN asistencia a ON a.empleado_id = e.id AND a.fecha = ?", date).
		Where("e.activo = ?", true).
		Order("e.nombre, e.apellidos").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) HasLog(ctx context.Context, employeeID string, date string, motivo string) (bool, error) {
	if r.tx != nil {
		var count int
		err := r.tx.QueryRowContext(ctx, `
			SELECT count(*) FROM salidas_automaticas
			WHERE empleado_id = $1 AND fecha = $2 AND motivo = $3
		`, employeeID, date, motivo).Scan(&count)
		return count > 0, err
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&LogEntry{}).
		Where("empleado_id = ?", employeeID).
		Where("fecha = ?", date).
		Where("motivo = ?", motivo).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) InsertLog(ctx context.Context, entry *LogEntry) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
			INSERT INTO salidas_automaticas (
				id, empleado_id, fecha, motivo, salida_programada, salida_real, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, now())
		`,
			entry.ID, entry.EmpleadoID, entry.Fecha.Format("2006-01-02"),
			entry.Motivo, entry.SalidaProgramada, entry.SalidaReal,
		)
		return err
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

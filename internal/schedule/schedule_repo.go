package schedule

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=schedule_repo.go -destination=mock/schedule_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByEmployee(ctx context.Context, employeeID string) ([]ScheduleEntry, error)
	FindForDay(ctx context.Context, employeeID string, day time.Weekday) (*ScheduleEntry, error)
	DeleteByEmployee(ctx context.Context, employeeID string) error
	Insert(ctx context.Context, entry *ScheduleEntry) error
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

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]ScheduleEntry, error) {
	var rows []ScheduleEntry
	err := r.db.WithContext(ctx).
		Where("empleado_id = ?", employeeID).
		Order("dia_semana").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindForDay(ctx context.Context, employeeID string, day time.Weekday) (*ScheduleEntry, error) {
	var entry ScheduleEntry
	err := r.db.WithContext(ctx).
		Where("empleado_id = ?", employeeID).
		Where("dia_semana = ?", int(day)).
		Where("activo = ?", true).
		First(&entry).Error
	return &entry, err
}

func (r *repository) DeleteByEmployee(ctx context.Context, employeeID string) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `DELETE FROM horarios WHERE empleado_id = $1`, employeeID)
		return err
	}
	return r.db.WithContext(ctx).
		Where("empleado_id = ?", employeeID).
		Delete(&ScheduleEntry{}).Error
}

func (r *repository) Insert(ctx context.Context, entry *ScheduleEntry) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
			INSERT INTO horarios (id, empleado_id, dia_semana, hora_entrada, hora_salida, activo, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		`, entry.ID, entry.EmpleadoID, int(entry.DiaSemana), entry.HoraEntrada, entry.HoraSalida, entry.Activo)
		return err
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

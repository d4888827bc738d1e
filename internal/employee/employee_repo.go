package employee

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindActiveByID(ctx context.Context, id string) (*Employee, error)
	FindAllActive(ctx context.Context) ([]Employee, error)
	FindByUsuario(ctx context.Context, usuario string) (*Employee, error)
	UpdatePassword(ctx context.Context, id string, hashed string) error
	TouchUltimoAcceso(ctx context.Context, id string) error
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

func (r *repository) FindActiveByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("activo = ?", true).
		First(&e).Error
	return &e, err
}

func (r *repository) FindAllActive(ctx context.Context) ([]Employee, error) {
	var rows []Employee
	err := r.db.WithContext(ctx).
		Where("activo = ?", true).
		Order("nombre, apellidos").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByUsuario(ctx context.Context, usuario string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Where("usuario = ?", usuario).
		Where("activo = ?", true).
		First(&e).Error
	return &e, err
}

func (r *repository) UpdatePassword(ctx context.Context, id string, hashed string) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
			UPDATE empleados SET password = $2, ultimo_acceso = now(), updated_at = now()
			WHERE id = $1
		`, id, hashed)
		return err
	}
	return r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password":      hashed,
			"ultimo_acceso": time.Now(),
		}).Error
}

func (r *repository) TouchUltimoAcceso(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("id = ?", id).
		Update("ultimo_acceso", time.Now()).Error
}

package checkzone

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

//go:generate mockgen -source=checkzone_repo.go -destination=mock/checkzone_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, z *CheckZone) error
	Update(ctx context.Context, z *CheckZone) error
	FindAll(ctx context.Context) ([]CheckZone, error)
	FindByID(ctx context.Context, id string) (*CheckZone, error)
	// ResolveForEmployee returns the zone bound to the employee, or the
	// default (unbound) active zone when no binding exists. A nil zone
	// with nil error means no zone is configured at all.
	ResolveForEmployee(ctx context.Context, employeeID string) (*CheckZone, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, z *CheckZone) error {
	return r.db.WithContext(ctx).Create(z).Error
}

func (r *repository) Update(ctx context.Context, z *CheckZone) error {
	return r.db.WithContext(ctx).Save(z).Error
}

func (r *repository) FindAll(ctx context.Context) ([]CheckZone, error) {
	var rows []CheckZone
	err := r.db.WithContext(ctx).
		Order("nombre").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*CheckZone, error) {
	var z CheckZone
	err := r.db.WithContext(ctx).First(&z, "id = ?", id).Error
	return &z, err
}

func (r *repository) ResolveForEmployee(ctx context.Context, employeeID string) (*CheckZone, error) {
	var z CheckZone
	err := r.db.WithContext(ctx).
		Where("empleado_id = ?", employeeID).
		Where("activo = ?", true).
		First(&z).Error
	if err == nil {
		return &z, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Fall back to the site-wide default zone
	err = r.db.WithContext(ctx).
		Where("empleado_id IS NULL").
		Where("activo = ?", true).
		Order("created_at").
		First(&z).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &z, nil
}

package mobileauth

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=mobileauth_repo.go -destination=mock/mobileauth_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateSession(ctx context.Context, s *MobileSession) error
	FindActiveByToken(ctx context.Context, token string) (*MobileSession, error)
	TouchActivity(ctx context.Context, id string) error
	DeactivateByToken(ctx context.Context, token string) error
	DeactivateAllForEmployee(ctx context.Context, employeeID string) error
	CountRecentFailures(ctx context.Context, usuario string, ip string, since time.Time) (int64, error)
	InsertAttempt(ctx context.Context, a *LoginAttempt) error
	ClearFailures(ctx context.Context, usuario string, ip string) error
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

func (r *repository) CreateSession(ctx context.Context, s *MobileSession) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
			INSERT INTO sesiones_movil (
				id, empleado_id, token, dispositivo, ip, temporal,
				expira, activo, ultima_actividad, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		`,
			s.ID, s.EmpleadoID, s.Token, s.Dispositivo, s.IP, s.Temporal,
			s.Expira, s.Activo, s.UltimaActividad,
		)
		return err
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) FindActiveByToken(ctx context.Context, token string) (*MobileSession, error) {
	var s MobileSession
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		Where("activo = ?", true).
		First(&s).Error
	return &s, err
}

func (r *repository) TouchActivity(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&MobileSession{}).
		Where("id = ?", id).
		Update("ultima_actividad", time.Now()).Error
}

func (r *repository) DeactivateByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Model(&MobileSession{}).
		Where("token = ?", token).
		Update("activo", false).Error
}

func (r *repository) DeactivateAllForEmployee(ctx context.Context, employeeID string) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
			UPDATE sesiones_movil SET activo = false WHERE empleado_id = $1
		`, employeeID)
		return err
	}
	return r.db.WithContext(ctx).
		Model(&MobileSession{}).
		Where("empleado_id = ?", employeeID).
		Update("activo", false).Error
}

func (r *repository) CountRecentFailures(ctx context.Context, usuario string, ip string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LoginAttempt{}).
		Where("usuario = ?", usuario).
		Where("ip = ?", ip).
		Where("exitoso = ?", false).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *repository) InsertAttempt(ctx context.Context, a *LoginAttempt) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) ClearFailures(ctx context.Context, usuario string, ip string) error {
	return r.db.WithContext(ctx).
		Where("usuario = ?", usuario).
		Where("ip = ?", ip).
		Where("exitoso = ?", false).
		Delete(&LoginAttempt{}).Error
}

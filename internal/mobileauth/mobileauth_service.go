package mobileauth

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/SiwoTech/asistencias/internal/employee"
	mobileautherrors "github.com/SiwoTech/asistencias/internal/mobileauth/errors"
	"github.com/SiwoTech/asistencias/internal/shared/config"
	"github.com/SiwoTech/asistencias/internal/shared/timeutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	tempPasswordPrefix = "temp_"

	tempSessionTTL     = 30 * time.Minute
	daySessionTTL      = 24 * time.Hour
	rememberSessionTTL = 30 * 24 * time.Hour

	defaultMaxAttempts    = 3
	defaultLockoutMinutes = 15

	minPasswordLength = 6
)

//go:generate mockgen -source=mobileauth_service.go -destination=mock/mobileauth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, ip string, req LoginRequest) (LoginResponse, error)
	VerifySession(ctx context.Context, token string) (VerifyResponse, error)
	// ChangePassword rehashes with bcrypt and kills every session of
	// the employee in the same transaction, then issues a fresh
	// long-lived token.
	ChangePassword(ctx context.Context, token string, req ChangePasswordRequest) (LoginResponse, error)
	Logout(ctx context.Context, token string) error
}

type service struct {
	db           *sql.DB
	repo         Repository
	employeeRepo employee.Repository
	cfg          *config.Store
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(
	db *sql.DB,
	repo Repository,
	employeeRepo employee.Repository,
	cfg *config.Store,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("mobileauth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("mobileauth.service")
	}
	return &service{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		cfg:          cfg,
		logger:       l,
		now:          timeutil.Now,
	}
}

func (s *service) Login(ctx context.Context, ip string, req LoginRequest) (LoginResponse, error) {
	now := s.now()

	maxAttempts := s.cfg.GetInt(ctx, config.KeyIntentosMaximos, defaultMaxAttempts)
	lockoutMinutes := s.cfg.GetInt(ctx, config.KeyBloqueoDuracion, defaultLockoutMinutes)
	since := now.Add(-time.Duration(lockoutMinutes) * time.Minute)

	failures, err := s.repo.CountRecentFailures(ctx, req.Usuario, ip, since)
	if err != nil {
		return LoginResponse{}, err
	}
	if failures >= int64(maxAttempts) {
		// Not recorded as an attempt: a retry while locked out must not
		// slide the lockout window.
		s.logger.Warn("login blocked by throttle",
			zap.String("usuario", req.Usuario),
			zap.String("ip", ip),
		)
		return LoginResponse{}, mobileautherrors.ErrTooManyAttempts
	}

	emp, err := s.employeeRepo.FindByUsuario(ctx, req.Usuario)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordAttempt(ctx, req.Usuario, ip, false, "usuario_no_existe")
			return LoginResponse{}, mobileautherrors.ErrInvalidCredentials
		}
		return LoginResponse{}, err
	}
	if !emp.ActivoMovil {
		s.recordAttempt(ctx, req.Usuario, ip, false, "movil_deshabilitado")
		return LoginResponse{}, mobileautherrors.ErrMobileDisabled
	}
	if emp.Password == nil || *emp.Password == "" {
		s.recordAttempt(ctx, req.Usuario, ip, false, "sin_password")
		return LoginResponse{}, mobileautherrors.ErrInvalidCredentials
	}

	ok, scheme := verifyPassword(*emp.Password, req.Password, emp.ID.String())
	if !ok {
		s.recordAttempt(ctx, req.Usuario, ip, false, "password_incorrecto")
		return LoginResponse{}, mobileautherrors.ErrInvalidCredentials
	}

	// Legacy MD5 and plaintext credentials are upgraded in place on
	// the first successful verification.
	if scheme == schemeMD5 || scheme == schemePlain {
		if hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost); err == nil {
			if err := s.employeeRepo.UpdatePassword(ctx, emp.ID.String(), string(hashed)); err != nil {
				s.logger.Warn("legacy password upgrade failed",
					zap.String("empleado_id", emp.ID.String()),
					zap.Error(err),
				)
			}
		}
	}

	firstLogin := scheme == schemeTemp || emp.UltimoAcceso == nil
	if firstLogin && !s.cfg.GetBool(ctx, config.KeyPrimerLoginCambio, true) {
		firstLogin = false
	}

	ttl := daySessionTTL
	switch {
	case firstLogin:
		ttl = tempSessionTTL
	case req.Recordar:
		ttl = rememberSessionTTL
	}

	session, err := s.issueSession(ctx, nil, emp.ID, req.Dispositivo, ip, firstLogin, now.Add(ttl))
	if err != nil {
		return LoginResponse{}, err
	}

	s.recordAttempt(ctx, req.Usuario, ip, true, "")
	if err := s.repo.ClearFailures(ctx, req.Usuario, ip); err != nil {
		s.logger.Warn("clear failed attempts failed", zap.Error(err))
	}
	if err := s.employeeRepo.TouchUltimoAcceso(ctx, emp.ID.String()); err != nil {
		s.logger.Warn("touch ultimo_acceso failed", zap.Error(err))
	}

	s.logger.Info("mobile login",
		zap.String("empleado_id", emp.ID.String()),
		zap.Bool("primer_login", firstLogin),
	)
	return LoginResponse{
		Token:           session.Token,
		Expira:          session.Expira.Format(time.RFC3339),
		CambiarPassword: firstLogin,
		Empleado: EmployeeInfo{
			ID:             emp.ID.String(),
			NumeroEmpleado: emp.NumeroEmpleado,
			Nombre:         emp.NombreCompleto(),
		},
	}, nil
}

func (s *service) VerifySession(ctx context.Context, token string) (VerifyResponse, error) {
	session, emp, err := s.activeSession(ctx, token)
	if err != nil {
		return VerifyResponse{}, err
	}

	if err := s.repo.TouchActivity(ctx, session.ID.String()); err != nil {
		s.logger.Warn("touch session activity failed", zap.Error(err))
	}

	return VerifyResponse{
		Valida:          true,
		CambiarPassword: session.Temporal,
		Empleado: EmployeeInfo{
			ID:             emp.ID.String(),
			NumeroEmpleado: emp.NumeroEmpleado,
			Nombre:         emp.NombreCompleto(),
		},
	}, nil
}

func (s *service) ChangePassword(ctx context.Context, token string, req ChangePasswordRequest) (LoginResponse, error) {
	if len(req.PasswordNueva) < minPasswordLength {
		return LoginResponse{}, mobileautherrors.ErrPasswordTooShort
	}

	session, emp, err := s.activeSession(ctx, token)
	if err != nil {
		return LoginResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.PasswordNueva), bcrypt.DefaultCost)
	if err != nil {
		return LoginResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("change password begin tx failed", zap.Error(err))
		return LoginResponse{}, err
	}
	defer tx.Rollback()

	if err := s.employeeRepo.WithTx(tx).UpdatePassword(ctx, emp.ID.String(), string(hashed)); err != nil {
		return LoginResponse{}, err
	}
	if err := s.repo.WithTx(tx).DeactivateAllForEmployee(ctx, emp.ID.String()); err != nil {
		return LoginResponse{}, err
	}

	newSession, err := s.issueSession(ctx, tx, emp.ID, deref(session.Dispositivo), deref(session.IP), false, s.now().Add(rememberSessionTTL))
	if err != nil {
		return LoginResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LoginResponse{}, err
	}

	s.logger.Info("mobile password changed", zap.String("empleado_id", emp.ID.String()))
	return LoginResponse{
		Token:           newSession.Token,
		Expira:          newSession.Expira.Format(time.RFC3339),
		CambiarPassword: false,
		Empleado: EmployeeInfo{
			ID:             emp.ID.String(),
			NumeroEmpleado: emp.NumeroEmpleado,
			Nombre:         emp.NombreCompleto(),
		},
	}, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return mobileautherrors.ErrSessionInvalid
	}
	return s.repo.DeactivateByToken(ctx, token)
}

// activeSession resolves the token to a live session and its employee,
// deactivating expired tokens on sight.
func (s *service) activeSession(ctx context.Context, token string) (*MobileSession, *employee.Employee, error) {
	if token == "" {
		return nil, nil, mobileautherrors.ErrSessionInvalid
	}

	session, err := s.repo.FindActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, mobileautherrors.ErrSessionInvalid
		}
		return nil, nil, err
	}
	if s.now().After(session.Expira) {
		if err := s.repo.DeactivateByToken(ctx, token); err != nil {
			s.logger.Warn("deactivate expired session failed", zap.Error(err))
		}
		return nil, nil, mobileautherrors.ErrSessionInvalid
	}

	emp, err := s.employeeRepo.FindActiveByID(ctx, session.EmpleadoID.String())
	if err != nil {
		return nil, nil, mobileautherrors.ErrSessionInvalid
	}
	if !emp.ActivoMovil {
		return nil, nil, mobileautherrors.ErrMobileDisabled
	}
	return session, emp, nil
}

func (s *service) issueSession(ctx context.Context, tx *sql.Tx, employeeID uuid.UUID, device string, ip string, temporal bool, expires time.Time) (*MobileSession, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	session := &MobileSession{
		ID:              uuid.New(),
		EmpleadoID:      employeeID,
		Token:           token,
		Temporal:        temporal,
		Expira:          expires,
		Activo:          true,
		UltimaActividad: s.now(),
	}
	if device != "" {
		session.Dispositivo = &device
	}
	if ip != "" {
		session.IP = &ip
	}

	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	if err := repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) recordAttempt(ctx context.Context, usuario string, ip string, success bool, motivo string) {
	attempt := &LoginAttempt{
		ID:      uuid.New(),
		Usuario: usuario,
		IP:      ip,
		Exitoso: success,
	}
	if motivo != "" {
		attempt.Motivo = &motivo
	}
	if err := s.repo.InsertAttempt(ctx, attempt); err != nil {
		s.logger.Warn("record login attempt failed", zap.Error(err))
	}
}

// newToken returns 32 random bytes hex-encoded: a 64-char opaque token.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

const (
	schemeTemp   = "temp"
	schemeBcrypt = "bcrypt"
	schemeMD5    = "md5"
	schemePlain  = "plain"
)

// verifyPassword runs the compatibility cascade over the stored
// credential: temporary marker, bcrypt, legacy MD5, legacy plaintext.
// Temporary markers carry md5(password + employee id), the salt the
// legacy admin panel used when provisioning devices.
func verifyPassword(stored, input, employeeID string) (bool, string) {
	if strings.HasPrefix(stored, tempPasswordPrefix) {
		return md5Hex(input+employeeID) == strings.TrimPrefix(stored, tempPasswordPrefix), schemeTemp
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil, schemeBcrypt
	}
	if len(stored) == 32 && isHex(stored) {
		return md5Hex(input) == strings.ToLower(stored), schemeMD5
	}
	return stored == input, schemePlain
}

func md5Hex(v string) string {
	sum := md5.Sum([]byte(v))
	return hex.EncodeToString(sum[:])
}

func isHex(v string) bool {
	_, err := hex.DecodeString(v)
	return err == nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

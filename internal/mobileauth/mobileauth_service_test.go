package mobileauth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/SiwoTech/asistencias/internal/employee"
	mobileautherrors "github.com/SiwoTech/asistencias/internal/mobileauth/errors"
	"github.com/SiwoTech/asistencias/internal/shared/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeRepo struct {
	sessions  []*MobileSession
	attempts  []*LoginAttempt
	failures  int64
	deactAll  []string
	deactByTk []string
	touched   []string
	cleared   []string
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }

func (f *fakeRepo) CreateSession(ctx context.Context, s *MobileSession) error {
	f.sessions = append(f.sessions, s)
	return nil
}

func (f *fakeRepo) FindActiveByToken(ctx context.Context, token string) (*MobileSession, error) {
	for _, s := range f.sessions {
		if s.Token == token && s.Activo {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) TouchActivity(ctx context.Context, id string) error {
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeRepo) DeactivateByToken(ctx context.Context, token string) error {
	f.deactByTk = append(f.deactByTk, token)
	for _, s := range f.sessions {
		if s.Token == token {
			s.Activo = false
		}
	}
	return nil
}

func (f *fakeRepo) DeactivateAllForEmployee(ctx context.Context, employeeID string) error {
	f.deactAll = append(f.deactAll, employeeID)
	for _, s := range f.sessions {
		if s.EmpleadoID.String() == employeeID {
			s.Activo = false
		}
	}
	return nil
}

func (f *fakeRepo) CountRecentFailures(ctx context.Context, usuario string, ip string, since time.Time) (int64, error) {
	return f.failures, nil
}

func (f *fakeRepo) InsertAttempt(ctx context.Context, a *LoginAttempt) error {
	f.attempts = append(f.attempts, a)
	return nil
}

func (f *fakeRepo) ClearFailures(ctx context.Context, usuario string, ip string) error {
	f.cleared = append(f.cleared, usuario+"@"+ip)
	f.failures = 0
	return nil
}

type fakeEmployeeRepo struct {
	byUsuario map[string]*employee.Employee
	byID      map[string]*employee.Employee
	passwords map[string]string
	touched   []string
}

func (f *fakeEmployeeRepo) WithTx(tx *sql.Tx) employee.Repository { return f }

func (f *fakeEmployeeRepo) FindActiveByID(ctx context.Context, id string) (*employee.Employee, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepo) FindAllActive(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) FindByUsuario(ctx context.Context, usuario string) (*employee.Employee, error) {
	if e, ok := f.byUsuario[usuario]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepo) UpdatePassword(ctx context.Context, id string, hashed string) error {
	if f.passwords == nil {
		f.passwords = map[string]string{}
	}
	f.passwords[id] = hashed
	return nil
}

func (f *fakeEmployeeRepo) TouchUltimoAcceso(ctx context.Context, id string) error {
	f.touched = append(f.touched, id)
	return nil
}

func authConfig() *config.Store {
	return config.NewStaticStore(map[string]string{
		config.KeyIntentosMaximos:   "3",
		config.KeyBloqueoDuracion:   "15",
		config.KeyPrimerLoginCambio: "1",
	})
}

func testMobileEmployee(password string) *employee.Employee {
	usuario := "jperez"
	accessed := time.Now().Add(-24 * time.Hour)
	return &employee.Employee{
		ID:             uuid.New(),
		NumeroEmpleado: "EMP-001",
		Nombre:         "Juan",
		Apellidos:      "Pérez",
		Activo:         true,
		Usuario:        &usuario,
		Password:       &password,
		ActivoMovil:    true,
		UltimoAcceso:   &accessed,
	}
}

func newAuthService(t *testing.T, repo Repository, empRepo employee.Repository) *service {
	t.Helper()
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db, repo, empRepo, authConfig()).(*service)
}

func TestLogin_BcryptPassword(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.DefaultCost)
	emp := testMobileEmployee(string(hashed))

	repo := &fakeRepo{}
	empRepo := &fakeEmployeeRepo{byUsuario: map[string]*employee.Employee{*emp.Usuario: emp}}
	svc := newAuthService(t, repo, empRepo)

	res, err := svc.Login(context.Background(), "10.0.0.1", LoginRequest{
		Usuario:  *emp.Usuario,
		Password: "secreto123",
	})

	assert.NoError(t, err)
	assert.Len(t, res.Token, 64)
	assert.False(t, res.CambiarPassword)
	assert.Equal(t, emp.ID.String(), res.Empleado.ID)
	assert.Len(t, repo.sessions, 1)
	assert.False(t, repo.sessions[0].Temporal)

	assert.Len(t, repo.attempts, 1)
	assert.True(t, repo.attempts[0].Exitoso)
	assert.Equal(t, []string{emp.ID.String()}, empRepo.touched)
}

func TestLogin_WrongPassword(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.DefaultCost)
	emp := testMobileEmployee(string(hashed))

	repo := &fakeRepo{}
	empRepo := &fakeEmployeeRepo{byUsuario: map[string]*employee.Employee{*emp.Usuario: emp}}
	svc := newAuthService(t, repo, empRepo)

	_, err := svc.Login(context.Background(), "10.0.0.1", LoginRequest{
		Usuario:  *emp.Usuario,
		Password: "otra",
	})

	assert.ErrorIs(t, err, mobileautherrors.ErrInvalidCredentials)
	assert.Len(t, repo.attempts, 1)
	assert.False(t, repo.attempts[0].Exitoso)
	assert.Equal(t, "password_incorrecto", *repo.attempts[0].Motivo)
}

func TestLogin_ThrottledAfterMaxFailures(t *testing.T) {
	repo := &fakeRepo{failures: 3}
	empRepo := &fakeEmployeeRepo{}
	svc := newAuthService(t, repo, empRepo)

	_, err := svc.Login(context.Background(), "10.0.0.1", LoginRequest{
		Usuario:  "jperez",
		Password: "cualquiera",
	})

	assert.ErrorIs(t, err, mobileautherrors.ErrTooManyAttempts)
	assert.Empty(t, repo.attempts, "blocked retries must not extend the lockout window")
}

func TestLogin_SuccessClearsFailedAttempts(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.DefaultCost)
	emp := testMobileEmployee(string(hashed))

	repo := &fakeRepo{failures: 2}
	empRepo := &fakeEmployeeRepo{byUsuario: map[string]*employee.Employee{*emp.Usuario: emp}}
	svc := newAuthService(t, repo, empRepo)

	_, err := svc.Login(context.Background(), "10.0.0.1", LoginRequest{
		Usuario:  *emp.Usuario,
		Password: "secreto123",
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{*emp.Usuario + "@10.0.0.1"}, repo.cleared)
}

func TestLogin_MobileDisabled(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.DefaultCost)
	emp := testMobileEmployee(string(hashed))
	emp.ActivoMovil = false

	repo := &fakeRepo{}
	empRepo := &fakeEmployeeRepo{byUsuario: map[string]*employee.Employee{*emp.Usuario: emp}}
	svc := newAuthService(t, repo, empRepo)

	_, err := svc.Login(context.Background(), "10.0.0.1", LoginRequest{
		Usuario:  *emp.Usuario,
		Password: "secreto123",
	})

	assert.ErrorIs(t, err, mobileautherrors.ErrMobileDisabled)
}

func TestLogin_LegacyMD5IsUpgraded(t *testing.T) {
	// md5("secreto123")
	emp := testMobileEmployee(md5Hex("secreto123"))

	repo := &fakeRepo{}
	empRepo := &fakeEmployeeRepo{byUsuario: map[string]*employee.Employee{*emp.Usuario: emp}}
	svc := newAuthService(t, repo, empRepo)

	res, err := svc.Login(context.Background(), "10.0.0.1", LoginRequest{
		Usuario:  *emp.Usuario,
		Password: "secreto123",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	upgraded, ok := empRepo.passwords[emp.ID.String()]
	assert.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(upgraded), []byte("secreto123")))
}

func TestLogin_TempPasswordForcesChange(t *testing.T) {
	// Temporary credentials store md5(password + employee id), the salt
	// the legacy admin panel applied when provisioning devices.
	emp := testMobileEmployee("")
	salted := tempPasswordPrefix + md5Hex("inicial1"+emp.ID.String())
	emp.Password = &salted

	repo := &fakeRepo{}
	empRepo := &fakeEmployeeRepo{byUsuario: map[string]*employee.Employee{*emp.Usuario: emp}}
	svc := newAuthService(t, repo, empRepo)

	res, err := svc.Login(context.Background(), "10.0.0.1", LoginRequest{
		Usuario:  *emp.Usuario,
		Password: "inicial1",
	})

	assert.NoError(t, err)
	assert.True(t, res.CambiarPassword)
	assert.True(t, repo.sessions[0].Temporal)
	assert.WithinDuration(t, time.Now().Add(tempSessionTTL), repo.sessions[0].Expira, time.Minute)
}

func TestLogin_TempPasswordRejectsUnsaltedHash(t *testing.T) {
	emp := testMobileEmployee("")
	unsalted := tempPasswordPrefix + md5Hex("inicial1")
	emp.Password = &unsalted

	repo := &fakeRepo{}
	empRepo := &fakeEmployeeRepo{byUsuario: map[string]*employee.Employee{*emp.Usuario: emp}}
	svc := newAuthService(t, repo, empRepo)

	_, err := svc.Login(context.Background(), "10.0.0.1", LoginRequest{
		Usuario:  *emp.Usuario,
		Password: "inicial1",
	})

	assert.ErrorIs(t, err, mobileautherrors.ErrInvalidCredentials)
}

func TestLogin_RememberExtendsSession(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.DefaultCost)
	emp := testMobileEmployee(string(hashed))

	repo := &fakeRepo{}
	empRepo := &fakeEmployeeRepo{byUsuario: map[string]*employee.Employee{*emp.Usuario: emp}}
	svc := newAuthService(t, repo, empRepo)

	_, err := svc.Login(context.Background(), "10.0.0.1", LoginRequest{
		Usuario:  *emp.Usuario,
		Password: "secreto123",
		Recordar: true,
	})

	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(rememberSessionTTL), repo.sessions[0].Expira, time.Minute)
}

func TestVerifySession(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.DefaultCost)
	emp := testMobileEmployee(string(hashed))

	repo := &fakeRepo{sessions: []*MobileSession{{
		ID:         uuid.New(),
		EmpleadoID: emp.ID,
		Token:      "abc",
		Activo:     true,
		Expira:     time.Now().Add(time.Hour),
	}}}
	empRepo := &fakeEmployeeRepo{byID: map[string]*employee.Employee{emp.ID.String(): emp}}
	svc := newAuthService(t, repo, empRepo)

	res, err := svc.VerifySession(context.Background(), "abc")

	assert.NoError(t, err)
	assert.True(t, res.Valida)
	assert.Equal(t, emp.ID.String(), res.Empleado.ID)
	assert.Len(t, repo.touched, 1)
}

func TestVerifySession_ExpiredIsDeactivated(t *testing.T) {
	emp := testMobileEmployee("x")

	repo := &fakeRepo{sessions: []*MobileSession{{
		ID:         uuid.New(),
		EmpleadoID: emp.ID,
		Token:      "caducado",
		Activo:     true,
		Expira:     time.Now().Add(-time.Minute),
	}}}
	empRepo := &fakeEmployeeRepo{byID: map[string]*employee.Employee{emp.ID.String(): emp}}
	svc := newAuthService(t, repo, empRepo)

	_, err := svc.VerifySession(context.Background(), "caducado")

	assert.ErrorIs(t, err, mobileautherrors.ErrSessionInvalid)
	assert.Equal(t, []string{"caducado"}, repo.deactByTk)
}

func TestChangePassword_InvalidatesAllSessions(t *testing.T) {
	emp := testMobileEmployee("x")

	repo := &fakeRepo{sessions: []*MobileSession{{
		ID:         uuid.New(),
		EmpleadoID: emp.ID,
		Token:      "temporal",
		Temporal:   true,
		Activo:     true,
		Expira:     time.Now().Add(tempSessionTTL),
	}}}
	empRepo := &fakeEmployeeRepo{byID: map[string]*employee.Employee{emp.ID.String(): emp}}

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := NewService(db, repo, empRepo, authConfig()).(*service)

	res, err := svc.ChangePassword(context.Background(), "temporal", ChangePasswordRequest{
		PasswordNueva: "nueva-clave",
	})

	assert.NoError(t, err)
	assert.Len(t, res.Token, 64)
	assert.False(t, res.CambiarPassword)

	hashed := empRepo.passwords[emp.ID.String()]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("nueva-clave")))
	assert.Equal(t, []string{emp.ID.String()}, repo.deactAll)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangePassword_TooShort(t *testing.T) {
	repo := &fakeRepo{}
	svc := newAuthService(t, repo, &fakeEmployeeRepo{})

	_, err := svc.ChangePassword(context.Background(), "t", ChangePasswordRequest{PasswordNueva: "corta"})

	assert.ErrorIs(t, err, mobileautherrors.ErrPasswordTooShort)
}

func TestLogout(t *testing.T) {
	repo := &fakeRepo{sessions: []*MobileSession{{Token: "abc", Activo: true}}}
	svc := newAuthService(t, repo, &fakeEmployeeRepo{})

	assert.NoError(t, svc.Logout(context.Background(), "abc"))
	assert.False(t, repo.sessions[0].Activo)
}

package attendance

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	attendanceerrors "github.com/SiwoTech/asistencias/internal/attendance/errors"
	"github.com/SiwoTech/asistencias/internal/checkzone"
	"github.com/SiwoTech/asistencias/internal/employee"
	"github.com/SiwoTech/asistencias/internal/messaging/kafka"
	"github.com/SiwoTech/asistencias/internal/schedule"
	"github.com/SiwoTech/asistencias/internal/shared/config"
	"github.com/SiwoTech/asistencias/internal/shared/timeutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	findByIDFn              func(ctx context.Context, id string) (*AttendanceRecord, error)
	findByEmployeeAndDateFn func(ctx context.Context, employeeID, date string) (*AttendanceRecord, error)
	createFn                func(ctx context.Context, rec *AttendanceRecord) error
	updateFn                func(ctx context.Context, rec *AttendanceRecord) error
	deleteFn                func(ctx context.Context, id string) error
	listFn                  func(ctx context.Context, f ListFilter) ([]ListRow, error)
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*AttendanceRecord, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeRepo) FindByEmployeeAndDate(ctx context.Context, employeeID, date string) (*AttendanceRecord, error) {
	return f.findByEmployeeAndDateFn(ctx, employeeID, date)
}
func (f *fakeRepo) Create(ctx context.Context, rec *AttendanceRecord) error { return f.createFn(ctx, rec) }
func (f *fakeRepo) Update(ctx context.Context, rec *AttendanceRecord) error { return f.updateFn(ctx, rec) }
func (f *fakeRepo) Delete(ctx context.Context, id string) error             { return f.deleteFn(ctx, id) }
func (f *fakeRepo) ListByFilter(ctx context.Context, fl ListFilter) ([]ListRow, error) {
	return f.listFn(ctx, fl)
}

type fakeEmployeeRepo struct {
	emp *employee.Employee
}

func (f *fakeEmployeeRepo) WithTx(tx *sql.Tx) employee.Repository { return f }
func (f *fakeEmployeeRepo) FindActiveByID(ctx context.Context, id string) (*employee.Employee, error) {
	if f.emp == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.emp, nil
}
func (f *fakeEmployeeRepo) FindAllActive(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployeeRepo) FindByUsuario(ctx context.Context, usuario string) (*employee.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeEmployeeRepo) UpdatePassword(ctx context.Context, id, hashed string) error { return nil }
func (f *fakeEmployeeRepo) TouchUltimoAcceso(ctx context.Context, id string) error      { return nil }

type fakeZoneRepo struct {
	zone *checkzone.CheckZone
}

func (f *fakeZoneRepo) Create(ctx context.Context, z *checkzone.CheckZone) error { return nil }
func (f *fakeZoneRepo) Update(ctx context.Context, z *checkzone.CheckZone) error { return nil }
func (f *fakeZoneRepo) FindAll(ctx context.Context) ([]checkzone.CheckZone, error) {
	return nil, nil
}
func (f *fakeZoneRepo) FindByID(ctx context.Context, id string) (*checkzone.CheckZone, error) {
	return f.zone, nil
}
func (f *fakeZoneRepo) ResolveForEmployee(ctx context.Context, employeeID string) (*checkzone.CheckZone, error) {
	return f.zone, nil
}

type fakeScheduleRepo struct {
	entry *schedule.ScheduleEntry
}

func (f *fakeScheduleRepo) WithTx(tx *sql.Tx) schedule.Repository { return f }
func (f *fakeScheduleRepo) FindByEmployee(ctx context.Context, employeeID string) ([]schedule.ScheduleEntry, error) {
	return nil, nil
}
func (f *fakeScheduleRepo) FindForDay(ctx context.Context, employeeID string, day time.Weekday) (*schedule.ScheduleEntry, error) {
	if f.entry == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.entry, nil
}
func (f *fakeScheduleRepo) DeleteByEmployee(ctx context.Context, employeeID string) error { return nil }
func (f *fakeScheduleRepo) Insert(ctx context.Context, entry *schedule.ScheduleEntry) error {
	return nil
}

type fakeOutboxRepo struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutboxRepo) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutboxRepo) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}
func (f *fakeOutboxRepo) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepo) MarkSent(ctx context.Context, id string) error           { return nil }
func (f *fakeOutboxRepo) MarkFailed(ctx context.Context, id, reason string) error { return nil }

var testZone = &checkzone.CheckZone{
	ID:       uuid.New(),
	Nombre:   "Oficina Centro",
	Latitud:  19.4326,
	Longitud: -99.1332,
	Radio:    100,
	Activo:   true,
}

func testConfig() *config.Store {
	return config.NewStaticStore(map[string]string{
		config.KeyToleranciaRetardo:  "15",
		config.KeyHoraEntradaStandar: "09:00",
	})
}

func testEmployee() *employee.Employee {
	return &employee.Employee{
		ID:        uuid.New(),
		Nombre:    "Ana",
		Apellidos: "García",
		Activo:    true,
	}
}

func newTestService(t *testing.T, repo *fakeRepo, emp *employee.Employee, zone *checkzone.CheckZone, entry *schedule.ScheduleEntry, outbox *fakeOutboxRepo, now time.Time) (*service, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	svc := NewService(
		db,
		repo,
		&fakeEmployeeRepo{emp: emp},
		&fakeZoneRepo{zone: zone},
		&fakeScheduleRepo{entry: entry},
		outbox,
		testConfig(),
	).(*service)
	svc.now = func() time.Time { return now }

	return svc, mock, func() { db.Close() }
}

func insideCoords() (float64, float64) {
	return 19.4326, -99.1332
}

// about 150 meters north of the zone center
func outsideCoords() (float64, float64) {
	return 19.4326 + 0.00134898, -99.1332
}

func punchAt(clock string) time.Time {
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, timeutil.Location())
	c, _ := timeutil.AtClock(day, clock)
	return c
}

func TestService_RecordEntrance_OnTime(t *testing.T) {
	lat, lng := insideCoords()
	var saved *AttendanceRecord
	repo := &fakeRepo{
		findByEmployeeAndDateFn: func(ctx context.Context, employeeID, date string) (*AttendanceRecord, error) {
			return nil, gorm.ErrRecordNotFound
		},
		createFn: func(ctx context.Context, rec *AttendanceRecord) error {
			saved = rec
			return nil
		},
	}
	outbox := &fakeOutboxRepo{}
	svc, mock, closeDB := newTestService(t, repo, testEmployee(), testZone, nil, outbox, punchAt("09:14:59"))
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.RecordPunch(context.Background(), uuid.NewString(), PunchRequest{
		Tipo:     PunchEntrance,
		Latitud:  &lat,
		Longitud: &lng,
	})
	assert.NoError(t, err)
	assert.Equal(t, PunchEntrance, resp.Tipo)
	assert.False(t, resp.Retardo)
	assert.NotNil(t, saved)
	assert.False(t, saved.Retardo)
	assert.True(t, saved.Autorizado)
	assert.Empty(t, outbox.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_RecordEntrance_LateIsPersistedAndRejected(t *testing.T) {
	lat, lng := insideCoords()
	var saved *AttendanceRecord
	repo := &fakeRepo{
		findByEmployeeAndDateFn: func(ctx context.Context, employeeID, date string) (*AttendanceRecord, error) {
			return nil, gorm.ErrRecordNotFound
		},
		createFn: func(ctx context.Context, rec *AttendanceRecord) error {
			saved = rec
			return nil
		},
	}
	outbox := &fakeOutboxRepo{}
	svc, mock, closeDB := newTestService(t, repo, testEmployee(), testZone, nil, outbox, punchAt("09:15:01"))
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.RecordPunch(context.Background(), uuid.NewString(), PunchRequest{
		Tipo:     PunchEntrance,
		Latitud:  &lat,
		Longitud: &lng,
	})
	assert.ErrorIs(t, err, attendanceerrors.ErrLateUnauthorized)
	assert.NotNil(t, saved)
	assert.True(t, saved.Retardo)
	assert.False(t, saved.Autorizado)
	assert.NotNil(t, saved.HoraEntrada)
	assert.Len(t, outbox.events, 1)
	assert.Equal(t, "asistencia.retardo.v1", outbox.events[0].Topic)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_RecordEntrance_ScheduleOverridesSiteDefault(t *testing.T) {
	lat, lng := insideCoords()
	var saved *AttendanceRecord
	repo := &fakeRepo{
		findByEmployeeAndDateFn: func(ctx context.Context, employeeID, date string) (*AttendanceRecord, error) {
			return nil, gorm.ErrRecordNotFound
		},
		createFn: func(ctx context.Context, rec *AttendanceRecord) error {
			saved = rec
			return nil
		},
	}
	entry := &schedule.ScheduleEntry{HoraEntrada: "10:00", HoraSalida: "18:00", Activo: true}
	svc, mock, closeDB := newTestService(t, repo, testEmployee(), testZone, entry, &fakeOutboxRepo{}, punchAt("09:30:00"))
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.RecordPunch(context.Background(), uuid.NewString(), PunchRequest{
		Tipo:     PunchEntrance,
		Latitud:  &lat,
		Longitud: &lng,
	})
	assert.NoError(t, err)
	assert.False(t, resp.Retardo)
	assert.False(t, saved.Retardo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_RecordEntrance_OutOfGeofence(t *testing.T) {
	lat, lng := outsideCoords()
	repo := &fakeRepo{}
	svc, mock, closeDB := newTestService(t, repo, testEmployee(), testZone, nil, &fakeOutboxRepo{}, punchAt("09:00:00"))
	defer closeDB()

	_, err := svc.RecordPunch(context.Background(), uuid.NewString(), PunchRequest{
		Tipo:     PunchEntrance,
		Latitud:  &lat,
		Longitud: &lng,
	})

	var geoErr *attendanceerrors.OutOfGeofenceError
	assert.True(t, errors.As(err, &geoErr))
	assert.InDelta(t, 150, geoErr.DistanceMeters, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_RecordEntrance_NoZoneConfigured(t *testing.T) {
	lat, lng := insideCoords()
	svc, _, closeDB := newTestService(t, &fakeRepo{}, testEmployee(), nil, nil, &fakeOutboxRepo{}, punchAt("09:00:00"))
	defer closeDB()

	_, err := svc.RecordPunch(context.Background(), uuid.NewString(), PunchRequest{
		Tipo:     PunchEntrance,
		Latitud:  &lat,
		Longitud: &lng,
	})
	assert.ErrorIs(t, err, attendanceerrors.ErrNoZoneConfigured)
}

func TestService_RecordEntrance_CoordinatesRequired(t *testing.T) {
	svc, _, closeDB := newTestService(t, &fakeRepo{}, testEmployee(), testZone, nil, &fakeOutboxRepo{}, punchAt("09:00:00"))
	defer closeDB()

	_, err := svc.RecordPunch(context.Background(), uuid.NewString(), PunchRequest{Tipo: PunchEntrance})
	assert.ErrorIs(t, err, attendanceerrors.ErrCoordinatesRequired)
}

func TestService_RecordEntrance_Duplicate(t *testing.T) {
	lat, lng := insideCoords()
	entrance := punchAt("08:55:00")
	repo := &fakeRepo{
		findByEmployeeAndDateFn: func(ctx context.Context, employeeID, date string) (*AttendanceRecord, error) {
			return &AttendanceRecord{ID: uuid.New(), HoraEntrada: &entrance}, nil
		},
	}
	svc, _, closeDB := newTestService(t, repo, testEmployee(), testZone, nil, &fakeOutboxRepo{}, punchAt("09:00:00"))
	defer closeDB()

	_, err := svc.RecordPunch(context.Background(), uuid.NewString(), PunchRequest{
		Tipo:     PunchEntrance,
		Latitud:  &lat,
		Longitud: &lng,
	})
	assert.ErrorIs(t, err, attendanceerrors.ErrDuplicateEntrance)
}

func TestService_RecordExit(t *testing.T) {
	entrance := punchAt("08:55:00")
	var saved *AttendanceRecord
	repo := &fakeRepo{
		findByEmployeeAndDateFn: func(ctx context.Context, employeeID, date string) (*AttendanceRecord, error) {
			return &AttendanceRecord{ID: uuid.New(), HoraEntrada: &entrance, TipoDia: DayTypeNormal, Autorizado: true}, nil
		},
		updateFn: func(ctx context.Context, rec *AttendanceRecord) error {
			saved = rec
			return nil
		},
	}
	svc, _, closeDB := newTestService(t, repo, testEmployee(), testZone, nil, &fakeOutboxRepo{}, punchAt("18:02:00"))
	defer closeDB()

	resp, err := svc.RecordPunch(context.Background(), uuid.NewString(), PunchRequest{Tipo: PunchExit})
	assert.NoError(t, err)
	assert.Equal(t, PunchExit, resp.Tipo)
	assert.NotNil(t, saved.HoraSalida)
}

func TestService_RecordExit_RequiresEntrance(t *testing.T) {
	repo := &fakeRepo{
		findByEmployeeAndDateFn: func(ctx context.Context, employeeID, date string) (*AttendanceRecord, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, _, closeDB := newTestService(t, repo, testEmployee(), testZone, nil, &fakeOutboxRepo{}, punchAt("18:00:00"))
	defer closeDB()

	_, err := svc.RecordPunch(context.Background(), uuid.NewString(), PunchRequest{Tipo: PunchExit})
	assert.ErrorIs(t, err, attendanceerrors.ErrNoEntranceRecorded)
}

func TestService_RecordExit_Duplicate(t *testing.T) {
	entrance := punchAt("08:55:00")
	exit := punchAt("18:00:00")
	repo := &fakeRepo{
		findByEmployeeAndDateFn: func(ctx context.Context, employeeID, date string) (*AttendanceRecord, error) {
			return &AttendanceRecord{ID: uuid.New(), HoraEntrada: &entrance, HoraSalida: &exit}, nil
		},
	}
	svc, _, closeDB := newTestService(t, repo, testEmployee(), testZone, nil, &fakeOutboxRepo{}, punchAt("18:05:00"))
	defer closeDB()

	_, err := svc.RecordPunch(context.Background(), uuid.NewString(), PunchRequest{Tipo: PunchExit})
	assert.ErrorIs(t, err, attendanceerrors.ErrDuplicateExit)
}

func TestService_UpdateRecord_AuthorizeLateArrival(t *testing.T) {
	recID := uuid.New()
	var saved *AttendanceRecord
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*AttendanceRecord, error) {
			return &AttendanceRecord{
				ID:         recID,
				EmpleadoID: uuid.New(),
				Fecha:      punchAt("00:00:00"),
				TipoDia:    DayTypeNormal,
				Retardo:    true,
				Autorizado: false,
			}, nil
		},
		updateFn: func(ctx context.Context, rec *AttendanceRecord) error {
			saved = rec
			return nil
		},
	}
	svc, _, closeDB := newTestService(t, repo, testEmployee(), testZone, nil, &fakeOutboxRepo{}, punchAt("12:00:00"))
	defer closeDB()

	authorized := true
	justification := "Cita médica"
	resp, err := svc.UpdateRecord(context.Background(), recID.String(), UpdateRecordRequest{
		Autorizado:    &authorized,
		Justificacion: &justification,
	})
	assert.NoError(t, err)
	assert.True(t, resp.Autorizado)
	assert.True(t, saved.Autorizado)
	assert.Equal(t, "Cita médica", *saved.Justificacion)
	assert.True(t, saved.Retardo)
}

func TestService_ListByFilter_DefaultsToToday(t *testing.T) {
	var gotFilter ListFilter
	repo := &fakeRepo{
		listFn: func(ctx context.Context, f ListFilter) ([]ListRow, error) {
			gotFilter = f
			return nil, nil
		},
	}
	now := punchAt("10:00:00")
	svc, _, closeDB := newTestService(t, repo, testEmployee(), testZone, nil, &fakeOutboxRepo{}, now)
	defer closeDB()

	_, err := svc.ListByFilter(context.Background(), ListFilter{})
	assert.NoError(t, err)
	assert.Equal(t, timeutil.DateString(now), gotFilter.Fecha)
}

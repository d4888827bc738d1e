package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/SiwoTech/asistencias/internal/attendance"
	"github.com/SiwoTech/asistencias/internal/employee"
	"github.com/SiwoTech/asistencias/internal/messaging/kafka"
	payrollerrors "github.com/SiwoTech/asistencias/internal/payroll/errors"
	"github.com/SiwoTech/asistencias/internal/shared/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	rows        []PeriodRow
	records     map[string]*PayrollRecord
	hasPaid     bool
	count       int64
	commissions float64
	inserted    []*PayrollRecord
	deleted     []string
	updated     []*PayrollRecord
	periods     []PeriodSummaryRow
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }
func (f *fakeRepo) ListByPeriod(ctx context.Context, period string) ([]PeriodRow, error) {
	return f.rows, nil
}
func (f *fakeRepo) CountByPeriod(ctx context.Context, period string) (int64, error) {
	return f.count, nil
}
func (f *fakeRepo) HasPaidInPeriod(ctx context.Context, period string) (bool, error) {
	return f.hasPaid, nil
}
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*PayrollRecord, error) {
	if rec, ok := f.records[id]; ok {
		return rec, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeRepo) Insert(ctx context.Context, rec *PayrollRecord) error {
	f.inserted = append(f.inserted, rec)
	return nil
}
func (f *fakeRepo) Update(ctx context.Context, rec *PayrollRecord) error {
	f.updated = append(f.updated, rec)
	return nil
}
func (f *fakeRepo) DeleteByPeriod(ctx context.Context, period string) error {
	f.deleted = append(f.deleted, period)
	return nil
}
func (f *fakeRepo) ListPeriods(ctx context.Context) ([]PeriodSummaryRow, error) {
	return f.periods, nil
}
func (f *fakeRepo) SumCommissions(ctx context.Context, employeeID, period string) (float64, error) {
	return f.commissions, nil
}
func (f *fakeRepo) ListCommissions(ctx context.Context, employeeID, period string) ([]Commission, error) {
	return nil, nil
}

type fakeEmployeeRepo struct {
	employees []employee.Employee
}

func (f *fakeEmployeeRepo) WithTx(tx *sql.Tx) employee.Repository { return f }
func (f *fakeEmployeeRepo) FindActiveByID(ctx context.Context, id string) (*employee.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeEmployeeRepo) FindAllActive(ctx context.Context) ([]employee.Employee, error) {
	return f.employees, nil
}
func (f *fakeEmployeeRepo) FindByUsuario(ctx context.Context, usuario string) (*employee.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeEmployeeRepo) UpdatePassword(ctx context.Context, id, hashed string) error { return nil }
func (f *fakeEmployeeRepo) TouchUltimoAcceso(ctx context.Context, id string) error      { return nil }

type fakeAttRepo struct {
	rows []attendance.ListRow
}

func (f *fakeAttRepo) WithTx(tx *sql.Tx) attendance.Repository { return f }
func (f *fakeAttRepo) FindByID(ctx context.Context, id string) (*attendance.AttendanceRecord, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeAttRepo) FindByEmployeeAndDate(ctx context.Context, employeeID, date string) (*attendance.AttendanceRecord, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeAttRepo) Create(ctx context.Context, rec *attendance.AttendanceRecord) error { return nil }
func (f *fakeAttRepo) Update(ctx context.Context, rec *attendance.AttendanceRecord) error { return nil }
func (f *fakeAttRepo) Delete(ctx context.Context, id string) error                        { return nil }
func (f *fakeAttRepo) ListByFilter(ctx context.Context, fl attendance.ListFilter) ([]attendance.ListRow, error) {
	return f.rows, nil
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

func payrollConfig() *config.Store {
	return config.NewStaticStore(map[string]string{
		config.KeyDiasLaborales:     "6",
		config.KeyRetardosPorFalta:  "3",
		config.KeyDescuentoPorFalta: "100",
	})
}

// weekRows builds attendance rows for 2026-W36 (Mon Aug 31 - Sat Sep 5):
// workedDays with entrance, lateDays of those flagged late, then
// vacationDays, leaving the rest of the week unrecorded.
func weekRows(employeeID string, workedDays, lateDays, vacationDays int) []attendance.ListRow {
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	var rows []attendance.ListRow
	day := 0
	for i := 0; i < workedDays; i++ {
		entrance := monday.AddDate(0, 0, day).Add(8 * time.Hour)
		rows = append(rows, attendance.ListRow{
			EmpleadoID:  employeeID,
			Fecha:       monday.AddDate(0, 0, day),
			HoraEntrada: &entrance,
			TipoDia:     attendance.DayTypeNormal,
			Retardo:     i < lateDays,
		})
		day++
	}
	for i := 0; i < vacationDays; i++ {
		rows = append(rows, attendance.ListRow{
			EmpleadoID: employeeID,
			Fecha:      monday.AddDate(0, 0, day),
			TipoDia:    attendance.DayTypeVacation,
		})
		day++
	}
	return rows
}

func newPayrollService(t *testing.T, repo *fakeRepo, employees []employee.Employee, attRows []attendance.ListRow, outbox *fakeOutboxRepo, rdb *redis.Client) (*service, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	svc := NewService(
		db,
		repo,
		&fakeEmployeeRepo{employees: employees},
		&fakeAttRepo{rows: attRows},
		outbox,
		payrollConfig(),
		rdb,
	).(*service)
	return svc, mock, func() { db.Close() }
}

func testEmployee(weekly float64) employee.Employee {
	return employee.Employee{
		ID:             uuid.New(),
		NumeroEmpleado: "E001",
		Nombre:         "Ana",
		Apellidos:      "García",
		SalarioSemanal: weekly,
		Activo:         true,
	}
}

func TestService_Generate_DeductsAbsences(t *testing.T) {
	emp := testEmployee(1400)
	repo := &fakeRepo{}
	outbox := &fakeOutboxRepo{}

	// 5 worked days, sixth unrecorded: one absence
	svc, mock, closeDB := newPayrollService(t, repo, []employee.Employee{emp}, weekRows(emp.ID.String(), 5, 0, 0), outbox, nil)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Generate(context.Background(), GenerateRequest{Periodo: "2026-W36"})
	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Empleados)
	assert.Len(t, repo.inserted, 1)

	rec := repo.inserted[0]
	assert.Equal(t, 5, rec.DiasTrabajados)
	assert.Equal(t, 1, rec.Faltas)
	assert.InDelta(t, 233.33, rec.Deduccion, 0.01)
	assert.InDelta(t, 1166.67, rec.Total, 0.01)

	assert.Len(t, outbox.events, 1)
	assert.Equal(t, "nomina.generada.v1", outbox.events[0].Topic)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Generate_ConvertsLatesToAbsences(t *testing.T) {
	emp := testEmployee(1400)
	repo := &fakeRepo{}

	// full week worked but 3 lates: floor(3/3) = 1 equivalent absence
	svc, mock, closeDB := newPayrollService(t, repo, []employee.Employee{emp}, weekRows(emp.ID.String(), 6, 3, 0), &fakeOutboxRepo{}, nil)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.Generate(context.Background(), GenerateRequest{Periodo: "2026-W36"})
	assert.NoError(t, err)

	rec := repo.inserted[0]
	assert.Equal(t, 6, rec.DiasTrabajados)
	assert.Equal(t, 3, rec.Retardos)
	assert.Equal(t, 1, rec.Faltas)
	assert.InDelta(t, 233.33, rec.Deduccion, 0.01)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Generate_VacationsArePaid(t *testing.T) {
	emp := testEmployee(1200)
	repo := &fakeRepo{commissions: 150}

	// 4 worked + 2 vacation: full week, no deduction
	svc, mock, closeDB := newPayrollService(t, repo, []employee.Employee{emp}, weekRows(emp.ID.String(), 4, 0, 2), &fakeOutboxRepo{}, nil)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.Generate(context.Background(), GenerateRequest{Periodo: "2026-W36"})
	assert.NoError(t, err)

	rec := repo.inserted[0]
	assert.Equal(t, 6, rec.DiasTrabajados)
	assert.Equal(t, 2, rec.Vacaciones)
	assert.Zero(t, rec.Faltas)
	assert.Zero(t, rec.Deduccion)
	assert.InDelta(t, 150, rec.Comisiones, 0.01)
	assert.InDelta(t, 1350, rec.Total, 0.01)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Generate_RefusesPaidPeriod(t *testing.T) {
	repo := &fakeRepo{hasPaid: true}
	svc, _, closeDB := newPayrollService(t, repo, []employee.Employee{testEmployee(1000)}, nil, &fakeOutboxRepo{}, nil)
	defer closeDB()

	_, err := svc.Generate(context.Background(), GenerateRequest{Periodo: "2026-W36", Regenerar: true})
	assert.ErrorIs(t, err, payrollerrors.ErrPeriodAlreadyPaid)
	assert.Empty(t, repo.inserted)
}

func TestService_Generate_RequiresRegenerateFlag(t *testing.T) {
	repo := &fakeRepo{count: 3}
	svc, _, closeDB := newPayrollService(t, repo, []employee.Employee{testEmployee(1000)}, nil, &fakeOutboxRepo{}, nil)
	defer closeDB()

	_, err := svc.Generate(context.Background(), GenerateRequest{Periodo: "2026-W36"})
	assert.ErrorIs(t, err, payrollerrors.ErrPeriodAlreadyGenerated)
}

func TestService_Generate_RegenerateReplacesPeriod(t *testing.T) {
	emp := testEmployee(900)
	repo := &fakeRepo{count: 3}
	svc, mock, closeDB := newPayrollService(t, repo, []employee.Employee{emp}, weekRows(emp.ID.String(), 6, 0, 0), &fakeOutboxRepo{}, nil)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.Generate(context.Background(), GenerateRequest{Periodo: "2026-W36", Regenerar: true})
	assert.NoError(t, err)
	assert.Equal(t, []string{"2026-W36"}, repo.deleted)
	assert.Len(t, repo.inserted, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetByPeriod_CachesInRedis(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	row := PeriodRow{
		ID:         uuid.NewString(),
		EmpleadoID: uuid.NewString(),
		Nombre:     "Ana",
		Apellidos:  "García",
		Periodo:    "2026-W36",
		Total:      1166.67,
		Deduccion:  233.33,
	}
	repo := &fakeRepo{rows: []PeriodRow{row}}
	svc, _, closeDB := newPayrollService(t, repo, nil, nil, &fakeOutboxRepo{}, rdb)
	defer closeDB()

	cacheKey := "nomina:periodo:2026-W36"
	redisMock.ExpectGet(cacheKey).RedisNil()
	redisMock.CustomMatch(func(expected, actual []interface{}) error { return nil }).
		ExpectSet(cacheKey, nil, periodCacheTTL).SetVal("OK")

	resp, err := svc.GetByPeriod(context.Background(), "2026-W36")
	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Resumen.Empleados)
	assert.InDelta(t, 1166.67, resp.Resumen.TotalNomina, 0.01)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_GetByPeriod_ServesFromCache(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	cached := PeriodResponse{Periodo: "2026-W36", Resumen: PeriodSummary{Empleados: 4}}
	payload, _ := json.Marshal(cached)

	redisMock.ExpectGet("nomina:periodo:2026-W36").SetVal(string(payload))

	// empty repo proves the cache short-circuits the DB
	svc, _, closeDB := newPayrollService(t, &fakeRepo{}, nil, nil, &fakeOutboxRepo{}, rdb)
	defer closeDB()

	resp, err := svc.GetByPeriod(context.Background(), "2026-W36")
	assert.NoError(t, err)
	assert.Equal(t, 4, resp.Resumen.Empleados)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_GetByPeriod_NotFound(t *testing.T) {
	svc, _, closeDB := newPayrollService(t, &fakeRepo{}, nil, nil, &fakeOutboxRepo{}, nil)
	defer closeDB()

	_, err := svc.GetByPeriod(context.Background(), "2026-W36")
	assert.ErrorIs(t, err, payrollerrors.ErrPeriodNotFound)
}

func TestService_Update_MarksPaidAndInvalidatesCache(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	rec := &PayrollRecord{
		ID:         uuid.New(),
		EmpleadoID: uuid.New(),
		Periodo:    "2026-W36",
		Total:      1000,
	}
	repo := &fakeRepo{records: map[string]*PayrollRecord{rec.ID.String(): rec}}
	svc, _, closeDB := newPayrollService(t, repo, nil, nil, &fakeOutboxRepo{}, rdb)
	defer closeDB()

	redisMock.ExpectDel("nomina:periodo:2026-W36").SetVal(1)

	paid := true
	resp, err := svc.Update(context.Background(), rec.ID.String(), UpdateRequest{Pagado: &paid})
	assert.NoError(t, err)
	assert.True(t, resp.Pagado)
	assert.Len(t, repo.updated, 1)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_DeletePeriod_RefusesPaid(t *testing.T) {
	repo := &fakeRepo{hasPaid: true, count: 2}
	svc, _, closeDB := newPayrollService(t, repo, nil, nil, &fakeOutboxRepo{}, nil)
	defer closeDB()

	err := svc.DeletePeriod(context.Background(), "2026-W36")
	assert.ErrorIs(t, err, payrollerrors.ErrPeriodAlreadyPaid)
	assert.Empty(t, repo.deleted)
}

func TestService_ListPeriods(t *testing.T) {
	repo := &fakeRepo{periods: []PeriodSummaryRow{
		{Periodo: "2026-W36", Empleados: 3, Total: 3500, Pagados: 3},
		{Periodo: "2026-W35", Empleados: 3, Total: 3400, Pagados: 1},
	}}
	svc, _, closeDB := newPayrollService(t, repo, nil, nil, &fakeOutboxRepo{}, nil)
	defer closeDB()

	items, err := svc.ListPeriods(context.Background())
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.True(t, items[0].Pagado)
	assert.False(t, items[1].Pagado)
}

package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/SiwoTech/asistencias/internal/attendance"
	"github.com/SiwoTech/asistencias/internal/employee"
	"github.com/SiwoTech/asistencias/internal/events"
	"github.com/SiwoTech/asistencias/internal/messaging/kafka"
	payrollerrors "github.com/SiwoTech/asistencias/internal/payroll/errors"
	"github.com/SiwoTech/asistencias/internal/shared/config"
	"github.com/SiwoTech/asistencias/internal/shared/contextutil"
	"github.com/SiwoTech/asistencias/internal/shared/timeutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultWorkingDays      = 6
	defaultLatesPerAbsence  = 3
	defaultDeductionPercent = 100

	periodCacheTTL = 10 * time.Minute
)

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	// Generate settles the given week for every active employee in one
	// transaction. Regeneration replaces unpaid rows; a period with any
	// paid row is immutable.
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	GetByPeriod(ctx context.Context, period string) (PeriodResponse, error)
	ListPeriods(ctx context.Context) ([]PeriodListItem, error)
	GetDetail(ctx context.Context, id string) (DetailResponse, error)
	Update(ctx context.Context, id string, req UpdateRequest) (RecordResponse, error)
	DeletePeriod(ctx context.Context, period string) error
}

type service struct {
	db           *sql.DB
	repo         Repository
	employeeRepo employee.Repository
	attRepo      attendance.Repository
	outboxRepo   kafka.OutboxRepository
	cfg          *config.Store
	rdb          *redis.Client
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(
	db *sql.DB,
	repo Repository,
	employeeRepo employee.Repository,
	attRepo attendance.Repository,
	outboxRepo kafka.OutboxRepository,
	cfg *config.Store,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		attRepo:      attRepo,
		outboxRepo:   outboxRepo,
		cfg:          cfg,
		rdb:          rdb,
		logger:       l,
		now:          timeutil.Now,
	}
}

// settlement is the per-employee result of walking one week.
type settlement struct {
	worked     int
	vacations  int
	absences   int
	lates      int
	deduction  float64
	commission float64
	total      float64
}

func (s *service) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	period, err := ParsePeriod(req.Periodo)
	if err != nil {
		return GenerateResponse{}, err
	}

	paid, err := s.repo.HasPaidInPeriod(ctx, period.String())
	if err != nil {
		return GenerateResponse{}, err
	}
	if paid {
		return GenerateResponse{}, payrollerrors.ErrPeriodAlreadyPaid
	}

	count, err := s.repo.CountByPeriod(ctx, period.String())
	if err != nil {
		return GenerateResponse{}, err
	}
	if count > 0 && !req.Regenerar {
		return GenerateResponse{}, payrollerrors.ErrPeriodAlreadyGenerated
	}

	employees, err := s.employeeRepo.FindAllActive(ctx)
	if err != nil {
		return GenerateResponse{}, err
	}
	if len(employees) == 0 {
		return GenerateResponse{}, payrollerrors.ErrNoActiveEmployees
	}

	workingDays := s.cfg.GetInt(ctx, config.KeyDiasLaborales, defaultWorkingDays)
	if workingDays <= 0 {
		workingDays = defaultWorkingDays
	}
	latesPerAbsence := s.cfg.GetInt(ctx, config.KeyRetardosPorFalta, defaultLatesPerAbsence)
	if latesPerAbsence <= 0 {
		latesPerAbsence = defaultLatesPerAbsence
	}
	deductionPct := s.cfg.GetFloat(ctx, config.KeyDescuentoPorFalta, defaultDeductionPercent)

	records := make([]*PayrollRecord, 0, len(employees))
	var grandTotal float64
	for i := range employees {
		emp := &employees[i]

		stl, err := s.settle(ctx, emp, period, workingDays, latesPerAbsence, deductionPct)
		if err != nil {
			return GenerateResponse{}, err
		}

		records = append(records, &PayrollRecord{
			ID:             uuid.New(),
			EmpleadoID:     emp.ID,
			Periodo:        period.String(),
			FechaInicio:    period.Monday(),
			FechaFin:       period.Sunday(),
			SalarioBase:    emp.SalarioSemanal,
			DiasTrabajados: stl.worked,
			Vacaciones:     stl.vacations,
			Faltas:         stl.absences,
			Retardos:       stl.lates,
			Deduccion:      stl.deduction,
			Comisiones:     stl.commission,
			Total:          stl.total,
		})
		grandTotal += stl.total
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("generate payroll begin tx failed", zap.Error(err))
		return GenerateResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.DeleteByPeriod(ctx, period.String()); err != nil {
		return GenerateResponse{}, err
	}
	for _, rec := range records {
		if err := qtx.Insert(ctx, rec); err != nil {
			s.logger.Error("insert payroll record failed",
				zap.String("empleado_id", rec.EmpleadoID.String()),
				zap.Error(err),
			)
			return GenerateResponse{}, err
		}
	}

	if err := s.enqueueGenerated(ctx, tx, period.String(), len(records)); err != nil {
		return GenerateResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return GenerateResponse{}, err
	}

	s.invalidatePeriodCache(ctx, period.String())
	s.logger.Info("payroll generated",
		zap.String("periodo", period.String()),
		zap.Int("empleados", len(records)),
		zap.Float64("total", round2(grandTotal)),
	)
	return GenerateResponse{
		Periodo:     period.String(),
		FechaInicio: period.Monday().Format("2006-01-02"),
		FechaFin:    period.Sunday().Format("2006-01-02"),
		Empleados:   len(records),
		TotalNomina: round2(grandTotal),
	}, nil
}

// settle walks every non-Sunday date of the period and classifies it
// from the attendance ledger: vacation days are paid and counted
// worked, a normal day without entrance is an absence, and every
// latesPerAbsence lates add one more absence.
func (s *service) settle(
	ctx context.Context,
	emp *employee.Employee,
	period Period,
	workingDays int,
	latesPerAbsence int,
	deductionPct float64,
) (settlement, error) {
	rows, err := s.attRepo.ListByFilter(ctx, attendance.ListFilter{
		EmpleadoID:  emp.ID.String(),
		FechaInicio: period.Monday().Format("2006-01-02"),
		FechaFin:    period.Sunday().Format("2006-01-02"),
	})
	if err != nil {
		return settlement{}, err
	}

	byDate := make(map[string]attendance.ListRow, len(rows))
	for _, row := range rows {
		byDate[row.Fecha.Format("2006-01-02")] = row
	}

	var stl settlement
	for _, date := range period.WorkingDates() {
		row, ok := byDate[date.Format("2006-01-02")]
		if !ok {
			stl.absences++
			continue
		}

		switch row.TipoDia {
		case attendance.DayTypeVacation:
			stl.worked++
			stl.vacations++
		case attendance.DayTypeAbsence:
			stl.absences++
		default:
			if row.HoraEntrada == nil {
				stl.absences++
				continue
			}
			stl.worked++
			if row.Retardo {
				stl.lates++
			}
		}
	}

	stl.absences += stl.lates / latesPerAbsence

	dailyRate := emp.SalarioSemanal / float64(workingDays)
	stl.deduction = round2(float64(stl.absences) * dailyRate * (deductionPct / 100))

	commission, err := s.repo.SumCommissions(ctx, emp.ID.String(), period.String())
	if err != nil {
		return settlement{}, err
	}
	stl.commission = round2(commission)
	stl.total = round2(emp.SalarioSemanal + stl.commission - stl.deduction)

	return stl, nil
}

func (s *service) enqueueGenerated(ctx context.Context, tx *sql.Tx, period string, employees int) error {
	event := events.PayrollGeneratedEvent{
		EventType:  "nomina.generada",
		RequestID:  contextutil.GetRequestID(ctx),
		Periodo:    period,
		Empleados:  employees,
		OccurredAt: s.now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outboxRepo.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     event.RequestID,
		AggregateType: "nomina",
		AggregateID:   period,
		EventType:     event.EventType,
		Topic:         events.PayrollGeneratedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) GetByPeriod(ctx context.Context, periodStr string) (PeriodResponse, error) {
	period, err := ParsePeriod(periodStr)
	if err != nil {
		return PeriodResponse{}, err
	}

	cacheKey := "nomina:periodo:" + period.String()
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp PeriodResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	rows, err := s.repo.ListByPeriod(ctx, period.String())
	if err != nil {
		return PeriodResponse{}, err
	}
	if len(rows) == 0 {
		return PeriodResponse{}, payrollerrors.ErrPeriodNotFound
	}

	resp := PeriodResponse{
		Periodo:     period.String(),
		FechaInicio: period.Monday().Format("2006-01-02"),
		FechaFin:    period.Sunday().Format("2006-01-02"),
	}
	for _, row := range rows {
		resp.Registros = append(resp.Registros, periodRowToResponse(row))
		resp.Resumen.Empleados++
		if row.Pagado {
			resp.Resumen.Pagados++
		}
		resp.Resumen.TotalNomina = round2(resp.Resumen.TotalNomina + row.Total)
		resp.Resumen.TotalDeducciones = round2(resp.Resumen.TotalDeducciones + row.Deduccion)
		resp.Resumen.TotalComisiones = round2(resp.Resumen.TotalComisiones + row.Comisiones)
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(resp); err == nil {
			s.rdb.Set(ctx, cacheKey, payload, periodCacheTTL)
		}
	}
	return resp, nil
}

func (s *service) ListPeriods(ctx context.Context) ([]PeriodListItem, error) {
	rows, err := s.repo.ListPeriods(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]PeriodListItem, len(rows))
	for i, row := range rows {
		items[i] = PeriodListItem{
			Periodo:   row.Periodo,
			Empleados: row.Empleados,
			Total:     round2(row.Total),
			Pagado:    row.Pagados == row.Empleados && row.Empleados > 0,
		}
	}
	return items, nil
}

func (s *service) GetDetail(ctx context.Context, id string) (DetailResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return DetailResponse{}, payrollerrors.ErrRecordNotFound
	}

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DetailResponse{}, payrollerrors.ErrRecordNotFound
		}
		return DetailResponse{}, err
	}

	attRows, err := s.attRepo.ListByFilter(ctx, attendance.ListFilter{
		EmpleadoID:  rec.EmpleadoID.String(),
		FechaInicio: rec.FechaInicio.Format("2006-01-02"),
		FechaFin:    rec.FechaFin.Format("2006-01-02"),
	})
	if err != nil {
		return DetailResponse{}, err
	}

	commissions, err := s.repo.ListCommissions(ctx, rec.EmpleadoID.String(), rec.Periodo)
	if err != nil {
		return DetailResponse{}, err
	}

	resp := DetailResponse{Registro: recordToResponse(rec)}
	for _, row := range attRows {
		resp.Asistencia = append(resp.Asistencia, DayDetail{
			Fecha:       row.Fecha.Format("2006-01-02"),
			TipoDia:     row.TipoDia,
			HoraEntrada: clockOf(row.HoraEntrada),
			HoraSalida:  clockOf(row.HoraSalida),
			Retardo:     row.Retardo,
		})
	}
	for _, com := range commissions {
		resp.Comisiones = append(resp.Comisiones, CommissionResponse{
			ID:       com.ID.String(),
			Concepto: com.Concepto,
			Monto:    com.Monto,
		})
	}
	return resp, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (RecordResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RecordResponse{}, payrollerrors.ErrRecordNotFound
	}

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RecordResponse{}, payrollerrors.ErrRecordNotFound
		}
		return RecordResponse{}, err
	}

	if req.Pagado != nil {
		rec.Pagado = *req.Pagado
	}
	if req.Observaciones != nil {
		rec.Observaciones = req.Observaciones
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return RecordResponse{}, err
	}

	s.invalidatePeriodCache(ctx, rec.Periodo)
	s.logger.Info("payroll record updated",
		zap.String("record_id", id),
		zap.Bool("pagado", rec.Pagado),
	)
	return recordToResponse(rec), nil
}

func (s *service) DeletePeriod(ctx context.Context, periodStr string) error {
	period, err := ParsePeriod(periodStr)
	if err != nil {
		return err
	}

	paid, err := s.repo.HasPaidInPeriod(ctx, period.String())
	if err != nil {
		return err
	}
	if paid {
		return payrollerrors.ErrPeriodAlreadyPaid
	}

	count, err := s.repo.CountByPeriod(ctx, period.String())
	if err != nil {
		return err
	}
	if count == 0 {
		return payrollerrors.ErrPeriodNotFound
	}

	if err := s.repo.DeleteByPeriod(ctx, period.String()); err != nil {
		return err
	}

	s.invalidatePeriodCache(ctx, period.String())
	s.logger.Info("payroll period deleted", zap.String("periodo", period.String()))
	return nil
}

func (s *service) invalidatePeriodCache(ctx context.Context, period string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, "nomina:periodo:"+period).Err(); err != nil {
		s.logger.Warn("invalidate period cache failed", zap.String("periodo", period), zap.Error(err))
	}
}

func periodRowToResponse(row PeriodRow) RecordResponse {
	return RecordResponse{
		ID:             row.ID,
		EmpleadoID:     row.EmpleadoID,
		NumeroEmpleado: row.NumeroEmpleado,
		EmpleadoNombre: row.Nombre + " " + row.Apellidos,
		Periodo:        row.Periodo,
		SalarioBase:    row.SalarioBase,
		DiasTrabajados: row.DiasTrabajados,
		Vacaciones:     row.Vacaciones,
		Faltas:         row.Faltas,
		Retardos:       row.Retardos,
		Deduccion:      row.Deduccion,
		Comisiones:     row.Comisiones,
		Total:          row.Total,
		Pagado:         row.Pagado,
		Observaciones:  row.Observaciones,
	}
}

func recordToResponse(rec *PayrollRecord) RecordResponse {
	return RecordResponse{
		ID:             rec.ID.String(),
		EmpleadoID:     rec.EmpleadoID.String(),
		Periodo:        rec.Periodo,
		SalarioBase:    rec.SalarioBase,
		DiasTrabajados: rec.DiasTrabajados,
		Vacaciones:     rec.Vacaciones,
		Faltas:         rec.Faltas,
		Retardos:       rec.Retardos,
		Deduccion:      rec.Deduccion,
		Comisiones:     rec.Comisiones,
		Total:          rec.Total,
		Pagado:         rec.Pagado,
		Observaciones:  rec.Observaciones,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clockOf(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.In(timeutil.Location()).Format("15:04:05")
	return &v
}

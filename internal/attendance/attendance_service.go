package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	attendanceerrors "github.com/SiwoTech/asistencias/internal/attendance/errors"
	"github.com/SiwoTech/asistencias/internal/checkzone"
	"github.com/SiwoTech/asistencias/internal/employee"
	"github.com/SiwoTech/asistencias/internal/events"
	"github.com/SiwoTech/asistencias/internal/geofence"
	"github.com/SiwoTech/asistencias/internal/messaging/kafka"
	"github.com/SiwoTech/asistencias/internal/schedule"
	"github.com/SiwoTech/asistencias/internal/shared/apperror"
	"github.com/SiwoTech/asistencias/internal/shared/config"
	"github.com/SiwoTech/asistencias/internal/shared/contextutil"
	"github.com/SiwoTech/asistencias/internal/shared/timeutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultToleranceMinutes = 15
	defaultEntranceClock    = "09:00"
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	// RecordPunch validates and persists a single entrance or exit for
	// the authenticated employee on today's date. A late unauthorized
	// entrance is persisted anyway and reported as a business failure
	// so the client prompts for justification.
	RecordPunch(ctx context.Context, employeeID string, req PunchRequest) (PunchResponse, error)
	ListByFilter(ctx context.Context, f ListFilter) ([]RecordResponse, error)
	UpdateRecord(ctx context.Context, id string, req UpdateRecordRequest) (RecordResponse, error)
	DeleteRecord(ctx context.Context, id string) error
}

type service struct {
	db           *sql.DB
	repo         Repository
	employeeRepo employee.Repository
	zoneRepo     checkzone.Repository
	scheduleRepo schedule.Repository
	outboxRepo   kafka.OutboxRepository
	cfg          *config.Store
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(
	db *sql.DB,
	repo Repository,
	employeeRepo employee.Repository,
	zoneRepo checkzone.Repository,
	scheduleRepo schedule.Repository,
	outboxRepo kafka.OutboxRepository,
	cfg *config.Store,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		zoneRepo:     zoneRepo,
		scheduleRepo: scheduleRepo,
		outboxRepo:   outboxRepo,
		cfg:          cfg,
		logger:       l,
		now:          timeutil.Now,
	}
}

func (s *service) RecordPunch(ctx context.Context, employeeID string, req PunchRequest) (PunchResponse, error) {
	emp, err := s.employeeRepo.FindActiveByID(ctx, employeeID)
	if err != nil {
		return PunchResponse{}, attendanceerrors.ErrEmployeeNotFound
	}

	switch req.Tipo {
	case PunchEntrance:
		return s.recordEntrance(ctx, emp, req)
	case PunchExit:
		return s.recordExit(ctx, emp)
	default:
		return PunchResponse{}, attendanceerrors.ErrInvalidPunchType
	}
}

func (s *service) recordEntrance(ctx context.Context, emp *employee.Employee, req PunchRequest) (PunchResponse, error) {
	now := s.now()
	date := timeutil.DateString(now)

	zone, err := s.zoneRepo.ResolveForEmployee(ctx, emp.ID.String())
	if err != nil {
		return PunchResponse{}, err
	}
	if zone == nil {
		return PunchResponse{}, attendanceerrors.ErrNoZoneConfigured
	}

	if req.Latitud == nil || req.Longitud == nil {
		return PunchResponse{}, attendanceerrors.ErrCoordinatesRequired
	}
	point := geofence.Point{Latitude: *req.Latitud, Longitude: *req.Longitud}
	if !point.Valid() {
		return PunchResponse{}, attendanceerrors.ErrInvalidCoordinates
	}

	result := geofence.Evaluate(point, geofence.Zone{
		Center:       geofence.Point{Latitude: zone.Latitud, Longitude: zone.Longitud},
		RadiusMeters: zone.Radio,
	})
	if !result.Inside {
		s.logger.Info("punch rejected outside geofence",
			zap.String("empleado_id", emp.ID.String()),
			zap.Float64("distancia_metros", result.DistanceMeters),
		)
		return PunchResponse{}, attendanceerrors.NewOutOfGeofence(result.DistanceMeters)
	}

	threshold, err := s.lateThreshold(ctx, emp.ID.String(), now)
	if err != nil {
		return PunchResponse{}, err
	}
	late := now.After(threshold)

	existing, err := s.repo.FindByEmployeeAndDate(ctx, emp.ID.String(), date)
	notFound := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !notFound {
		return PunchResponse{}, err
	}
	if err == nil && existing.HoraEntrada != nil {
		return PunchResponse{}, attendanceerrors.ErrDuplicateEntrance
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("record entrance begin tx failed", zap.Error(err))
		return PunchResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	entrance := now

	if notFound {
		rec := &AttendanceRecord{
			ID:          uuid.New(),
			EmpleadoID:  emp.ID,
			Fecha:       now,
			HoraEntrada: &entrance,
			TipoDia:     DayTypeNormal,
			Retardo:     late,
			Autorizado:  !late,
		}
		if err := qtx.Create(ctx, rec); err != nil {
			return PunchResponse{}, mapRepositoryError(err)
		}
	} else {
		// A row without entrance can pre-exist (vacation/absence set by
		// admin, or a synthetic sweeper closure); the punch fills it in.
		existing.HoraEntrada = &entrance
		existing.TipoDia = DayTypeNormal
		existing.Retardo = late
		existing.Autorizado = !late
		if err := qtx.Update(ctx, existing); err != nil {
			return PunchResponse{}, mapRepositoryError(err)
		}
	}

	if late {
		if err := s.enqueueLateArrival(ctx, tx, emp, now, date); err != nil {
			s.logger.Error("enqueue late arrival event failed", zap.Error(err))
			return PunchResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return PunchResponse{}, mapRepositoryError(err)
	}

	if late {
		s.logger.Info("late entrance recorded",
			zap.String("empleado_id", emp.ID.String()),
			zap.String("fecha", date),
			zap.Time("hora", now),
		)
		return PunchResponse{}, attendanceerrors.ErrLateUnauthorized
	}

	s.logger.Info("entrance recorded",
		zap.String("empleado_id", emp.ID.String()),
		zap.String("fecha", date),
	)
	return PunchResponse{
		Tipo:    PunchEntrance,
		Fecha:   date,
		Hora:    now.Format("15:04:05"),
		Retardo: false,
		Mensaje: "Entrada registrada",
	}, nil
}

func (s *service) recordExit(ctx context.Context, emp *employee.Employee) (PunchResponse, error) {
	now := s.now()
	date := timeutil.DateString(now)

	rec, err := s.repo.FindByEmployeeAndDate(ctx, emp.ID.String(), date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PunchResponse{}, attendanceerrors.ErrNoEntranceRecorded
		}
		return PunchResponse{}, err
	}
	if rec.HoraEntrada == nil {
		return PunchResponse{}, attendanceerrors.ErrNoEntranceRecorded
	}
	if rec.HoraSalida != nil {
		return PunchResponse{}, attendanceerrors.ErrDuplicateExit
	}

	exit := now
	rec.HoraSalida = &exit
	if err := s.repo.Update(ctx, rec); err != nil {
		return PunchResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("exit recorded",
		zap.String("empleado_id", emp.ID.String()),
		zap.String("fecha", date),
	)
	return PunchResponse{
		Tipo:    PunchExit,
		Fecha:   date,
		Hora:    now.Format("15:04:05"),
		Retardo: rec.Retardo,
		Mensaje: "Salida registrada",
	}, nil
}

// lateThreshold is the scheduled entrance for today's weekday (site
// default when the employee has no schedule row) plus the tolerance
// window.
func (s *service) lateThreshold(ctx context.Context, employeeID string, now time.Time) (time.Time, error) {
	clock := s.cfg.GetString(ctx, config.KeyHoraEntradaStandar, defaultEntranceClock)

	entry, err := s.scheduleRepo.FindForDay(ctx, employeeID, now.Weekday())
	if err == nil {
		clock = entry.HoraEntrada
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, err
	}

	scheduled, err := timeutil.AtClock(now, clock)
	if err != nil {
		s.logger.Warn("invalid scheduled entrance clock", zap.String("clock", clock), zap.Error(err))
		scheduled, _ = timeutil.AtClock(now, defaultEntranceClock)
	}

	tolerance := s.cfg.GetInt(ctx, config.KeyToleranciaRetardo, defaultToleranceMinutes)
	return scheduled.Add(time.Duration(tolerance) * time.Minute), nil
}

func (s *service) enqueueLateArrival(ctx context.Context, tx *sql.Tx, emp *employee.Employee, now time.Time, date string) error {
	event := events.LateArrivalEvent{
		EventType:      "asistencia.retardo",
		RequestID:      contextutil.GetRequestID(ctx),
		EmpleadoID:     emp.ID.String(),
		EmpleadoNombre: emp.NombreCompleto(),
		Fecha:          date,
		Hora:           now.Format("15:04:05"),
		OccurredAt:     now,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outboxRepo.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     event.RequestID,
		AggregateType: "asistencia",
		AggregateID:   emp.ID.String(),
		EventType:     event.EventType,
		Topic:         events.AttendanceLateArrivalTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) ListByFilter(ctx context.Context, f ListFilter) ([]RecordResponse, error) {
	if f.Fecha == "" && f.EmpleadoID == "" && (f.FechaInicio == "" || f.FechaFin == "") {
		f.Fecha = timeutil.DateString(s.now())
	}
	if f.Fecha != "" && !validDate(f.Fecha) {
		return nil, apperror.InvalidField("fecha")
	}
	if f.FechaInicio != "" && !validDate(f.FechaInicio) {
		return nil, apperror.InvalidField("fecha_inicio")
	}
	if f.FechaFin != "" && !validDate(f.FechaFin) {
		return nil, apperror.InvalidField("fecha_fin")
	}

	rows, err := s.repo.ListByFilter(ctx, f)
	if err != nil {
		return nil, err
	}

	res := make([]RecordResponse, len(rows))
	for i, row := range rows {
		res[i] = RecordResponse{
			ID:             row.ID,
			EmpleadoID:     row.EmpleadoID,
			NumeroEmpleado: row.NumeroEmpleado,
			EmpleadoNombre: row.Nombre + " " + row.Apellidos,
			Fecha:          row.Fecha.Format("2006-01-02"),
			HoraEntrada:    clockOf(row.HoraEntrada),
			HoraSalida:     clockOf(row.HoraSalida),
			TipoDia:        row.TipoDia,
			Retardo:        row.Retardo,
			Autorizado:     row.Autorizado,
			Justificacion:  row.Justificacion,
			Observaciones:  row.Observaciones,
		}
	}
	return res, nil
}

// UpdateRecord is the privileged admin override: it can authorize a
// late arrival, attach a justification, flip the day type or correct
// times outside the punch invariants.
func (s *service) UpdateRecord(ctx context.Context, id string, req UpdateRecordRequest) (RecordResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RecordResponse{}, apperror.InvalidField("id")
	}

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return RecordResponse{}, mapRepositoryError(err)
	}

	if req.TipoDia != nil {
		switch *req.TipoDia {
		case DayTypeNormal, DayTypeAbsence, DayTypeVacation:
			rec.TipoDia = *req.TipoDia
		default:
			return RecordResponse{}, attendanceerrors.ErrInvalidDayType
		}
	}
	if req.HoraEntrada != nil {
		t, err := parseClockOn(rec.Fecha, *req.HoraEntrada)
		if err != nil {
			return RecordResponse{}, apperror.InvalidField("hora_entrada")
		}
		rec.HoraEntrada = t
	}
	if req.HoraSalida != nil {
		t, err := parseClockOn(rec.Fecha, *req.HoraSalida)
		if err != nil {
			return RecordResponse{}, apperror.InvalidField("hora_salida")
		}
		rec.HoraSalida = t
	}
	if req.Retardo != nil {
		rec.Retardo = *req.Retardo
	}
	if req.Autorizado != nil {
		rec.Autorizado = *req.Autorizado
	}
	if req.Justificacion != nil {
		rec.Justificacion = req.Justificacion
	}
	if req.Observaciones != nil {
		rec.Observaciones = req.Observaciones
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return RecordResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("attendance record updated by admin",
		zap.String("record_id", id),
		zap.Bool("autorizado", rec.Autorizado),
	)
	return RecordResponse{
		ID:            rec.ID.String(),
		EmpleadoID:    rec.EmpleadoID.String(),
		Fecha:         rec.Fecha.Format("2006-01-02"),
		HoraEntrada:   clockOf(rec.HoraEntrada),
		HoraSalida:    clockOf(rec.HoraSalida),
		TipoDia:       rec.TipoDia,
		Retardo:       rec.Retardo,
		Autorizado:    rec.Autorizado,
		Justificacion: rec.Justificacion,
		Observaciones: rec.Observaciones,
	}, nil
}

func (s *service) DeleteRecord(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.InvalidField("id")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	s.logger.Info("attendance record deleted by admin", zap.String("record_id", id))
	return nil
}

func validDate(v string) bool {
	_, err := time.Parse("2006-01-02", v)
	return err == nil
}

func clockOf(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.In(timeutil.Location()).Format("15:04:05")
	return &v
}

// parseClockOn interprets an HH:MM[:SS] clock string on the given
// record date. An empty string clears the timestamp.
func parseClockOn(date time.Time, clock string) (*time.Time, error) {
	if clock == "" {
		return nil, nil
	}
	t, err := timeutil.AtClock(date, clock)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

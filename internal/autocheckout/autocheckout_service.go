package autocheckout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/SiwoTech/asistencias/internal/attendance"
	autocheckouterrors "github.com/SiwoTech/asistencias/internal/autocheckout/errors"
	"github.com/SiwoTech/asistencias/internal/employee"
	"github.com/SiwoTech/asistencias/internal/events"
	"github.com/SiwoTech/asistencias/internal/messaging/kafka"
	"github.com/SiwoTech/asistencias/internal/shared/config"
	"github.com/SiwoTech/asistencias/internal/shared/timeutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultGraceMinutes = 15

	estadoCerrado   = "cerrado"
	estadoVencida   = "vencida"
	estadoProximo   = "proximo"
	estadoPendiente = "pendiente"
)

//go:generate mockgen -source=autocheckout_service.go -destination=mock/autocheckout_service_mock.go -package=mock
type Service interface {
	// Process runs one sweep: every scheduled employee whose exit
	// window has opened gets the day's record closed, once. Overlapping
	// calls are rejected so a slow sweep is never doubled.
	Process(ctx context.Context) (ProcessResult, error)
	Status(ctx context.Context) (StatusResponse, error)
	Manual(ctx context.Context, employeeID string) (ManualResponse, error)
}

type service struct {
	db           *sql.DB
	repo         Repository
	attRepo      attendance.Repository
	employeeRepo employee.Repository
	outboxRepo   kafka.OutboxRepository
	cfg          *config.Store
	logger       *zap.Logger
	now          func() time.Time

	running sync.Mutex
}

func NewService(
	db *sql.DB,
	repo Repository,
	attRepo attendance.Repository,
	employeeRepo employee.Repository,
	outboxRepo kafka.OutboxRepository,
	cfg *config.Store,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("autocheckout.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("autocheckout.service")
	}
	return &service{
		db:           db,
		repo:         repo,
		attRepo:      attRepo,
		employeeRepo: employeeRepo,
		outboxRepo:   outboxRepo,
		cfg:          cfg,
		logger:       l,
		now:          timeutil.Now,
	}
}

func (s *service) Process(ctx context.Context) (ProcessResult, error) {
	if !s.running.TryLock() {
		return ProcessResult{}, autocheckouterrors.ErrSweepInProgress
	}
	defer s.running.Unlock()

	now := s.now()
	date := timeutil.DateString(now)

	if !s.cfg.GetBool(ctx, config.KeyAutoCheckoutActivo, false) {
		return ProcessResult{Activa: false, Fecha: date}, nil
	}

	grace := s.cfg.GetInt(ctx, config.KeyAutoCheckoutTolerance, defaultGraceMinutes)
	requireEntrance := s.cfg.GetBool(ctx, config.KeyAutoCheckoutSoloEntrada, true)

	candidates, err := s.repo.ListCandidates(ctx, date, now.Weekday())
	if err != nil {
		return ProcessResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("sweep begin tx failed", zap.Error(err))
		return ProcessResult{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qtxAtt := s.attRepo.WithTx(tx)
	qtxOutbox := s.outboxRepo.WithTx(tx)

	processed := 0
	for _, cand := range candidates {
		scheduled, err := timeutil.AtClock(now, cand.SalidaHorario)
		if err != nil {
			s.logger.Warn("invalid scheduled exit clock",
				zap.String("empleado_id", cand.EmpleadoID),
				zap.String("clock", cand.SalidaHorario),
			)
			continue
		}

		if now.Before(scheduled) || now.After(scheduled.Add(time.Duration(grace)*time.Minute)) {
			continue
		}
		if cand.HoraSalidaReal != nil {
			continue
		}
		if requireEntrance && (cand.RecordID == nil || cand.HoraEntrada == nil) {
			continue
		}

		done, err := qtx.HasLog(ctx, cand.EmpleadoID, date, ReasonAuto)
		if err != nil {
			return ProcessResult{}, err
		}
		if done {
			continue
		}

		if err := s.closeRecord(ctx, qtxAtt, cand, now); err != nil {
			s.logger.Error("close record failed",
				zap.String("empleado_id", cand.EmpleadoID),
				zap.Error(err),
			)
			return ProcessResult{}, err
		}

		if err := s.appendLogAndEvent(ctx, qtx, qtxOutbox, cand.EmpleadoID, now, &scheduled, ReasonAuto); err != nil {
			return ProcessResult{}, err
		}
		processed++
	}

	if err := tx.Commit(); err != nil {
		return ProcessResult{}, err
	}

	if processed > 0 {
		s.logger.Info("auto checkout sweep finished",
			zap.String("fecha", date),
			zap.Int("revisados", len(candidates)),
			zap.Int("procesados", processed),
		)
	}
	return ProcessResult{
		Activa:     true,
		Fecha:      date,
		Revisados:  len(candidates),
		Procesados: processed,
	}, nil
}

// closeRecord sets the exit on today's row, creating a synthetic
// exit-only row when the policy allows sweeping without an entrance.
func (s *service) closeRecord(ctx context.Context, qtxAtt attendance.Repository, cand Candidate, now time.Time) error {
	note := "Salida automática"

	if cand.RecordID == nil {
		exit := now
		return qtxAtt.Create(ctx, &attendance.AttendanceRecord{
			ID:            uuid.New(),
			EmpleadoID:    uuid.MustParse(cand.EmpleadoID),
			Fecha:         now,
			HoraSalida:    &exit,
			TipoDia:       attendance.DayTypeNormal,
			Autorizado:    true,
			Observaciones: &note,
		})
	}

	rec, err := s.attRepo.FindByEmployeeAndDate(ctx, cand.EmpleadoID, timeutil.DateString(now))
	if err != nil {
		return err
	}
	exit := now
	rec.HoraSalida = &exit
	if rec.Observaciones == nil || *rec.Observaciones == "" {
		rec.Observaciones = &note
	} else {
		combined := *rec.Observaciones + "; " + note
		rec.Observaciones = &combined
	}
	return qtxAtt.Update(ctx, rec)
}

func (s *service) appendLogAndEvent(
	ctx context.Context,
	qtx Repository,
	qtxOutbox kafka.OutboxRepository,
	employeeID string,
	now time.Time,
	scheduled *time.Time,
	motivo string,
) error {
	if err := qtx.InsertLog(ctx, &LogEntry{
		ID:               uuid.New(),
		EmpleadoID:       uuid.MustParse(employeeID),
		Fecha:            now,
		Motivo:           motivo,
		SalidaProgramada: scheduled,
		SalidaReal:       now,
	}); err != nil {
		return err
	}

	event := events.AutoCheckoutEvent{
		EventType:  "asistencia.salida_automatica",
		EmpleadoID: employeeID,
		Fecha:      timeutil.DateString(now),
		Motivo:     motivo,
		OccurredAt: now,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return qtxOutbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		AggregateType: "asistencia",
		AggregateID:   employeeID,
		EventType:     event.EventType,
		Topic:         events.AttendanceAutoCheckoutTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) Status(ctx context.Context) (StatusResponse, error) {
	now := s.now()
	date := timeutil.DateString(now)

	resp := StatusResponse{
		Activa: s.cfg.GetBool(ctx, config.KeyAutoCheckoutActivo, false),
		Fecha:  date,
	}

	grace := s.cfg.GetInt(ctx, config.KeyAutoCheckoutTolerance, defaultGraceMinutes)

	candidates, err := s.repo.ListCandidates(ctx, date, now.Weekday())
	if err != nil {
		return StatusResponse{}, err
	}

	for _, cand := range candidates {
		entry := StatusEmployee{
			EmpleadoID:       cand.EmpleadoID,
			Nombre:           cand.Nombre + " " + cand.Apellidos,
			SalidaProgramada: cand.SalidaHorario,
			HoraEntrada:      clockOf(cand.HoraEntrada),
			HoraSalida:       clockOf(cand.HoraSalidaReal),
		}

		scheduled, err := timeutil.AtClock(now, cand.SalidaHorario)
		switch {
		case cand.HoraSalidaReal != nil:
			entry.Estado = estadoCerrado
			resp.Cerrados++
		case err != nil:
			entry.Estado = estadoPendiente
			resp.Abiertos++
		case now.After(scheduled.Add(time.Duration(grace) * time.Minute)):
			entry.Estado = estadoVencida
			resp.Abiertos++
		case !now.Before(scheduled):
			entry.Estado = estadoProximo
			resp.Abiertos++
		default:
			entry.Estado = estadoPendiente
			resp.Abiertos++
		}

		resp.Empleados = append(resp.Empleados, entry)
	}

	resp.Total = len(candidates)
	return resp, nil
}

// Manual forces the closure of an open record, same path as the
// sweeper but without the time-window precondition.
func (s *service) Manual(ctx context.Context, employeeID string) (ManualResponse, error) {
	emp, err := s.employeeRepo.FindActiveByID(ctx, employeeID)
	if err != nil {
		return ManualResponse{}, autocheckouterrors.ErrEmployeeNotFound
	}

	now := s.now()
	date := timeutil.DateString(now)

	rec, err := s.attRepo.FindByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ManualResponse{}, autocheckouterrors.ErrNoOpenRecord
		}
		return ManualResponse{}, err
	}
	if !rec.Open() {
		return ManualResponse{}, autocheckouterrors.ErrNoOpenRecord
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("manual checkout begin tx failed", zap.Error(err))
		return ManualResponse{}, err
	}
	defer tx.Rollback()

	exit := now
	note := "Salida manual"
	rec.HoraSalida = &exit
	if rec.Observaciones == nil || *rec.Observaciones == "" {
		rec.Observaciones = &note
	} else {
		combined := *rec.Observaciones + "; " + note
		rec.Observaciones = &combined
	}
	if err := s.attRepo.WithTx(tx).Update(ctx, rec); err != nil {
		return ManualResponse{}, err
	}

	if err := s.appendLogAndEvent(ctx, s.repo.WithTx(tx), s.outboxRepo.WithTx(tx), employeeID, now, nil, ReasonManual); err != nil {
		return ManualResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return ManualResponse{}, err
	}

	s.logger.Info("manual checkout recorded",
		zap.String("empleado_id", emp.ID.String()),
		zap.String("fecha", date),
	)
	return ManualResponse{
		EmpleadoID: employeeID,
		Fecha:      date,
		HoraSalida: now.Format("15:04:05"),
	}, nil
}

func clockOf(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.In(timeutil.Location()).Format("15:04:05")
	return &v
}

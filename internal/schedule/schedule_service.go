package schedule

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/SiwoTech/asistencias/internal/employee"
	"github.com/SiwoTech/asistencias/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=schedule_service.go -destination=mock/schedule_service_mock.go -package=mock
type Service interface {
	GetWeek(ctx context.Context, employeeID string) (WeekResponse, error)
	// ReplaceWeek swaps the employee's whole weekly schedule: existing
	// rows are deleted and the provided days inserted in one
	// transaction, so a failed insert never leaves a partial week.
	ReplaceWeek(ctx context.Context, employeeID string, req ReplaceWeekRequest) (ReplaceWeekResponse, error)
}

type service struct {
	db           *sql.DB
	repo         Repository
	employeeRepo employee.Repository
	logger       *zap.Logger
}

func NewService(db *sql.DB, repo Repository, employeeRepo employee.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("schedule.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("schedule.service")
	}
	return &service{db: db, repo: repo, employeeRepo: employeeRepo, logger: l}
}

func (s *service) GetWeek(ctx context.Context, employeeID string) (WeekResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return WeekResponse{}, apperror.New(apperror.CodeInvalidInput, "empleado_id no es válido", http.StatusBadRequest)
	}

	rows, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return WeekResponse{}, err
	}

	byDay := make(map[time.Weekday]ScheduleEntry, len(rows))
	for _, row := range rows {
		byDay[row.DiaSemana] = row
	}

	resp := WeekResponse{EmpleadoID: employeeID}
	for d := time.Sunday; d <= time.Saturday; d++ {
		day := DayScheduleResponse{Dia: SpanishName(d)}
		if entry, ok := byDay[d]; ok {
			day.Activo = entry.Activo
			day.Entrada = entry.HoraEntrada
			day.Salida = entry.HoraSalida
		}
		resp.Dias = append(resp.Dias, day)
	}
	return resp, nil
}

func (s *service) ReplaceWeek(ctx context.Context, employeeID string, req ReplaceWeekRequest) (ReplaceWeekResponse, error) {
	empUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return ReplaceWeekResponse{}, apperror.New(apperror.CodeInvalidInput, "empleado_id no es válido", http.StatusBadRequest)
	}

	if _, err := s.employeeRepo.FindActiveByID(ctx, employeeID); err != nil {
		return ReplaceWeekResponse{}, apperror.New(apperror.CodeNotFound, "Empleado no encontrado o inactivo", http.StatusNotFound)
	}

	type dayEntry struct {
		day             time.Weekday
		entrada, salida string
	}
	entries := make([]dayEntry, 0, 7)
	for name, day := range req.Dias {
		w, err := ParseWeekday(name)
		if err != nil {
			return ReplaceWeekResponse{}, err
		}
		if !day.Activo {
			continue
		}
		if !validClock(day.Entrada) || !validClock(day.Salida) {
			return ReplaceWeekResponse{}, apperror.New(
				apperror.CodeInvalidInput,
				"Horario inválido para "+name+", formato esperado HH:MM",
				http.StatusBadRequest,
			)
		}
		entries = append(entries, dayEntry{day: w, entrada: day.Entrada, salida: day.Salida})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("replace week begin tx failed", zap.Error(err))
		return ReplaceWeekResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.DeleteByEmployee(ctx, employeeID); err != nil {
		s.logger.Error("replace week delete failed", zap.Error(err))
		return ReplaceWeekResponse{}, err
	}

	for _, e := range entries {
		entry := &ScheduleEntry{
			ID:          uuid.New(),
			EmpleadoID:  empUUID,
			DiaSemana:   e.day,
			HoraEntrada: e.entrada,
			HoraSalida:  e.salida,
			Activo:      true,
		}
		if err := qtx.Insert(ctx, entry); err != nil {
			s.logger.Error("replace week insert failed",
				zap.String("dia", SpanishName(e.day)),
				zap.Error(err),
			)
			return ReplaceWeekResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return ReplaceWeekResponse{}, err
	}

	s.logger.Info("weekly schedule replaced",
		zap.String("empleado_id", employeeID),
		zap.Int("dias", len(entries)),
	)
	return ReplaceWeekResponse{EmpleadoID: employeeID, HorariosCreados: len(entries)}, nil
}

func validClock(v string) bool {
	if _, err := time.Parse("15:04", v); err == nil {
		return true
	}
	_, err := time.Parse("15:04:05", v)
	return err == nil
}

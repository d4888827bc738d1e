package checkzone

import (
	"context"
	"net/http"

	"github.com/SiwoTech/asistencias/internal/geofence"
	"github.com/SiwoTech/asistencias/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=checkzone_service.go -destination=mock/checkzone_service_mock.go -package=mock
type Service interface {
	Save(ctx context.Context, req SaveZoneRequest) (ZoneResponse, error)
	GetAll(ctx context.Context) ([]ZoneResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("checkzone.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("checkzone.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Save(ctx context.Context, req SaveZoneRequest) (ZoneResponse, error) {
	p := geofence.Point{Latitude: *req.Latitud, Longitude: *req.Longitud}
	if !p.Valid() {
		return ZoneResponse{}, apperror.New(apperror.CodeInvalidInput, "Coordenadas fuera de rango", http.StatusBadRequest)
	}

	radio := req.Radio
	if radio <= 0 {
		radio = 100
	}

	var empleadoID *uuid.UUID
	if req.EmpleadoID != nil && *req.EmpleadoID != "" {
		id, err := uuid.Parse(*req.EmpleadoID)
		if err != nil {
			return ZoneResponse{}, apperror.New(apperror.CodeInvalidInput, "empleado_id no es válido", http.StatusBadRequest)
		}
		empleadoID = &id
	}

	activo := true
	if req.Activo != nil {
		activo = *req.Activo
	}

	if req.ID != "" {
		existing, err := s.repo.FindByID(ctx, req.ID)
		if err != nil {
			return ZoneResponse{}, apperror.ErrNotFound
		}

		existing.Nombre = req.Nombre
		existing.Latitud = *req.Latitud
		existing.Longitud = *req.Longitud
		existing.Radio = radio
		existing.EmpleadoID = empleadoID
		existing.CentroTrabajo = req.CentroTrabajo
		existing.Activo = activo

		if err := s.repo.Update(ctx, existing); err != nil {
			s.logger.Error("update zone failed", zap.Error(err))
			return ZoneResponse{}, err
		}
		s.logger.Info("zone updated", zap.String("zone_id", existing.ID.String()))
		return mapToResponse(*existing), nil
	}

	z := &CheckZone{
		ID:            uuid.New(),
		Nombre:        req.Nombre,
		Latitud:       *req.Latitud,
		Longitud:      *req.Longitud,
		Radio:         radio,
		EmpleadoID:    empleadoID,
		CentroTrabajo: req.CentroTrabajo,
		Activo:        activo,
	}
	if err := s.repo.Create(ctx, z); err != nil {
		s.logger.Error("create zone failed", zap.Error(err))
		return ZoneResponse{}, err
	}
	s.logger.Info("zone created", zap.String("zone_id", z.ID.String()))
	return mapToResponse(*z), nil
}

func (s *service) GetAll(ctx context.Context) ([]ZoneResponse, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]ZoneResponse, len(rows))
	for i, z := range rows {
		res[i] = mapToResponse(z)
	}
	return res, nil
}

func mapToResponse(z CheckZone) ZoneResponse {
	resp := ZoneResponse{
		ID:            z.ID.String(),
		Nombre:        z.Nombre,
		Latitud:       z.Latitud,
		Longitud:      z.Longitud,
		Radio:         z.Radio,
		CentroTrabajo: z.CentroTrabajo,
		Activo:        z.Activo,
	}
	if z.EmpleadoID != nil {
		v := z.EmpleadoID.String()
		resp.EmpleadoID = &v
	}
	return resp
}

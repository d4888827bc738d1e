package attendance

import (
	"errors"
	"strings"

	attendanceerrors "github.com/SiwoTech/asistencias/internal/attendance/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attendanceerrors.ErrRecordNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_asistencia_empleado_fecha" {
			return attendanceerrors.ErrDuplicateEntrance
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_asistencia_empleado_fecha") {
		return attendanceerrors.ErrDuplicateEntrance
	}

	return err
}

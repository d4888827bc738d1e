package payroll

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// PeriodRow is a payroll record joined with its employee.
type PeriodRow struct {
	ID             string  `gorm:"column:id"`
	EmpleadoID     string  `gorm:"column:empleado_id"`
	NumeroEmpleado string  `gorm:"column:numero_empleado"`
	Nombre         string  `gorm:"column:nombre"`
	Apellidos      string  `gorm:"column:apellidos"`
	Periodo        string  `gorm:"column:periodo"`
	SalarioBase    float64 `gorm:"column:salario_base"`
	DiasTrabajados int     `gorm:"column:dias_trabajados"`
	Vacaciones     int     `gorm:"column:vacaciones"`
	Faltas         int     `gorm:"column:faltas"`
	Retardos       int     `gorm:"column:retardos"`
	Deduccion      float64 `gorm:"column:deduccion"`
	Comisiones     float64 `gorm:"column:comisiones"`
	Total          float64 `gorm:"column:total"`
	Pagado         bool    `gorm:"column:pagado"`
	Observaciones  *string `gorm:"column:observaciones"`
}

type PeriodSummaryRow struct {
	Periodo   string  `gorm:"column:periodo"`
	Empleados int     `gorm:"column:empleados"`
	Total     float64 `gorm:"column:total"`
	Pagados   int     `gorm:"column:pagados"`
}

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	ListByPeriod(ctx context.Context, period string) ([]PeriodRow, error)
	CountByPeriod(ctx context.Context, period string) (int64, error)
	HasPaidInPeriod(ctx context.Context, period string) (bool, error)
	FindByID(ctx context.Context, id string) (*PayrollRecord, error)
	Insert(ctx context.Context, rec *PayrollRecord) error
	Update(ctx context.Context, rec *PayrollRecord) error
	DeleteByPeriod(ctx context.Context, period string) error
	ListPeriods(ctx context.Context) ([]PeriodSummaryRow, error)
	SumCommissions(ctx context.Context, employeeID string, period string) (float64, error)
	ListCommissions(ctx context.Context, employeeID string, period string) ([]Commission, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) ListByPeriod(ctx context.Context, period string) ([]PeriodRow, error) {
	var rows []PeriodRow
	err := r.db.WithContext(ctx).
		Table("nomina n").
		Select(`n.id, n.empleado_id, e.numero_empleado, e.nombre, e.apellidos,
			n.periodo, n.salario_base, n.dias_trabajados, n.vacaciones,
			n.faltas, n.retardos, n.deduccion, n.comisiones, n.total,
			n.pagado, n.observaciones`).
		Joins("JOIN empleados e ON e.id = n.empleado_id").
		Where("n.periodo = ?", period).
		Order("e.nombre, e.apellidos").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) CountByPeriod(ctx context.Context, period string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PayrollRecord{}).
		Where("periodo = ?", period).
		Count(&count).Error
	return count, err
}

func (r *repository) HasPaidInPeriod(ctx context.Context, period string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PayrollRecord{}).
		Where("periodo = ?", period).
		Where("pagado = ?", true).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*PayrollRecord, error) {
	var rec PayrollRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	return &rec, err
}

func (r *repository) Insert(ctx context.Context, rec *PayrollRecord) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
			INSERT INTO nomina (
				id, empleado_id, periodo, fecha_inicio, fecha_fin,
				salario_base, dias_trabajados, vacaciones, faltas, retardos,
				deduccion, comisiones, total, pagado, observaciones,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())
		`,
			rec.ID, rec.EmpleadoID, rec.Periodo,
			rec.FechaInicio.Format("2006-01-02"), rec.FechaFin.Format("2006-01-02"),
			rec.SalarioBase, rec.DiasTrabajados, rec.Vacaciones, rec.Faltas, rec.Retardos,
			rec.Deduccion, rec.Comisiones, rec.Total, rec.Pagado, rec.Observaciones,
		)
		return err
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *repository) Update(ctx context.Context, rec *PayrollRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *repository) DeleteByPeriod(ctx context.Context, period string) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `DELETE FROM nomina WHERE periodo = $1`, period)
		return err
	}
	return r.db.WithContext(ctx).
		Where("periodo = ?", period).
		Delete(&PayrollRecord{}).Error
}

func (r *repository) ListPeriods(ctx context.Context) ([]PeriodSummaryRow, error) {
	var rows []PeriodSummaryRow
	err := r.db.WithContext(ctx).
		Table("nomina").
		Select(`periodo,
			count(*) AS empleados,
			sum(total) AS total,
			count(*) FILTER (WHERE pagado) AS pagados`).
		Group("periodo").
		Order("periodo DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) SumCommissions(ctx context.Context, employeeID string, period string) (float64, error) {
	var total sql.NullFloat64
	err := r.db.WithContext(ctx).
		Model(&Commission{}).
		Select("sum(monto)").
		Where("empleado_id = ?", employeeID).
		Where("periodo = ?", period).
		Scan(&total).Error
	return total.Float64, err
}

func (r *repository) ListCommissions(ctx context.Context, employeeID string, period string) ([]Commission, error) {
	var rows []Commission
	err := r.db.WithContext(ctx).
		Where("empleado_id = ?", employeeID).
		Where("periodo = ?", period).
		Order("created_at").
		Find(&rows).Error
	return rows, err
}

package payroll

type GenerateRequest struct {
	Periodo   string `json:"periodo" binding:"required"`
	Regenerar bool   `json:"regenerar"`
}

type GenerateResponse struct {
	Periodo     string  `json:"periodo"`
	FechaInicio string  `json:"fecha_inicio"`
	FechaFin    string  `json:"fecha_fin"`
	Empleados   int     `json:"empleados"`
	TotalNomina float64 `json:"total_nomina"`
}

type RecordResponse struct {
	ID             string  `json:"id"`
	EmpleadoID     string  `json:"empleado_id"`
	NumeroEmpleado string  `json:"numero_empleado,omitempty"`
	EmpleadoNombre string  `json:"empleado_nombre,omitempty"`
	Periodo        string  `json:"periodo"`
	SalarioBase    float64 `json:"salario_base"`
	DiasTrabajados int     `json:"dias_trabajados"`
	Vacaciones     int     `json:"vacaciones"`
	Faltas         int     `json:"faltas"`
	Retardos       int     `json:"retardos"`
	Deduccion      float64 `json:"deduccion"`
	Comisiones     float64 `json:"comisiones"`
	Total          float64 `json:"total"`
	Pagado         bool    `json:"pagado"`
	Observaciones  *string `json:"observaciones,omitempty"`
}

type PeriodSummary struct {
	Empleados        int     `json:"empleados"`
	Pagados          int     `json:"pagados"`
	TotalNomina      float64 `json:"total_nomina"`
	TotalDeducciones float64 `json:"total_deducciones"`
	TotalComisiones  float64 `json:"total_comisiones"`
}

type PeriodResponse struct {
	Periodo     string           `json:"periodo"`
	FechaInicio string           `json:"fecha_inicio"`
	FechaFin    string           `json:"fecha_fin"`
	Registros   []RecordResponse `json:"registros"`
	Resumen     PeriodSummary    `json:"resumen"`
}

type PeriodListItem struct {
	Periodo   string  `json:"periodo"`
	Empleados int     `json:"empleados"`
	Total     float64 `json:"total"`
	Pagado    bool    `json:"pagado"`
}

type CommissionResponse struct {
	ID       string  `json:"id"`
	Concepto string  `json:"concepto"`
	Monto    float64 `json:"monto"`
}

type DayDetail struct {
	Fecha       string  `json:"fecha"`
	TipoDia     string  `json:"tipo_dia"`
	HoraEntrada *string `json:"hora_entrada"`
	HoraSalida  *string `json:"hora_salida"`
	Retardo     bool    `json:"retardo"`
}

type DetailResponse struct {
	Registro   RecordResponse       `json:"registro"`
	Asistencia []DayDetail          `json:"asistencia"`
	Comisiones []CommissionResponse `json:"comisiones"`
}

type UpdateRequest struct {
	Pagado        *bool   `json:"pagado"`
	Observaciones *string `json:"observaciones"`
}

package autocheckout

type ProcessResult struct {
	Activa     bool   `json:"activa"`
	Fecha      string `json:"fecha"`
	Revisados  int    `json:"revisados"`
	Procesados int    `json:"procesados"`
}

type StatusEmployee struct {
	EmpleadoID       string  `json:"empleado_id"`
	Nombre           string  `json:"nombre"`
	SalidaProgramada string  `json:"salida_programada"`
	HoraEntrada      *string `json:"hora_entrada"`
	HoraSalida       *string `json:"hora_salida"`
	Estado           string  `json:"estado"`
}

type StatusResponse struct {
	Activa    bool             `json:"activa"`
	Fecha     string           `json:"fecha"`
	Total     int              `json:"total"`
	Cerrados  int              `json:"cerrados"`
	Abiertos  int              `json:"abiertos"`
	Empleados []StatusEmployee `json:"empleados"`
}

type ManualRequest struct {
	EmpleadoID string `json:"empleado_id" binding:"required,uuid"`
}

type ManualResponse struct {
	EmpleadoID string `json:"empleado_id"`
	Fecha      string `json:"fecha"`
	HoraSalida string `json:"hora_salida"`
}

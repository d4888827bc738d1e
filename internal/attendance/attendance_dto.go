package attendance

type PunchRequest struct {
	Tipo     string   `json:"tipo" binding:"required,oneof=entrada salida"`
	Latitud  *float64 `json:"latitud"`
	Longitud *float64 `json:"longitud"`
}

type PunchResponse struct {
	Tipo    string `json:"tipo"`
	Fecha   string `json:"fecha"`
	Hora    string `json:"hora"`
	Retardo bool   `json:"retardo"`
	Mensaje string `json:"mensaje"`
}

type UpdateRecordRequest struct {
	HoraEntrada   *string `json:"hora_entrada"`
	HoraSalida    *string `json:"hora_salida"`
	TipoDia       *string `json:"tipo_dia"`
	Retardo       *bool   `json:"retardo"`
	Autorizado    *bool   `json:"autorizado"`
	Justificacion *string `json:"justificacion"`
	Observaciones *string `json:"observaciones"`
}

type RecordResponse struct {
	ID             string  `json:"id"`
	EmpleadoID     string  `json:"empleado_id"`
	NumeroEmpleado string  `json:"numero_empleado,omitempty"`
	EmpleadoNombre string  `json:"empleado_nombre,omitempty"`
	Fecha          string  `json:"fecha"`
	HoraEntrada    *string `json:"hora_entrada"`
	HoraSalida     *string `json:"hora_salida"`
	TipoDia        string  `json:"tipo_dia"`
	Retardo        bool    `json:"retardo"`
	Autorizado     bool    `json:"autorizado"`
	Justificacion  *string `json:"justificacion,omitempty"`
	Observaciones  *string `json:"observaciones,omitempty"`
}

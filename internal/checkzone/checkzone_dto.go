package checkzone

type SaveZoneRequest struct {
	ID            string   `json:"id"`
	Nombre        string   `json:"nombre" binding:"required"`
	Latitud       *float64 `json:"latitud" binding:"required"`
	Longitud      *float64 `json:"longitud" binding:"required"`
	Radio         float64  `json:"radio"`
	EmpleadoID    *string  `json:"empleado_id"`
	CentroTrabajo *string  `json:"centro_trabajo"`
	Activo        *bool    `json:"activo"`
}

type ZoneResponse struct {
	ID            string  `json:"id"`
	Nombre        string  `json:"nombre"`
	Latitud       float64 `json:"latitud"`
	Longitud      float64 `json:"longitud"`
	Radio         float64 `json:"radio"`
	EmpleadoID    *string `json:"empleado_id,omitempty"`
	CentroTrabajo *string `json:"centro_trabajo,omitempty"`
	Activo        bool    `json:"activo"`
}

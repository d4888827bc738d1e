package schedule

// DayScheduleRequest mirrors the per-day form the admin screen sends:
// {"lunes": {"activo": true, "entrada": "09:00", "salida": "18:00"}, ...}
type DayScheduleRequest struct {
	Activo  bool   `json:"activo"`
	Entrada string `json:"entrada"`
	Salida  string `json:"salida"`
}

type ReplaceWeekRequest struct {
	Dias map[string]DayScheduleRequest `json:"dias" binding:"required"`
}

type DayScheduleResponse struct {
	Dia     string `json:"dia"`
	Activo  bool   `json:"activo"`
	Entrada string `json:"entrada"`
	Salida  string `json:"salida"`
}

type WeekResponse struct {
	EmpleadoID string                `json:"empleado_id"`
	Dias       []DayScheduleResponse `json:"dias"`
}

type ReplaceWeekResponse struct {
	EmpleadoID      string `json:"empleado_id"`
	HorariosCreados int    `json:"horarios_creados"`
}

package events

import "time"

const AttendanceAutoCheckoutTopic = "asistencia.salida_automatica.v1"

type AutoCheckoutEvent struct {
	EventType  string    `json:"event_type"`
	EmpleadoID string    `json:"empleado_id"`
	Fecha      string    `json:"fecha"`
	Motivo     string    `json:"motivo"`
	OccurredAt time.Time `json:"occurred_at"`
}

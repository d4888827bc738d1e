package events

import "time"

const AttendanceLateArrivalTopic = "asistencia.retardo.v1"

// LateArrivalEvent is emitted when an employee punches in past the
// tolerance window. The consumer notifies the administrator so the
// authorization/justification flow can start.
type LateArrivalEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	EmpleadoID     string    `json:"empleado_id"`
	EmpleadoNombre string    `json:"empleado_nombre"`
	Fecha          string    `json:"fecha"`
	Hora           string    `json:"hora"`
	OccurredAt     time.Time `json:"occurred_at"`
}

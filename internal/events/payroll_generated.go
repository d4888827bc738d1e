package events

import "time"

const PayrollGeneratedTopic = "nomina.generada.v1"

type PayrollGeneratedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	Periodo    string    `json:"periodo"`
	Empleados  int       `json:"empleados"`
	OccurredAt time.Time `json:"occurred_at"`
}

package schedule

import (
	"net/http"
	"strings"
	"time"

	"github.com/SiwoTech/asistencias/internal/shared/apperror"
)

// The wire contract keeps the Spanish day names the clients already
// send; internally everything is a time.Weekday so the locale strings
// never reach business logic.
var weekdayNames = map[string]time.Weekday{
	"domingo":   time.Sunday,
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"miércoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
	"sábado":    time.Saturday,
}

var spanishNames = map[time.Weekday]string{
	time.Sunday:    "domingo",
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miercoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sabado",
}

func ParseWeekday(name string) (time.Weekday, error) {
	w, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, apperror.New(apperror.CodeInvalidInput, "Día de la semana no válido: "+name, http.StatusBadRequest)
	}
	return w, nil
}

func SpanishName(w time.Weekday) string {
	return spanishNames[w]
}

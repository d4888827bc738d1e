package payroll

import (
	"fmt"
	"regexp"
	"time"

	payrollerrors "github.com/SiwoTech/asistencias/internal/payroll/errors"
	"github.com/SiwoTech/asistencias/internal/shared/timeutil"
)

var periodRe = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// Period is one ISO-8601 week, Monday through Sunday. Sundays are
// excluded from working-day math.
type Period struct {
	Year int
	Week int
}

func ParsePeriod(s string) (Period, error) {
	m := periodRe.FindStringSubmatch(s)
	if m == nil {
		return Period{}, payrollerrors.ErrInvalidPeriod
	}

	var p Period
	fmt.Sscanf(m[1], "%d", &p.Year)
	fmt.Sscanf(m[2], "%d", &p.Week)
	if p.Week < 1 || p.Week > 53 {
		return Period{}, payrollerrors.ErrInvalidPeriod
	}

	// Week 53 only exists in long ISO years.
	y, w := p.Monday().ISOWeek()
	if y != p.Year || w != p.Week {
		return Period{}, payrollerrors.ErrInvalidPeriod
	}
	return p, nil
}

func CurrentPeriod(t time.Time) Period {
	y, w := t.ISOWeek()
	return Period{Year: y, Week: w}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-W%02d", p.Year, p.Week)
}

// Monday returns the first day of the period. January 4th always falls
// in ISO week 1 of its year.
func (p Period) Monday() time.Time {
	jan4 := time.Date(p.Year, time.January, 4, 0, 0, 0, 0, timeutil.Location())
	wd := int(jan4.Weekday())
	if wd == 0 {
		wd = 7
	}
	week1Monday := jan4.AddDate(0, 0, 1-wd)
	return week1Monday.AddDate(0, 0, (p.Week-1)*7)
}

func (p Period) Sunday() time.Time {
	return p.Monday().AddDate(0, 0, 6)
}

// WorkingDates enumerates Monday through Saturday.
func (p Period) WorkingDates() []time.Time {
	monday := p.Monday()
	dates := make([]time.Time, 0, 6)
	for i := 0; i < 6; i++ {
		dates = append(dates, monday.AddDate(0, 0, i))
	}
	return dates
}

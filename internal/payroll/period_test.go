package payroll

import (
	"testing"
	"time"

	payrollerrors "github.com/SiwoTech/asistencias/internal/payroll/errors"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2026-W36")
	assert.NoError(t, err)
	assert.Equal(t, 2026, p.Year)
	assert.Equal(t, 36, p.Week)
	assert.Equal(t, "2026-W36", p.String())

	monday := p.Monday()
	assert.Equal(t, time.Monday, monday.Weekday())
	assert.Equal(t, "2026-08-31", monday.Format("2006-01-02"))
	assert.Equal(t, "2026-09-06", p.Sunday().Format("2006-01-02"))
}

func TestParsePeriod_Week53(t *testing.T) {
	// 2020 is a long ISO year, 2021 is not
	p, err := ParsePeriod("2020-W53")
	assert.NoError(t, err)
	assert.Equal(t, time.Monday, p.Monday().Weekday())

	_, err = ParsePeriod("2021-W53")
	assert.ErrorIs(t, err, payrollerrors.ErrInvalidPeriod)
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, input := range []string{"", "2026-36", "2026W36", "26-W36", "2026-W00", "2026-W54", "2026-w36", "periodo"} {
		_, err := ParsePeriod(input)
		assert.ErrorIs(t, err, payrollerrors.ErrInvalidPeriod, input)
	}
}

func TestPeriod_WorkingDatesExcludeSunday(t *testing.T) {
	p, err := ParsePeriod("2026-W36")
	assert.NoError(t, err)

	dates := p.WorkingDates()
	assert.Len(t, dates, 6)
	assert.Equal(t, time.Monday, dates[0].Weekday())
	assert.Equal(t, time.Saturday, dates[5].Weekday())
	for _, d := range dates {
		assert.NotEqual(t, time.Sunday, d.Weekday())
	}
}

func TestCurrentPeriod(t *testing.T) {
	p := CurrentPeriod(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-W36", p.String())
}

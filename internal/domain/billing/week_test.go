package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/tu-usuario/flota-pro/internal/domain/billing"
)

func TestWeekWindow_ISO(t *testing.T) {
	cases := []struct {
		year, week int
		wantStart  string
		wantEnd    string
	}{
		{2025, 1, "2024-12-30", "2025-01-05"},  // la semana 1 contiene el 4 de enero
		{2025, 27, "2025-06-30", "2025-07-06"},
		{2024, 52, "2024-12-23", "2024-12-29"},
		{2026, 1, "2025-12-29", "2026-01-04"},
	}
	for _, c := range cases {
		start, end := billing.WeekWindow(c.year, c.week)
		assert.Equal(t, c.wantStart, start.Format("2006-01-02"), "inicio semana %d/%d", c.week, c.year)
		assert.Equal(t, c.wantEnd, end.Format("2006-01-02"), "fin semana %d/%d", c.week, c.year)
		assert.Equal(t, time.Monday, start.Weekday())
		assert.Equal(t, time.Sunday, end.Weekday())
	}
}

func TestWeekWindow_ConsistenteConISOWeek(t *testing.T) {
	start, end := billing.WeekWindow(2025, 27)
	y, w := billing.CurrentWeek(start)
	assert.Equal(t, 2025, y)
	assert.Equal(t, 27, w)
	y, w = billing.CurrentWeek(end)
	assert.Equal(t, 27, w)
}

func TestDaysBilled_Limites(t *testing.T) {
	start, end := billing.WeekWindow(2025, 27)
	day := func(offset int) *time.Time {
		d := start.AddDate(0, 0, offset)
		return &d
	}

	cases := []struct {
		name       string
		aStart     *time.Time
		aEnd       *time.Time
		want       int
	}{
		{"semana completa sin límites", nil, nil, 7},
		{"inicio el mismo lunes", day(0), nil, 7},
		{"inicio el jueves", day(3), nil, 4},
		{"inicio el domingo", day(6), nil, 1},
		{"fin el miércoles", nil, day(2), 3},
		{"inicio y fin el mismo día", day(2), day(2), 1},
		{"asignación posterior al periodo", day(10), nil, 0},
		{"asignación terminada antes del periodo", nil, day(-3), 0},
		{"rango invertido", day(5), day(1), 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := billing.DaysBilled(c.aStart, c.aEnd, start, end)
			assert.Equal(t, c.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 7)
		})
	}
}

func TestFactor_Exacto(t *testing.T) {
	for days := 0; days <= 7; days++ {
		want := decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(7))
		assert.True(t, billing.Factor(days).Equal(want), "factor de %d días", days)
	}
}

func TestProrate_DivideAlFinal(t *testing.T) {
	weekly := decimal.NewFromInt(450000)
	// round(450000 × 4 / 7) = round(257142.857...) = 257143
	assert.True(t, billing.Prorate(weekly, 4).Equal(decimal.NewFromInt(257143)))
	assert.True(t, billing.Prorate(weekly, 7).Equal(weekly))
	assert.True(t, billing.Prorate(weekly, 0).IsZero())
}

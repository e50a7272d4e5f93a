package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// DaysPerWeek días del ciclo de facturación semanal.
const DaysPerWeek = 7

var seven = decimal.NewFromInt(DaysPerWeek)

// WeekWindow devuelve la ventana [lunes, domingo] de la semana ISO indicada.
// La semana 1 es la que contiene el 4 de enero (ISO 8601).
func WeekWindow(year, week int) (start, end time.Time) {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 { // domingo
		weekday = 7
	}
	monday1 := jan4.AddDate(0, 0, -(weekday - 1))
	start = monday1.AddDate(0, 0, (week-1)*DaysPerWeek)
	end = start.AddDate(0, 0, DaysPerWeek-1)
	return start, end
}

// CurrentWeek devuelve (año, semana ISO) de la fecha dada.
func CurrentWeek(t time.Time) (year, week int) {
	return t.ISOWeek()
}

// DaysBilled calcula los días facturables intersectando el rango activo de la
// asignación con la ventana del periodo, recortado a [0, 7]. Los extremos son
// inclusivos y se comparan a nivel de día (la hora se descarta).
// assignStart/assignEnd nulos = sin límite por ese extremo.
func DaysBilled(assignStart, assignEnd *time.Time, periodStart, periodEnd time.Time) int {
	from := truncateDay(periodStart)
	to := truncateDay(periodEnd)

	if assignStart != nil {
		if s := truncateDay(*assignStart); s.After(from) {
			from = s
		}
	}
	if assignEnd != nil {
		if e := truncateDay(*assignEnd); e.Before(to) {
			to = e
		}
	}
	if to.Before(from) {
		return 0
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if days < 0 {
		days = 0
	}
	if days > DaysPerWeek {
		days = DaysPerWeek
	}
	return days
}

// Factor devuelve el factor de prorrateo días/7.
func Factor(days int) decimal.Decimal {
	return decimal.NewFromInt(int64(days)).Div(seven)
}

// Prorate prorratea un monto semanal a los días facturados, redondeado a peso:
// round(monto × días / 7). Se divide al final para no arrastrar redondeos.
func Prorate(weekly decimal.Decimal, days int) decimal.Decimal {
	return weekly.Mul(decimal.NewFromInt(int64(days))).Div(seven).Round(0)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package service

import (
	"fmt"
	"time"
)

// Periodo is the bucket granularity of the metrics endpoints.
type Periodo string

const (
	PeriodoDia    Periodo = "day"
	PeriodoSemana Periodo = "week"
	PeriodoMes    Periodo = "month"
)

// ParsePeriodo accepts day, week or month. Empty means day.
func ParsePeriodo(s string) (Periodo, error) {
	switch Periodo(s) {
	case "", PeriodoDia:
		return PeriodoDia, nil
	case PeriodoSemana, PeriodoMes:
		return Periodo(s), nil
	}
	return "", validacion("period", fmt.Sprintf("valor %q invalido, use day, week o month", s))
}

// Clave returns the bucket key of t: YYYY-MM-DD, YYYY-Www (ISO week) or YYYY-MM.
// Keys sort lexicographically in chronological order.
func (p Periodo) Clave(t time.Time) string {
	t = t.UTC()
	switch p {
	case PeriodoSemana:
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case PeriodoMes:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// UltimasClaves returns the keys of the last n periods ending at the one
// containing now, oldest first.
func (p Periodo) UltimasClaves(now time.Time, n int) []string {
	now = now.UTC()
	hoy := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	claves := make([]string, 0, n)

	switch p {
	case PeriodoSemana:
		inicio := hoy.AddDate(0, 0, -7*(n-1))
		for i := 0; i < n; i++ {
			claves = append(claves, p.Clave(inicio.AddDate(0, 0, 7*i)))
		}
	case PeriodoMes:
		// month arithmetic by hand: AddDate normalizes Jan 31 - 1 month to Mar 3
		anio, mes := hoy.Year(), int(hoy.Month())
		for i := n - 1; i >= 0; i-- {
			m, a := mes-i, anio
			for m <= 0 {
				m += 12
				a--
			}
			claves = append(claves, fmt.Sprintf("%04d-%02d", a, m))
		}
	default:
		for i := n - 1; i >= 0; i-- {
			claves = append(claves, p.Clave(hoy.AddDate(0, 0, -i)))
		}
	}
	return claves
}

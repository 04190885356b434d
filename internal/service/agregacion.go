package service

// agregacion.go: pure aggregation over archived summaries. Nothing here
// touches the database; the report service loads rows and hands them in.

import (
	"sort"
	"strings"
	"time"

	"github.com/Empasex/Mini-POS/internal/dto"
	"github.com/Empasex/Mini-POS/internal/model"

	"github.com/shopspring/decimal"
)

// momentoEfectivo is the timestamp a summary is reported under:
// created_at, else min_hora, else now.
func momentoEfectivo(r model.ResumenArchivo, now time.Time) time.Time {
	if r.CreatedAt != nil && !r.CreatedAt.IsZero() {
		return *r.CreatedAt
	}
	if r.MinHora != nil && !r.MinHora.IsZero() {
		return *r.MinHora
	}
	return now
}

// agruparLotes folds summaries into one entry per batch, newest batch first.
// Batches without created_at sort last; ties keep first-seen order.
func agruparLotes(rows []model.ResumenArchivo) []dto.LoteResponse {
	idx := make(map[string]int)
	lotes := make([]dto.LoteResponse, 0)

	for _, r := range rows {
		i, ok := idx[r.BatchID]
		if !ok {
			i = len(lotes)
			idx[r.BatchID] = i
			lotes = append(lotes, dto.LoteResponse{
				BatchID:       r.BatchID,
				TotalIngresos: decimal.Zero,
				TotalGanancia: decimal.Zero,
			})
		}
		l := &lotes[i]
		if l.CreatedAt == nil && r.CreatedAt != nil {
			l.CreatedAt = r.CreatedAt
		}
		l.TotalIngresos = l.TotalIngresos.Add(r.Ingresos)
		l.TotalGanancia = l.TotalGanancia.Add(r.Ganancia)
		l.TotalItems += r.CantidadTotal
		if r.MinHora != nil && (l.MinHora == nil || r.MinHora.Before(*l.MinHora)) {
			l.MinHora = r.MinHora
		}
		if r.MaxHora != nil && (l.MaxHora == nil || r.MaxHora.After(*l.MaxHora)) {
			l.MaxHora = r.MaxHora
		}
	}

	sort.SliceStable(lotes, func(i, j int) bool {
		a, b := lotes[i].CreatedAt, lotes[j].CreatedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return lotes
}

type bucket struct {
	ingresos decimal.Decimal
	ganancia decimal.Decimal
	items    int
}

// agruparPorPeriodo buckets summaries by period key, ascending. Money is
// rounded to cents after summing.
func agruparPorPeriodo(rows []model.ResumenArchivo, p Periodo, now time.Time) []dto.MetricaPeriodo {
	buckets := make(map[string]*bucket)
	for _, r := range rows {
		k := p.Clave(momentoEfectivo(r, now))
		b, ok := buckets[k]
		if !ok {
			b = &bucket{ingresos: decimal.Zero, ganancia: decimal.Zero}
			buckets[k] = b
		}
		b.ingresos = b.ingresos.Add(r.Ingresos)
		b.ganancia = b.ganancia.Add(r.Ganancia)
		b.items += r.CantidadTotal
	}

	claves := make([]string, 0, len(buckets))
	for k := range buckets {
		claves = append(claves, k)
	}
	sort.Strings(claves)

	out := make([]dto.MetricaPeriodo, 0, len(claves))
	for _, k := range claves {
		b := buckets[k]
		out = append(out, dto.MetricaPeriodo{
			Period:   k,
			Ingresos: b.ingresos.Round(2),
			Ganancia: b.ganancia.Round(2),
			Items:    b.items,
		})
	}
	return out
}

// completarSerie lays metrics over the given keys, zero-filling gaps.
func completarSerie(metricas []dto.MetricaPeriodo, claves []string) []dto.MetricaPeriodo {
	porClave := make(map[string]dto.MetricaPeriodo, len(metricas))
	for _, m := range metricas {
		porClave[m.Period] = m
	}
	serie := make([]dto.MetricaPeriodo, 0, len(claves))
	for _, k := range claves {
		if m, ok := porClave[k]; ok {
			serie = append(serie, m)
			continue
		}
		serie = append(serie, dto.MetricaPeriodo{Period: k, Ingresos: decimal.Zero, Ganancia: decimal.Zero})
	}
	return serie
}

// sumarTotales adds up summaries whose effective time falls in [start, end].
// A nil bound is open.
func sumarTotales(rows []model.ResumenArchivo, start, end *time.Time, now time.Time) dto.TotalesResponse {
	ingresos, ganancia := decimal.Zero, decimal.Zero
	items := 0
	lotes := make(map[string]struct{})

	for _, r := range rows {
		ts := momentoEfectivo(r, now)
		if start != nil && ts.Before(*start) {
			continue
		}
		if end != nil && ts.After(*end) {
			continue
		}
		ingresos = ingresos.Add(r.Ingresos)
		ganancia = ganancia.Add(r.Ganancia)
		items += r.CantidadTotal
		if r.BatchID != "" {
			lotes[r.BatchID] = struct{}{}
		}
	}
	return dto.TotalesResponse{
		Ingresos: ingresos.Round(2),
		Ganancia: ganancia.Round(2),
		Items:    items,
		Batches:  len(lotes),
	}
}

var isoLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseISO accepts RFC 3339 timestamps with an offset, naive datetimes and
// plain dates. Naive values are taken as UTC; a plain date is midnight.
func parseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	var lastErr error
	for _, layout := range isoLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

package service

import (
	"testing"
	"time"

	"github.com/Empasex/Mini-POS/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resumen(batch string, creado, minHora *time.Time, cantidad int, ingresos, ganancia string) model.ResumenArchivo {
	return model.ResumenArchivo{
		BatchID:       batch,
		Grupo:         "g",
		CantidadTotal: cantidad,
		Ingresos:      dec(ingresos),
		Costos:        dec(ingresos).Sub(dec(ganancia)),
		Ganancia:      dec(ganancia),
		MinHora:       minHora,
		MaxHora:       minHora,
		CreatedAt:     creado,
	}
}

func TestMomentoEfectivo(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	creado := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	minHora := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, creado, momentoEfectivo(resumen("a", &creado, &minHora, 1, "1", "1"), now))
	assert.Equal(t, minHora, momentoEfectivo(resumen("a", nil, &minHora, 1, "1", "1"), now))
	assert.Equal(t, now, momentoEfectivo(resumen("a", nil, nil, 1, "1", "1"), now))
}

func TestAgruparLotes_OrdenYTotales(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	h1 := t1.Add(-time.Hour)
	h2 := t1.Add(-2 * time.Hour)

	rows := []model.ResumenArchivo{
		resumen("sin-fecha", nil, nil, 1, "1", "1"),
		resumen("viejo", &t1, &h1, 2, "10.50", "4"),
		resumen("viejo", &t1, &h2, 3, "4.50", "1"),
		resumen("nuevo", &t2, nil, 5, "20", "8"),
	}

	lotes := agruparLotes(rows)
	require.Len(t, lotes, 3)
	assert.Equal(t, "nuevo", lotes[0].BatchID)
	assert.Equal(t, "viejo", lotes[1].BatchID)
	assert.Equal(t, "sin-fecha", lotes[2].BatchID)
	assert.Nil(t, lotes[2].CreatedAt)

	viejo := lotes[1]
	assertDecimal(t, "15", viejo.TotalIngresos)
	assertDecimal(t, "5", viejo.TotalGanancia)
	assert.Equal(t, 5, viejo.TotalItems)
	require.NotNil(t, viejo.MinHora)
	require.NotNil(t, viejo.MaxHora)
	assert.Equal(t, h2, *viejo.MinHora)
	assert.Equal(t, h1, *viejo.MaxHora)
}

func TestAgruparLotes_Vacio(t *testing.T) {
	lotes := agruparLotes(nil)
	assert.NotNil(t, lotes)
	assert.Empty(t, lotes)
}

func TestAgruparPorPeriodo_RedondeaYOrdena(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	d1 := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	rows := []model.ResumenArchivo{
		resumen("a", &d1, nil, 1, "1.005", "0.335"),
		resumen("a", &d1, nil, 2, "2.001", "1.001"),
		resumen("b", &d2, nil, 4, "3", "1"),
	}

	got := agruparPorPeriodo(rows, PeriodoDia, now)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-03-10", got[0].Period)
	assert.Equal(t, 4, got[0].Items)
	assert.Equal(t, "2024-03-11", got[1].Period)
	assertDecimal(t, "3.01", got[1].Ingresos)
	assertDecimal(t, "1.34", got[1].Ganancia)
	assert.Equal(t, 3, got[1].Items)

	mes := agruparPorPeriodo(rows, PeriodoMes, now)
	require.Len(t, mes, 1)
	assert.Equal(t, "2024-03", mes[0].Period)
	assert.Equal(t, 7, mes[0].Items)
}

func TestCompletarSerie(t *testing.T) {
	d := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	metricas := agruparPorPeriodo([]model.ResumenArchivo{resumen("a", &d, nil, 2, "5", "2")}, PeriodoDia, d)

	serie := completarSerie(metricas, []string{"2024-03-09", "2024-03-10", "2024-03-11"})
	require.Len(t, serie, 3)
	assert.Equal(t, 0, serie[0].Items)
	assertDecimal(t, "0", serie[0].Ingresos)
	assert.Equal(t, 2, serie[1].Items)
	assert.Equal(t, "2024-03-11", serie[2].Period)
}

func TestSumarTotales_Rango(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	ene := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	rows := []model.ResumenArchivo{
		resumen("a", &ene, nil, 1, "10", "4"),
		resumen("b", &feb, nil, 2, "20", "5"),
		resumen("b", &feb, nil, 3, "5", "1"),
		resumen("c", &mar, nil, 4, "40", "10"),
	}

	todo := sumarTotales(rows, nil, nil, now)
	assertDecimal(t, "75", todo.Ingresos)
	assert.Equal(t, 10, todo.Items)
	assert.Equal(t, 3, todo.Batches)

	desde, hasta := feb, feb
	solo := sumarTotales(rows, &desde, &hasta, now)
	assertDecimal(t, "25", solo.Ingresos)
	assertDecimal(t, "6", solo.Ganancia)
	assert.Equal(t, 5, solo.Items)
	assert.Equal(t, 1, solo.Batches)

	inicio, fin := mar, ene
	vacio := sumarTotales(rows, &inicio, &fin, now)
	assertDecimal(t, "0", vacio.Ingresos)
	assert.Equal(t, 0, vacio.Items)
	assert.Equal(t, 0, vacio.Batches)
}

func TestParseISO(t *testing.T) {
	cases := map[string]time.Time{
		"2024-03-10":                time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		"2024-03-10T08:15":          time.Date(2024, 3, 10, 8, 15, 0, 0, time.UTC),
		"2024-03-10T08:15:30":       time.Date(2024, 3, 10, 8, 15, 30, 0, time.UTC),
		"2024-03-10 08:15:30.5":     time.Date(2024, 3, 10, 8, 15, 30, 500000000, time.UTC),
		"2024-03-10T08:15:30Z":      time.Date(2024, 3, 10, 8, 15, 30, 0, time.UTC),
		"2024-03-10T08:15:30-03:00": time.Date(2024, 3, 10, 11, 15, 30, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := parseISO(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s: want %s got %s", in, want, got)
	}

	for _, bad := range []string{"ayer", "2024-13-01", "10/03/2024", "2024-03-10T25:00"} {
		_, err := parseISO(bad)
		assert.Error(t, err, bad)
	}
}

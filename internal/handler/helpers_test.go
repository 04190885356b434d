package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Empasex/Mini-POS/internal/apierror"
	"github.com/Empasex/Mini-POS/internal/dto"
	"github.com/Empasex/Mini-POS/internal/middleware"
	"github.com/Empasex/Mini-POS/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveError(err error) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/", func(c *gin.Context) { respondError(c, err) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &service.ValidationError{Campo: "start", Motivo: "fecha invalida"}, http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("detalle: %w", service.ErrLoteNoEncontrado), http.StatusNotFound},
		{"busy", service.ErrArchivadoEnCurso, http.StatusConflict},
		{"computation", &service.ComputationError{Op: "metricas", Err: errors.New("connection reset")}, http.StatusInternalServerError},
		{"archival", &service.ArchivalError{Err: errors.New("deadlock")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serveError(tc.err)
			assert.Equal(t, tc.code, w.Code)
			assert.NotContains(t, w.Body.String(), "connection reset")
			assert.NotContains(t, w.Body.String(), "deadlock")
		})
	}
}

func TestRespondError_ValidationNamesField(t *testing.T) {
	w := serveError(&service.ValidationError{Campo: "end", Motivo: "fecha invalida"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body apierror.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Fields, "end")
}

func TestBindQueryAndValidate(t *testing.T) {
	var got dto.SerieQuery
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		got = dto.SerieQuery{}
		if bindQueryAndValidate(c, &got) {
			c.Status(http.StatusNoContent)
		}
	})
	call := func(q string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+q, nil))
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, call(""))
	assert.Equal(t, "day", got.Period)
	assert.Equal(t, 30, got.Last)

	assert.Equal(t, http.StatusNoContent, call("?period=month&last=12"))
	assert.Equal(t, "month", got.Period)
	assert.Equal(t, 12, got.Last)

	assert.Equal(t, http.StatusUnprocessableEntity, call("?period=quarter"))
	assert.Equal(t, http.StatusUnprocessableEntity, call("?last=0"))
	assert.Equal(t, http.StatusBadRequest, call("?last=many"))
}

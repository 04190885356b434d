package handler

import (
	"errors"
	"net/http"

	"github.com/Empasex/Mini-POS/internal/apierror"
	"github.com/Empasex/Mini-POS/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// bindQueryAndValidate binds the query string and runs go-playground/validator
// tags. A query that cannot be parsed (batch_size=abc) is 400; a parsed value
// that breaks a rule is 422, the same status respondError uses for
// service.ValidationError. Returns false once a response has been written.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(ves))
		for _, fe := range ves {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps service errors to HTTP responses. Unexpected errors are
// attached to the context so ErrorHandler logs the cause and writes the 500.
func respondError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewFieldError(vErr.Campo, vErr.Motivo))
	case errors.Is(err, service.ErrLoteNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New("batch not found"))
	case errors.Is(err, service.ErrArchivadoEnCurso):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Internal())
	}
}

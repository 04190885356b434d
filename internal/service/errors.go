package service

import (
	"errors"
	"fmt"
)

var (
	// ErrLoteNoEncontrado is returned when a batch id matches no summaries.
	ErrLoteNoEncontrado = errors.New("lote no encontrado")
	// ErrArchivadoEnCurso is returned when another archive run holds the lock.
	ErrArchivadoEnCurso = errors.New("ya hay un archivado en curso")
)

// ValidationError reports caller input the service refuses to act on.
type ValidationError struct {
	Campo  string
	Motivo string
}

func (e *ValidationError) Error() string {
	if e.Campo == "" {
		return e.Motivo
	}
	return fmt.Sprintf("%s: %s", e.Campo, e.Motivo)
}

func validacion(campo, motivo string) error {
	return &ValidationError{Campo: campo, Motivo: motivo}
}

// ArchivalError wraps any failure of the select/group/insert/delete sequence.
// The transaction has been rolled back when this is returned.
type ArchivalError struct {
	Err error
}

func (e *ArchivalError) Error() string { return "archivado fallido: " + e.Err.Error() }
func (e *ArchivalError) Unwrap() error { return e.Err }

// ComputationError wraps a store failure while computing a report.
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("error calculando %s: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// services/erros.go - Typed domain errors
package services

import (
	"errors"
	"fmt"
)

// ErrNaoEncontrado is the gateway-level sentinel for a missing record. The
// services translate it into a NotFoundError or StateConflictError depending
// on which record is missing.
var ErrNaoEncontrado = errors.New("registro não encontrado")

// ValidationError marks missing or malformed request fields (HTTP 400).
type ValidationError struct {
	Campo string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("campo obrigatório ausente ou inválido: %s", e.Campo)
}

// NotFoundError marks a referenced record that does not exist (HTTP 404).
type NotFoundError struct {
	Recurso string
	ID      string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s não encontrado", e.Recurso)
	}
	return fmt.Sprintf("%s não encontrado: %s", e.Recurso, e.ID)
}

// StateConflictError marks a business-rule conflict: inactive or expired
// challenge, duplicate join, leaving without participating (HTTP 400).
type StateConflictError struct {
	Motivo string
}

func (e *StateConflictError) Error() string {
	return e.Motivo
}

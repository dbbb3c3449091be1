package domain

import (
	"errors"
	"fmt"
)

// Kind - категория бизнес-ошибки
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindStorage      Kind = "storage_error"
)

// Error - ошибка с категорией и человекочитаемым сообщением
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сопоставляет ошибку с сентинелом категории (сентинел без сообщения)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Сентинелы категорий: errors.Is(err, domain.ErrNotFound)
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrInvalidState = &Error{Kind: KindInvalidState}
	ErrStorage      = &Error{Kind: KindStorage}
)

// Определение бизнес-ошибок
var (
	ErrUnitNotFound           = &Error{Kind: KindNotFound, Message: "unit not found"}
	ErrPositionNotFound       = &Error{Kind: KindNotFound, Message: "position not found"}
	ErrEmployeeNotFound       = &Error{Kind: KindNotFound, Message: "employee not found"}
	ErrSuperiorNotFound       = &Error{Kind: KindNotFound, Message: "superior employee not found"}
	ErrUserNotFound           = &Error{Kind: KindNotFound, Message: "user not found"}
	ErrRequesterNotFound      = &Error{Kind: KindNotFound, Message: "requester not found"}
	ErrValidatorNotFound      = &Error{Kind: KindNotFound, Message: "validator not found"}
	ErrChiefNotFound          = &Error{Kind: KindNotFound, Message: "resource chief not found"}
	ErrBeneficiaryNotFound    = &Error{Kind: KindNotFound, Message: "beneficiary employee not found"}
	ErrResourceNotFound       = &Error{Kind: KindNotFound, Message: "resource not found"}
	ErrRequestNotFound        = &Error{Kind: KindNotFound, Message: "request not found"}
	ErrValidationNotFound     = &Error{Kind: KindNotFound, Message: "validation not found"}
	ErrNotificationNotFound   = &Error{Kind: KindNotFound, Message: "notification not found"}
	ErrReassignTargetNotFound = &Error{Kind: KindNotFound, Message: "target unit for reassignment not found"}

	ErrOpenRequestExists   = &Error{Kind: KindConflict, Message: "resource already has an open request"}
	ErrResourceUnavailable = &Error{Kind: KindConflict, Message: "resource is not available"}
	ErrPositionOccupied    = &Error{Kind: KindConflict, Message: "position is already occupied"}
	ErrMatriculeExhausted  = &Error{Kind: KindConflict, Message: "matricule sequence exhausted for year"}
	ErrMatriculeContention = &Error{Kind: KindConflict, Message: "could not allocate matricule, too much contention"}
	ErrMatriculeTaken      = &Error{Kind: KindConflict, Message: "matricule already taken"}
	ErrDuplicateUsername   = &Error{Kind: KindConflict, Message: "username already taken"}
	ErrUserAlreadyLinked   = &Error{Kind: KindConflict, Message: "user is already linked to another employee"}
	ErrCyclicReference     = &Error{Kind: KindConflict, Message: "moving unit would create a cycle"}
	ErrCyclicSuperior      = &Error{Kind: KindConflict, Message: "superior chain would create a cycle"}

	ErrSelfReference           = &Error{Kind: KindValidation, Message: "unit cannot be its own parent"}
	ErrSelfSuperior            = &Error{Kind: KindValidation, Message: "employee cannot be their own superior"}
	ErrInvalidDeleteMode       = &Error{Kind: KindValidation, Message: "invalid delete mode"}
	ErrReassignTargetRequired  = &Error{Kind: KindValidation, Message: "reassign_to_unit_id is required when mode is reassign"}
	ErrCannotReassignToSelf    = &Error{Kind: KindValidation, Message: "cannot reassign positions to the unit being deleted"}
	ErrRejectionReasonRequired = &Error{Kind: KindValidation, Message: "rejection reason is required"}

	ErrValidationNotPending = &Error{Kind: KindInvalidState, Message: "validation is not pending"}
	ErrInvalidTransition    = &Error{Kind: KindInvalidState, Message: "resource state transition not allowed"}
	ErrResourceNotHeld      = &Error{Kind: KindInvalidState, Message: "resource is not held"}
	ErrEmployeeDisabled     = &Error{Kind: KindInvalidState, Message: "employee is disabled"}
)

// NewValidationError создаёт ошибку валидации входных данных
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewStorageError оборачивает сбой хранилища
func NewStorageError(err error) *Error {
	return &Error{Kind: KindStorage, Message: "storage failure", Err: err}
}

// KindOf возвращает категорию ошибки; всё нераспознанное считается сбоем хранилища
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

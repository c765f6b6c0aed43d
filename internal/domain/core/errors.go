package core

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicate         = errors.New("duplicate")
	ErrEmployeeActive    = errors.New("active employees cannot be deleted")
	ErrActiveAssignments = errors.New("employee has active client assignments")
)

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongPassword is returned when a login attempt does not match.
	ErrWrongPassword = errors.New("wrong password")
	// ErrNotManager is returned for editor operations on anonymous sessions.
	ErrNotManager = errors.New("manager session required")
	// ErrSessionNotFound is returned by session stores for unknown ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionCorrupt is returned by session stores for entries that no
	// longer decode.
	ErrSessionCorrupt = errors.New("session data is corrupt")
	// ErrConflict is returned when the stored document changed since it was loaded.
	ErrConflict = errors.New("stored config changed since it was loaded")
	// ErrUnknownDepartment matches any UnknownDepartmentError.
	ErrUnknownDepartment = errors.New("unknown department")
)

type UnknownDepartmentError struct {
	Name string
}

func (e *UnknownDepartmentError) Error() string {
	return fmt.Sprintf("unknown department %q", e.Name)
}

func (e *UnknownDepartmentError) Is(target error) bool {
	return target == ErrUnknownDepartment
}

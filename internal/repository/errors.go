package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned on unique-constraint violations
	ErrConflict = errors.New("record already exists")

	// ErrLastOwner is returned when an operation would leave a project
	// with no OWNER-role member
	ErrLastOwner = errors.New("project must keep at least one owner")
)

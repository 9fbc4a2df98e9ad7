package domain

import "fmt"

// ErrUnsupportedDocument is returned at build time when the document is not
// an OpenAPI 3.x document.
type ErrUnsupportedDocument struct {
	Reason string
}

func (e *ErrUnsupportedDocument) Error() string {
	return fmt.Sprintf("unsupported document: %s", e.Reason)
}

// ErrInvalidReference is returned when a $ref node does not carry a usable
// pointer string.
type ErrInvalidReference struct {
	Ref string
}

func (e *ErrInvalidReference) Error() string {
	return fmt.Sprintf("invalid reference: %s", e.Ref)
}

// ErrUnresolvedReference is returned when a pointer does not lead to a value
// in its document.
type ErrUnresolvedReference struct {
	Pointer string
}

func (e *ErrUnresolvedReference) Error() string {
	return fmt.Sprintf("unresolved reference: %s", e.Pointer)
}

// ErrCircularReference is returned for a ring of $ref nodes that never
// reaches a concrete value. Cycles that pass through concrete values are
// resolved, not errors.
type ErrCircularReference struct {
	Pointer string
}

func (e *ErrCircularReference) Error() string {
	return fmt.Sprintf("circular reference detected: %s", e.Pointer)
}

// ErrUnknownOperation is returned when an operation id is not present in the
// assembled API.
type ErrUnknownOperation struct {
	ID string
}

func (e *ErrUnknownOperation) Error() string {
	return fmt.Sprintf("unknown operation: %s", e.ID)
}

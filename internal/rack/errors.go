package rack

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyRegistered = errors.New("effect kind already registered")
	ErrKindMismatch      = errors.New("effect instance does not match kind")
)

// BusCreationError reports that the host could not allocate the effect bus.
type BusCreationError struct {
	Name string
	Err  error
}

func (e *BusCreationError) Error() string {
	return fmt.Sprintf("create bus %q: %v", e.Name, e.Err)
}

func (e *BusCreationError) Unwrap() error { return e.Err }

// UnknownKindError reports a lookup of a kind that was never registered.
type UnknownKindError struct {
	Kind Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("effect %s is not registered", e.Kind)
}

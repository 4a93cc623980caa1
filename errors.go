package intercept

import (
	"errors"
	"fmt"
)

// Configuration errors. Registration wraps these in a *ConfigError, so
// match them with errors.Is.
var (
	// ErrInvalidPriority is returned when a priority is outside
	// [PriorityMin, PriorityMax].
	ErrInvalidPriority = errors.New("priority must be between PriorityMin and PriorityMax")

	// ErrConflictingHook is returned when an instead callback is combined
	// with a before or after callback.
	ErrConflictingHook = errors.New("instead hooks cannot specify before or after callbacks")

	// ErrNilHook is returned when Patch is given a nil hook.
	ErrNilHook = errors.New("hook may not be nil")

	// ErrNilContainer is returned when the target container is nil.
	ErrNilContainer = errors.New("container may not be nil")

	// ErrUncomparableContainer is returned when the container cannot be
	// used as a registry key.
	ErrUncomparableContainer = errors.New("container must be comparable")

	// ErrEmptyName is returned when the member name is empty.
	ErrEmptyName = errors.New("member name must be a non-empty string")

	// ErrNoSuchMember is returned when the container has no member with
	// the given name.
	ErrNoSuchMember = errors.New("no such member")

	// ErrNotCallable is returned when the member exists but is not a
	// callable value.
	ErrNotCallable = errors.New("member is not callable")

	// ErrArgCount is returned by reflect-backed callables when the number of
	// arguments does not match the function signature.
	ErrArgCount = errors.New("argument count mismatch")
)

// ConfigError reports a rejected registration. No state was changed.
type ConfigError struct {
	Op     string
	Member string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("intercept: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("intercept: %s %s: %v", e.Op, e.Member, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// PanicError carries a value recovered from a panicking hook or original.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func configErr(op string, m Member, err error) error {
	name := ""
	if m.Container != nil || m.Name != "" {
		name = m.String()
	}
	return &ConfigError{Op: op, Member: name, Err: err}
}

package intercept

import (
	"fmt"

	"github.com/google/uuid"
)

// Priority orders hooks within a chain. Higher priorities run their before
// callback first and their after callback last.
type Priority int

const (
	PriorityMin     Priority = 0
	PriorityDefault Priority = 15
	PriorityMax     Priority = 30
)

// Valid reports whether p is within [PriorityMin, PriorityMax].
func (p Priority) Valid() bool {
	return p >= PriorityMin && p <= PriorityMax
}

// BeforeFunc runs before the original. args is the live argument slice
// (the same slice as c.Args()), so rewriting an element changes what later
// hooks and the original see. Calling c.SetResult or c.SetError skips the
// original and every lower priority hook.
//
// Returning an error, or panicking, is a fault: it is reported to the
// controller's ErrorHandler and the hook is treated as if it had not run.
//
// Example:
//
//	func(c *intercept.Context, args []any) error {
//	    args[0] = strings.TrimSpace(args[0].(string))
//	    return nil
//	}
type BeforeFunc func(c *Context, args []any) error

// AfterFunc runs after the original, or after the before hook that
// returned early. It may inspect and replace c.Result() or c.Err().
//
// Returning an error, or panicking, is a fault: the context's result and error
// are reverted to what they were before this hook ran.
//
// Example:
//
//	func(c *intercept.Context, args []any) error {
//	    if errors.Is(c.Err(), sql.ErrNoRows) {
//	        c.SetResult(nil)
//	    }
//	    return nil
//	}
type AfterFunc func(c *Context, args []any) error

// InsteadFunc replaces the original. Its return value becomes the result.
// A returned error is a fault, like a failing BeforeFunc; to make the call
// fail, register a BeforeFunc that calls c.SetError.
type InsteadFunc func(c *Context, args []any) (any, error)

func noop(*Context, []any) error { return nil }

// Hook is one registered before/after pair with a priority. Hooks are
// immutable; to change a priority, unregister and register a new hook.
type Hook struct {
	id       uuid.UUID
	priority Priority
	before   BeforeFunc
	after    AfterFunc
	instead  bool
}

// hookConfig collects HookOptions before validation.
type hookConfig struct {
	before   BeforeFunc
	after    AfterFunc
	instead  InsteadFunc
	priority Priority
}

// HookOption configures a Hook.
type HookOption func(*hookConfig)

// OnBefore sets the before callback.
func OnBefore(fn BeforeFunc) HookOption {
	return func(c *hookConfig) {
		c.before = fn
	}
}

// OnAfter sets the after callback.
func OnAfter(fn AfterFunc) HookOption {
	return func(c *hookConfig) {
		c.after = fn
	}
}

// OnInstead sets an instead callback. It cannot be combined with OnBefore or
// OnAfter.
func OnInstead(fn InsteadFunc) HookOption {
	return func(c *hookConfig) {
		c.instead = fn
	}
}

// WithPriority sets the hook priority. The default is PriorityDefault.
func WithPriority(p Priority) HookOption {
	return func(c *hookConfig) {
		c.priority = p
	}
}

// NewHook builds a Hook from options. It returns ErrInvalidPriority or
// ErrConflictingHook for invalid configurations.
//
// Example:
//
//	h, err := intercept.NewHook(
//	    intercept.OnBefore(validateArgs),
//	    intercept.OnAfter(recordLatency),
//	    intercept.WithPriority(intercept.PriorityMax),
//	)
func NewHook(opts ...HookOption) (*Hook, error) {
	cfg := hookConfig{priority: PriorityDefault}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !cfg.priority.Valid() {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPriority, cfg.priority)
	}

	h := &Hook{
		id:       uuid.New(),
		priority: cfg.priority,
		before:   noop,
		after:    noop,
	}

	if cfg.instead != nil {
		if cfg.before != nil || cfg.after != nil {
			return nil, ErrConflictingHook
		}
		instead := cfg.instead
		h.instead = true
		h.before = func(c *Context, args []any) error {
			v, err := instead(c, args)
			if err != nil {
				return err
			}
			c.SetResult(v)
			return nil
		}
		return h, nil
	}

	if cfg.before != nil {
		h.before = cfg.before
	}
	if cfg.after != nil {
		h.after = cfg.after
	}
	return h, nil
}

// ID returns the hook's unique id.
func (h *Hook) ID() uuid.UUID { return h.id }

// Priority returns the hook's priority.
func (h *Hook) Priority() Priority { return h.priority }

// Instead reports whether the hook was built from an instead callback.
func (h *Hook) Instead() bool { return h.instead }

func (h *Hook) String() string {
	return fmt.Sprintf("hook %s (priority %d)", h.id, h.priority)
}

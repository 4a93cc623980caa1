package intercept

import (
	"runtime/debug"
	"slices"
)

// Phase names the callback a hook fault happened in.
type Phase string

const (
	PhaseBefore Phase = "before"
	PhaseAfter  Phase = "after"
)

func (p Phase) String() string { return string(p) }

// faultFunc receives an isolated hook fault.
type faultFunc func(phase Phase, l link, err error)

// dispatch runs one intercepted call.
//
// Before callbacks run in chain order until one returns early. The original
// runs only if none did. After callbacks then run in reverse, starting at the
// hook that returned early (or the last hook), so each hook's after sees the
// effect of the original and of every higher priority hook, but not of the
// hooks it preempted.
func dispatch(m Member, links []link, original Func, recv any, args []any, fault faultFunc) (any, error) {
	if len(links) == 0 {
		return original(recv, args...)
	}

	c := newContext(m, recv, slices.Clone(args))

	idx := 0
	for ; idx < len(links); idx++ {
		l := links[idx]
		if err := guard(func() error { return l.hook.before(c, c.args) }); err != nil {
			fault(PhaseBefore, l, err)
			c.reset()
			continue
		}
		if c.returnEarly {
			idx++
			break
		}
	}

	if !c.returnEarly {
		var v any
		err := guard(func() error {
			var err error
			v, err = original(c.receiver, c.args...)
			return err
		})
		if err != nil {
			c.SetError(err)
		} else {
			c.SetResult(v)
		}
	}

	for idx--; idx >= 0; idx-- {
		l := links[idx]
		lastResult, lastErr := c.result, c.err
		if err := guard(func() error { return l.hook.after(c, c.args) }); err != nil {
			fault(PhaseAfter, l, err)
			c.restore(lastResult, lastErr)
		}
	}

	return c.Outcome()
}

// guard runs fn and converts a panic into a *PanicError.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}

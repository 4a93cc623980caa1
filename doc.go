// Package intercept lets independent observers hook calls to an existing
// callable member and run before, instead of, or after it.
//
// Hooks on one member form a chain ordered by priority. Every call runs the
// chain in two phases: before callbacks from the highest priority down,
// then the original, then after callbacks in exactly the reverse order of
// the before callbacks that ran. A faulting hook is reported and ignored;
// it never breaks the call or another hook.
//
// # Quick Start
//
// Put the callable in a container and register hooks on it:
//
//	calc := intercept.NewObject("calc")
//	calc.Define("add", func(recv any, args ...any) (any, error) {
//	    return args[0].(int) + args[1].(int), nil
//	})
//
//	c := intercept.New()
//
//	c.Before(calc, "add", func(ctx *intercept.Context, args []any) error {
//	    args[0] = 42
//	    return nil
//	})
//	c.After(calc, "add", func(ctx *intercept.Context, args []any) error {
//	    ctx.SetResult(ctx.Result().(int) * 2)
//	    return nil
//	})
//
//	v, _ := calc.Call("add", 1, 2) // (42 + 2) * 2 = 88
//
//	c.UnregisterAll() // calc.add is the original again
//
// # Containers
//
// A Container locates a named member and swaps it. Two are provided:
//
//   - Object: a dynamic map of named values; callables are *Method
//   - Fields: the exported func-typed fields of a struct, via reflection
//
// The first hook on a member replaces it with a wrapper that carries a copy
// of the original's Props. Removing the last hook copies the Props back and
// reinstalls the original *Method, so the swap is invisible to code that
// does not call the member.
//
// # Context
//
// Each call gets its own Context holding the receiver, the live argument
// slice, and a result or an error:
//
//   - SetResult and SetError are mutually exclusive; each clears the other
//   - Either one in a before callback skips the original and every lower
//     priority hook
//   - Either one in an after callback replaces the outcome
//
// During the backward walk the last write wins: a higher priority after
// callback runs later and overrides what lower priority ones set.
//
// # Priorities
//
// Priorities range from PriorityMin (0) to PriorityMax (30) with
// PriorityDefault (15). Hooks with equal priority run in registration order.
// Out of range priorities are rejected at registration.
//
//	c.Instead(calc, "add", cached, intercept.WithPriority(intercept.PriorityMax))
//
// # Faults
//
// A callback that returns an error or panics is a fault:
//
//   - before: the context is reset as if the hook had not run and the
//     chain continues
//   - after: the result and error revert to what they were before the hook
//
// Faults go to the controller's ErrorHandler (see WithErrorHandler); the
// default logs them with log/slog. An error returned by the original is not
// a fault: it becomes the context's error, which after callbacks may
// inspect or replace, and is returned to the caller otherwise.
//
// # Calling the Original
//
// CallThrough and CallOriginal reach the untouched callable no matter what
// hooks are installed:
//
//	v, err := c.CallThrough(calc.Get("add"), calc, 1, 2)
//	v, err = c.CallOriginal(calc, "add", 1, 2)
//
// # Reentrancy
//
// The chain is copied at the start of each call, so a hook that adds or
// removes hooks (including itself) affects later calls only. Recursive calls
// get a fresh Context. Dispatch holds no lock while hooks run, but the
// package is designed for one goroutine per call with no shared per-call
// state.
package intercept

package intercept

import (
	"log/slog"
	"slices"

	"github.com/google/uuid"
)

// Controller registers hooks on container members and keeps track of the
// handles it issued so they can be removed together.
//
// Usage:
//  1. Create a controller with New
//  2. Register hooks with Before, After, Instead, Hook or Patch
//  3. Call the member as usual; hooks run on every call
//  4. Remove hooks with Unregister, Handle.Unregister or UnregisterAll
//
// The first hook on a member installs a wrapper; removing the last one puts
// the original back. Controllers share interception state, so hooks from
// several controllers on one member form a single chain.
type Controller struct {
	id      uuid.UUID
	name    string
	logger  *slog.Logger
	onFault ErrorHandler
	hooks   hooks

	reg     *registry
	handles []*Handle
}

// New creates a Controller with the given options.
//
// Example:
//
//	c := intercept.New(
//	    intercept.WithName("audit"),
//	    intercept.WithErrorHandler(func(phase intercept.Phase, m intercept.Member, err error, h *intercept.Hook) {
//	        log.Printf("%s hook on %s failed: %v", phase, m, err)
//	    }),
//	)
func New(opts ...Option) *Controller {
	c := &Controller{
		id:     uuid.New(),
		logger: slog.Default(),
		reg:    defaultRegistry,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("controller", c.label())
	return c
}

// ID returns the controller's unique id.
func (c *Controller) ID() uuid.UUID { return c.id }

// Name returns the name set with WithName.
func (c *Controller) Name() string { return c.name }

// Before registers fn to run before the member.
//
// Example:
//
//	h, err := c.Before(obj, "add", func(ctx *intercept.Context, args []any) error {
//	    args[0] = 42
//	    return nil
//	})
func (c *Controller) Before(target Container, name string, fn BeforeFunc, opts ...HookOption) (*Handle, error) {
	return c.Hook(target, name, append([]HookOption{OnBefore(fn)}, opts...)...)
}

// After registers fn to run after the member.
//
// Example:
//
//	h, err := c.After(obj, "add", func(ctx *intercept.Context, args []any) error {
//	    ctx.SetResult(ctx.Result().(int) * 2)
//	    return nil
//	})
func (c *Controller) After(target Container, name string, fn AfterFunc, opts ...HookOption) (*Handle, error) {
	return c.Hook(target, name, append([]HookOption{OnAfter(fn)}, opts...)...)
}

// Instead registers fn to run in place of the member.
//
// Example:
//
//	h, err := c.Instead(obj, "add", func(ctx *intercept.Context, args []any) (any, error) {
//	    return 42, nil
//	}, intercept.WithPriority(intercept.PriorityMax))
func (c *Controller) Instead(target Container, name string, fn InsteadFunc, opts ...HookOption) (*Handle, error) {
	return c.Hook(target, name, append([]HookOption{OnInstead(fn)}, opts...)...)
}

// Hook builds a hook from opts and registers it on the member.
func (c *Controller) Hook(target Container, name string, opts ...HookOption) (*Handle, error) {
	m := Member{Container: target, Name: name}
	h, err := NewHook(opts...)
	if err != nil {
		return nil, configErr("hook", m, err)
	}
	return c.Patch(target, name, h)
}

// Patch registers a prebuilt hook on the member. Registering a hook that is
// already in the member's chain changes nothing; the returned handle still
// removes it.
func (c *Controller) Patch(target Container, name string, h *Hook) (*Handle, error) {
	m := Member{Container: target, Name: name}
	if err := validate(m); err != nil {
		return nil, configErr("patch", m, err)
	}
	if h == nil {
		return nil, configErr("patch", m, ErrNilHook)
	}

	added, installed, err := c.reg.add(m, link{hook: h, owner: c})
	if err != nil {
		return nil, configErr("patch", m, err)
	}

	if installed {
		c.logger.Debug("member intercepted", "member", m.String())
		for _, fn := range c.hooks.onInstall {
			fn(m)
		}
	}
	if !added {
		c.logger.Debug("hook already registered", "member", m.String(), "hook", h.ID())
		for _, fn := range c.hooks.onDuplicate {
			fn(m, h)
		}
	}

	handle := &Handle{id: uuid.New(), ctrl: c, member: m, hook: h}
	c.handles = append(c.handles, handle)
	return handle, nil
}

// Unregister removes the handle's hook from its member. It returns false
// when the hook was not registered, which is not an error. A handle issued
// by another controller is removed by that controller, with its callbacks
// and logger.
func (c *Controller) Unregister(h *Handle) bool {
	if h == nil {
		return false
	}
	owner := h.ctrl
	if i := slices.Index(owner.handles, h); i >= 0 {
		owner.handles = slices.Delete(owner.handles, i, i+1)
	}
	return owner.remove(h)
}

// UnregisterAll removes every hook registered through this controller and
// returns how many were removed. Members left without hooks are restored.
func (c *Controller) UnregisterAll() int {
	handles := c.handles
	c.handles = nil

	n := 0
	for _, h := range handles {
		if c.remove(h) {
			n++
		}
	}
	return n
}

// CallThrough calls callable on recv, bypassing every hook. callable may be
// a *Method, a Func or a func(any, ...any) (any, error). When it is the
// wrapper of an intercepted member, the member's original runs instead.
//
// Example:
//
//	v, err := c.CallThrough(obj.Get("add"), obj, 1, 2)
func (c *Controller) CallThrough(callable any, recv any, args ...any) (any, error) {
	switch fn := callable.(type) {
	case *Method:
		if fn == nil || fn.Fn == nil {
			return nil, ErrNotCallable
		}
		return c.reg.original(fn).Fn(recv, args...)
	case Func:
		if fn == nil {
			return nil, ErrNotCallable
		}
		return fn(recv, args...)
	case func(any, ...any) (any, error):
		if fn == nil {
			return nil, ErrNotCallable
		}
		return fn(recv, args...)
	default:
		return nil, ErrNotCallable
	}
}

// CallOriginal calls the original of the named member on the container's
// receiver, bypassing every hook.
func (c *Controller) CallOriginal(target Container, name string, args ...any) (any, error) {
	m := Member{Container: target, Name: name}
	if err := validate(m); err != nil {
		return nil, configErr("call", m, err)
	}
	orig, err := c.reg.originalOf(m)
	if err != nil {
		return nil, configErr("call", m, err)
	}
	return orig.Fn(target.Receiver(), args...)
}

// Hooks returns the member's hooks in execution order.
func (c *Controller) Hooks(target Container, name string) []*Hook {
	k := keyOf(Member{Container: target, Name: name})
	if !k.comparable() {
		return nil
	}
	return c.reg.hooks(k)
}

func (c *Controller) remove(h *Handle) bool {
	removed, restored, err := c.reg.remove(keyOf(h.member), h.hook)
	if err != nil {
		c.logger.Error("restore failed", "member", h.member.String(), "error", err)
	}
	if !removed {
		c.logger.Debug("hook not registered", "member", h.member.String(), "hook", h.hook.ID())
		return false
	}
	if restored {
		c.logger.Debug("member restored", "member", h.member.String())
		for _, fn := range c.hooks.onRestore {
			fn(h.member)
		}
	}
	return true
}

// fault reports an isolated hook fault.
func (c *Controller) fault(phase Phase, m Member, err error, h *Hook) {
	if c.onFault != nil {
		c.onFault(phase, m, err, h)
		return
	}
	c.logger.Error("hook failed",
		"phase", phase.String(),
		"member", m.String(),
		"hook", h.ID(),
		"priority", int(h.Priority()),
		"error", err,
	)
}

func (c *Controller) label() string {
	if c.name != "" {
		return c.name
	}
	return c.id.String()
}

func validate(m Member) error {
	if m.Container == nil {
		return ErrNilContainer
	}
	if m.Name == "" {
		return ErrEmptyName
	}
	if !keyOf(m).comparable() {
		return ErrUncomparableContainer
	}
	return nil
}

// Handle identifies one registration and removes it.
type Handle struct {
	id     uuid.UUID
	ctrl   *Controller
	member Member
	hook   *Hook
}

// ID returns the handle's unique id.
func (h *Handle) ID() uuid.UUID { return h.id }

// Hook returns the registered hook.
func (h *Handle) Hook() *Hook { return h.hook }

// Member returns the hooked member.
func (h *Handle) Member() Member { return h.member }

// Active reports whether the hook is still in the member's chain.
func (h *Handle) Active() bool {
	return h.ctrl.reg.active(keyOf(h.member), h.hook)
}

// Unregister removes the hook. See Controller.Unregister.
func (h *Handle) Unregister() bool {
	return h.ctrl.Unregister(h)
}

package intercept

import "log/slog"

// ErrorHandler receives a hook fault: a before or after callback that
// returned an error or panicked. It is called exactly once per fault and
// never for failures of the original.
type ErrorHandler func(phase Phase, member Member, err error, hook *Hook)

// OnInstallFunc is called after a wrapper is installed on a member.
type OnInstallFunc func(member Member)

// OnRestoreFunc is called after a member is restored to its original.
type OnRestoreFunc func(member Member)

// OnDuplicateFunc is called when a hook already in the member's chain is
// registered again.
type OnDuplicateFunc func(member Member, hook *Hook)

// hooks holds the controller's lifecycle callbacks.
type hooks struct {
	onInstall   []OnInstallFunc
	onRestore   []OnRestoreFunc
	onDuplicate []OnDuplicateFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithName sets a name used in log records.
func WithName(name string) Option {
	return func(c *Controller) {
		c.name = name
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithErrorHandler replaces the default fault handler, which logs the
// fault at error level.
//
// Example:
//
//	intercept.WithErrorHandler(func(phase intercept.Phase, m intercept.Member, err error, h *intercept.Hook) {
//	    metrics.Incr("hook.fault", "phase:"+phase.String(), "member:"+m.String())
//	})
func WithErrorHandler(fn ErrorHandler) Option {
	return func(c *Controller) {
		c.onFault = fn
	}
}

// WithOnInstall adds a callback run when a member is first intercepted.
// Multiple callbacks are called in order.
func WithOnInstall(fn OnInstallFunc) Option {
	return func(c *Controller) {
		c.hooks.onInstall = append(c.hooks.onInstall, fn)
	}
}

// WithOnRestore adds a callback run when a member's last hook is removed
// and the original is back in place. Multiple callbacks are called in order.
func WithOnRestore(fn OnRestoreFunc) Option {
	return func(c *Controller) {
		c.hooks.onRestore = append(c.hooks.onRestore, fn)
	}
}

// WithOnDuplicate adds a callback run when a hook is registered on a
// member whose chain already holds it. Multiple callbacks are called in
// order.
func WithOnDuplicate(fn OnDuplicateFunc) Option {
	return func(c *Controller) {
		c.hooks.onDuplicate = append(c.hooks.onDuplicate, fn)
	}
}

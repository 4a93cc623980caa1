package intercept

// Context is the mutable state of one intercepted call. A fresh Context is
// created for every call, including re-entrant ones.
//
// Result and error are mutually exclusive: setting one clears the other.
// Either setter marks the call as returning early, which makes the engine
// skip the original when the setter runs in a before hook.
type Context struct {
	member      Member
	receiver    any
	args        []any
	result      any
	err         error
	returnEarly bool
}

func newContext(m Member, recv any, args []any) *Context {
	return &Context{member: m, receiver: recv, args: args}
}

// Member returns the intercepted member.
func (c *Context) Member() Member { return c.member }

// Receiver returns the value the call was made on.
func (c *Context) Receiver() any { return c.receiver }

// Args returns the live argument slice. Writes to its elements are seen by
// later hooks and by the original.
func (c *Context) Args() []any { return c.args }

// Arg returns argument i, or nil when out of range.
func (c *Context) Arg(i int) any {
	if i < 0 || i >= len(c.args) {
		return nil
	}
	return c.args[i]
}

// SetArg replaces argument i. Out of range indexes are ignored.
func (c *Context) SetArg(i int, v any) {
	if i < 0 || i >= len(c.args) {
		return
	}
	c.args[i] = v
}

// Result returns the current result. It is nil until a hook or the
// original sets it.
func (c *Context) Result() any { return c.result }

// Err returns the current error.
func (c *Context) Err() error { return c.err }

// SetResult stores v as the result and clears the error.
func (c *Context) SetResult(v any) {
	c.result = v
	c.err = nil
	c.returnEarly = true
}

// SetError stores err as the error and clears the result. SetError(nil)
// leaves the call with a nil result and no error.
func (c *Context) SetError(err error) {
	c.err = err
	c.result = nil
	c.returnEarly = true
}

// ReturnEarly reports whether a result or error has been set.
func (c *Context) ReturnEarly() bool { return c.returnEarly }

// Outcome returns the error when one is set, otherwise the result.
func (c *Context) Outcome() (any, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

// reset discards an override made by a faulting before hook.
func (c *Context) reset() {
	c.result = nil
	c.err = nil
	c.returnEarly = false
}

// restore puts back a result/error pair taken before an after hook ran.
func (c *Context) restore(result any, err error) {
	c.result = result
	c.err = err
}

package intercept

import (
	"fmt"
	"maps"
	"slices"
)

// Object is a dynamic container of named values. Callable members are
// stored as *Method; any other value is data and cannot be intercepted.
//
// Example:
//
//	calc := intercept.NewObject("calc")
//	calc.Define("add", func(recv any, args ...any) (any, error) {
//	    return args[0].(int) + args[1].(int), nil
//	})
//	v, _ := calc.Call("add", 1, 2) // 3
type Object struct {
	name    string
	members map[string]any
}

// NewObject creates an empty object. name is used when printing members.
func NewObject(name string) *Object {
	return &Object{name: name, members: make(map[string]any)}
}

// Set stores v under name. Func and func(any, ...any) (any, error) values
// are wrapped in a *Method.
func (o *Object) Set(name string, v any) {
	switch fn := v.(type) {
	case Func:
		v = NewMethod(fn)
	case func(any, ...any) (any, error):
		v = NewMethod(fn)
	}
	o.members[name] = v
}

// Define stores fn under name and returns its Method.
func (o *Object) Define(name string, fn Func) *Method {
	m := NewMethod(fn)
	o.members[name] = m
	return m
}

// Get returns the value stored under name, or nil.
func (o *Object) Get(name string) any {
	return o.members[name]
}

// Names returns the member names in sorted order.
func (o *Object) Names() []string {
	return slices.Sorted(maps.Keys(o.members))
}

// Call invokes the named member with the object as receiver.
func (o *Object) Call(name string, args ...any) (any, error) {
	m, err := o.Method(name)
	if err != nil {
		return nil, err
	}
	return m.Fn(o, args...)
}

// Receiver implements Container.
func (o *Object) Receiver() any { return o }

// Method implements Container.
func (o *Object) Method(name string) (*Method, error) {
	if o == nil {
		return nil, ErrNilContainer
	}
	v, ok := o.members[name]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchMember, name)
	}
	m, ok := v.(*Method)
	if !ok || m == nil || m.Fn == nil {
		return nil, fmt.Errorf("%w: %s is %T", ErrNotCallable, name, v)
	}
	return m, nil
}

// SetMethod implements Container.
func (o *Object) SetMethod(name string, m *Method) error {
	if o == nil {
		return ErrNilContainer
	}
	o.members[name] = m
	return nil
}

func (o *Object) String() string {
	if o == nil || o.name == "" {
		return "object"
	}
	return o.name
}

package intercept

import "fmt"

// Func is the shape of an interceptable callable. recv is the receiver the
// call is made on; a non-nil error is the callable's failure.
type Func func(recv any, args ...any) (any, error)

// Method is a callable member together with its attached properties. A
// Method is identified by its pointer: restoring a member puts the same
// *Method back.
type Method struct {
	Fn    Func
	Props Props
}

// NewMethod wraps fn in a Method with an empty property bag.
func NewMethod(fn Func) *Method {
	return &Method{Fn: fn}
}

// Call invokes the method on recv.
func (m *Method) Call(recv any, args ...any) (any, error) {
	return m.Fn(recv, args...)
}

// Container locates and swaps named members.
//
// Implementations must be comparable (pointer types), since the registry
// keys entries by container and member name. Registration rejects other
// types with ErrUncomparableContainer.
type Container interface {
	// Receiver returns the value passed as recv when a member is called.
	Receiver() any

	// Method returns the callable currently installed under name, or
	// ErrNoSuchMember / ErrNotCallable.
	Method(name string) (*Method, error)

	// SetMethod installs m under name.
	SetMethod(name string, m *Method) error
}

// Member identifies one named member of a container.
type Member struct {
	Container Container
	Name      string
}

func (m Member) String() string {
	switch c := m.Container.(type) {
	case nil:
		return m.Name
	case fmt.Stringer:
		return c.String() + "." + m.Name
	default:
		return fmt.Sprintf("%T.%s", c, m.Name)
	}
}

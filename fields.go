package intercept

import (
	"fmt"
	"math"
	"reflect"

	"github.com/spf13/cast"
)

var errorType = reflect.TypeFor[error]()

// Fields exposes the exported func-typed fields of a struct as members, so
// ordinary Go values can be intercepted:
//
//	type Client struct {
//	    Fetch func(ctx context.Context, id string) (*User, error)
//	}
//
//	fields, _ := intercept.StructFields(client)
//	c.Before(fields, "Fetch", logRequest)
//	user, err := client.Fetch(ctx, "42") // runs logRequest first
//
// Hooks see the arguments as []any. Values a hook writes are converted back
// to the parameter type, using cast for basic kinds, so writing 42 into a
// float64 parameter works. If the func's last result is an error, a failed
// call returns it; otherwise the wrapper panics with it. Functions with
// several non-error results take and produce their results as []any.
type Fields struct {
	ptr       any
	value     reflect.Value
	installed map[string]*Method
	bases     map[string]fieldBase
}

// fieldBase is the func value a field held when its Method was built.
type fieldBase struct {
	method *Method
	value  reflect.Value
}

// StructFields returns a container over the struct ptr points to.
func StructFields(ptr any) (*Fields, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("intercept: need a non-nil struct pointer, got %T", ptr)
	}
	return &Fields{
		ptr:       ptr,
		value:     v.Elem(),
		installed: make(map[string]*Method),
		bases:     make(map[string]fieldBase),
	}, nil
}

// Receiver implements Container. It returns the struct pointer.
func (f *Fields) Receiver() any { return f.ptr }

// identity keys registry entries by the struct pointer, so every Fields over
// one struct shares a chain per field.
func (f *Fields) identity() any { return f.ptr }

// Method implements Container.
func (f *Fields) Method(name string) (*Method, error) {
	fv, err := f.field(name)
	if err != nil {
		return nil, err
	}
	if m, ok := f.installed[name]; ok {
		return m, nil
	}
	if fv.IsNil() {
		return nil, fmt.Errorf("%w: %s is nil", ErrNotCallable, name)
	}

	snap := reflect.ValueOf(fv.Interface())
	m := NewMethod(funcOf(snap))
	f.bases[name] = fieldBase{method: m, value: snap}
	return m, nil
}

// SetMethod implements Container. Passing back the Method returned by
// Method restores the field's original func value.
func (f *Fields) SetMethod(name string, m *Method) error {
	fv, err := f.field(name)
	if err != nil {
		return err
	}
	if b, ok := f.bases[name]; ok && b.method == m {
		fv.Set(b.value)
		delete(f.installed, name)
		return nil
	}
	fv.Set(wrapFunc(fv.Type(), f.ptr, m))
	f.installed[name] = m
	return nil
}

func (f *Fields) String() string {
	return f.value.Type().String()
}

func (f *Fields) field(name string) (reflect.Value, error) {
	sf, ok := f.value.Type().FieldByName(name)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrNoSuchMember, name)
	}
	if !sf.IsExported() || sf.Type.Kind() != reflect.Func {
		return reflect.Value{}, fmt.Errorf("%w: %s is %s", ErrNotCallable, name, sf.Type)
	}
	fv, err := f.value.FieldByIndexErr(sf.Index)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %s: %v", ErrNoSuchMember, name, err)
	}
	if !fv.CanSet() {
		return reflect.Value{}, fmt.Errorf("%w: %s is not settable", ErrNotCallable, name)
	}
	return fv, nil
}

// funcOf adapts a func value to Func.
func funcOf(fn reflect.Value) Func {
	t := fn.Type()
	return func(_ any, args ...any) (any, error) {
		in, err := inValues(t, args)
		if err != nil {
			return nil, err
		}
		return outAny(t, fn.Call(in))
	}
}

// wrapFunc builds a func of type t that routes calls through m.
func wrapFunc(t reflect.Type, recv any, m *Method) reflect.Value {
	return reflect.MakeFunc(t, func(in []reflect.Value) []reflect.Value {
		v, err := m.Fn(recv, inAny(t, in)...)
		out, err := outValues(t, v, err)
		if err != nil {
			panic(err)
		}
		return out
	})
}

func inValues(t reflect.Type, args []any) ([]reflect.Value, error) {
	n := t.NumIn()
	if t.IsVariadic() {
		if len(args) < n-1 {
			return nil, fmt.Errorf("%w: want at least %d, got %d", ErrArgCount, n-1, len(args))
		}
	} else if len(args) != n {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrArgCount, n, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		pt := t.In(min(i, n-1))
		if t.IsVariadic() && i >= n-1 {
			pt = pt.Elem()
		}
		v, err := coerce(a, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in[i] = v
	}
	return in, nil
}

func inAny(t reflect.Type, in []reflect.Value) []any {
	args := make([]any, 0, len(in))
	for i, v := range in {
		if t.IsVariadic() && i == len(in)-1 {
			for j := range v.Len() {
				args = append(args, v.Index(j).Interface())
			}
			break
		}
		args = append(args, v.Interface())
	}
	return args
}

func outAny(t reflect.Type, out []reflect.Value) (any, error) {
	var err error
	if n := len(out); n > 0 && t.Out(n-1) == errorType {
		err, _ = out[n-1].Interface().(error)
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	default:
		vals := make([]any, len(out))
		for i, v := range out {
			vals[i] = v.Interface()
		}
		return vals, err
	}
}

// outValues converts an outcome to the results of t. The returned error is
// non-nil only when t has no error result to carry it.
func outValues(t reflect.Type, v any, err error) ([]reflect.Value, error) {
	n := t.NumOut()
	hasErr := n > 0 && t.Out(n-1) == errorType
	k := n
	if hasErr {
		k--
	}

	out := make([]reflect.Value, n)
	fail := func(e error) ([]reflect.Value, error) {
		if !hasErr {
			return nil, e
		}
		for i := range k {
			out[i] = reflect.Zero(t.Out(i))
		}
		ev := reflect.New(errorType).Elem()
		ev.Set(reflect.ValueOf(e))
		out[k] = ev
		return out, nil
	}

	if err != nil {
		return fail(err)
	}

	switch {
	case k == 1:
		rv, cerr := coerce(v, t.Out(0))
		if cerr != nil {
			return fail(fmt.Errorf("result: %w", cerr))
		}
		out[0] = rv
	case k > 1:
		vals, ok := v.([]any)
		if v != nil && (!ok || len(vals) != k) {
			return fail(fmt.Errorf("result: want %d values, got %T", k, v))
		}
		for i := range k {
			var a any
			if v != nil {
				a = vals[i]
			}
			rv, cerr := coerce(a, t.Out(i))
			if cerr != nil {
				return fail(fmt.Errorf("result %d: %w", i, cerr))
			}
			out[i] = rv
		}
	}

	if hasErr {
		out[k] = reflect.Zero(errorType)
	}
	return out, nil
}

// coerce converts a to t.
func coerce(a any, t reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(t) {
		return v, nil
	}

	c, ok, err := castTo(a, t)
	if ok && err == nil {
		return c, nil
	}
	if v.Type().ConvertibleTo(t) && !intToString(v.Type(), t) {
		if overflows(v, t) {
			return reflect.Value{}, fmt.Errorf("%v overflows %s", a, t)
		}
		return v.Convert(t), nil
	}
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", a, t)
}

func castTo(a any, t reflect.Type) (reflect.Value, bool, error) {
	var (
		out any
		err error
	)
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out, err = cast.ToInt64E(a)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		out, err = cast.ToUint64E(a)
	case reflect.Float32, reflect.Float64:
		out, err = cast.ToFloat64E(a)
	case reflect.String:
		out, err = cast.ToStringE(a)
	case reflect.Bool:
		out, err = cast.ToBoolE(a)
	default:
		return reflect.Value{}, false, nil
	}
	if err != nil {
		return reflect.Value{}, true, err
	}
	if overflows(reflect.ValueOf(out), t) {
		return reflect.Value{}, true, fmt.Errorf("%v overflows %s", a, t)
	}
	return reflect.ValueOf(out).Convert(t), true, nil
}

// overflows reports whether the numeric value v is out of range for t.
func overflows(v reflect.Value, t reflect.Type) bool {
	z := reflect.Zero(t)
	switch {
	case z.CanInt():
		switch {
		case v.CanInt():
			return z.OverflowInt(v.Int())
		case v.CanUint():
			return v.Uint() > math.MaxInt64 || z.OverflowInt(int64(v.Uint()))
		}
	case z.CanUint():
		switch {
		case v.CanInt():
			return v.Int() < 0 || z.OverflowUint(uint64(v.Int()))
		case v.CanUint():
			return z.OverflowUint(v.Uint())
		}
	case z.CanFloat():
		if v.CanFloat() {
			return z.OverflowFloat(v.Float())
		}
	}
	return false
}

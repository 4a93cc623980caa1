package intercept

import (
	"reflect"
	"sync"
)

// key identifies an intercepted member. id is the container itself, or the
// value it views when it implements identifier.
type key struct {
	id   any
	name string
}

// identifier is implemented by containers that are views over another
// value, so that every view of that value maps to the same entries.
type identifier interface {
	identity() any
}

func keyOf(m Member) key {
	var id any = m.Container
	if v, ok := m.Container.(identifier); ok {
		id = v.identity()
	}
	return key{id: id, name: m.Name}
}

// comparable reports whether k can be used as a registry key.
func (k key) comparable() bool {
	return k.id != nil && reflect.TypeOf(k.id).Comparable()
}

// entry is the interception state of one member while any hook is active.
type entry struct {
	member   Member
	original *Method
	wrapper  *Method
	chain    chain
}

// installed reports whether the member still holds e's wrapper. Lookups go
// through the container that installed it.
func (e *entry) installed() bool {
	cur, err := e.member.Container.Method(e.member.Name)
	return err == nil && cur == e.wrapper
}

// registry tracks every intercepted member in the process. It is shared by
// all controllers so that two controllers hooking the same member grow one
// chain instead of wrapping each other's wrapper.
//
// mu guards the maps and the chains. It is never held while hooks or the
// original run.
type registry struct {
	mu        sync.Mutex
	entries   map[key]*entry
	byWrapper map[*Method]*entry
}

var defaultRegistry = newRegistry()

func newRegistry() *registry {
	return &registry{
		entries:   make(map[key]*entry),
		byWrapper: make(map[*Method]*entry),
	}
}

// add registers l on the member, installing a wrapper on first use. It
// reports whether the hook was added (false for a duplicate) and whether a
// wrapper was installed.
//
// An entry whose wrapper is no longer installed, because the member was
// replaced behind the registry's back, is dropped and the current callable
// is intercepted afresh.
func (r *registry) add(m Member, l link) (added, installed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := keyOf(m)
	if e, ok := r.entries[k]; ok {
		if e.installed() {
			return e.chain.add(l), false, nil
		}
		delete(r.entries, k)
		delete(r.byWrapper, e.wrapper)
	}

	original, err := m.Container.Method(m.Name)
	if err != nil {
		return false, false, err
	}
	if original == nil || original.Fn == nil {
		return false, false, ErrNotCallable
	}

	e := &entry{member: m, original: original}
	e.wrapper = &Method{
		Fn: func(recv any, args ...any) (any, error) {
			return r.dispatch(e, recv, args)
		},
		Props: original.Props.Clone(),
	}
	if err := m.Container.SetMethod(m.Name, e.wrapper); err != nil {
		return false, false, err
	}

	e.chain.add(l)
	r.entries[k] = e
	r.byWrapper[e.wrapper] = e
	return true, true, nil
}

// remove unregisters h from the member and restores the original when the
// chain empties. A member that no longer holds the wrapper is left alone.
func (r *registry) remove(k key, h *Hook) (removed, restored bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[k]
	if !ok || !e.chain.remove(h) {
		return false, false, nil
	}
	if e.chain.len() > 0 {
		return true, false, nil
	}

	delete(r.entries, k)
	delete(r.byWrapper, e.wrapper)

	if !e.installed() {
		return true, false, nil
	}
	e.original.Props = e.wrapper.Props.Clone()
	if err := e.member.Container.SetMethod(e.member.Name, e.original); err != nil {
		return true, false, err
	}
	return true, true, nil
}

// active reports whether h is in the member's chain.
func (r *registry) active(k key, h *Hook) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[k]
	return ok && e.chain.contains(h)
}

// hooks returns the member's hooks in chain order.
func (r *registry) hooks(k key) []*Hook {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[k]
	if !ok {
		return nil
	}
	return e.chain.hooks()
}

// original returns the untouched callable behind a wrapper, or m itself.
func (r *registry) original(m *Method) *Method {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.byWrapper[m]; ok {
		return e.original
	}
	return m
}

// originalOf returns the untouched callable of a member, intercepted or not.
func (r *registry) originalOf(m Member) (*Method, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[keyOf(m)]; ok && e.installed() {
		return e.original, nil
	}
	return m.Container.Method(m.Name)
}

func (r *registry) dispatch(e *entry, recv any, args []any) (any, error) {
	r.mu.Lock()
	links := e.chain.snapshot()
	r.mu.Unlock()

	return dispatch(e.member, links, e.original.Fn, recv, args, func(phase Phase, l link, err error) {
		l.owner.fault(phase, e.member, err, l.hook)
	})
}

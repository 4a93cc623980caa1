package intercept

import (
	"cmp"
	"slices"
)

// link is one chain element: the hook and the controller that registered
// it, whose ErrorHandler receives the hook's faults.
type link struct {
	hook  *Hook
	owner *Controller
}

// chain holds the hooks of one member ordered by descending priority.
// Hooks with equal priority keep registration order.
type chain struct {
	links []link
}

// add inserts l unless its hook is already present.
func (c *chain) add(l link) bool {
	if c.index(l.hook) >= 0 {
		return false
	}
	c.links = append(c.links, l)
	slices.SortStableFunc(c.links, func(a, b link) int {
		return cmp.Compare(b.hook.priority, a.hook.priority)
	})
	return true
}

// remove deletes h, keeping the order of the rest.
func (c *chain) remove(h *Hook) bool {
	i := c.index(h)
	if i < 0 {
		return false
	}
	c.links = slices.Delete(c.links, i, i+1)
	return true
}

func (c *chain) contains(h *Hook) bool {
	return c.index(h) >= 0
}

func (c *chain) len() int {
	return len(c.links)
}

// snapshot copies the current order for one dispatch.
func (c *chain) snapshot() []link {
	return slices.Clone(c.links)
}

func (c *chain) hooks() []*Hook {
	out := make([]*Hook, len(c.links))
	for i, l := range c.links {
		out[i] = l.hook
	}
	return out
}

func (c *chain) index(h *Hook) int {
	return slices.IndexFunc(c.links, func(l link) bool { return l.hook == h })
}

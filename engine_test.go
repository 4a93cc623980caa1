package intercept

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type fault struct {
	phase Phase
	hook  *Hook
	err   error
}

type DispatchSuite struct {
	suite.Suite

	member   Member
	faults   []fault
	calls    int
	original Func
}

func TestDispatchSuite(t *testing.T) {
	suite.Run(t, new(DispatchSuite))
}

func (s *DispatchSuite) SetupTest() {
	s.member = Member{Name: "add"}
	s.faults = nil
	s.calls = 0
	s.original = func(recv any, args ...any) (any, error) {
		s.calls++
		return args[0].(int) + args[1].(int), nil
	}
}

func (s *DispatchSuite) run(hooks []*Hook, args ...any) (any, error) {
	links := make([]link, len(hooks))
	for i, h := range hooks {
		links[i] = link{hook: h}
	}
	return dispatch(s.member, links, s.original, nil, args, func(phase Phase, l link, err error) {
		s.faults = append(s.faults, fault{phase: phase, hook: l.hook, err: err})
	})
}

func (s *DispatchSuite) hook(opts ...HookOption) *Hook {
	h, err := NewHook(opts...)
	s.Require().NoError(err)
	return h
}

func (s *DispatchSuite) TestEmptyChainCallsOriginal() {
	v, err := s.run(nil, 1, 2)

	s.Require().NoError(err)
	s.Assert().Equal(3, v)
	s.Assert().Equal(1, s.calls)
}

func (s *DispatchSuite) TestAfterRunsInReverseOfBefore() {
	var order []string
	record := func(name string) []HookOption {
		return []HookOption{
			OnBefore(func(*Context, []any) error {
				order = append(order, "before:"+name)
				return nil
			}),
			OnAfter(func(*Context, []any) error {
				order = append(order, "after:"+name)
				return nil
			}),
		}
	}

	_, err := s.run([]*Hook{s.hook(record("a")...), s.hook(record("b")...)}, 1, 2)

	s.Require().NoError(err)
	s.Assert().Equal([]string{"before:a", "before:b", "after:b", "after:a"}, order)
}

func (s *DispatchSuite) TestEarlyReturnSkipsOriginalAndLowerHooks() {
	var order []string
	high := s.hook(
		OnBefore(func(*Context, []any) error { order = append(order, "before:high"); return nil }),
		OnAfter(func(*Context, []any) error { order = append(order, "after:high"); return nil }),
	)
	mid := s.hook(
		OnBefore(func(c *Context, _ []any) error {
			order = append(order, "before:mid")
			c.SetResult(42)
			return nil
		}),
		OnAfter(func(*Context, []any) error { order = append(order, "after:mid"); return nil }),
	)
	low := s.hook(
		OnBefore(func(*Context, []any) error { order = append(order, "before:low"); return nil }),
		OnAfter(func(*Context, []any) error { order = append(order, "after:low"); return nil }),
	)

	v, err := s.run([]*Hook{high, mid, low}, 1, 2)

	s.Require().NoError(err)
	s.Assert().Equal(42, v)
	s.Assert().Zero(s.calls)
	s.Assert().Equal([]string{"before:high", "before:mid", "after:mid", "after:high"}, order)
}

func (s *DispatchSuite) TestBeforeErrorIsIsolated() {
	boom := errors.New("boom")
	var lowRan bool
	bad := s.hook(OnBefore(func(c *Context, _ []any) error {
		c.SetResult(99)
		return boom
	}))
	low := s.hook(OnBefore(func(*Context, []any) error {
		lowRan = true
		return nil
	}))

	v, err := s.run([]*Hook{bad, low}, 1, 2)

	s.Require().NoError(err)
	s.Assert().Equal(3, v, "faulting hook must not short-circuit")
	s.Assert().True(lowRan)
	s.Assert().Equal(1, s.calls)
	s.Require().Len(s.faults, 1)
	s.Assert().Equal(PhaseBefore, s.faults[0].phase)
	s.Assert().Same(bad, s.faults[0].hook)
	s.Assert().ErrorIs(s.faults[0].err, boom)
}

func (s *DispatchSuite) TestBeforePanicIsIsolated() {
	bad := s.hook(OnBefore(func(*Context, []any) error { panic("kaboom") }))

	v, err := s.run([]*Hook{bad}, 1, 2)

	s.Require().NoError(err)
	s.Assert().Equal(3, v)
	s.Require().Len(s.faults, 1)
	var pe *PanicError
	s.Require().ErrorAs(s.faults[0].err, &pe)
	s.Assert().Equal("kaboom", pe.Value)
}

func (s *DispatchSuite) TestAfterErrorRevertsContext() {
	var seen any
	high := s.hook(OnAfter(func(c *Context, _ []any) error {
		seen = c.Result()
		return nil
	}))
	bad := s.hook(OnAfter(func(c *Context, _ []any) error {
		c.SetError(errors.New("overwritten"))
		return errors.New("after failed")
	}))

	v, err := s.run([]*Hook{high, bad}, 1, 2)

	s.Require().NoError(err)
	s.Assert().Equal(3, v)
	s.Assert().Equal(3, seen, "earlier-indexed after hook sees the reverted state")
	s.Require().Len(s.faults, 1)
	s.Assert().Equal(PhaseAfter, s.faults[0].phase)
	s.Assert().Same(bad, s.faults[0].hook)
}

func (s *DispatchSuite) TestAfterPanicRevertsError() {
	origErr := errors.New("original failed")
	s.original = func(any, ...any) (any, error) { return nil, origErr }
	bad := s.hook(OnAfter(func(c *Context, _ []any) error {
		c.SetResult("recovered")
		panic("nope")
	}))

	_, err := s.run([]*Hook{bad}, 1, 2)

	s.Assert().ErrorIs(err, origErr)
	s.Assert().Len(s.faults, 1)
}

func (s *DispatchSuite) TestOriginalErrorIsNotAFault() {
	origErr := errors.New("original failed")
	s.original = func(any, ...any) (any, error) { return nil, origErr }
	var seen error
	observer := s.hook(OnAfter(func(c *Context, _ []any) error {
		seen = c.Err()
		return nil
	}))

	v, err := s.run([]*Hook{observer}, 1, 2)

	s.Assert().Nil(v)
	s.Assert().Same(origErr, err)
	s.Assert().Same(origErr, seen)
	s.Assert().Empty(s.faults)
}

func (s *DispatchSuite) TestAfterCanRecoverOriginalError() {
	s.original = func(any, ...any) (any, error) { return nil, errors.New("original failed") }
	recoverer := s.hook(OnAfter(func(c *Context, _ []any) error {
		if c.Err() != nil {
			c.SetResult(0)
		}
		return nil
	}))

	v, err := s.run([]*Hook{recoverer}, 1, 2)

	s.Require().NoError(err)
	s.Assert().Equal(0, v)
}

func (s *DispatchSuite) TestOriginalPanicBecomesError() {
	s.original = func(any, ...any) (any, error) { panic("original panicked") }
	observer := s.hook(OnAfter(noop))

	_, err := s.run([]*Hook{observer}, 1, 2)

	var pe *PanicError
	s.Require().ErrorAs(err, &pe)
	s.Assert().Equal("original panicked", pe.Value)
	s.Assert().Empty(s.faults)
}

func (s *DispatchSuite) TestArgMutationReachesOriginalAndLaterHooks() {
	var seen any
	first := s.hook(OnBefore(func(_ *Context, args []any) error {
		args[0] = 42
		return nil
	}))
	second := s.hook(OnBefore(func(c *Context, _ []any) error {
		seen = c.Arg(0)
		return nil
	}))
	args := []any{1, 2}

	v, err := s.run([]*Hook{first, second}, args...)

	s.Require().NoError(err)
	s.Assert().Equal(44, v)
	s.Assert().Equal(42, seen)
	s.Assert().Equal(1, args[0], "caller's slice is not modified")
}

func (s *DispatchSuite) TestLastWriteWinsDuringBackwardWalk() {
	high := s.hook(OnAfter(func(c *Context, _ []any) error {
		c.SetResult("high")
		return nil
	}))
	low := s.hook(OnAfter(func(c *Context, _ []any) error {
		c.SetResult("low")
		return nil
	}))

	v, err := s.run([]*Hook{high, low}, 1, 2)

	s.Require().NoError(err)
	s.Assert().Equal("high", v)
}

func (s *DispatchSuite) TestBeforeSetErrorShortCircuits() {
	denied := errors.New("denied")
	guard := s.hook(OnBefore(func(c *Context, _ []any) error {
		c.SetError(denied)
		return nil
	}))

	_, err := s.run([]*Hook{guard}, 1, 2)

	s.Assert().Same(denied, err)
	s.Assert().Zero(s.calls)
}

func (s *DispatchSuite) TestInsteadPriorityOrder() {
	instead := func(v int, p Priority) *Hook {
		return s.hook(OnInstead(func(*Context, []any) (any, error) { return v, nil }), WithPriority(p))
	}
	var c chain
	c.add(link{hook: instead(1, PriorityDefault)})
	c.add(link{hook: instead(2, PriorityMax)})
	c.add(link{hook: instead(3, PriorityDefault)})

	v, err := dispatch(s.member, c.snapshot(), s.original, nil, []any{1, 2}, func(Phase, link, error) {})

	s.Require().NoError(err)
	s.Assert().Equal(2, v)
}

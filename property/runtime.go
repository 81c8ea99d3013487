package property

import (
	"io"
	"log"
	"time"
)

// Clock provides wall time for UpdateAnimationsNow. Tests inject a fake one
// through WithClock to drive animations deterministically.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Runtime is one property graph together with everything that is ambient
// while it evaluates: the holder currently recording dependencies, the
// pending change tracker queue, the initialization scope and the animation
// driver.
//
// A Runtime is confined to a single goroutine. Nothing in this package
// locks; marshal writes onto the owning goroutine before touching the graph.
type Runtime struct {
	g       *graph
	current holderKey

	pending []*changeTrackerInner
	scope   initScope

	driver   *AnimationDriver
	clock    Clock
	start    time.Time
	slowdown uint64

	logger *log.Logger
	debug  bool
}

type Option func(*Runtime)

// WithLogger routes warnings and debug traces to l.
func WithLogger(l *log.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithDebug enables per-evaluation traces for named properties.
func WithDebug(enabled bool) Option {
	return func(rt *Runtime) {
		rt.debug = enabled
	}
}

func WithClock(c Clock) Option {
	return func(rt *Runtime) {
		rt.clock = c
	}
}

// WithAnimationSlowdown divides elapsed time seen by UpdateAnimationsNow.
// Factors below 2 are ignored.
func WithAnimationSlowdown(factor uint64) Option {
	return func(rt *Runtime) {
		if factor > 1 {
			rt.slowdown = factor
		}
	}
}

func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		g:        newGraph(),
		clock:    realClock{},
		slowdown: 1,
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.start = rt.clock.Now()
	rt.driver = newAnimationDriver(rt)
	return rt
}

// evaluateWith runs fn with k recording every property read.
func (rt *Runtime) evaluateWith(k holderKey, fn func()) {
	prev := rt.current
	rt.current = k
	defer func() {
		rt.current = prev
	}()
	fn()
}

// EvaluateNoTracking runs fn without registering any dependency on whatever
// binding or tracker is currently evaluating.
func (rt *Runtime) EvaluateNoTracking(fn func()) {
	rt.evaluateWith(holderKey{}, fn)
}

// IsCurrentlyTracking reports whether property reads would register a
// dependency right now.
func (rt *Runtime) IsCurrentlyTracking() bool {
	return rt.g.holders.Contains(rt.current.Key)
}

func (rt *Runtime) registerDependency(l listKey) {
	if rt.current.IsZero() || l.IsZero() {
		return
	}
	rt.g.register(l, rt.current)
}

func (rt *Runtime) tracef(format string, args ...any) {
	if rt.debug {
		rt.logger.Printf(format, args...)
	}
}

// Stats counts the live arena slots.
type Stats struct {
	Lists   int
	Holders int
	Edges   int
}

func (rt *Runtime) Stats() Stats {
	return Stats{
		Lists:   rt.g.lists.Len(),
		Holders: rt.g.holders.Len(),
		Edges:   rt.g.edges.Len(),
	}
}

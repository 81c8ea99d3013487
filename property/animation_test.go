package property_test

import (
	"testing"
	"time"

	"github.com/delaneyj/bindgraph/property"
	"github.com/stretchr/testify/assert"
)

const (
	duration = 10 * time.Second
	delay    = 800 * time.Millisecond
)

type component struct {
	rt            *property.Runtime
	width         *property.Property[int]
	widthTimesTwo *property.Property[int]
	feed          *property.Property[int]
}

func newComponent(opts ...property.Option) *component {
	rt := property.NewRuntime(opts...)
	c := &component{
		rt:            rt,
		width:         property.New(rt, 0),
		widthTimesTwo: property.New(rt, 0),
		feed:          property.New(rt, 0),
	}
	c.widthTimesTwo.SetBinding(func() int { return c.width.Get() * 2 })
	return c
}

func (c *component) at(start property.Instant, d time.Duration) {
	c.rt.UpdateAnimations(start.Add(d))
}

func (c *component) assertWidth(t *testing.T, want int) {
	t.Helper()
	assert.Equal(t, want, c.width.Get())
	assert.Equal(t, want*2, c.widthTimesTwo.Get())
}

func TestAnimatedValue(t *testing.T) {
	lerp := property.LerpNumber[int]

	t.Run("triggered by set", func(t *testing.T) {
		c := newComponent()
		c.width.Set(100)
		c.assertWidth(t, 100)

		start := c.rt.CurrentTick()
		c.width.SetAnimatedValue(200, property.DefaultAnimation(duration), lerp)
		c.assertWidth(t, 100)
		assert.True(t, c.rt.HasActiveAnimations())

		c.at(start, duration/2)
		assert.False(t, c.rt.HasActiveAnimations(), "a new tick resets the flag")
		c.assertWidth(t, 150)
		assert.True(t, c.rt.HasActiveAnimations())

		c.at(start, duration)
		c.assertWidth(t, 200)

		// overshoot always lands on the end value
		c.at(start, duration+duration/2)
		c.assertWidth(t, 200)
		assert.False(t, c.width.HasBinding())
	})

	t.Run("negative delay starts at once", func(t *testing.T) {
		c := newComponent()
		c.width.Set(100)
		start := c.rt.CurrentTick()
		anim := property.DefaultAnimation(duration)
		anim.Delay = -25 * time.Millisecond
		c.width.SetAnimatedValue(200, anim, lerp)
		c.assertWidth(t, 100)

		c.at(start, duration/2)
		c.assertWidth(t, 150)
		c.at(start, duration)
		c.assertWidth(t, 200)
		assert.False(t, c.width.HasBinding())
	})

	t.Run("delayed", func(t *testing.T) {
		c := newComponent()
		c.width.Set(100)
		start := c.rt.CurrentTick()
		anim := property.DefaultAnimation(duration)
		anim.Delay = delay
		c.width.SetAnimatedValue(200, anim, lerp)
		c.assertWidth(t, 100)

		c.at(start, delay/2)
		c.assertWidth(t, 100)
		c.at(start, delay)
		c.assertWidth(t, 100)
		c.at(start, delay+duration/2)
		c.assertWidth(t, 150)
		c.at(start, delay+duration)
		c.assertWidth(t, 200)
		c.at(start, delay+duration+duration/2)
		c.assertWidth(t, 200)
		assert.False(t, c.width.HasBinding())
	})

	t.Run("fractional iteration count", func(t *testing.T) {
		c := newComponent()
		c.width.Set(100)
		start := c.rt.CurrentTick()
		anim := property.PropertyAnimation{Delay: delay, Duration: duration, IterationCount: 1.5}
		c.width.SetAnimatedValue(200, anim, lerp)

		c.at(start, delay/2)
		c.assertWidth(t, 100)
		c.at(start, delay)
		c.assertWidth(t, 100)
		c.at(start, delay+duration/2)
		c.assertWidth(t, 150)
		c.at(start, delay+duration)
		c.assertWidth(t, 100)
		c.at(start, delay+duration+duration/4)
		c.assertWidth(t, 125)
		c.at(start, delay+duration+duration/2)
		c.assertWidth(t, 200)
		assert.False(t, c.width.HasBinding())
	})

	for name, anim := range map[string]property.PropertyAnimation{
		"zero duration":     {Delay: delay, IterationCount: 1},
		"negative duration": {Delay: delay, Duration: -25 * time.Millisecond, IterationCount: 1},
		"zero iterations":   {Delay: delay, Duration: duration, IterationCount: 0},
	} {
		t.Run(name+" jumps after delay", func(t *testing.T) {
			c := newComponent()
			c.width.Set(100)
			start := c.rt.CurrentTick()
			c.width.SetAnimatedValue(200, anim, lerp)
			c.assertWidth(t, 100)

			c.at(start, delay/2)
			c.assertWidth(t, 100)
			c.at(start, delay)
			c.assertWidth(t, 200)
			c.at(start, delay+duration+duration/2)
			c.assertWidth(t, 200)
			assert.False(t, c.width.HasBinding())
		})
	}

	t.Run("infinite iterations", func(t *testing.T) {
		c := newComponent()
		c.width.Set(100)
		start := c.rt.CurrentTick()
		anim := property.PropertyAnimation{Delay: delay, Duration: duration, IterationCount: -42}
		c.width.SetAnimatedValue(200, anim, lerp)

		c.at(start, delay/2)
		c.assertWidth(t, 100)
		c.at(start, delay)
		c.assertWidth(t, 100)
		c.at(start, delay+duration/2)
		c.assertWidth(t, 150)
		c.at(start, delay+duration)
		c.assertWidth(t, 100)
		c.at(start, delay+500*duration)
		c.assertWidth(t, 100)
		c.at(start, delay+50000*duration+duration/2)
		c.assertWidth(t, 150)
		assert.True(t, c.width.HasBinding(), "still animating")
	})

	t.Run("alternate reverse", func(t *testing.T) {
		c := newComponent()
		c.width.Set(100)
		start := c.rt.CurrentTick()
		anim := property.PropertyAnimation{
			Delay:          -25 * time.Millisecond,
			Duration:       duration,
			IterationCount: 1,
			Direction:      property.DirectionAlternateReverse,
		}
		c.width.SetAnimatedValue(200, anim, lerp)
		c.assertWidth(t, 200)

		c.at(start, duration/2)
		c.assertWidth(t, 150)
		c.at(start, duration)
		c.assertWidth(t, 100)
		c.at(start, duration+duration/2)
		c.assertWidth(t, 100)
		assert.False(t, c.width.HasBinding())
	})

	t.Run("loop", func(t *testing.T) {
		c := newComponent()
		c.width.Set(100)
		start := c.rt.CurrentTick()
		anim := property.PropertyAnimation{Duration: duration, IterationCount: 2}
		c.width.SetAnimatedValue(200, anim, lerp)
		c.assertWidth(t, 100)

		c.at(start, duration/2)
		c.assertWidth(t, 150)
		c.at(start, duration)
		c.assertWidth(t, 100)
		c.at(start, duration+duration/2)
		c.assertWidth(t, 150)
		c.at(start, 2*duration)
		c.assertWidth(t, 200)
		assert.False(t, c.width.HasBinding())
	})

	t.Run("easing is applied", func(t *testing.T) {
		c := newComponent()
		c.width.Set(0)
		start := c.rt.CurrentTick()
		anim := property.DefaultAnimation(duration)
		anim.Easing = func(t float64) float64 { return t * t }
		c.width.SetAnimatedValue(100, anim, lerp)

		c.at(start, duration/2)
		c.assertWidth(t, 25)
	})
}

func TestAnimatedBinding(t *testing.T) {
	lerp := property.LerpNumber[int]

	t.Run("triggered by binding", func(t *testing.T) {
		c := newComponent()
		start := c.rt.CurrentTick()
		c.width.SetAnimatedBinding(c.feed.Get, property.DefaultAnimation(duration), lerp)

		c.feed.Set(100)
		c.assertWidth(t, 100)

		c.feed.Set(200)
		c.assertWidth(t, 100)

		c.at(start, duration/2)
		c.assertWidth(t, 150)
		c.at(start, duration)
		c.assertWidth(t, 200)
	})

	t.Run("delayed", func(t *testing.T) {
		c := newComponent()
		start := c.rt.CurrentTick()
		anim := property.PropertyAnimation{Delay: delay, Duration: duration, IterationCount: 1}
		c.width.SetAnimatedBinding(c.feed.Get, anim, lerp)

		c.feed.Set(100)
		c.assertWidth(t, 100)
		c.feed.Set(200)
		c.assertWidth(t, 100)

		c.at(start, delay/2)
		c.assertWidth(t, 100)
		c.at(start, delay)
		c.assertWidth(t, 100)
		c.at(start, delay+duration/2)
		c.assertWidth(t, 150)
		c.at(start, delay+duration)
		c.assertWidth(t, 200)
		c.at(start, delay+duration+duration/2)
		c.assertWidth(t, 200)
	})

	t.Run("loop restarts on new value", func(t *testing.T) {
		c := newComponent()
		start := c.rt.CurrentTick()
		anim := property.PropertyAnimation{Duration: duration, IterationCount: 2}
		c.width.SetAnimatedBinding(c.feed.Get, anim, lerp)

		c.feed.Set(100)
		assert.Equal(t, 100, c.width.Get())
		c.feed.Set(200)
		assert.Equal(t, 100, c.width.Get())

		c.at(start, duration/2)
		assert.Equal(t, 150, c.width.Get())
		c.at(start, duration)
		assert.Equal(t, 100, c.width.Get())
		c.at(start, duration+duration/2)
		assert.Equal(t, 150, c.width.Get())
		c.at(start, 2*duration)
		assert.Equal(t, 200, c.width.Get())
		c.at(start, 2*duration+duration/2)
		assert.Equal(t, 200, c.width.Get())

		start = c.rt.CurrentTick()
		c.feed.Set(300)
		assert.Equal(t, 200, c.width.Get())
		c.at(start, duration/2)
		assert.Equal(t, 250, c.width.Get())
		c.at(start, duration)
		assert.Equal(t, 200, c.width.Get())
		c.at(start, duration+duration/2)
		assert.Equal(t, 250, c.width.Get())
		c.at(start, 2*duration)
		assert.Equal(t, 300, c.width.Get())
		c.at(start, 2*duration+duration/2)
		assert.Equal(t, 300, c.width.Get())
	})

	t.Run("transition picks animation per start", func(t *testing.T) {
		c := newComponent()
		calls := 0
		c.width.SetAnimatedBindingForTransition(c.feed.Get, func() (property.PropertyAnimation, property.Instant) {
			calls++
			return property.DefaultAnimation(duration), c.rt.AnimationDriver().CurrentTick()
		}, lerp)

		c.feed.Set(100)
		c.assertWidth(t, 100)
		assert.Equal(t, 0, calls, "first value is not animated")

		start := c.rt.CurrentTick()
		c.feed.Set(200)
		c.assertWidth(t, 100)
		assert.Equal(t, 1, calls)
		c.at(start, duration/2)
		c.assertWidth(t, 150)
		assert.Equal(t, 1, calls)
	})

	t.Run("dispose releases hidden target", func(t *testing.T) {
		c := newComponent()
		base := c.rt.Stats()
		c.width.SetAnimatedBinding(c.feed.Get, property.DefaultAnimation(duration), lerp)
		c.width.Get()
		c.width.Set(5)
		assert.Equal(t, base, c.rt.Stats())
	})
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestAnimationDriver(t *testing.T) {
	t.Run("update from clock", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1000, 0)}
		rt := property.NewRuntime(property.WithClock(clock))
		clock.now = clock.now.Add(1500 * time.Millisecond)
		rt.UpdateAnimationsNow()
		assert.Equal(t, property.Instant(1500), rt.CurrentTick())
	})

	t.Run("slowdown", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1000, 0)}
		rt := property.NewRuntime(property.WithClock(clock), property.WithAnimationSlowdown(4))
		clock.now = clock.now.Add(2 * time.Second)
		rt.UpdateAnimationsNow()
		assert.Equal(t, uint64(500), rt.CurrentTick().Millis())
	})

	t.Run("animation tick keeps frames coming", func(t *testing.T) {
		rt := property.NewRuntime()
		spinner := property.New(rt, uint64(0))
		spinner.SetBinding(func() uint64 { return rt.AnimationTick() / 10 })
		assert.Equal(t, uint64(0), spinner.Get())
		assert.True(t, rt.HasActiveAnimations())

		rt.UpdateAnimations(120)
		assert.False(t, rt.HasActiveAnimations())
		assert.Equal(t, uint64(12), spinner.Get())
		assert.True(t, rt.HasActiveAnimations())
	})

	t.Run("same tick is a no-op", func(t *testing.T) {
		rt := property.NewRuntime()
		rt.UpdateAnimations(10)
		rt.AnimationDriver().SetHasActiveAnimations()
		rt.UpdateAnimations(10)
		assert.True(t, rt.HasActiveAnimations())
	})

	t.Run("instant arithmetic", func(t *testing.T) {
		a := property.Instant(1000)
		assert.Equal(t, property.Instant(1250), a.Add(250*time.Millisecond))
		assert.Equal(t, 250*time.Millisecond, property.Instant(1250).Sub(a))
		assert.Equal(t, time.Duration(0), a.Sub(property.Instant(2000)))
	})
}

func TestStateBinding(t *testing.T) {
	rt := property.NewRuntime()
	cond := property.New(rt, 0)
	state := property.New(rt, property.StateInfo{})
	property.SetStateBinding(state, cond.Get)

	rt.UpdateAnimations(100)
	assert.Equal(t, property.StateInfo{}, state.Get())

	rt.UpdateAnimations(200)
	cond.Set(2)
	rt.UpdateAnimations(300)
	assert.Equal(t, property.StateInfo{CurrentState: 2, PreviousState: 0, ChangeTime: 200}, state.Get())

	cond.Set(1)
	assert.Equal(t, property.StateInfo{CurrentState: 1, PreviousState: 2, ChangeTime: 300}, state.Get())
}

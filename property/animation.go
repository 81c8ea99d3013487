package property

import (
	"time"
)

// Instant is a point on the animation clock, in milliseconds since the
// runtime started.
type Instant uint64

// Sub returns the time from earlier to i, or 0 when earlier is later.
func (i Instant) Sub(earlier Instant) time.Duration {
	if earlier >= i {
		return 0
	}
	return time.Duration(i-earlier) * time.Millisecond
}

func (i Instant) Add(d time.Duration) Instant {
	return i + Instant(d.Milliseconds())
}

func (i Instant) Millis() uint64 {
	return uint64(i)
}

// AnimationDriver owns the global animation tick. Every animated binding
// reads the tick through a tracked property, so advancing it dirties all
// running animations at once and keeps them frame coherent.
type AnimationDriver struct {
	active  bool
	instant *Property[Instant]
}

func newAnimationDriver(rt *Runtime) *AnimationDriver {
	return &AnimationDriver{
		instant: NewNamed(rt, Instant(0), "animation.global_instant"),
	}
}

// UpdateAnimations moves the tick to now. A changed tick resets the active
// flag; animations that are still running set it again when re-evaluated.
func (d *AnimationDriver) UpdateAnimations(now Instant) {
	if d.instant.Peek() == now {
		return
	}
	d.active = false
	d.instant.Set(now)
}

// HasActiveAnimations tells a frame scheduler whether another tick is needed.
func (d *AnimationDriver) HasActiveAnimations() bool {
	return d.active
}

func (d *AnimationDriver) SetHasActiveAnimations() {
	d.active = true
}

// CurrentTick returns the tick and registers it as a dependency.
func (d *AnimationDriver) CurrentTick() Instant {
	return d.instant.Get()
}

func (d *AnimationDriver) peekTick() Instant {
	return d.instant.Peek()
}

func (rt *Runtime) AnimationDriver() *AnimationDriver {
	return rt.driver
}

func (rt *Runtime) CurrentTick() Instant {
	return rt.driver.CurrentTick()
}

// AnimationTick is CurrentTick for bindings that animate by themselves: it
// also asks for another frame.
func (rt *Runtime) AnimationTick() uint64 {
	rt.driver.SetHasActiveAnimations()
	return uint64(rt.driver.CurrentTick())
}

func (rt *Runtime) UpdateAnimations(now Instant) {
	rt.driver.UpdateAnimations(now)
}

// UpdateAnimationsNow sets the tick from the runtime clock, scaled down by
// the configured slowdown factor.
func (rt *Runtime) UpdateAnimationsNow() {
	elapsed := uint64(rt.clock.Now().Sub(rt.start).Milliseconds())
	rt.driver.UpdateAnimations(Instant(elapsed / rt.slowdown))
}

func (rt *Runtime) HasActiveAnimations() bool {
	return rt.driver.HasActiveAnimations()
}

type AnimationDirection uint8

const (
	DirectionNormal AnimationDirection = iota
	DirectionReverse
	DirectionAlternate
	DirectionAlternateReverse
)

func (d AnimationDirection) reversed(iteration uint64) bool {
	switch d {
	case DirectionReverse:
		return true
	case DirectionAlternate:
		return iteration%2 == 1
	case DirectionAlternateReverse:
		return iteration%2 == 0
	default:
		return false
	}
}

// PropertyAnimation describes a transition. A Duration of zero or less, or
// an IterationCount of zero, jumps straight to the end value once the delay
// has passed. A negative IterationCount repeats forever. A nil Easing is
// Linear.
type PropertyAnimation struct {
	Delay          time.Duration
	Duration       time.Duration
	IterationCount float64
	Direction      AnimationDirection
	Easing         Easing
}

// DefaultAnimation runs once over d with linear easing.
func DefaultAnimation(d time.Duration) PropertyAnimation {
	return PropertyAnimation{Duration: d, IterationCount: 1}
}

func (a PropertyAnimation) ease(t float64) float64 {
	if a.Easing == nil {
		return t
	}
	return a.Easing(t)
}

type animState uint8

const (
	animDelaying animState = iota
	animAnimating
	animDone
)

type animationData[T any] struct {
	rt        *Runtime
	from, to  T
	details   PropertyAnimation
	start     Instant
	state     animState
	iteration uint64
	lerp      Lerp[T]
}

func newAnimationData[T any](rt *Runtime, from, to T, details PropertyAnimation, lerp Lerp[T]) *animationData[T] {
	return &animationData[T]{
		rt:      rt,
		from:    from,
		to:      to,
		details: details,
		start:   rt.driver.peekTick(),
		lerp:    lerp,
	}
}

func (d *animationData[T]) reset() {
	d.state = animDelaying
	d.iteration = 0
	d.start = d.rt.driver.peekTick()
}

// compute returns the value at the current tick and whether the animation
// has finished. Reading the tick makes the caller depend on it.
func (d *animationData[T]) compute() (T, bool) {
	now := d.rt.driver.CurrentTick()
	var progress uint64
	if now > d.start {
		progress = uint64(now - d.start)
	}
	dir := d.details.Direction

	for {
		switch d.state {
		case animDelaying:
			delay := d.details.Delay.Milliseconds()
			if delay > 0 && progress < uint64(delay) {
				if dir.reversed(0) {
					return d.to, false
				}
				return d.from, false
			}
			if delay > 0 {
				progress -= uint64(delay)
				d.start = now - Instant(progress)
			}
			d.state = animAnimating
			d.iteration = 0

		case animAnimating:
			ms := d.details.Duration.Milliseconds()
			if ms <= 0 || d.details.IterationCount == 0 {
				d.state = animDone
				d.iteration = 0
				continue
			}
			duration := uint64(ms)
			if progress >= duration {
				d.iteration += progress / duration
				progress %= duration
				d.start = now - Instant(progress)
			}

			count := d.details.IterationCount
			if count < 0 || float64(d.iteration*duration+progress) < count*float64(duration) {
				t := clampUnit(float64(progress) / float64(duration))
				if dir.reversed(d.iteration) {
					t = 1 - t
				}
				return d.lerp(d.from, d.to, d.details.ease(t)), false
			}
			d.state = animDone
			d.iteration = max(d.iteration, 1) - 1

		default:
			if dir.reversed(d.iteration) {
				return d.from, true
			}
			return d.to, true
		}
	}
}

// SetAnimatedValue animates from the current value to value. The binding
// removes itself once the animation is done, leaving value in place.
func (p *Property[T]) SetAnimatedValue(value T, anim PropertyAnimation, lerp Lerp[T]) {
	d := newAnimationData(p.rt, p.value, value, anim, lerp)
	driver := p.rt.driver
	p.SetRawBinding(BindingFunc[T](func(v *T) BindingResult {
		next, finished := d.compute()
		*v = next
		if finished {
			return RemoveBinding
		}
		driver.SetHasActiveAnimations()
		return KeepBinding
	}))
}

// SetAnimatedBinding drives the property with fn and animates toward each
// new result of fn. The first result is applied without animation.
func (p *Property[T]) SetAnimatedBinding(fn func() T, anim PropertyAnimation, lerp Lerp[T]) {
	p.SetRawBinding(newAnimatedBinding(p, fn, anim, lerp, nil))
}

// SetAnimatedBindingForTransition is SetAnimatedBinding with the animation
// and its start time picked by transition each time a new animation starts.
func (p *Property[T]) SetAnimatedBindingForTransition(fn func() T, transition func() (PropertyAnimation, Instant), lerp Lerp[T]) {
	p.SetRawBinding(newAnimatedBinding(p, fn, PropertyAnimation{}, lerp, transition))
}

type animatedState uint8

const (
	notAnimating animatedState = iota
	animating
	shouldStart
)

// animatedBinding wraps the user binding in a hidden target property. The
// target going dirty is what starts a new animation; a tick change alone
// only advances the current one.
type animatedBinding[T any] struct {
	rt         *Runtime
	target     *Property[T]
	state      animatedState
	data       *animationData[T]
	transition func() (PropertyAnimation, Instant)
}

func newAnimatedBinding[T any](p *Property[T], fn func() T, anim PropertyAnimation, lerp Lerp[T], transition func() (PropertyAnimation, Instant)) *animatedBinding[T] {
	var zero T
	target := NewFunc(p.rt, zero, p.equal)
	target.rename(p.name)
	target.SetBinding(fn)
	return &animatedBinding[T]{
		rt:         p.rt,
		target:     target,
		data:       newAnimationData(p.rt, zero, zero, anim, lerp),
		transition: transition,
	}
}

func (b *animatedBinding[T]) Evaluate(v *T) BindingResult {
	b.target.registerAsDependency()
	switch b.state {
	case notAnimating:
		*v = b.target.GetUntracked()
		return KeepBinding
	case shouldStart:
		b.state = animating
		b.data.from = *v
		b.data.to = b.target.GetUntracked()
		if b.transition != nil {
			anim, start := b.transition()
			b.data.details = anim
			b.data.start = start
		}
	}

	next, finished := b.data.compute()
	*v = next
	if finished {
		b.state = notAnimating
	} else {
		b.rt.driver.SetHasActiveAnimations()
	}
	return KeepBinding
}

func (b *animatedBinding[T]) MarkDirty() {
	if b.state == shouldStart {
		return
	}
	if b.target.IsDirty() {
		b.state = shouldStart
		b.data.reset()
	}
}

func (b *animatedBinding[T]) Dispose() {
	b.target.Dispose()
}

package property

// BindingResult tells the property whether to keep a binding after it ran.
type BindingResult uint8

const (
	// KeepBinding re-evaluates the binding the next time it is dirty.
	KeepBinding BindingResult = iota
	// RemoveBinding detaches the binding; the value it produced stays.
	RemoveBinding
)

// Binding produces the value of a property. Evaluate receives the current
// value and overwrites it.
type Binding[T any] interface {
	Evaluate(value *T) BindingResult
}

type BindingFunc[T any] func(value *T) BindingResult

func (f BindingFunc[T]) Evaluate(value *T) BindingResult {
	return f(value)
}

// SetInterceptor lets a binding absorb Set calls. Returning true keeps the
// binding in place; the property still stores the value.
type SetInterceptor[T any] interface {
	InterceptSet(value T) bool
}

// BindingInterceptor lets a binding absorb SetBinding calls. Returning true
// keeps the current binding and drops nothing.
type BindingInterceptor[T any] interface {
	InterceptSetBinding(b Binding[T]) bool
}

// DirtyNotifier is told every time the binding is flagged dirty.
type DirtyNotifier interface {
	MarkDirty()
}

// Disposer is called once the binding is detached and freed.
type Disposer interface {
	Dispose()
}

type funcBinding[T any] struct {
	fn func() T
}

func (b funcBinding[T]) Evaluate(value *T) BindingResult {
	*value = b.fn()
	return KeepBinding
}

type bindingHolder[T any] struct {
	rt    *Runtime
	key   holderKey
	prop  *Property[T]
	b     Binding[T]
	dirty bool
	guard evalGuard
}

func (bh *bindingHolder[T]) setDirty() bool {
	was := bh.dirty
	bh.dirty = true
	return was
}

func (bh *bindingHolder[T]) onDirty(bool) {
	if n, ok := bh.b.(DirtyNotifier); ok {
		n.MarkDirty()
	}
}

func (bh *bindingHolder[T]) dependents() listKey {
	if bh.prop == nil {
		return listKey{}
	}
	return bh.prop.deps
}

func (bh *bindingHolder[T]) free() {
	bh.prop = nil
	bh.rt.g.removeHolder(bh.key)
	if d, ok := bh.b.(Disposer); ok {
		d.Dispose()
	}
}

// Property is a value cell that may be driven by a binding. Reading it
// while a binding or tracker evaluates records a dependency; writing it
// flags everything that read it as dirty.
//
// A Property belongs to one Runtime and must be disposed by its owner so
// that it leaves every dependency list it is part of.
type Property[T any] struct {
	rt       *Runtime
	value    T
	equal    func(a, b T) bool
	deps     listKey
	binding  *bindingHolder[T]
	constant bool
	disposed bool
	name     string
}

func New[T comparable](rt *Runtime, value T) *Property[T] {
	return NewFunc(rt, value, func(a, b T) bool { return a == b })
}

// NewNamed attaches a debug name used by traces and graph snapshots.
func NewNamed[T comparable](rt *Runtime, value T, name string) *Property[T] {
	p := New(rt, value)
	p.rename(name)
	return p
}

// NewFunc builds a property for types that are not comparable. equal decides
// whether a Set actually changed the value.
func NewFunc[T any](rt *Runtime, value T, equal func(a, b T) bool) *Property[T] {
	p := &Property[T]{
		rt:    rt,
		value: value,
		equal: equal,
	}
	p.deps = rt.g.newList(KindProperty, "")
	return p
}

func (p *Property[T]) rename(name string) {
	p.name = name
	if list, ok := p.rt.g.lists.Get(p.deps.Key); ok {
		list.name = name
	}
}

func (p *Property[T]) Name() string {
	return p.name
}

// Get returns the value, running a dirty binding first, and registers the
// property with whatever is currently evaluating.
func (p *Property[T]) Get() T {
	p.update()
	p.registerAsDependency()
	return p.value
}

// GetUntracked is Get without the dependency registration.
func (p *Property[T]) GetUntracked() T {
	p.update()
	return p.value
}

// Peek returns the cached value. It neither evaluates nor tracks.
func (p *Property[T]) Peek() T {
	return p.value
}

func (p *Property[T]) registerAsDependency() {
	if p.constant || p.disposed {
		return
	}
	p.rt.registerDependency(p.deps)
}

// update re-runs a dirty binding. A read of the property from inside its
// own evaluation returns the in-progress value instead of recursing.
func (p *Property[T]) update() {
	bh := p.binding
	if bh == nil || !bh.dirty || !bh.guard.enter() {
		return
	}
	rt := p.rt
	rt.g.clearOwned(bh.key)
	if p.name != "" {
		rt.tracef("bindgraph: evaluating %s", p.name)
	}

	v := p.value
	var r BindingResult
	done := false
	defer func() {
		// the binding panicked; honor a drop requested before the panic
		if !done && bh.guard.leave() {
			bh.free()
		}
	}()
	rt.evaluateWith(bh.key, func() {
		r = bh.b.Evaluate(&v)
	})
	done = true

	if bh.guard.leave() {
		// replaced or disposed while it ran; its result is discarded and a
		// replacement, if any, runs instead
		bh.free()
		p.update()
		return
	}
	p.value = v
	bh.dirty = false
	if r == RemoveBinding && p.binding == bh {
		p.removeBinding()
	}
}

// Set stores value, detaching the current binding unless it intercepts the
// write. Dependents are flagged only if the value changed.
func (p *Property[T]) Set(value T) {
	intercepted := false
	if bh := p.binding; bh != nil {
		if si, ok := bh.b.(SetInterceptor[T]); ok {
			intercepted = si.InterceptSet(value)
		}
	}
	if !intercepted {
		p.removeBinding()
	}
	if p.equal(p.value, value) {
		return
	}
	p.value = value
	p.MarkDirty()
}

// SetBinding drives the property with fn, evaluated lazily on the next read.
func (p *Property[T]) SetBinding(fn func() T) {
	p.SetRawBinding(funcBinding[T]{fn: fn})
}

// SetRawBinding installs b, replacing any previous binding and its edges.
func (p *Property[T]) SetRawBinding(b Binding[T]) {
	p.installBinding(b, true)
}

func (p *Property[T]) installBinding(b Binding[T], intercept bool) {
	if p.disposed {
		return
	}
	if intercept && p.binding != nil {
		if bi, ok := p.binding.b.(BindingInterceptor[T]); ok && bi.InterceptSetBinding(b) {
			return
		}
	}
	p.removeBinding()

	bh := &bindingHolder[T]{rt: p.rt, prop: p, b: b, dirty: true}
	bh.key = p.rt.g.newHolder(bh, KindBinding, p.name)
	p.binding = bh
	if !p.constant {
		p.rt.g.markDependentsDirty(p.deps)
	}
}

func (p *Property[T]) removeBinding() {
	bh := p.binding
	if bh == nil {
		return
	}
	p.binding = nil
	if bh.guard.requestDrop() {
		return
	}
	bh.free()
}

// moveBindingTo hands the binding over to dst, which must have none.
func (p *Property[T]) moveBindingTo(dst *Property[T]) {
	bh := p.binding
	if bh == nil {
		return
	}
	p.binding = nil
	bh.prop = dst
	dst.binding = bh
}

// HasBinding reports whether a binding currently drives the property.
func (p *Property[T]) HasBinding() bool {
	return p.binding != nil
}

// IsDirty reports whether the binding must run before the value is current.
func (p *Property[T]) IsDirty() bool {
	return p.binding != nil && p.binding.dirty
}

// MarkDirty flags every dependent regardless of whether the value changed.
func (p *Property[T]) MarkDirty() {
	if p.constant {
		p.rt.logger.Printf("bindgraph: constant property %q changed; dependents are not notified", p.name)
		return
	}
	p.rt.g.markDependentsDirty(p.deps)
}

// SetConstant declares that the property never changes again. Its dependency
// list is dropped and later reads register nothing. Irreversible.
func (p *Property[T]) SetConstant() {
	if p.constant {
		return
	}
	p.constant = true
	p.rt.g.removeList(p.deps)
	p.deps = listKey{}
}

func (p *Property[T]) IsConstant() bool {
	return p.constant
}

// Dispose detaches the binding and leaves every dependency list. The
// property keeps its last value but no longer tracks anything.
func (p *Property[T]) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	p.removeBinding()
	p.rt.g.removeList(p.deps)
	p.deps = listKey{}
}

// DependentCount is the number of holders that read this property during
// their last evaluation.
func (p *Property[T]) DependentCount() int {
	return p.rt.g.listLen(p.deps)
}

// BindingDependencyCount is the number of properties the binding read
// during its last evaluation, 0 without a binding.
func (p *Property[T]) BindingDependencyCount() int {
	if p.binding == nil {
		return 0
	}
	return p.rt.g.ownedLen(p.binding.key)
}

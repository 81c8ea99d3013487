package property

// Tracker records which properties were read while it evaluated and becomes
// dirty when any of them changes. It holds no value. Other holders can
// depend on a Tracker as they would on a property.
type Tracker struct {
	rt       *Runtime
	key      holderKey
	deps     listKey
	dirty    bool
	handler  func()
	guard    evalGuard
	name     string
	disposed bool
}

// NewTracker returns a tracker that starts dirty.
func NewTracker(rt *Runtime) *Tracker {
	return newTracker(rt, "", nil)
}

func NewNamedTracker(rt *Runtime, name string) *Tracker {
	return newTracker(rt, name, nil)
}

// NewTrackerWithDirtyHandler calls handler each time the tracker goes from
// clean to dirty. handler runs inside propagation and must not evaluate
// bindings; scheduling a redraw is the intended use.
func NewTrackerWithDirtyHandler(rt *Runtime, handler func()) *Tracker {
	return newTracker(rt, "", handler)
}

func newTracker(rt *Runtime, name string, handler func()) *Tracker {
	t := &Tracker{
		rt:      rt,
		dirty:   true,
		handler: handler,
		name:    name,
	}
	t.key = rt.g.newHolder(t, KindTracker, name)
	t.deps = rt.g.newList(KindTracker, name)
	return t
}

func (t *Tracker) setDirty() bool {
	was := t.dirty
	t.dirty = true
	return was
}

func (t *Tracker) onDirty(wasDirty bool) {
	if !wasDirty && t.handler != nil {
		t.handler()
	}
}

func (t *Tracker) dependents() listKey {
	return t.deps
}

func (t *Tracker) IsDirty() bool {
	return t.dirty
}

// RegisterAsDependency makes the currently evaluating holder depend on t.
func (t *Tracker) RegisterAsDependency() {
	if t.disposed {
		return
	}
	t.rt.registerDependency(t.deps)
}

// Evaluate runs fn with t recording reads, then clears the dirty flag.
// Whatever is evaluating around this call becomes a dependent of t.
func (t *Tracker) Evaluate(fn func()) {
	t.RegisterAsDependency()
	t.EvaluateAsDependencyRoot(fn)
}

// EvaluateAsDependencyRoot is Evaluate without the upward registration, so
// an enclosing evaluation does not learn about t.
func (t *Tracker) EvaluateAsDependencyRoot(fn func()) {
	if t.disposed {
		fn()
		return
	}
	rt := t.rt
	if !t.guard.enter() {
		// reentrant: keep what the outer evaluation has recorded so far
		rt.evaluateWith(t.key, fn)
		return
	}
	rt.g.clearOwned(t.key)
	defer func() {
		if t.guard.leave() {
			t.free()
		}
	}()
	rt.evaluateWith(t.key, fn)
	t.dirty = false
}

// EvaluateIfDirty runs Evaluate only when needed and reports whether it did.
func (t *Tracker) EvaluateIfDirty(fn func()) bool {
	t.RegisterAsDependency()
	if !t.dirty {
		return false
	}
	t.EvaluateAsDependencyRoot(fn)
	return true
}

// SetDirty flags t and everything that depends on it.
func (t *Tracker) SetDirty() {
	if t.disposed {
		return
	}
	wasDirty := t.setDirty()
	t.onDirty(wasDirty)
	t.rt.g.markDependentsDirty(t.deps)
}

// DependencyCount is the number of live sources read in the last evaluation.
func (t *Tracker) DependencyCount() int {
	return t.rt.g.ownedLen(t.key)
}

// DependentCount is the number of holders that depend on t.
func (t *Tracker) DependentCount() int {
	return t.rt.g.listLen(t.deps)
}

func (t *Tracker) Name() string {
	return t.name
}

// Dispose unlinks t from both sides of the graph. Called from inside the
// tracker's own evaluation, the teardown waits until evaluation returns.
func (t *Tracker) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	if t.guard.requestDrop() {
		return
	}
	t.free()
}

func (t *Tracker) free() {
	t.rt.g.removeHolder(t.key)
	t.rt.g.removeList(t.deps)
	t.deps = listKey{}
}

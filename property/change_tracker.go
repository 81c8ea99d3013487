package property

// ChangeTracker runs an evaluation function whenever something it read
// changes and calls a notify function when the evaluation reports a change.
// Re-evaluation is batched: a dirty ChangeTracker waits in the runtime's
// pending queue until RunChangeHandlers.
//
// The first evaluation after Init never notifies.
type ChangeTracker struct {
	rt    *Runtime
	inner *changeTrackerInner
}

type changeTrackerInner struct {
	rt      *Runtime
	key     holderKey
	eval    func() bool
	notify  func()
	release func()

	dirty     bool
	queued    bool
	skipFirst bool
	freed     bool
	guard     evalGuard
}

func NewChangeTracker(rt *Runtime) *ChangeTracker {
	return &ChangeTracker{rt: rt}
}

func (c *changeTrackerInner) setDirty() bool {
	was := c.dirty
	c.dirty = true
	return was
}

func (c *changeTrackerInner) onDirty(wasDirty bool) {
	if wasDirty || c.queued || c.freed {
		return
	}
	c.queued = true
	c.rt.pending = append(c.rt.pending, c)
}

func (c *changeTrackerInner) dependents() listKey {
	return listKey{}
}

func (c *changeTrackerInner) evaluate() {
	if c.freed || !c.guard.enter() {
		return
	}
	rt := c.rt
	rt.g.clearOwned(c.key)
	c.dirty = false

	done := false
	defer func() {
		if !done && c.guard.leave() {
			c.free()
		}
	}()

	var changed bool
	rt.evaluateWith(c.key, func() {
		changed = c.eval()
	})
	if changed && !c.skipFirst && !c.guard.dropPending() {
		rt.EvaluateNoTracking(c.notify)
	}
	c.skipFirst = false
	done = true

	if c.guard.leave() {
		c.free()
	}
}

func (c *changeTrackerInner) drop() {
	if c.freed {
		return
	}
	if c.guard.requestDrop() {
		return
	}
	c.free()
}

func (c *changeTrackerInner) free() {
	if c.freed {
		return
	}
	c.freed = true
	c.rt.g.removeHolder(c.key)
	if c.release != nil {
		c.release()
	}
}

func (ct *ChangeTracker) newInner(eval func() bool, notify func()) *changeTrackerInner {
	ct.Clear()
	c := &changeTrackerInner{
		rt:        ct.rt,
		eval:      eval,
		notify:    notify,
		skipFirst: true,
	}
	c.key = ct.rt.g.newHolder(c, KindChangeTracker, "")
	ct.inner = c
	return c
}

// Init replaces any previous registration. The first evaluation runs now,
// or when the enclosing initialization scope ends.
func (ct *ChangeTracker) Init(eval func() bool, notify func()) {
	c := ct.newInner(eval, notify)
	if ct.rt.DeferToInitScope(c.evaluate) {
		return
	}
	c.evaluate()
}

// InitDelayed defers the first evaluation to the next RunChangeHandlers.
func (ct *ChangeTracker) InitDelayed(eval func() bool, notify func()) {
	c := ct.newInner(eval, notify)
	c.dirty = true
	c.queued = true
	ct.rt.pending = append(ct.rt.pending, c)
}

// SetRelease registers fn to run once when the current registration is
// freed, whether by Clear, Dispose, re-Init or a deferred drop.
func (ct *ChangeTracker) SetRelease(fn func()) {
	if ct.inner != nil {
		ct.inner.release = fn
	}
}

// Clear drops the current registration. Called from inside its own notify,
// the teardown happens once the evaluation returns.
func (ct *ChangeTracker) Clear() {
	c := ct.inner
	if c == nil {
		return
	}
	ct.inner = nil
	c.drop()
}

func (ct *ChangeTracker) Dispose() {
	ct.Clear()
}

// IsActive reports whether an evaluation and notify pair is registered.
func (ct *ChangeTracker) IsActive() bool {
	return ct.inner != nil && !ct.inner.freed
}

// DependencyCount is the number of live sources read in the last evaluation.
func (ct *ChangeTracker) DependencyCount() int {
	if ct.inner == nil {
		return 0
	}
	return ct.rt.g.ownedLen(ct.inner.key)
}

// Watch registers eval and calls notify with the new value whenever it
// differs from the previous one.
func Watch[V comparable](ct *ChangeTracker, eval func() V, notify func(V)) {
	e, n := watchFuncs(eval, notify)
	ct.Init(e, n)
}

// WatchDelayed is Watch with the first evaluation deferred like InitDelayed.
func WatchDelayed[V comparable](ct *ChangeTracker, eval func() V, notify func(V)) {
	e, n := watchFuncs(eval, notify)
	ct.InitDelayed(e, n)
}

func watchFuncs[V comparable](eval func() V, notify func(V)) (func() bool, func()) {
	var last V
	e := func() bool {
		v := eval()
		changed := v != last
		last = v
		return changed
	}
	n := func() {
		notify(last)
	}
	return e, n
}

// RunChangeHandlers evaluates every ChangeTracker that was dirty when the
// call started, once each. Trackers dirtied during the pass wait for the
// next call.
func (rt *Runtime) RunChangeHandlers() {
	batch := rt.pending
	rt.pending = nil
	for _, c := range batch {
		c.queued = false
		if c.freed || !c.dirty {
			continue
		}
		c.evaluate()
	}
}

func (rt *Runtime) HasPendingChangeHandlers() bool {
	for _, c := range rt.pending {
		if !c.freed {
			return true
		}
	}
	return false
}

package ffi

import "github.com/delaneyj/bindgraph/property"

func (e *Engine) TrackerInit() Handle {
	return e.insert(entry{kind: KindTracker, tr: property.NewTracker(e.rt)})
}

// TrackerEvaluate runs fn(ud) recording reads, registering the tracker with
// whatever is evaluating around the call.
func (e *Engine) TrackerEvaluate(h Handle, fn VoidFunc, ud uintptr) error {
	en, err := e.lookup(h, KindTracker)
	if err != nil {
		return err
	}
	en.tr.Evaluate(func() { fn(ud) })
	return nil
}

func (e *Engine) TrackerEvaluateAsDependencyRoot(h Handle, fn VoidFunc, ud uintptr) error {
	en, err := e.lookup(h, KindTracker)
	if err != nil {
		return err
	}
	en.tr.EvaluateAsDependencyRoot(func() { fn(ud) })
	return nil
}

func (e *Engine) TrackerIsDirty(h Handle) (bool, error) {
	en, err := e.lookup(h, KindTracker)
	if err != nil {
		return false, err
	}
	return en.tr.IsDirty(), nil
}

func (e *Engine) TrackerSetDirty(h Handle) error {
	en, err := e.lookup(h, KindTracker)
	if err != nil {
		return err
	}
	en.tr.SetDirty()
	return nil
}

// TrackerDrop may be called from inside the tracker's own evaluation; the
// handle is invalid immediately and the teardown follows the evaluation.
func (e *Engine) TrackerDrop(h Handle) error {
	en, err := e.lookup(h, KindTracker)
	if err != nil {
		return err
	}
	tr := en.tr
	e.remove(h)
	tr.Dispose()
	return nil
}

func (e *Engine) ChangeTrackerConstruct() Handle {
	return e.insert(entry{kind: KindChangeTracker, ct: property.NewChangeTracker(e.rt)})
}

// ChangeTrackerInit registers eval and notify, replacing any previous
// registration (whose drop runs). drop(ud) runs once this registration is
// released. On error drop runs at once.
func (e *Engine) ChangeTrackerInit(h Handle, ud uintptr, drop DropFunc, eval BoolFunc, notify VoidFunc) error {
	en, err := e.lookup(h, KindChangeTracker)
	if err != nil {
		e.callDrop("change tracker", drop, ud)
		return err
	}
	// eval may drop h, which clears the slot en points into
	ct := en.ct
	ct.Init(func() bool { return eval(ud) }, func() { notify(ud) })
	e.attachRelease(ct, ud, drop)
	return nil
}

// ChangeTrackerInitDelayed is ChangeTrackerInit with the first evaluation
// deferred to the next RunChangeHandlers.
func (e *Engine) ChangeTrackerInitDelayed(h Handle, ud uintptr, drop DropFunc, eval BoolFunc, notify VoidFunc) error {
	en, err := e.lookup(h, KindChangeTracker)
	if err != nil {
		e.callDrop("change tracker", drop, ud)
		return err
	}
	ct := en.ct
	ct.InitDelayed(func() bool { return eval(ud) }, func() { notify(ud) })
	e.attachRelease(ct, ud, drop)
	return nil
}

func (e *Engine) attachRelease(ct *property.ChangeTracker, ud uintptr, drop DropFunc) {
	release := func() { e.callDrop("change tracker", drop, ud) }
	if !ct.IsActive() {
		// dropped during its own first evaluation
		release()
		return
	}
	ct.SetRelease(release)
}

// ChangeTrackerDrop is safe from inside the tracker's own notify callback.
func (e *Engine) ChangeTrackerDrop(h Handle) error {
	en, err := e.lookup(h, KindChangeTracker)
	if err != nil {
		return err
	}
	ct := en.ct
	e.remove(h)
	ct.Dispose()
	return nil
}

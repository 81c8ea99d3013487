package property

// StateInfo is the value of a state-machine property.
type StateInfo struct {
	CurrentState  int
	PreviousState int
	// ChangeTime is the tick at which the binding that led to the current
	// state was first dirtied.
	ChangeTime Instant
}

type stateBinding struct {
	rt        *Runtime
	fn        func() int
	dirtyTime Instant
	hasDirty  bool
}

func (b *stateBinding) Evaluate(v *StateInfo) BindingResult {
	next := b.fn()
	ts, ok := b.dirtyTime, b.hasDirty
	b.hasDirty = false
	if next != v.CurrentState {
		if !ok {
			ts = b.rt.driver.CurrentTick()
		}
		v.PreviousState = v.CurrentState
		v.CurrentState = next
		v.ChangeTime = ts
	}
	return KeepBinding
}

func (b *stateBinding) MarkDirty() {
	if !b.hasDirty {
		b.dirtyTime = b.rt.driver.peekTick()
		b.hasDirty = true
	}
}

// SetStateBinding drives p with fn, recording the previous state and the
// change time whenever fn yields a new state.
func SetStateBinding(p *Property[StateInfo], fn func() int) {
	p.SetRawBinding(&stateBinding{rt: p.rt, fn: fn})
}

package property

type evalState uint8

const (
	stateIdle evalState = iota
	stateEvaluating
	// stateEvaluatingWithPendingDrop: removal was requested from inside the
	// evaluation; the evaluating frame tears down when it returns.
	stateEvaluatingWithPendingDrop
)

type evalGuard struct {
	state evalState
}

// enter moves Idle to Evaluating. It fails on reentry.
func (g *evalGuard) enter() bool {
	if g.state != stateIdle {
		return false
	}
	g.state = stateEvaluating
	return true
}

// leave ends the evaluation and reports whether the caller must now free.
func (g *evalGuard) leave() (freeNow bool) {
	freeNow = g.state == stateEvaluatingWithPendingDrop
	g.state = stateIdle
	return freeNow
}

// requestDrop reports true when the drop was deferred to the running
// evaluation, false when the caller may free immediately.
func (g *evalGuard) requestDrop() (deferred bool) {
	switch g.state {
	case stateEvaluating, stateEvaluatingWithPendingDrop:
		g.state = stateEvaluatingWithPendingDrop
		return true
	default:
		return false
	}
}

func (g *evalGuard) dropPending() bool {
	return g.state == stateEvaluatingWithPendingDrop
}

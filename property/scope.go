package property

type initScope struct {
	depth int
	queue []func()
}

// BeginInitScope opens an initialization scope. It returns true only for
// the outermost call, whose caller must call EndInitScope.
func (rt *Runtime) BeginInitScope() bool {
	rt.scope.depth++
	return rt.scope.depth == 1
}

// EndInitScope runs every deferred task in FIFO order, including tasks
// deferred by those tasks, then closes the scope.
func (rt *Runtime) EndInitScope() {
	if rt.scope.depth == 0 {
		rt.logger.Printf("bindgraph: EndInitScope without an open scope")
		return
	}
	for len(rt.scope.queue) > 0 {
		task := rt.scope.queue[0]
		rt.scope.queue[0] = nil
		rt.scope.queue = rt.scope.queue[1:]
		task()
	}
	rt.scope.queue = nil
	rt.scope.depth = 0
}

// WithInitScope runs fn inside a scope, closing it if this call opened it.
func (rt *Runtime) WithInitScope(fn func()) {
	if !rt.BeginInitScope() {
		defer func() { rt.scope.depth-- }()
		fn()
		return
	}
	defer rt.EndInitScope()
	fn()
}

// DeferToInitScope queues fn for the end of the open scope and reports
// whether it did. Without a scope nothing is queued.
func (rt *Runtime) DeferToInitScope(fn func()) bool {
	if rt.scope.depth == 0 {
		return false
	}
	rt.scope.queue = append(rt.scope.queue, fn)
	return true
}

func (rt *Runtime) InInitScope() bool {
	return rt.scope.depth > 0
}

package property

// twoWayCommon is the hidden property every member of a two-way group
// forwards to. It is disposed when the last forwarding binding goes away.
type twoWayCommon[T any] struct {
	prop *Property[T]
	refs int
}

func (c *twoWayCommon[T]) acquire() *twoWayBinding[T] {
	c.refs++
	return &twoWayBinding[T]{common: c}
}

type twoWayBinding[T any] struct {
	common   *twoWayCommon[T]
	released bool
}

func (b *twoWayBinding[T]) Evaluate(v *T) BindingResult {
	*v = b.common.prop.Get()
	return KeepBinding
}

func (b *twoWayBinding[T]) InterceptSet(v T) bool {
	b.common.prop.Set(v)
	return true
}

func (b *twoWayBinding[T]) InterceptSetBinding(nb Binding[T]) bool {
	b.common.prop.installBinding(nb, true)
	return true
}

func (b *twoWayBinding[T]) Dispose() {
	if b.released {
		return
	}
	b.released = true
	b.common.refs--
	if b.common.refs == 0 {
		b.common.prop.Dispose()
	}
}

func twoWayOf[T any](p *Property[T]) (*twoWayBinding[T], bool) {
	if p.binding == nil {
		return nil, false
	}
	tw, ok := p.binding.b.(*twoWayBinding[T])
	return tw, ok
}

// LinkTwoWay makes p1 and p2 behave as one property: a Set or SetBinding on
// either is seen by both. p2 keeps its value or binding; p1's is dropped.
// Linking a member of an existing group merges the groups.
func LinkTwoWay[T any](p1, p2 *Property[T]) {
	if p1 == p2 {
		return
	}
	value := p2.Peek()

	if tw, ok := twoWayOf(p1); ok {
		// p2 forwards into p1's group; if p2 led its own group, that group
		// is re-pointed at p1's through the interceptor
		p2.SetRawBinding(tw.common.acquire())
		p2.Set(value)
		return
	}
	if tw, ok := twoWayOf(p2); ok {
		p1.SetRawBinding(tw.common.acquire())
		return
	}

	common := &twoWayCommon[T]{prop: NewFunc(p2.rt, value, p2.equal)}
	if p2.name != "" || p1.name != "" {
		common.prop.rename(p1.name + "<=>" + p2.name)
	}
	// p2's binding moves to the common property intact
	p2.moveBindingTo(common.prop)

	p1.SetRawBinding(common.acquire())
	p2.SetRawBinding(common.acquire())
}

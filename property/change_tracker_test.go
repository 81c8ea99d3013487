package property_test

import (
	"testing"

	"github.com/delaneyj/bindgraph/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeTracker(t *testing.T) {
	t.Run("first evaluation never notifies", func(t *testing.T) {
		rt := property.NewRuntime()
		p := property.New(rt, 10)
		ct := property.NewChangeTracker(rt)
		evals, notifies := 0, 0
		ct.Init(func() bool {
			evals++
			p.Get()
			return true
		}, func() { notifies++ })

		assert.Equal(t, 1, evals)
		assert.Equal(t, 0, notifies)
		assert.False(t, rt.HasPendingChangeHandlers())
	})

	t.Run("notifications are batched", func(t *testing.T) {
		rt := property.NewRuntime()
		p := property.New(rt, 1)
		ct := property.NewChangeTracker(rt)
		var got []int
		property.Watch(ct, func() int { return p.Get() * 2 }, func(v int) {
			got = append(got, v)
		})

		p.Set(2)
		p.Set(3)
		assert.Empty(t, got, "nothing runs before RunChangeHandlers")
		assert.True(t, rt.HasPendingChangeHandlers())

		rt.RunChangeHandlers()
		assert.Equal(t, []int{6}, got)
		assert.False(t, rt.HasPendingChangeHandlers())

		rt.RunChangeHandlers()
		assert.Equal(t, []int{6}, got)
	})

	t.Run("unchanged result does not notify", func(t *testing.T) {
		rt := property.NewRuntime()
		p := property.New(rt, 4)
		ct := property.NewChangeTracker(rt)
		var got []bool
		property.Watch(ct, func() bool { return p.Get()%2 == 0 }, func(v bool) {
			got = append(got, v)
		})

		p.Set(6)
		rt.RunChangeHandlers()
		assert.Empty(t, got)

		p.Set(7)
		rt.RunChangeHandlers()
		assert.Equal(t, []bool{false}, got)
	})

	t.Run("drop from own notify", func(t *testing.T) {
		rt := property.NewRuntime()
		base := rt.Stats()
		p := property.New(rt, 1)
		ct := property.NewChangeTracker(rt)
		evals, notifies, releases := 0, 0, 0
		ct.Init(func() bool {
			evals++
			p.Get()
			return true
		}, func() {
			notifies++
			ct.Clear()
			assert.False(t, ct.IsActive())
		})
		ct.SetRelease(func() { releases++ })
		assert.Equal(t, 1, evals)
		assert.Equal(t, 0, notifies)

		p.Set(2)
		rt.RunChangeHandlers()
		assert.Equal(t, 2, evals)
		assert.Equal(t, 1, notifies)
		assert.Equal(t, 1, releases)
		assert.False(t, ct.IsActive())
		assert.Equal(t, 0, p.DependentCount())

		p.Set(3)
		rt.RunChangeHandlers()
		assert.Equal(t, 2, evals)
		assert.Equal(t, 1, releases)

		p.Dispose()
		assert.Equal(t, base, rt.Stats())
	})

	t.Run("drop from own evaluation skips notify", func(t *testing.T) {
		rt := property.NewRuntime()
		p := property.New(rt, 1)
		ct := property.NewChangeTracker(rt)
		first := true
		notifies := 0
		ct.Init(func() bool {
			p.Get()
			if !first {
				ct.Dispose()
			}
			first = false
			return true
		}, func() { notifies++ })

		p.Set(2)
		rt.RunChangeHandlers()
		assert.Equal(t, 0, notifies)
		assert.False(t, ct.IsActive())
		assert.Equal(t, 0, rt.Stats().Holders)
	})

	t.Run("dropped while queued", func(t *testing.T) {
		rt := property.NewRuntime()
		p := property.New(rt, 1)
		ct := property.NewChangeTracker(rt)
		evals := 0
		ct.Init(func() bool {
			evals++
			p.Get()
			return true
		}, func() {})

		p.Set(2)
		require.True(t, rt.HasPendingChangeHandlers())
		ct.Dispose()
		assert.False(t, rt.HasPendingChangeHandlers())
		rt.RunChangeHandlers()
		assert.Equal(t, 1, evals)
	})

	t.Run("cascade waits for next pass", func(t *testing.T) {
		rt := property.NewRuntime()
		p := property.New(rt, 0)
		q := property.New(rt, 0)

		forward := property.NewChangeTracker(rt)
		property.Watch(forward, p.Get, func(v int) { q.Set(v) })

		var seen []int
		sink := property.NewChangeTracker(rt)
		property.Watch(sink, q.Get, func(v int) { seen = append(seen, v) })

		p.Set(5)
		rt.RunChangeHandlers()
		assert.Empty(t, seen)
		assert.True(t, rt.HasPendingChangeHandlers())

		rt.RunChangeHandlers()
		assert.Equal(t, []int{5}, seen)
	})

	t.Run("init delayed", func(t *testing.T) {
		rt := property.NewRuntime()
		p := property.New(rt, 1)
		ct := property.NewChangeTracker(rt)
		evals, notifies := 0, 0
		ct.InitDelayed(func() bool {
			evals++
			p.Get()
			return true
		}, func() { notifies++ })
		assert.Equal(t, 0, evals)

		rt.RunChangeHandlers()
		assert.Equal(t, 1, evals)
		assert.Equal(t, 0, notifies)

		p.Set(2)
		rt.RunChangeHandlers()
		assert.Equal(t, 2, evals)
		assert.Equal(t, 1, notifies)
	})

	t.Run("re-init replaces registration", func(t *testing.T) {
		rt := property.NewRuntime()
		a := property.New(rt, 1)
		b := property.New(rt, 1)
		ct := property.NewChangeTracker(rt)
		released := 0
		ct.Init(func() bool { a.Get(); return true }, func() {})
		ct.SetRelease(func() { released++ })

		ct.Init(func() bool { b.Get(); return true }, func() {})
		assert.Equal(t, 1, released)
		assert.Equal(t, 0, a.DependentCount())
		assert.Equal(t, 1, b.DependentCount())
		assert.Equal(t, 1, ct.DependencyCount())
	})

	t.Run("notify does not track", func(t *testing.T) {
		rt := property.NewRuntime()
		p := property.New(rt, 1)
		other := property.New(rt, 1)
		ct := property.NewChangeTracker(rt)
		property.Watch(ct, p.Get, func(int) { other.Get() })

		p.Set(2)
		rt.RunChangeHandlers()
		assert.Equal(t, 0, other.DependentCount())
	})
}

func TestInitScope(t *testing.T) {
	t.Run("defers first evaluations in order", func(t *testing.T) {
		rt := property.NewRuntime()
		var order []int
		require.True(t, rt.BeginInitScope())
		for i := 0; i < 3; i++ {
			i := i
			ct := property.NewChangeTracker(rt)
			ct.Init(func() bool {
				order = append(order, i)
				return false
			}, func() {})
		}
		assert.Empty(t, order)

		rt.EndInitScope()
		assert.Equal(t, []int{0, 1, 2}, order)
		assert.False(t, rt.InInitScope())
	})

	t.Run("nested begin does not own", func(t *testing.T) {
		rt := property.NewRuntime()
		assert.True(t, rt.BeginInitScope())
		assert.False(t, rt.BeginInitScope())
		ran := false
		assert.True(t, rt.DeferToInitScope(func() { ran = true }))
		rt.EndInitScope()
		assert.True(t, ran)
		assert.False(t, rt.DeferToInitScope(func() {}))
	})

	t.Run("tasks deferred while draining still run", func(t *testing.T) {
		rt := property.NewRuntime()
		var order []string
		rt.WithInitScope(func() {
			rt.DeferToInitScope(func() {
				order = append(order, "first")
				rt.DeferToInitScope(func() { order = append(order, "third") })
			})
			rt.DeferToInitScope(func() { order = append(order, "second") })
		})
		assert.Equal(t, []string{"first", "second", "third"}, order)
	})

	t.Run("inner with scope leaves outer open", func(t *testing.T) {
		rt := property.NewRuntime()
		ran := false
		rt.WithInitScope(func() {
			rt.WithInitScope(func() {
				rt.DeferToInitScope(func() { ran = true })
			})
			assert.False(t, ran)
			assert.True(t, rt.InInitScope())
		})
		assert.True(t, ran)
	})
}

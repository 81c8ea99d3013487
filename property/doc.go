// Package property is a lazy dependency graph of value cells.
//
// A Property holds a value and optionally a binding that derives it. When a
// binding or a Tracker evaluates, every property it reads records it as a
// dependent. Writing a property flags its dependents dirty without
// evaluating anything; a dirty binding re-runs on its next read, a Tracker
// just reports IsDirty, and a ChangeTracker queues itself for the next
// Runtime.RunChangeHandlers.
//
// Dependency edges live in generational slot maps owned by the Runtime, so
// a disposed property or binding simply stops resolving; no edge keeps
// either side alive. Bindings that read each other in a cycle do not hang:
// a reentrant read returns the value currently stored.
//
// Everything hangs off a Runtime, which is confined to one goroutine.
//
//	rt := property.NewRuntime()
//	width := property.New(rt, 4)
//	area := property.New(rt, 0)
//	area.SetBinding(func() int { return width.Get() * width.Get() })
//	area.Get() // 16
//	width.Set(5)
//	area.Get() // 25
package property

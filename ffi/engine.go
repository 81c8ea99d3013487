// Package ffi exposes the property engine through flat, handle-based entry
// points. Every argument is a primitive: handles are uint64, callbacks take
// an opaque user-data word, and each registration carries a drop callback
// that runs exactly once when the engine lets go of the user data.
//
// An Engine is confined to one goroutine, like the Runtime it wraps.
package ffi

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/bindgraph/internal/slotmap"
	"github.com/delaneyj/bindgraph/property"
	uuid "github.com/satori/go.uuid"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrStaleHandle  = errors.New("stale handle")
	ErrKindMismatch = errors.New("kind mismatch")
	ErrNameTaken    = errors.New("name already registered")
)

type Handle = uint64

type Kind uint8

const (
	KindInt Kind = iota + 1
	KindFloat
	KindTracker
	KindChangeTracker
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindTracker:
		return "tracker"
	case KindChangeTracker:
		return "change-tracker"
	default:
		return "invalid"
	}
}

type (
	IntFunc   func(ud uintptr) int64
	FloatFunc func(ud uintptr) float64
	BoolFunc  func(ud uintptr) bool
	VoidFunc  func(ud uintptr)
	DropFunc  func(ud uintptr)

	// OnErrorFunc receives failures that cannot be returned to a caller,
	// such as a panicking drop callback.
	OnErrorFunc func(op string, err error)
)

type entry struct {
	kind Kind
	name string
	i    *property.Property[int64]
	f    *property.Property[float64]
	tr   *property.Tracker
	ct   *property.ChangeTracker
}

type Engine struct {
	id      uuid.UUID
	rt      *property.Runtime
	logger  *log.Logger
	onError OnErrorFunc
	entries *slotmap.Map[entry]
	names   map[uint64]Handle
}

type Option func(*Engine)

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

func WithOnError(fn OnErrorFunc) Option {
	return func(e *Engine) {
		e.onError = fn
	}
}

// WithRuntime wraps an existing runtime instead of creating one.
func WithRuntime(rt *property.Runtime) Option {
	return func(e *Engine) {
		e.rt = rt
	}
}

func New(opts ...Option) *Engine {
	u, _ := uuid.NewV4()
	e := &Engine{
		id:      u,
		logger:  log.New(io.Discard, "", 0),
		entries: slotmap.New[entry](),
		names:   map[uint64]Handle{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rt == nil {
		e.rt = property.NewRuntime(property.WithLogger(e.logger))
	}
	if e.onError == nil {
		e.onError = func(op string, err error) {
			e.logger.Printf("bindgraph/ffi %s: %s: %v", e.id, op, err)
		}
	}
	return e
}

// ID identifies the engine in logs and graph snapshots.
func (e *Engine) ID() string {
	return e.id.String()
}

func (e *Engine) Runtime() *property.Runtime {
	return e.rt
}

// Len is the number of live handles.
func (e *Engine) Len() int {
	return e.entries.Len()
}

func (e *Engine) insert(en entry) Handle {
	return e.entries.Insert(en).Uint64()
}

func (e *Engine) lookup(h Handle, want ...Kind) (*entry, error) {
	k := slotmap.KeyFromUint64(h)
	if k.IsZero() {
		return nil, fmt.Errorf("handle %#x: %w", h, ErrNotFound)
	}
	en, ok := e.entries.Get(k)
	if !ok {
		return nil, fmt.Errorf("handle %#x: %w", h, ErrStaleHandle)
	}
	for _, w := range want {
		if en.kind == w {
			return en, nil
		}
	}
	return nil, fmt.Errorf("handle %#x is a %s: %w", h, en.kind, ErrKindMismatch)
}

func (e *Engine) remove(h Handle) {
	en, ok := e.entries.Remove(slotmap.KeyFromUint64(h))
	if ok && en.name != "" {
		delete(e.names, xxhash.Sum64String(en.name))
	}
}

// callDrop runs a user drop callback, reporting a panic instead of
// unwinding through engine code.
func (e *Engine) callDrop(op string, drop DropFunc, ud uintptr) {
	if drop == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.onError(op, fmt.Errorf("drop callback panicked: %v", r))
		}
	}()
	drop(ud)
}

func (e *Engine) RunChangeHandlers() {
	e.rt.RunChangeHandlers()
}

func (e *Engine) AnimationTick() uint64 {
	return e.rt.AnimationTick()
}

// UpdateAnimations sets the animation tick in milliseconds.
func (e *Engine) UpdateAnimations(ms uint64) {
	e.rt.UpdateAnimations(property.Instant(ms))
}

func (e *Engine) HasActiveAnimations() bool {
	return e.rt.HasActiveAnimations()
}

func (e *Engine) BeginInitScope() bool {
	return e.rt.BeginInitScope()
}

func (e *Engine) EndInitScope() {
	e.rt.EndInitScope()
}

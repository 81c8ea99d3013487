package ffi

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/bindgraph/property"
)

// PropertyInit creates an int or float property holding zero.
func (e *Engine) PropertyInit(kind Kind) (Handle, error) {
	return e.PropertyInitNamed(kind, "")
}

// PropertyInitNamed also registers name for Lookup.
func (e *Engine) PropertyInitNamed(kind Kind, name string) (Handle, error) {
	var hash uint64
	if name != "" {
		hash = xxhash.Sum64String(name)
		if _, taken := e.names[hash]; taken {
			return 0, fmt.Errorf("property %q: %w", name, ErrNameTaken)
		}
	}

	en := entry{kind: kind, name: name}
	switch kind {
	case KindInt:
		en.i = property.NewNamed(e.rt, int64(0), name)
	case KindFloat:
		en.f = property.NewNamed(e.rt, 0.0, name)
	default:
		return 0, fmt.Errorf("property init with %s: %w", kind, ErrKindMismatch)
	}
	h := e.insert(en)
	if name != "" {
		e.names[hash] = h
	}
	return h, nil
}

func (e *Engine) Lookup(name string) (Handle, error) {
	h, ok := e.names[xxhash.Sum64String(name)]
	if !ok {
		return 0, fmt.Errorf("property %q: %w", name, ErrNotFound)
	}
	en, err := e.lookup(h, KindInt, KindFloat)
	if err != nil {
		return 0, err
	}
	if en.name != name {
		return 0, fmt.Errorf("property %q: %w", name, ErrNotFound)
	}
	return h, nil
}

func (e *Engine) SetInt(h Handle, v int64) error {
	en, err := e.lookup(h, KindInt)
	if err != nil {
		return err
	}
	en.i.Set(v)
	return nil
}

func (e *Engine) GetInt(h Handle) (int64, error) {
	en, err := e.lookup(h, KindInt)
	if err != nil {
		return 0, err
	}
	return en.i.Get(), nil
}

func (e *Engine) SetFloat(h Handle, v float64) error {
	en, err := e.lookup(h, KindFloat)
	if err != nil {
		return err
	}
	en.f.Set(v)
	return nil
}

func (e *Engine) GetFloat(h Handle) (float64, error) {
	en, err := e.lookup(h, KindFloat)
	if err != nil {
		return 0, err
	}
	return en.f.Get(), nil
}

// userBinding adapts a callback plus user data to a binding. drop runs when
// the binding is released.
type userBinding[T any] struct {
	e    *Engine
	eval func(ud uintptr) T
	ud   uintptr
	drop DropFunc
}

func (b *userBinding[T]) Evaluate(v *T) property.BindingResult {
	*v = b.eval(b.ud)
	return property.KeepBinding
}

func (b *userBinding[T]) Dispose() {
	b.e.callDrop("binding", b.drop, b.ud)
}

// SetIntBinding drives h with eval(ud). drop(ud) runs once the binding is
// replaced, removed or the property dropped. On error drop runs at once.
func (e *Engine) SetIntBinding(h Handle, eval IntFunc, ud uintptr, drop DropFunc) error {
	en, err := e.lookup(h, KindInt)
	if err != nil {
		e.callDrop("binding", drop, ud)
		return err
	}
	en.i.SetRawBinding(&userBinding[int64]{e: e, eval: eval, ud: ud, drop: drop})
	return nil
}

func (e *Engine) SetFloatBinding(h Handle, eval FloatFunc, ud uintptr, drop DropFunc) error {
	en, err := e.lookup(h, KindFloat)
	if err != nil {
		e.callDrop("binding", drop, ud)
		return err
	}
	en.f.SetRawBinding(&userBinding[float64]{e: e, eval: eval, ud: ud, drop: drop})
	return nil
}

// SetAnimatedFloat animates h to v over durationMs after delayMs, with
// linear easing.
func (e *Engine) SetAnimatedFloat(h Handle, v float64, delayMs, durationMs int64) error {
	en, err := e.lookup(h, KindFloat)
	if err != nil {
		return err
	}
	anim := property.PropertyAnimation{
		Delay:          time.Duration(delayMs) * time.Millisecond,
		Duration:       time.Duration(durationMs) * time.Millisecond,
		IterationCount: 1,
	}
	en.f.SetAnimatedValue(v, anim, property.LerpNumber[float64])
	return nil
}

func (e *Engine) SetAnimatedInt(h Handle, v int64, delayMs, durationMs int64) error {
	en, err := e.lookup(h, KindInt)
	if err != nil {
		return err
	}
	anim := property.PropertyAnimation{
		Delay:          time.Duration(delayMs) * time.Millisecond,
		Duration:       time.Duration(durationMs) * time.Millisecond,
		IterationCount: 1,
	}
	en.i.SetAnimatedValue(v, anim, property.LerpNumber[int64])
	return nil
}

func (e *Engine) PropertySetConstant(h Handle) error {
	en, err := e.lookup(h, KindInt, KindFloat)
	if err != nil {
		return err
	}
	if en.i != nil {
		en.i.SetConstant()
	} else {
		en.f.SetConstant()
	}
	return nil
}

func (e *Engine) PropertyIsDirty(h Handle) (bool, error) {
	en, err := e.lookup(h, KindInt, KindFloat)
	if err != nil {
		return false, err
	}
	if en.i != nil {
		return en.i.IsDirty(), nil
	}
	return en.f.IsDirty(), nil
}

func (e *Engine) PropertyMarkDirty(h Handle) error {
	en, err := e.lookup(h, KindInt, KindFloat)
	if err != nil {
		return err
	}
	if en.i != nil {
		en.i.MarkDirty()
	} else {
		en.f.MarkDirty()
	}
	return nil
}

// LinkTwoWay aliases two properties of the same kind. h2 keeps its value.
func (e *Engine) LinkTwoWay(h1, h2 Handle) error {
	a, err := e.lookup(h1, KindInt, KindFloat)
	if err != nil {
		return err
	}
	b, err := e.lookup(h2, a.kind)
	if err != nil {
		return err
	}
	if a.i != nil {
		property.LinkTwoWay(a.i, b.i)
	} else {
		property.LinkTwoWay(a.f, b.f)
	}
	return nil
}

// PropertyDrop disposes h; its binding's drop callback runs.
func (e *Engine) PropertyDrop(h Handle) error {
	en, err := e.lookup(h, KindInt, KindFloat)
	if err != nil {
		return err
	}
	// drop callbacks run during Dispose and may re-enter the engine
	i, f := en.i, en.f
	e.remove(h)
	if i != nil {
		i.Dispose()
	} else {
		f.Dispose()
	}
	return nil
}

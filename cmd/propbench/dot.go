package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/delaneyj/bindgraph/inspect"
	"github.com/delaneyj/bindgraph/property"
	"github.com/urfave/cli/v3"
)

// demo is a small component: a box whose area and label follow its size,
// a fading opacity, a layout tracker and a change handler on the area.
type demo struct {
	rt      *property.Runtime
	width   *property.Property[int]
	height  *property.Property[int]
	area    *property.Property[int]
	label   *property.Property[string]
	opacity *property.Property[float64]
	layout  *property.Tracker
	watch   *property.ChangeTracker
	changes []int
}

func newDemo(rt *property.Runtime) *demo {
	d := &demo{
		rt:      rt,
		width:   property.NewNamed(rt, 4, "width"),
		height:  property.NewNamed(rt, 3, "height"),
		area:    property.NewNamed(rt, 0, "area"),
		label:   property.NewNamed(rt, "", "label"),
		opacity: property.NewNamed(rt, 0.0, "opacity"),
		layout:  property.NewNamedTracker(rt, "layout"),
		watch:   property.NewChangeTracker(rt),
	}
	d.area.SetBinding(func() int { return d.width.Get() * d.height.Get() })
	d.label.SetBinding(func() string {
		return fmt.Sprintf("%dx%d", d.width.Get(), d.height.Get())
	})
	d.opacity.SetAnimatedValue(1, property.DefaultAnimation(250*time.Millisecond), property.LerpNumber[float64])

	rt.WithInitScope(func() {
		property.Watch(d.watch, d.area.Get, func(v int) {
			d.changes = append(d.changes, v)
		})
	})
	d.relayout()
	return d
}

func (d *demo) relayout() {
	d.layout.EvaluateAsDependencyRoot(func() {
		d.label.Get()
		d.opacity.Get()
	})
}

func writeDemo(w io.Writer, rt *property.Runtime, format string, edges bool) error {
	newDemo(rt)
	rt.UpdateAnimationsNow()
	g := inspect.Snapshot(rt).Named()
	switch format {
	case "dot":
		inspect.WriteDOT(w, g)
	case "table":
		_, err := fmt.Fprintln(w, inspect.Table(g, tableStyle(), edges))
		return err
	default:
		return fmt.Errorf("unknown format %q, want dot or table", format)
	}
	return nil
}

func dot(ctx context.Context, cmd *cli.Command) error {
	rt := property.NewRuntime(runtimeOptions(cmd)...)
	return writeDemo(os.Stdout, rt, cmd.String(formatKey), cmd.Bool(edgesKey))
}

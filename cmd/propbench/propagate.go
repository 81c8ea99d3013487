package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/delaneyj/bindgraph/property"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

var chainSizes = []int{1, 10, 100, 1_000}

// chains builds w chains of h bindings over one source, each ending in a
// change tracker that pulls the chain on RunChangeHandlers.
func chains(rt *property.Runtime, w, h int) (src *property.Property[int], ends []*property.ChangeTracker) {
	src = property.NewNamed(rt, 1, "src")
	for i := 0; i < w; i++ {
		last := src
		for j := 0; j < h; j++ {
			prev := last
			last = property.New(rt, 0)
			last.SetBinding(func() int { return prev.Get() + 1 })
		}
		end := last
		ct := property.NewChangeTracker(rt)
		property.Watch(ct, end.Get, func(int) {})
		ends = append(ends, ct)
	}
	return src, ends
}

func propagate(ctx context.Context, cmd *cli.Command) error {
	iters := int(cmd.Int(iterationsKey))
	if iters < 1 {
		return fmt.Errorf("%s must be positive, got %d", iterationsKey, iters)
	}
	maxSize := int(cmd.Int(maxSizeKey))
	opts := runtimeOptions(cmd)

	tbl := table.NewWriter()
	tbl.SetTitle("Propagate")
	tbl.SetStyle(tableStyle())
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "nodes", "avg", "min", "p75", "p99", "max"})

	start := time.Now()
	for _, w := range chainSizes {
		for _, h := range chainSizes {
			if w > maxSize || h > maxSize {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			rt := property.NewRuntime(opts...)
			src, ends := chains(rt, w, h)
			tach := tachymeter.New(&tachymeter.Config{Size: iters})
			for i := 0; i < iters; i++ {
				start := time.Now()
				src.Set(src.Peek() + 1)
				rt.RunChangeHandlers()
				tach.AddTime(time.Since(start))
			}
			for _, ct := range ends {
				ct.Dispose()
			}

			calc := tach.Calc()
			tbl.AppendRow(table.Row{
				fmt.Sprintf("propagate: %d * %d", w, h),
				humanize.Comma(int64(w * h)),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			})
		}
	}
	tbl.Render()
	log.Printf("propagate finished in %v", time.Since(start))
	return nil
}

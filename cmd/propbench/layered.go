package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/delaneyj/bindgraph/property"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

type layeredGraph struct {
	sources []*property.Property[int]
	layers  [][]*property.Property[int]
	// evals counts binding evaluations across the graph.
	evals *int64
}

func makeLayeredGraph(rt *property.Runtime, s scenario) *layeredGraph {
	g := &layeredGraph{evals: new(int64)}
	g.sources = make([]*property.Property[int], s.Width)
	for i := range g.sources {
		g.sources[i] = property.New(rt, i)
	}

	random := rand.New(rand.NewSource(0))
	prev := g.sources
	for l := int64(0); l < s.Layers-1; l++ {
		row := makeLayer(rt, prev, s, random, g.evals)
		g.layers = append(g.layers, row)
		prev = row
	}
	return g
}

func makeLayer(rt *property.Runtime, sources []*property.Property[int], s scenario, random *rand.Rand, evals *int64) []*property.Property[int] {
	row := make([]*property.Property[int], len(sources))
	for myDex := range sources {
		mine := make([]*property.Property[int], 0, s.Sources)
		for sourceDex := 0; sourceDex < int(s.Sources); sourceDex++ {
			mine = append(mine, sources[(myDex+sourceDex)%len(sources)])
		}

		p := property.New(rt, 0)
		if random.Float64() < s.StaticFraction {
			p.SetBinding(func() int {
				*evals++
				sum := 0
				for _, src := range mine {
					sum += src.Get()
				}
				return sum
			})
		} else {
			first, tail := mine[0], mine[1:]
			p.SetBinding(func() int {
				*evals++
				sum := first.Get()
				shouldDrop := sum&0x1 > 0
				dropDex := sum % len(tail)
				for i, src := range tail {
					if shouldDrop && i == dropDex {
						continue
					}
					sum += src.Get()
				}
				return sum
			})
		}
		row[myDex] = p
	}
	return row
}

// run writes one source per iteration and reads the chosen leaves,
// returning the sum of their final values.
func (g *layeredGraph) run(s scenario) int {
	random := rand.New(rand.NewSource(0))
	leaves := g.layers[len(g.layers)-1]
	skip := int(math.Round(float64(len(leaves)) * (1 - s.ReadFraction)))
	read := removeRandom(leaves, skip, random)

	for i := 0; i < int(s.Iterations); i++ {
		dex := i % len(g.sources)
		g.sources[dex].Set(i + dex)
		for _, leaf := range read {
			leaf.Get()
		}
	}

	sum := 0
	for _, leaf := range read {
		sum += leaf.Get()
	}
	return sum
}

func removeRandom[T any](src []T, n int, random *rand.Rand) []T {
	out := make([]T, len(src))
	copy(out, src)
	for i := 0; i < n; i++ {
		dex := random.Intn(len(out))
		out[dex] = out[len(out)-1]
		out = out[:len(out)-1]
	}
	return out
}

func (s scenario) title() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d %d sources", s.Width, s.Layers, s.Sources)
	if s.StaticFraction < 1 {
		sb.WriteString(" dynamic")
	}
	if s.ReadFraction < 1 {
		fmt.Fprintf(&sb, " read %0.2f%%", 100*s.ReadFraction)
	}
	return sb.String()
}

type layeredResult struct {
	sum      int
	evals    int64
	duration time.Duration
}

func layered(ctx context.Context, cmd *cli.Command) error {
	scenarios, err := loadScenarios(cmd.String(configKey))
	if err != nil {
		return err
	}
	repeats := int(cmd.Int(repeatsKey))
	if repeats < 1 {
		repeats = 1
	}
	opts := runtimeOptions(cmd)

	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.SetHeader([]string{
		"size", "sources", "read%", "static%",
		"writes", "test", "time", "evals", "evals/ms", "title",
	})

	for _, s := range scenarios {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Printf("Running '%s'", s.Name)
		rt := property.NewRuntime(opts...)
		g := makeLayeredGraph(rt, s)
		g.run(s)

		best := layeredResult{duration: time.Hour}
		for i := 0; i < repeats; i++ {
			*g.evals = 0
			start := time.Now()
			sum := g.run(s)
			d := time.Since(start)
			if d < best.duration {
				best = layeredResult{sum: sum, evals: *g.evals, duration: d}
			}
		}

		rate := float64(best.evals) / (float64(best.duration) / float64(time.Millisecond))
		tbl.Append([]string{
			fmt.Sprintf("%dx%d", s.Width, s.Layers),
			fmt.Sprint(s.Sources),
			fmt.Sprint(s.ReadFraction),
			fmt.Sprint(s.StaticFraction),
			humanize.Comma(s.Iterations),
			s.Name,
			fmt.Sprint(best.duration),
			humanize.Comma(best.evals),
			humanize.Comma(int64(rate)),
			s.title(),
		})
	}
	tbl.Render()
	return nil
}

package main

import (
	"context"
	"log"
	"os"

	"github.com/delaneyj/bindgraph/property"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

const (
	debugKey      = "debug"
	slowdownKey   = "slow-animations"
	iterationsKey = "iterations"
	maxSizeKey    = "max"
	configKey     = "config"
	repeatsKey    = "repeats"
	formatKey     = "format"
	edgesKey      = "edges"
)

func main() {
	cmd := &cli.Command{
		Name:  "propbench",
		Usage: "Benchmark and inspect the property graph",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  debugKey,
				Usage: "Trace named property evaluation to stderr",
			},
			&cli.UintFlag{
				Name:    slowdownKey,
				Usage:   "Divide animation time by this factor",
				Value:   1,
				Sources: cli.EnvVars("BINDGRAPH_SLOW_ANIMATIONS"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "propagate",
				Usage: "Time a write through width x height chains of bindings",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  iterationsKey,
						Usage: "Writes per configuration",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  maxSizeKey,
						Usage: "Largest width and height to run",
						Value: 1_000,
					},
				},
				Action: propagate,
			},
			{
				Name:  "graph",
				Usage: "Run layered graph scenarios with static and dynamic dependencies",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  configKey,
						Usage: "YAML file with scenarios to run instead of the built in ones",
					},
					&cli.IntFlag{
						Name:  repeatsKey,
						Usage: "Runs per scenario; the fastest is reported",
						Value: 5,
					},
				},
				Action: layered,
			},
			{
				Name:  "dot",
				Usage: "Print the dependency graph of a small demo component",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  formatKey,
						Usage: "dot or table",
						Value: "dot",
					},
					&cli.BoolFlag{
						Name:  edgesKey,
						Usage: "List every edge in table output",
					},
				},
				Action: dot,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func runtimeOptions(cmd *cli.Command) []property.Option {
	opts := []property.Option{
		property.WithAnimationSlowdown(cmd.Uint(slowdownKey)),
	}
	if cmd.Bool(debugKey) {
		opts = append(opts, property.WithLogger(log.Default()), property.WithDebug(true))
	}
	return opts
}

// tableStyle keeps box drawing for terminals and plain ASCII for pipes.
func tableStyle() table.Style {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return table.StyleLight
	}
	return table.StyleDefault
}

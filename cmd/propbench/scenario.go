package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// scenario describes one layered graph run.
type scenario struct {
	Name string `yaml:"name"`
	// Width is the number of sources and the number of nodes per layer.
	Width  int64 `yaml:"width"`
	Layers int64 `yaml:"layers"`
	// StaticFraction of nodes always read all their sources; the rest skip
	// one depending on the value of their first source.
	StaticFraction float64 `yaml:"static_fraction"`
	Sources        int64   `yaml:"sources"`
	// ReadFraction of the last layer is read after every write.
	ReadFraction float64 `yaml:"read_fraction"`
	Iterations   int64   `yaml:"iterations"`
}

type scenarioFile struct {
	Scenarios []scenario `yaml:"scenarios"`
}

var defaultScenarios = []scenario{
	{Name: "simple component", Width: 10, Layers: 5, StaticFraction: 1, Sources: 2, ReadFraction: 0.2, Iterations: 600_000},
	{Name: "dynamic component", Width: 10, Layers: 10, StaticFraction: 0.75, Sources: 6, ReadFraction: 0.2, Iterations: 15_000},
	{Name: "large web app", Width: 1_000, Layers: 12, StaticFraction: 0.95, Sources: 4, ReadFraction: 1, Iterations: 7_000},
	{Name: "wide dense", Width: 1_000, Layers: 5, StaticFraction: 1, Sources: 25, ReadFraction: 1, Iterations: 3_000},
	{Name: "deep", Width: 5, Layers: 500, StaticFraction: 1, Sources: 3, ReadFraction: 1, Iterations: 500},
	{Name: "very dynamic", Width: 100, Layers: 15, StaticFraction: 0.5, Sources: 6, ReadFraction: 1, Iterations: 2_000},
}

func (s scenario) validate() error {
	switch {
	case s.Name == "":
		return fmt.Errorf("scenario without a name")
	case s.Width < 1 || s.Layers < 2 || s.Iterations < 1:
		return fmt.Errorf("scenario %q: width, iterations must be positive and layers at least 2", s.Name)
	case s.Sources < 1 || s.Sources > s.Width:
		return fmt.Errorf("scenario %q: sources must be in [1, width]", s.Name)
	case s.StaticFraction < 0 || s.StaticFraction > 1 || s.ReadFraction < 0 || s.ReadFraction > 1:
		return fmt.Errorf("scenario %q: fractions must be in [0, 1]", s.Name)
	case s.StaticFraction < 1 && s.Sources < 2:
		return fmt.Errorf("scenario %q: dynamic nodes need at least 2 sources", s.Name)
	}
	return nil
}

func parseScenarios(data []byte) ([]scenario, error) {
	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse scenarios: %w", err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios defined")
	}
	for _, s := range f.Scenarios {
		if err := s.validate(); err != nil {
			return nil, err
		}
	}
	return f.Scenarios, nil
}

// loadScenarios returns the built in scenarios when path is empty.
func loadScenarios(path string) ([]scenario, error) {
	if path == "" {
		return defaultScenarios, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseScenarios(data)
}

// Package config loads the solver configuration of SPEC_FULL.md section
// 4.9 from an optional YAML file, the way inference-sim's cmd package
// overlays a YAML run configuration onto built-in defaults.
package config

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"gopkg.in/yaml.v3"

	"github.com/chmdznr/gopf/powerflow"
)

// Solver is the on-disk configuration shape.
type Solver struct {
	Sbase    float64 `yaml:"sbase"`
	Accuracy float64 `yaml:"accuracy"`
	MaxIter  int     `yaml:"maxiter"`
	Verbose  bool    `yaml:"verbose"`

	Dispatch struct {
		OuterTol     float64 `yaml:"outer_tol"`
		MaxOuterIter int     `yaml:"max_outer_iter"`
	} `yaml:"dispatch"`
}

// Default returns the built-in defaults (section 6.2).
func Default() Solver {
	d := powerflow.DefaultConfig()
	s := Solver{Sbase: 100, Accuracy: d.Accuracy, MaxIter: d.MaxIter}
	s.Dispatch.OuterTol = 1e-4
	s.Dispatch.MaxOuterIter = 200
	return s
}

// Load reads a YAML configuration file at path, overlaying it onto
// Default(). A missing path is not an error — it simply returns the
// defaults, matching gofem's own optional-override pattern for solver
// settings.
func Load(path string) (Solver, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, chk.Err("config: cannot read %q: %v", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, chk.Err("config: malformed YAML in %q: %v", path, err)
	}
	return cfg, nil
}

// PowerFlowConfig projects the relevant fields into a powerflow.Config.
func (s Solver) PowerFlowConfig() powerflow.Config {
	return powerflow.Config{Accuracy: s.Accuracy, MaxIter: s.MaxIter, Verbose: s.Verbose}
}

package main

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/spf13/cobra"

	"github.com/chmdznr/gopf/config"
	"github.com/chmdznr/gopf/network"
	"github.com/chmdznr/gopf/powerflow"
	"github.com/chmdznr/gopf/report"
	"github.com/chmdznr/gopf/ybus"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run Ybus assembly and the Newton-Raphson power-flow solver, then print a flow report",
	Run: func(cmd *cobra.Command, args []string) {
		m, cfg := loadCaseAndConfig()
		y := ybus.Build(m)
		rep := powerflow.Solve(m, y, cfg.PowerFlowConfig())
		printConvergence(rep)
		printFlows(m)
	},
}

func loadCaseAndConfig() (*network.Model, config.Solver) {
	if caseFile == "" {
		chk.Panic("--case is required")
	}
	raw, err := os.ReadFile(caseFile)
	if err != nil {
		chk.Panic("cannot read case file %q: %v", caseFile, err)
	}
	m, err := network.ParseCase(raw)
	if err != nil {
		chk.Panic("%v", err)
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		chk.Panic("%v", err)
	}
	if cfg.Sbase > 0 && cfg.Sbase != m.Sbase {
		// The case file's per-unit fields were already converted on its
		// own sbase_mva by network.ParseCase; a differing config Sbase
		// must re-normalize them, not just overwrite m.Sbase, or every
		// later MW conversion silently disagrees with the stored p.u.
		// values.
		io.Pfyel("config sbase=%.3f overrides case sbase=%.3f; rescaling per-unit values\n", cfg.Sbase, m.Sbase)
		m.Rescale(cfg.Sbase)
	}
	return m, cfg
}

func printConvergence(rep powerflow.Report) {
	io.Pf("\n%s\n", rep.StatusText)
	io.Pf("Maximum Power Mismatch = %v\n", rep.MaxError)
	io.Pf("No. of Iterations = %d\n\n", rep.Iter)
}

func printFlows(m *network.Model) {
	flows := report.Flows(m)
	io.Pf("Line Flow and Losses\n")
	io.Pf("from  to    MW      Mvar      MW      Mvar\n")
	for _, f := range flows {
		io.Pf("%4d%6d %9.3f %9.3f %9.3f %9.3f\n", f.From, f.To, real(f.Snk), imag(f.Snk), real(f.Loss), imag(f.Loss))
	}
	total := report.TotalLoss(flows)
	io.Pf("\nTotal loss %9.3f %9.3f\n", real(total), imag(total))
}

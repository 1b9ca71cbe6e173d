package main

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chmdznr/gopf/dispatch"
	"github.com/chmdznr/gopf/losscoef"
	"github.com/chmdznr/gopf/network"
	"github.com/chmdznr/gopf/powerflow"
	"github.com/chmdznr/gopf/ybus"
)

var costFile string
var pdtOverride float64

// dispatchInput is the YAML shape for --cost: per-generator cost
// coefficients and optional MW limits, in generator (bus) order.
type dispatchInput struct {
	Generators []struct {
		Alpha, Beta, Gamma float64
		Pmin               float64
		Pmax               float64
	} `yaml:"generators"`
}

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Derive B-coefficients from a converged case and run lambda-iteration economic dispatch",
	Run: func(cmd *cobra.Command, args []string) {
		m, cfg := loadCaseAndConfig()
		y := ybus.Build(m)
		rep := powerflow.Solve(m, y, cfg.PowerFlowConfig())
		printConvergence(rep)

		coef := losscoef.Build(m, y)

		if costFile == "" {
			chk.Panic("--cost is required")
		}
		raw, err := os.ReadFile(costFile)
		if err != nil {
			chk.Panic("cannot read cost file %q: %v", costFile, err)
		}
		var in dispatchInput
		if err := yaml.Unmarshal(raw, &in); err != nil {
			chk.Panic("malformed cost YAML: %v", err)
		}

		cost := make([]dispatch.Cost, len(in.Generators))
		limits := make([]dispatch.Limits, len(in.Generators))
		for i, gctr := range in.Generators {
			cost[i] = dispatch.Cost{Alpha: gctr.Alpha, Beta: gctr.Beta, Gamma: gctr.Gamma}
			pmax := gctr.Pmax
			if pmax == 0 {
				pmax = 1e18
			}
			limits[i] = dispatch.Limits{Pmin: gctr.Pmin, Pmax: pmax}
		}

		pdt := pdtOverride
		if pdt == 0 {
			pdt = m.Pdt
		}
		if pdt == 0 {
			pdt = totalLoadMW(m)
		}

		res := dispatch.Dispatch(m.Sbase, pdt, cost, limits, coef, m.Lambda)
		if !res.Feasible {
			io.Pfred("dispatch: infeasible demand, no solution\n")
			return
		}
		dispatch.SyncToModel(m, &res)

		io.Pf("Incremental cost of delivered power (system lambda) = %.6f $/MWh\n", res.Lambda)
		io.Pf("Optimal Dispatch of Generation: %v\n", res.Pgg)
		io.Pf("Total system loss PL = %.3f MW\n", res.PL)
		io.Pf("Slack bus mismatch dpslack = %.4f p.u.\n", res.DPSlack)
		io.Pf("Total generation cost = %.2f $/h\n", dispatch.GenCost(res.Pgg, cost))
	},
}

// totalLoadMW sums scheduled bus loads when no explicit --pdt override
// or ingested Pdt is available.
func totalLoadMW(m *network.Model) float64 {
	var sum float64
	for _, b := range m.Buses {
		sum += m.FromPerUnit(b.Pd)
	}
	return sum
}

func init() {
	dispatchCmd.Flags().StringVar(&costFile, "cost", "", "path to a YAML cost/limits file (required)")
	dispatchCmd.Flags().Float64Var(&pdtOverride, "pdt", 0, "override total demand in MW (defaults to ingested Pdt)")
}

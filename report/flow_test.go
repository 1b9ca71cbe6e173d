package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chmdznr/gopf/network"
	"github.com/chmdznr/gopf/powerflow"
	"github.com/chmdznr/gopf/report"
	"github.com/chmdznr/gopf/ybus"
)

// TestTotalLossConsistency checks section 8's
// ΣP_gen − ΣP_load = real(ΣS_branch_loss) within tolerance.
func TestTotalLossConsistency(t *testing.T) {
	m := network.NewModel()
	m.Buses = []*network.Bus{
		{Number: 1, Kind: network.Slack, Vm: 1.05},
		{Number: 2, Kind: network.PQ, Vm: 1.0, Pd: 1.0, Qd: 0.5},
	}
	m.Branches = []network.Branch{{From: 1, To: 2, R: 0.02, X: 0.04, Bc: 0, Tap: 1}}
	m.Normalize()

	y := ybus.Build(m)
	powerflow.Solve(m, y, powerflow.DefaultConfig())

	flows := report.Flows(m)
	total := report.TotalLoss(flows)

	var genMW, loadMW float64
	for _, b := range m.Buses {
		genMW += m.FromPerUnit(b.Pg)
		loadMW += m.FromPerUnit(b.Pd)
	}
	assert.InDelta(t, genMW-loadMW, real(total), 1e-2)
}

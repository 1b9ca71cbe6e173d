package losscoef_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chmdznr/gopf/losscoef"
	"github.com/chmdznr/gopf/network"
	"github.com/chmdznr/gopf/powerflow"
	"github.com/chmdznr/gopf/ybus"
)

func threeBusModel() *network.Model {
	m := network.NewModel()
	m.Buses = []*network.Bus{
		{Number: 1, Kind: network.Slack, Vm: 1.05},
		{Number: 2, Kind: network.PV, Vm: 1.02, Pg: 0.6, Qmax: 0.5, Qmin: -0.5},
		{Number: 3, Kind: network.PQ, Vm: 1.0, Pd: 0.8, Qd: 0.3},
	}
	m.Branches = []network.Branch{
		// Line charging gives Ybus a path to ground so Zbus = Ybus^-1 exists.
		{From: 1, To: 3, R: 0.02, X: 0.06, Bc: 0.02, Tap: 1},
		{From: 2, To: 3, R: 0.02, X: 0.05, Bc: 0.02, Tap: 1},
	}
	m.Normalize()
	return m
}

func TestBuild_BIsSymmetric(t *testing.T) {
	m := threeBusModel()
	y := ybus.Build(m)
	powerflow.Solve(m, y, powerflow.DefaultConfig())
	coef := losscoef.Build(m, y)

	for i := range coef.B {
		for j := range coef.B[i] {
			assert.InDelta(t, coef.B[i][j], coef.B[j][i], 1e-6)
		}
	}
}

package ybus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chmdznr/gopf/network"
	"github.com/chmdznr/gopf/ybus"
)

func twoBusModel() *network.Model {
	m := network.NewModel()
	m.Buses = []*network.Bus{
		{Number: 1, Kind: network.Slack, Vm: 1.05},
		{Number: 2, Kind: network.PQ, Vm: 1.0, Pd: 1.0, Qd: 0.5},
	}
	m.Branches = []network.Branch{{From: 1, To: 2, R: 0.02, X: 0.04, Bc: 0, Tap: 1}}
	m.Normalize()
	return m
}

func TestBuild_OffDiagonalSymmetry(t *testing.T) {
	m := twoBusModel()
	y := ybus.Build(m)
	assert.Equal(t, y.Get(0, 1), y.Get(1, 0))
}

func TestBuild_RowSumZeroForLosslessRadialLine(t *testing.T) {
	m := twoBusModel()
	y := ybus.Build(m)
	for i := 0; i < y.M; i++ {
		var sum complex128
		for j := 0; j < y.N; j++ {
			sum += y.Get(i, j)
		}
		assert.InDelta(t, 0, real(sum), 1e-9)
		assert.InDelta(t, 0, imag(sum), 1e-9)
	}
}

func TestBuild_TapBreaksDiagonalSymmetryNotOffDiagonal(t *testing.T) {
	m := twoBusModel()
	m.Branches[0].Tap = 1.05
	y := ybus.Build(m)
	assert.Equal(t, y.Get(0, 1), y.Get(1, 0), "off-diagonals stay equal under a tap")
	assert.NotEqual(t, y.Get(0, 0), y.Get(1, 1), "diagonals differ once a ≠ 1")
}

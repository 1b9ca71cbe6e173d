package network_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chmdznr/gopf/network"
)

func TestParseCase_NormalizesAndValidates(t *testing.T) {
	raw := []byte(`{
		"sbase_mva": 100,
		"buses": [
			{"number": 1, "kind": 1, "vm": 1.05, "delta_deg": 0},
			{"number": 2, "kind": 0, "vm": 1.0, "pd_mw": 100, "qd_mvar": 50}
		],
		"branches": [
			{"from": 1, "to": 2, "r_pu": 0.02, "x_pu": 0.04, "bc_pu": 0, "tap_ratio": 1}
		]
	}`)
	m, err := network.ParseCase(raw)
	assert.NoError(t, err)
	assert.Equal(t, 2, m.N())
	bus2 := m.BusByNumber(2)
	assert.InDelta(t, 1.0, bus2.Pd, 1e-9)
	assert.InDelta(t, 0.5, bus2.Qd, 1e-9)
}

func TestValidate_RejectsZeroImpedance(t *testing.T) {
	m := network.NewModel()
	m.Buses = []*network.Bus{
		{Number: 1, Kind: network.Slack, Vm: 1.0},
		{Number: 2, Kind: network.PQ, Vm: 1.0},
	}
	m.Branches = []network.Branch{{From: 1, To: 2, R: 0, X: 0}}
	m.Normalize()
	assert.Error(t, m.Validate())
}

func TestValidate_RequiresExactlyOneSlack(t *testing.T) {
	m := network.NewModel()
	m.Buses = []*network.Bus{
		{Number: 1, Kind: network.PQ, Vm: 1.0},
		{Number: 2, Kind: network.PQ, Vm: 1.0},
	}
	assert.Error(t, m.Validate())
}

func TestNormalize_ResetsNonPositiveVm(t *testing.T) {
	m := network.NewModel()
	m.Buses = []*network.Bus{{Number: 1, Kind: network.Slack, Vm: 0}}
	m.Normalize()
	assert.Equal(t, 1.0, m.Buses[0].Vm)
	assert.Equal(t, 0.0, m.Buses[0].Delta)
}

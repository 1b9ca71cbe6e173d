package dispatch

import "github.com/chmdznr/gopf/network"

// SyncToModel writes the dispatched schedule back onto the generator
// buses of m, in ingest (bus-number) order, and fills in Result.DPSlack
// against the slack bus's pre-dispatch Pg — section 4.5's optional
// NetworkModel synchronization and slack-mismatch diagnostic.
func SyncToModel(m *network.Model, res *Result) {
	gens := m.GeneratorBuses()
	for i, b := range gens {
		if i >= len(res.Pgg) {
			break
		}
		preSlack := b.Kind == network.Slack
		prevPgMW := m.FromPerUnit(b.Pg)
		b.Pg = m.PerUnit(res.Pgg[i])
		if preSlack {
			res.DPSlack = abs(prevPgMW-res.Pgg[i]) / m.Sbase
		}
	}
	m.Lambda = res.Lambda
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

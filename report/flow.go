// Package report computes per-branch flows and losses from a converged
// power-flow solution, the numeric twin of gofem's output.go which
// turns converged nodal unknowns into the quantities a human report
// actually wants (section 4.3).
package report

import (
	"math/cmplx"

	"github.com/chmdznr/gopf/network"
)

// BranchFlow is the sending/receiving complex power and loss for one
// branch, in MW/Mvar (already scaled by Sbase).
type BranchFlow struct {
	From, To int
	Snk, Skn complex128 // from-end and to-end flow
	Loss     complex128 // Snk + Skn
}

// Flows computes the per-branch flows of section 4.3 for every branch
// in m, given the converged bus phasors already installed by
// powerflow.Solve.
func Flows(m *network.Model) []BranchFlow {
	out := make([]BranchFlow, 0, len(m.Branches))
	for _, br := range m.Branches {
		f := m.BusByNumber(br.From)
		t := m.BusByNumber(br.To)
		tap := br.Tap
		if tap <= 0 {
			tap = 1.0
		}
		y := 1 / complex(br.R, br.X)
		bc := complex(0, br.Bc)
		a := complex(tap, 0)

		Ink := (f.V-a*t.V)*y/(a*a) + bc/(a*a)*f.V
		Ikn := (t.V-f.V/a)*y + bc*t.V

		Snk := f.V * cmplx.Conj(Ink) * complex(m.Sbase, 0)
		Skn := t.V * cmplx.Conj(Ikn) * complex(m.Sbase, 0)

		out = append(out, BranchFlow{
			From: br.From,
			To:   br.To,
			Snk:  Snk,
			Skn:  Skn,
			Loss: Snk + Skn,
		})
	}
	return out
}

// TotalLoss returns the direct sum of the per-branch losses (section
// 4.3's "System total loss"); each branch is counted once.
func TotalLoss(flows []BranchFlow) complex128 {
	var total complex128
	for _, f := range flows {
		total += f.Loss
	}
	return total
}

// Package ybus assembles the complex nodal admittance matrix from a
// network.Model's branch table, the way gofem's element loop walks
// Elems and accumulates each one's contribution into the global Kb
// matrix (fem/element.go AddToKb) — here the "elements" are branches
// and the "global matrix" is Ybus.
package ybus

import (
	"github.com/chmdznr/gopf/cmat"
	"github.com/chmdznr/gopf/network"
)

// Build forms Ybus (section 4.1). Branch processing order does not
// affect the result.
func Build(m *network.Model) *cmat.Matrix {
	n := m.N()
	y := cmat.New(n, n)
	for _, br := range m.Branches {
		f := br.From - 1
		t := br.To - 1
		tap := br.Tap
		if tap <= 0 {
			tap = 1.0
		}
		yk := 1 / complex(br.R, br.X)
		bc := complex(0, br.Bc)

		off := -yk / complex(tap, 0)
		y.Add(f, t, off)
		y.Set(t, f, y.Get(f, t))

		y.Add(f, f, yk/complex(tap*tap, 0)+bc)
		y.Add(t, t, yk+bc)
	}
	return y
}

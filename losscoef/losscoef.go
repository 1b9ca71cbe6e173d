// Package losscoef derives the Kron B-coefficients of section 4.4 from
// a converged power-flow case: the quadratic form approximating total
// system loss as a function of generator active-power output that
// dispatch.Dispatch consumes.
package losscoef

import (
	"math/cmplx"

	"github.com/chmdznr/gopf/cmat"
	"github.com/chmdznr/gopf/network"
)

// Coefficients holds the derived loss-formula matrices/vectors,
// indexed in bus order over the generator set G (PV + Slack).
type Coefficients struct {
	B   [][]float64 // g x g
	B0  []float64   // g
	B00 float64
}

// Build runs the Kron derivation of section 4.4 against a converged
// case (ybus and the bus phasors/injections powerflow.Solve left on m).
func Build(m *network.Model, ybus *cmat.Matrix) Coefficients {
	n := m.N()
	zbus := ybus.Inverse()

	sIdx := -1
	for i, b := range m.Buses {
		if b.Kind == network.Slack {
			sIdx = i
		}
	}

	// Current injections from loads, and their sum.
	I := make([]complex128, n)
	var ID complex128
	for i, b := range m.Buses {
		I[i] = -complex(b.Pd, -b.Qd) / complex(m.Sbase, 0) / cmplx.Conj(b.V)
		ID += I[i]
	}

	d1 := make([]complex128, n)
	for i := range I {
		d1[i] = I[i] / ID
	}
	var DD complex128
	for i := 0; i < n; i++ {
		DD += d1[i] * zbus.Get(sIdx, i)
	}

	g := 0
	for _, b := range m.Buses {
		if b.Kind != network.PQ {
			g++
		}
	}

	t1 := make([]complex128, g)
	kg := 0
	for i, b := range m.Buses {
		if b.Kind != network.PQ {
			t1[kg] = zbus.Get(sIdx, i) / DD
			kg++
		}
	}

	// C1: n x (g+1) — one-hot generator selector columns, then d1.
	c1 := cmat.New(n, g+1)
	kg = 0
	for i, b := range m.Buses {
		if b.Kind != network.PQ {
			c1.Set(i, kg, 1)
			kg++
		}
		c1.Set(i, g, d1[i])
	}

	// C2: (g+1) x (g+1) — identity stacked above -t1^T, plus the last column.
	c2 := cmat.New(g+1, g+1)
	for i := 0; i < g; i++ {
		c2.Set(i, i, 1)
		c2.Set(g, i, -t1[i])
	}
	c2.Set(g, g, -t1[0])

	c := c1.Mul(c2)

	// Diagonal complex scaling alpha, one entry per generator plus the
	// slack-referred (g+1)-th entry.
	alpha := make([]complex128, g+1)
	kg = 0
	for _, b := range m.Buses {
		if b.Kind != network.PQ {
			if b.Pg > 1e-6 {
				alpha[kg] = (1 - complex(0, (b.Qg+b.Qsh)/b.Pg)) / cmplx.Conj(b.V)
			} else {
				alpha[kg] = 1 / cmplx.Conj(b.V)
			}
			kg++
		}
	}
	alpha[g] = -m.Buses[sIdx].V / zbus.Get(sIdx, sIdx)
	A := cmat.Diag(alpha)

	// c.Conj().ConjTranspose() is the plain transpose of C, which keeps T
	// Hermitian and therefore B symmetric.
	T := A.Mul(c.Conj().ConjTranspose()).Mul(zbus.RealPart()).Mul(c.Conj()).Mul(A.Conj())
	BB := cmat.New(g+1, g+1)
	for i := 0; i < g+1; i++ {
		for j := 0; j < g+1; j++ {
			BB.Set(i, j, 0.5*(T.Get(i, j)+cmplx.Conj(T.Get(i, j))))
		}
	}

	out := Coefficients{
		B:  make([][]float64, g),
		B0: make([]float64, g),
	}
	for k := 0; k < g; k++ {
		out.B[k] = make([]float64, g)
		for mm := 0; mm < g; mm++ {
			out.B[k][mm] = real(BB.Get(k, mm))
		}
		out.B0[k] = 2 * real(BB.Get(g, k))
	}
	out.B00 = real(BB.Get(g, g))
	return out
}

// Loss evaluates the quadratic loss formula PL(Pgg) of section 4.4's
// dispatcher contract, Pgg given in MW.
func (c Coefficients) Loss(sbase float64, pgg []float64) float64 {
	g := len(pgg)
	var quad, lin float64
	for k := 0; k < g; k++ {
		for mm := 0; mm < g; mm++ {
			quad += pgg[k] * (c.B[k][mm] / sbase) * pgg[mm]
		}
		lin += c.B0[k] * pgg[k]
	}
	return quad + lin + c.B00*sbase
}

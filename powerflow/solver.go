// Package powerflow implements the polar Newton-Raphson power-flow
// solver of SPEC_FULL.md section 4.2. The per-iteration Jacobian
// assembly loop mirrors the structure of gofem's run_iterations
// (fem/s_implicit.go): zero the residual and tangent matrix, let every
// "element" (here, every branch incident to a bus) add its
// contribution, solve for the correction, and track the largest
// residual to decide convergence.
package powerflow

import (
	"math"
	"math/cmplx"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/mat"

	"github.com/chmdznr/gopf/cmat"
	"github.com/chmdznr/gopf/network"
)

// Config holds the solver tolerances of section 6.2.
type Config struct {
	Accuracy float64 // mismatch tolerance, default 1e-3
	MaxIter  int     // default 10
	Verbose  bool    // trace iterations via gosl/io, like gofem's ShowR
}

// DefaultConfig returns the section 6.2 defaults.
func DefaultConfig() Config {
	return Config{Accuracy: 1e-3, MaxIter: 10}
}

// Report summarizes convergence, matching section 4.2's
// (iter, maxerror, converged) output and the NonConvergence policy of
// section 7: a non-convergent run is not an error, just a flagged report.
type Report struct {
	Iter       int
	MaxError   float64
	Converged  bool
	StatusText string
}

// indexMap precomputes the nss/ngs prefix counts and the nn/lm
// functions of section 4.2's "Index mapping".
type indexMap struct {
	nss, ngs []int
	nSlack   int
	nGen     int
	n        int
}

func newIndexMap(m *network.Model) *indexMap {
	n := m.N()
	im := &indexMap{nss: make([]int, n), ngs: make([]int, n), n: n}
	ns, ng := 0, 0
	for i, b := range m.Buses {
		if b.Kind == network.Slack {
			ns++
		}
		if b.Kind == network.PV {
			ng++
		}
		im.nss[i] = ns
		im.ngs[i] = ng
	}
	im.nSlack, im.nGen = ns, ng
	return im
}

// nn returns the P-row/delta-column index for bus i (0-based), or -1 if
// bus i is the slack bus (no P equation).
func (im *indexMap) nn(i int, kind network.Kind) int {
	if kind == network.Slack {
		return -1
	}
	return i - im.nss[i]
}

// lm returns the Q-row/Vm-column index for bus i, or -1 unless bus i is PQ.
func (im *indexMap) lm(i int, kind network.Kind) int {
	if kind != network.PQ {
		return -1
	}
	return im.n + i - im.ngs[i] - im.nss[i] - im.nSlack
}

func (im *indexMap) size() int { return 2*im.n - im.nGen - 2*im.nSlack }

// Solve runs Newton-Raphson on ybus/m.Buses until convergence or the
// iteration cap, updating m.Buses in place (Vm, Delta, V, S, DeltaD,
// Yload) and returning a convergence Report.
func Solve(m *network.Model, ybus *cmat.Matrix, cfg Config) Report {
	n := m.N()
	im := newIndexMap(m)
	size := im.size()

	Ym := make([]float64, n*n)
	theta := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := ybus.Get(i, j)
			Ym[i*n+j] = cmplx.Abs(v)
			theta[i*n+j] = cmplx.Phase(v)
		}
	}
	get := func(i, j int) (float64, float64) { return Ym[i*n+j], theta[i*n+j] }

	vm := make([]float64, n)
	delta := make([]float64, n)
	for i, b := range m.Buses {
		vm[i] = b.Vm
		delta[i] = b.Delta
	}
	P := make([]float64, n)
	Q := make([]float64, n)
	for i, b := range m.Buses {
		// scheduled net injection P_n/Q_n (section 4.2); the slack bus's
		// entries start at zero and are overwritten with the computed
		// injection below, and a PV bus's Q (it has no Q mismatch
		// equation) is likewise replaced by the computed value.
		if b.Kind != network.Slack {
			P[i] = b.Pg - b.Pd
		}
		if b.Kind == network.PQ {
			Q[i] = b.Qg - b.Qd + b.Qsh
		}
	}

	rep := Report{}
	if size == 0 {
		// single-bus slack-only network: nothing to solve (section 8,
		// "a single-bus slack-only network solves trivially").
		rep.Converged = true
		rep.StatusText = "Power Flow Solution by Newton-Raphson Method"
		finalize(m, vm, delta, P, Q)
		return rep
	}

	accuracy := cfg.Accuracy
	if accuracy <= 0 {
		accuracy = DefaultConfig().Accuracy
	}
	maxiter := cfg.MaxIter
	if maxiter <= 0 {
		maxiter = DefaultConfig().MaxIter
	}

	maxerror := 1.0
	converged := true
	iter := 0

	for maxerror >= accuracy && iter <= maxiter {
		iter++
		A := mat.NewDense(size, size, nil)
		DC := make([]float64, size)

		for i, b := range m.Buses {
			nn := im.nn(i, b.Kind)
			lm := im.lm(i, b.Kind)

			var J11, J22, J33, J44 float64
			for _, br := range m.Branches {
				var l int
				switch {
				case br.From-1 == i:
					l = br.To - 1
				case br.To-1 == i:
					l = br.From - 1
				default:
					continue
				}
				ym, th := get(i, l)
				ang := th - delta[i] + delta[l]
				J11 += vm[i] * vm[l] * ym * math.Sin(ang)
				J33 += vm[i] * vm[l] * ym * math.Cos(ang)
				if b.Kind != network.Slack {
					J22 += vm[l] * ym * math.Cos(ang)
					J44 += vm[l] * ym * math.Sin(ang)
				}
				lKind := m.Buses[l].Kind
				if b.Kind != network.Slack && lKind != network.Slack {
					lk := im.lm(l, lKind)
					ll := im.nn(l, lKind)
					if nn >= 0 && ll >= 0 {
						A.Set(nn, ll, -vm[i]*vm[l]*ym*math.Sin(ang))
					}
					if lKind == network.PQ && nn >= 0 && lk >= 0 {
						A.Set(nn, lk, vm[i]*ym*math.Cos(ang))
					}
					if b.Kind == network.PQ && lm >= 0 && ll >= 0 {
						A.Set(lm, ll, -vm[i]*vm[l]*ym*math.Cos(ang))
					}
					if b.Kind == network.PQ && lKind == network.PQ && lm >= 0 && lk >= 0 {
						A.Set(lm, lk, -vm[i]*ym*math.Sin(ang))
					}
				}
			}

			ymii, thii := get(i, i)
			Pk := vm[i]*vm[i]*ymii*math.Cos(thii) + J33
			Qk := -vm[i]*vm[i]*ymii*math.Sin(thii) - J11

			if b.Kind == network.Slack {
				P[i] = Pk
				Q[i] = Qk
			}
			if b.Kind == network.PV {
				Q[i] = Qk
				if b.Qmax != 0 && iter > 2 && iter <= 7 {
					qgc := Q[i]*m.Sbase + b.Qd*m.Sbase - b.Qsh*m.Sbase
					switch {
					case qgc < b.Qmin*m.Sbase:
						vm[i] += 0.01
					case qgc > b.Qmax*m.Sbase:
						vm[i] -= 0.01
					}
				}
			}

			if b.Kind != network.Slack && nn >= 0 {
				A.Set(nn, nn, J11)
				DC[nn] = P[i] - Pk
			}
			if b.Kind == network.PQ && lm >= 0 && nn >= 0 {
				A.Set(nn, lm, 2*vm[i]*ymii*math.Cos(thii)+J22)
				A.Set(lm, nn, J33)
				A.Set(lm, lm, -2*vm[i]*ymii*math.Sin(thii)-J44)
				DC[lm] = Q[i] - Qk
			}
		}

		dx, singular := solveReal(A, DC)
		if singular {
			io.Pfyel("powerflow: singular Jacobian at iteration %d, using pseudo-inverse\n", iter)
		}

		for i, b := range m.Buses {
			nn := im.nn(i, b.Kind)
			lm := im.lm(i, b.Kind)
			if b.Kind != network.Slack && nn >= 0 {
				delta[i] += dx[nn]
			}
			if b.Kind == network.PQ && lm >= 0 {
				vm[i] += dx[lm]
			}
		}

		maxerror = 0
		for _, v := range DC {
			if a := math.Abs(v); a > maxerror {
				maxerror = a
			}
		}
		if cfg.Verbose {
			io.Pf("%4d%23.15e\n", iter, maxerror)
		}
		if iter == maxiter && maxerror > accuracy {
			converged = false
		}
	}

	rep.Iter = iter
	rep.MaxError = maxerror
	rep.Converged = converged
	if converged {
		rep.StatusText = "Power Flow Solution by Newton-Raphson Method"
	} else {
		rep.StatusText = "ITERATIVE SOLUTION DID NOT CONVERGE"
		io.Pfred("powerflow: %s after %d iterations (maxerror=%.3e)\n", rep.StatusText, iter, maxerror)
	}

	finalize(m, vm, delta, P, Q)
	return rep
}

// finalize converts delta to degrees, rebuilds V/S/yload, and re-syncs
// the bus table, per section 4.2's "Post-processing".
func finalize(m *network.Model, vm, delta, P, Q []float64) {
	for i, b := range m.Buses {
		b.Vm = vm[i]
		b.Delta = delta[i]
		b.DeltaD = delta[i] * 180 / math.Pi
		b.V = complex(vm[i]*math.Cos(delta[i]), vm[i]*math.Sin(delta[i]))
		b.S = complex(P[i], Q[i])

		switch b.Kind {
		case network.Slack:
			b.Pg = P[i] + b.Pd
			b.Qg = Q[i] + b.Qd - b.Qsh
		case network.PV:
			b.Qg = Q[i] + b.Qd - b.Qsh
		}
		b.Yload = complex(b.Pd, -b.Qd+b.Qsh) / complex(vm[i]*vm[i], 0)
	}
}

// solveReal solves A x = b, falling back to a minimum-norm (SVD-based
// pseudo-inverse) solve when A is singular — section 4.2 step 7 and the
// SingularJacobian policy of section 7. Returns whether the fallback
// was used.
func solveReal(A *mat.Dense, b []float64) (x []float64, usedFallback bool) {
	n := len(b)
	rhs := mat.NewVecDense(n, b)
	var sol mat.VecDense
	if err := sol.SolveVec(A, rhs); err != nil {
		usedFallback = true
		var svd mat.SVD
		if !svd.Factorize(A, mat.SVDFull) {
			chk.Panic("powerflow: SVD factorization failed on a singular Jacobian")
		}
		sol = pseudoInverseSolve(&svd, b)
	}
	x = make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = sol.AtVec(i)
	}
	return x, usedFallback
}

// pseudoInverseSolve applies the Moore-Penrose pseudo-inverse
// x = V * Sigma^+ * U^T * b built from an already-factorized SVD.
func pseudoInverseSolve(svd *mat.SVD, b []float64) mat.VecDense {
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sv := svd.Values(nil)
	n := len(sv)
	const tol = 1e-12
	ut := u.T()
	utb := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for k := 0; k < u.RawMatrix().Rows; k++ {
			sum += ut.At(i, k) * b[k]
		}
		if sv[i] > tol {
			utb[i] = sum / sv[i]
		}
	}
	out := mat.NewVecDense(v.RawMatrix().Rows, nil)
	for i := 0; i < v.RawMatrix().Rows; i++ {
		var sum float64
		for k := 0; k < n; k++ {
			sum += v.At(i, k) * utb[k]
		}
		out.SetVec(i, sum)
	}
	return *out
}

// Package dispatch solves the classical lambda-iteration economic
// dispatch of section 4.5: a nested iteration where an inner linear
// solve distributes power under a trial incremental cost and an outer
// Newton-style update corrects that incremental cost, much as gofem's
// run_iterations nests an element residual assembly inside an outer
// time-step loop (fem/s_implicit.go).
package dispatch

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/mat"

	"github.com/chmdznr/gopf/losscoef"
)

// Cost is one generator's quadratic fuel-cost coefficients (alpha, beta, gamma).
type Cost struct {
	Alpha, Beta, Gamma float64
}

// Limits is one generator's (Pmin, Pmax) in MW.
type Limits struct {
	Pmin, Pmax float64
}

// Result is the dispatcher's output (section 4.5 "Outputs").
type Result struct {
	Pgg        []float64 // MW, per generator in the input order
	Lambda     float64   // $/MWh
	PL         float64   // MW
	Feasible   bool
	DPSlack    float64 // |Pg_slack - Pgg[0]| / Sbase, set by callers that track it
	Iterations int
}

// Dispatch runs the nested iteration of section 4.5. lambda0 is the
// warm-start incremental cost (network.Model.Lambda); pass 0 on a cold
// start, in which case lambda is initialized to max(beta) as the
// source does on its first call.
func Dispatch(sbase, pdt float64, cost []Cost, limits []Limits, coef losscoef.Coefficients, lambda0 float64) Result {
	g := len(cost)
	if len(limits) != g {
		limits = make([]Limits, g)
		for i := range limits {
			limits[i] = Limits{Pmin: 0, Pmax: math.Inf(1)}
		}
	}
	if len(coef.B) == 0 {
		coef = losscoef.Coefficients{B: make([][]float64, g), B0: make([]float64, g)}
		for i := range coef.B {
			coef.B[i] = make([]float64, g)
		}
	}

	var sumMax, sumMin float64
	for _, l := range limits {
		sumMax += l.Pmax
		sumMin += l.Pmin
	}
	if pdt > sumMax || pdt < sumMin {
		io.Pfred("dispatch: demand %.3f MW is infeasible against limits [%.3f, %.3f]\n", pdt, sumMin, sumMax)
		return Result{Feasible: false}
	}

	Bu := make([][]float64, g)
	for i := range Bu {
		Bu[i] = make([]float64, g)
		for j := range Bu[i] {
			Bu[i][j] = coef.B[i][j] / sbase
		}
	}
	B00u := coef.B00 * sbase

	w := make([]bool, g)
	for i := range w {
		w[i] = true
	}

	lambda := lambda0
	if lambda == 0 {
		lambda = cost[0].Beta
		for _, c := range cost {
			if c.Beta > lambda {
				lambda = c.Beta
			}
		}
	}

	Pgg := make([]float64, g)
	delP := 10.0
	iter := 0

	for math.Abs(delP) >= 1e-4 && iter < 200 {
		iter++

		E := mat.NewDense(g, g, nil)
		Dx := mat.NewVecDense(g, nil)
		for k := 0; k < g; k++ {
			if w[k] {
				for mm := 0; mm < g; mm++ {
					E.Set(k, mm, Bu[k][mm])
				}
				E.Set(k, k, cost[k].Gamma/lambda+Bu[k][k])
				Dx.SetVec(k, 0.5*(1-coef.B0[k]-cost[k].Beta/lambda))
			} else {
				for mm := 0; mm < g; mm++ {
					E.Set(k, mm, 0)
				}
				E.Set(k, k, 1)
				Dx.SetVec(k, 0)
			}
		}

		P := solve(E, Dx, g)
		for k := 0; k < g; k++ {
			if w[k] {
				Pgg[k] = P[k]
			}
		}

		PL := coef.Loss(sbase, Pgg)
		var sumPgg float64
		for _, p := range Pgg {
			sumPgg += p
		}
		delP = pdt + PL - sumPgg

		for k := 0; k < g; k++ {
			if Pgg[k] > limits[k].Pmax && math.Abs(delP) <= 1e-3 {
				Pgg[k] = limits[k].Pmax
				w[k] = false
			} else if Pgg[k] < limits[k].Pmin && math.Abs(delP) <= 1e-3 {
				Pgg[k] = limits[k].Pmin
				w[k] = false
			}
		}

		PL = coef.Loss(sbase, Pgg)
		sumPgg = 0
		for _, p := range Pgg {
			sumPgg += p
		}
		delP = pdt + PL - sumPgg

		grad := make([]float64, g)
		for k := 0; k < g; k++ {
			if !w[k] {
				continue
			}
			var bp float64
			for mm := 0; mm < g; mm++ {
				if mm != k {
					bp += Bu[k][mm] * Pgg[mm]
				}
			}
			denom := 2 * math.Pow(cost[k].Gamma+lambda*Bu[k][k], 2)
			if denom > 1e-10 {
				grad[k] = (cost[k].Gamma*(1-coef.B0[k]) + Bu[k][k]*cost[k].Beta - 2*cost[k].Gamma*bp) / denom
			}
		}

		var sumGrad float64
		for k := 0; k < g; k++ {
			if w[k] {
				sumGrad += grad[k]
			}
		}

		if math.Abs(sumGrad) > 1e-6 {
			dLambda := delP / sumGrad
			if math.Abs(dLambda) > 0.5*lambda {
				dLambda = 0.5 * lambda * sign(dLambda)
			}
			lambda += dLambda
		} else if delP > 0 {
			lambda *= 1.05
		} else {
			lambda *= 0.95
		}
	}

	return Result{
		Pgg:        Pgg,
		Lambda:     lambda,
		PL:         coef.Loss(sbase, Pgg),
		Feasible:   true,
		Iterations: iter,
	}
}

// GenCost returns total generation cost, section 4.6.
func GenCost(pgg []float64, cost []Cost) float64 {
	var total float64
	for k, c := range cost {
		total += c.Alpha + c.Beta*pgg[k] + c.Gamma*pgg[k]*pgg[k]
	}
	return total
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// solve solves E*x=b with a minimum-norm fallback on singular E,
// mirroring the powerflow Jacobian solve's SingularJacobian policy
// (section 7) for the dispatcher's own linear system.
func solve(E *mat.Dense, b *mat.VecDense, n int) []float64 {
	var sol mat.VecDense
	if err := sol.SolveVec(E, b); err != nil {
		io.Pfyel("dispatch: singular E matrix, using pseudo-inverse\n")
		var svd mat.SVD
		if !svd.Factorize(E, mat.SVDFull) {
			chk.Panic("dispatch: SVD factorization failed on a singular E matrix")
		}
		var u, v mat.Dense
		svd.UTo(&u)
		svd.VTo(&v)
		sv := svd.Values(nil)
		ut := u.T()
		utb := make([]float64, n)
		for i := 0; i < n; i++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += ut.At(i, k) * b.AtVec(k)
			}
			if sv[i] > 1e-12 {
				utb[i] = sum / sv[i]
			}
		}
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += v.At(i, k) * utb[k]
			}
			out[i] = sum
		}
		return out
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = sol.AtVec(i)
	}
	return out
}

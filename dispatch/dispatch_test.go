package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chmdznr/gopf/dispatch"
	"github.com/chmdznr/gopf/losscoef"
)

// TestLosslessReducesToAnalyticForm is the round-trip law of section 8:
// with zero B-coefficients, dispatch must match Pg_k = (lambda-beta_k)/(2*gamma_k).
func TestLosslessReducesToAnalyticForm(t *testing.T) {
	cost := []dispatch.Cost{
		{Alpha: 200, Beta: 7.0, Gamma: 0.008},
		{Alpha: 180, Beta: 6.3, Gamma: 0.009},
		{Alpha: 140, Beta: 6.8, Gamma: 0.007},
	}
	limits := []dispatch.Limits{
		{Pmin: 0, Pmax: 1e18},
		{Pmin: 0, Pmax: 1e18},
		{Pmin: 0, Pmax: 1e18},
	}
	coef := losscoef.Coefficients{B: [][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}, B0: []float64{0, 0, 0}, B00: 0}

	res := dispatch.Dispatch(100, 150, cost, limits, coef, 0)
	assert.True(t, res.Feasible)

	for k, c := range cost {
		expected := (res.Lambda - c.Beta) / (2 * c.Gamma)
		assert.InDelta(t, expected, res.Pgg[k], 1e-3)
	}

	var sum float64
	for _, p := range res.Pgg {
		sum += p
	}
	assert.InDelta(t, 150, sum-res.PL, 1e-3)
}

// TestLossyDispatchExceedsDemandByLosses is end-to-end scenario 4.
func TestLossyDispatchExceedsDemandByLosses(t *testing.T) {
	cost := []dispatch.Cost{
		{Alpha: 200, Beta: 7.0, Gamma: 0.008},
		{Alpha: 180, Beta: 6.3, Gamma: 0.009},
		{Alpha: 140, Beta: 6.8, Gamma: 0.007},
	}
	limits := []dispatch.Limits{
		{Pmin: 0, Pmax: 1e18},
		{Pmin: 0, Pmax: 1e18},
		{Pmin: 0, Pmax: 1e18},
	}
	coef := losscoef.Coefficients{
		B:   [][]float64{{0.0218, 0, 0}, {0, 0.0228, 0}, {0, 0, 0.0179}},
		B0:  []float64{0, 0, 0},
		B00: 0,
	}

	res := dispatch.Dispatch(100, 150, cost, limits, coef, 0)
	assert.True(t, res.Feasible)

	var sum float64
	for _, p := range res.Pgg {
		sum += p
	}
	assert.Greater(t, sum, 150.0)
	assert.InDelta(t, 150, sum-res.PL, 1e-2)
}

func TestInfeasibleDemandReturnsDiagnostic(t *testing.T) {
	cost := []dispatch.Cost{{Alpha: 0, Beta: 5, Gamma: 0.01}}
	limits := []dispatch.Limits{{Pmin: 0, Pmax: 50}}
	coef := losscoef.Coefficients{B: [][]float64{{0}}, B0: []float64{0}, B00: 0}

	res := dispatch.Dispatch(100, 100, cost, limits, coef, 0)
	assert.False(t, res.Feasible)
}

func TestGeneratorLimitsRespected(t *testing.T) {
	cost := []dispatch.Cost{
		{Alpha: 0, Beta: 5, Gamma: 0.01},
		{Alpha: 0, Beta: 6, Gamma: 0.02},
	}
	limits := []dispatch.Limits{
		{Pmin: 0, Pmax: 40},
		{Pmin: 0, Pmax: 200},
	}
	coef := losscoef.Coefficients{B: [][]float64{{0, 0}, {0, 0}}, B0: []float64{0, 0}, B00: 0}

	res := dispatch.Dispatch(100, 120, cost, limits, coef, 0)
	assert.True(t, res.Feasible)
	for k, l := range limits {
		assert.GreaterOrEqual(t, res.Pgg[k], l.Pmin-1e-6)
		assert.LessOrEqual(t, res.Pgg[k], l.Pmax+1e-6)
	}
}

package cmat_test

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chmdznr/gopf/cmat"
)

func TestInverse_RoundTripsThroughIdentity(t *testing.T) {
	a := cmat.New(2, 2)
	a.Set(0, 0, complex(4, 1))
	a.Set(0, 1, complex(1, 0))
	a.Set(1, 0, complex(2, -1))
	a.Set(1, 1, complex(3, 2))

	inv := a.Inverse()
	prod := a.Mul(inv)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := complex128(0)
			if i == j {
				want = 1
			}
			assert.LessOrEqual(t, cmplx.Abs(prod.Get(i, j)-want), 1e-9)
		}
	}
}

func TestConjTranspose(t *testing.T) {
	a := cmat.New(1, 2)
	a.Set(0, 0, complex(1, 2))
	a.Set(0, 1, complex(3, -4))
	ct := a.ConjTranspose()
	assert.Equal(t, complex(1, -2), ct.Get(0, 0))
	assert.Equal(t, complex(3, 4), ct.Get(1, 0))
}

// Package cmat provides the small dense complex128 matrix/vector kernel
// the power-flow core needs for Ybus, Zbus, and the B-coefficient
// derivation. Nothing in the retrieved pack offers a complex dense
// linear solver (gonum's CDense is storage-only and gosl/la is
// real-valued), so this package fills that one gap by hand; real-valued
// solves elsewhere in gopf go through gonum.org/v1/gonum/mat instead of
// duplicating this kernel.
package cmat

import (
	"math/cmplx"

	"github.com/cpmech/gosl/chk"
)

// Matrix is a dense row-major complex128 matrix.
type Matrix struct {
	M, N int
	Data []complex128
}

// New allocates an m x n zeroed matrix.
func New(m, n int) *Matrix {
	return &Matrix{M: m, N: n, Data: make([]complex128, m*n)}
}

// Identity returns the n x n identity matrix.
func Identity(n int) *Matrix {
	o := New(n, n)
	for i := 0; i < n; i++ {
		o.Set(i, i, 1)
	}
	return o
}

// Get returns the (i,j) entry.
func (o *Matrix) Get(i, j int) complex128 { return o.Data[i*o.N+j] }

// Set assigns the (i,j) entry.
func (o *Matrix) Set(i, j int, v complex128) { o.Data[i*o.N+j] = v }

// Add accumulates v into the (i,j) entry.
func (o *Matrix) Add(i, j int, v complex128) { o.Data[i*o.N+j] += v }

// Clone returns a deep copy.
func (o *Matrix) Clone() *Matrix {
	c := New(o.M, o.N)
	copy(c.Data, o.Data)
	return c
}

// Conj returns the element-wise conjugate.
func (o *Matrix) Conj() *Matrix {
	c := New(o.M, o.N)
	for i, v := range o.Data {
		c.Data[i] = cmplx.Conj(v)
	}
	return c
}

// ConjTranspose returns the Hermitian (conjugate) transpose.
func (o *Matrix) ConjTranspose() *Matrix {
	c := New(o.N, o.M)
	for i := 0; i < o.M; i++ {
		for j := 0; j < o.N; j++ {
			c.Set(j, i, cmplx.Conj(o.Get(i, j)))
		}
	}
	return c
}

// Mul returns the matrix product o*b.
func (o *Matrix) Mul(b *Matrix) *Matrix {
	if o.N != b.M {
		chk.Panic("cmat: cannot multiply %dx%d by %dx%d", o.M, o.N, b.M, b.N)
	}
	c := New(o.M, b.N)
	for i := 0; i < o.M; i++ {
		for k := 0; k < o.N; k++ {
			v := o.Get(i, k)
			if v == 0 {
				continue
			}
			for j := 0; j < b.N; j++ {
				c.Add(i, j, v*b.Get(k, j))
			}
		}
	}
	return c
}

// RealPart returns the element-wise real part as a plain complex matrix
// with zero imaginary part (kept complex so it composes with Mul).
func (o *Matrix) RealPart() *Matrix {
	c := New(o.M, o.N)
	for i, v := range o.Data {
		c.Data[i] = complex(real(v), 0)
	}
	return c
}

// Diag builds a diagonal matrix from the given entries.
func Diag(d []complex128) *Matrix {
	n := len(d)
	o := New(n, n)
	for i, v := range d {
		o.Set(i, i, v)
	}
	return o
}

// Inverse computes o^-1 via Gauss-Jordan elimination with partial
// pivoting on modulus. Panics (NumericDegeneracy, spec section 7 is the
// caller's concern, not this kernel's) if the matrix is exactly singular
// at some pivot column.
func (o *Matrix) Inverse() *Matrix {
	n := o.M
	if n != o.N {
		chk.Panic("cmat: Inverse requires a square matrix, got %dx%d", o.M, o.N)
	}
	a := o.Clone()
	inv := Identity(n)
	for col := 0; col < n; col++ {
		piv := col
		best := cmplx.Abs(a.Get(col, col))
		for r := col + 1; r < n; r++ {
			if m := cmplx.Abs(a.Get(r, col)); m > best {
				piv, best = r, m
			}
		}
		if best == 0 {
			chk.Panic("cmat: Inverse found a singular matrix at column %d", col)
		}
		if piv != col {
			swapRows(a, col, piv)
			swapRows(inv, col, piv)
		}
		pivVal := a.Get(col, col)
		for j := 0; j < n; j++ {
			a.Set(col, j, a.Get(col, j)/pivVal)
			inv.Set(col, j, inv.Get(col, j)/pivVal)
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := a.Get(r, col)
			if factor == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				a.Set(r, j, a.Get(r, j)-factor*a.Get(col, j))
				inv.Set(r, j, inv.Get(r, j)-factor*inv.Get(col, j))
			}
		}
	}
	return inv
}

func swapRows(o *Matrix, i, j int) {
	for c := 0; c < o.N; c++ {
		o.Data[i*o.N+c], o.Data[j*o.N+c] = o.Data[j*o.N+c], o.Data[i*o.N+c]
	}
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// 1D Laplacian with a shifted diagonal
func laplacian(n int) CSR {
	D := NewDOK(n, n)
	for i := 0; i < n; i++ {
		D.AddAt(i, i, 2.5)
		if i > 0 {
			D.AddAt(i, i-1, -1)
			D.AddAt(i-1, i, -1)
		}
	}
	return D.ToCSR()
}

func TestSparse(t *testing.T) {
	{ // Assembly accumulates
		D := NewDOK(2, 2)
		D.AddAt(0, 1, 1).AddAt(0, 1, 2).AddAt(1, 1, 0)
		assert.Equal(t, 3., D.At(0, 1))
		A := D.ToCSR()
		assert.Equal(t, 1, A.NNZ())
		assert.Equal(t, []float64{0, 0}, A.Diagonal())
		D.SetReadOnly("D")
		assert.Panics(t, func() { D.Set(0, 0, 1) })
	}
	var (
		n = 20
		A = laplacian(n)
		b = make([]float64, n)
	)
	for i := range b {
		b[i] = float64(i%5) - 2
	}
	{ // CG agrees with a dense Cholesky solve
		x := make([]float64, n)
		iters, err := A.SolveCG(x, b, 1.e-12, 100)
		require.NoError(t, err)
		assert.True(t, iters > 0)
		var chol mat.Cholesky
		require.True(t, chol.Factorize(A.ToSymDense()))
		xd := mat.NewVecDense(n, nil)
		require.NoError(t, chol.SolveVecTo(xd, mat.NewVecDense(n, b)))
		for i := range x {
			assert.InDelta(t, xd.AtVec(i), x[i], 1.e-9)
		}
		r := make([]float64, n)
		A.MulVec(r, x)
		for i := range r {
			assert.InDelta(t, b[i], r[i], 1.e-9)
		}
	}
	{ // Failures are reported
		x := make([]float64, n)
		_, err := A.SolveCG(x, b, 1.e-14, 2)
		assert.Error(t, err)
		_, err = A.SolveCG(make([]float64, 3), b, 1.e-12, 100)
		assert.Error(t, err)
		D := NewDOK(2, 2)
		D.AddAt(0, 0, 1)
		_, err = D.ToCSR().SolveCG(make([]float64, 2), []float64{1, 1}, 1.e-12, 10)
		assert.Error(t, err)
		// A zero right hand side gives the zero solution
		x[0] = 5
		_, err = A.SolveCG(x, make([]float64, n), 1.e-12, 10)
		assert.NoError(t, err)
		assert.Equal(t, make([]float64, n), x)
		assert.Panics(t, func() { A.MulVec(make([]float64, 2), x) })
	}
}

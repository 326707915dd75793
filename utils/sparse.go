package utils

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m DOK) Set(i, j int, val float64) DOK { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

// AddAt accumulates val into entry (i,j), the basic operation of finite
// element assembly
func (m DOK) AddAt(i, j int, val float64) DOK { // Changes receiver
	m.checkWritable()
	if val == 0 {
		return m
	}
	m.M.Set(i, j, m.M.At(i, j)+val)
	return m
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:        m.M.ToCSR(),
		readOnly: m.readOnly,
		name:     m.name,
	}
}

type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) Data() []float64 {
	return m.RawMatrix().Data
}

func (m CSR) NNZ() int { return m.M.NNZ() }

// MulVec computes dst = A*x, dst is overwritten
func (m CSR) MulVec(dst, x []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(dst) != nr || len(x) != nc {
		panic(fmt.Errorf("dimension mismatch: A is %dx%d, len(x) = %d, len(dst) = %d",
			nr, nc, len(x), len(dst)))
	}
	for i := range dst {
		dst[i] = 0
	}
	m.M.MulVecTo(dst, false, x)
}

func (m CSR) Diagonal() (d []float64) {
	var (
		nr, _ = m.Dims()
	)
	d = make([]float64, nr)
	m.M.DoNonZero(func(i, j int, v float64) {
		if i == j {
			d[i] = v
		}
	})
	return
}

// ToSymDense expands the matrix into dense symmetric storage, only the upper
// triangle of the sparse matrix is read
func (m CSR) ToSymDense() (S *mat.SymDense) {
	var (
		nr, nc = m.Dims()
	)
	if nr != nc {
		panic(fmt.Errorf("matrix named \"%s\" is not square: %dx%d", m.name, nr, nc))
	}
	S = mat.NewSymDense(nr, nil)
	m.M.DoNonZero(func(i, j int, v float64) {
		if j >= i {
			S.SetSym(i, j, v)
		}
	})
	return
}

// SolveCG solves A x = b for symmetric positive definite A using the Jacobi
// preconditioned conjugate gradient method. x holds the initial guess on entry
// and the solution on exit.
func (m CSR) SolveCG(x, b []float64, tol float64, maxIter int) (iters int, err error) {
	var (
		n     = len(b)
		r     = make([]float64, n)
		z     = make([]float64, n)
		p     = make([]float64, n)
		Ap    = make([]float64, n)
		diag  = m.Diagonal()
		bNorm = floats.Norm(b, 2)
	)
	if len(x) != n {
		return 0, fmt.Errorf("length of x (%d) does not match b (%d)", len(x), n)
	}
	for i, d := range diag {
		if d <= 0 {
			return 0, fmt.Errorf("non-positive diagonal %g at row %d, matrix is not SPD", d, i)
		}
	}
	if bNorm == 0 {
		for i := range x {
			x[i] = 0
		}
		return 0, nil
	}
	m.MulVec(Ap, x)
	floats.SubTo(r, b, Ap)
	precondition := func() {
		for i := range z {
			z[i] = r[i] / diag[i]
		}
	}
	precondition()
	copy(p, z)
	rz := floats.Dot(r, z)
	for iters = 0; iters < maxIter; iters++ {
		if floats.Norm(r, 2) <= tol*bNorm {
			return
		}
		m.MulVec(Ap, p)
		pAp := floats.Dot(p, Ap)
		if pAp <= 0 || math.IsNaN(pAp) {
			return iters, fmt.Errorf("conjugate gradient breakdown at iteration %d, pAp = %g", iters, pAp)
		}
		alpha := rz / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, Ap)
		precondition()
		rzNew := floats.Dot(r, z)
		beta := rzNew / rz
		rz = rzNew
		for i := range p {
			p[i] = z[i] + beta*p[i]
		}
	}
	if floats.Norm(r, 2) > tol*bNorm {
		err = fmt.Errorf("conjugate gradient did not converge in %d iterations, relative residual = %g",
			maxIter, floats.Norm(r, 2)/bNorm)
	}
	return
}

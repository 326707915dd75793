package FEM2D

import (
	"fmt"
	"math"

	"github.com/notargets/goeit/geometry2D"
	"github.com/notargets/goeit/utils"
)

/*
Element is a linear (P1) triangle. The basis functions are the barycentric coordinates of the
triangle, their gradients are constant over the element and stored in Dx, Dy.
*/
type Element struct {
	Area   float64
	Dx, Dy [3]float64
	X, Y   [3]float64
}

func NewElement(x, y [3]float64) (el Element, err error) {
	twoA := (x[1]-x[0])*(y[2]-y[0]) - (x[2]-x[0])*(y[1]-y[0])
	if twoA <= 0 {
		err = fmt.Errorf("element has non-positive area %g, vertices must be counter-clockwise", 0.5*twoA)
		return
	}
	el = Element{
		Area: 0.5 * twoA,
		X:    x,
		Y:    y,
	}
	for i := 0; i < 3; i++ {
		j, k := (i+1)%3, (i+2)%3
		el.Dx[i] = (y[j] - y[k]) / twoA
		el.Dy[i] = (x[k] - x[j]) / twoA
	}
	return
}

// Stiffness is the local matrix |K| ∇φi·∇φj for unit conductivity
func (el Element) Stiffness() (S [3][3]float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			S[i][j] = el.Area * (el.Dx[i]*el.Dx[j] + el.Dy[i]*el.Dy[j])
		}
	}
	return
}

// Gradient of the linear function with vertex values v
func (el Element) Gradient(v [3]float64) (gx, gy float64) {
	for i := 0; i < 3; i++ {
		gx += v[i] * el.Dx[i]
		gy += v[i] * el.Dy[i]
	}
	return
}

// Barycentric coordinates of (x,y), all are within [0,1] for points inside
func (el Element) Barycentric(x, y float64) (lambda [3]float64) {
	// The barycentric coordinate is the linear basis function, 1 at its own vertex
	for i := 0; i < 3; i++ {
		lambda[i] = 1 + el.Dx[i]*(x-el.X[i]) + el.Dy[i]*(y-el.Y[i])
	}
	return
}

func (el Element) Contains(x, y, tol float64) bool {
	for _, l := range el.Barycentric(x, y) {
		if l < -tol {
			return false
		}
	}
	return true
}

// BoundaryMass is the 1D linear mass matrix ∫φiφj ds on an edge of length h
func BoundaryMass(h float64) [2][2]float64 {
	return [2][2]float64{
		{h / 3, h / 6},
		{h / 6, h / 3},
	}
}

/*
Space is the P1 function space on a triangle mesh: one degree of freedom per vertex.
*/
type Space struct {
	Mesh     *geometry2D.TriMesh
	Elements []Element
	Box      *geometry2D.BoundingBox
}

func NewSpace(tm *geometry2D.TriMesh) (sp *Space, err error) {
	var (
		vx, vy = tm.VX.Data(), tm.VY.Data()
	)
	sp = &Space{
		Mesh:     tm,
		Elements: make([]Element, tm.K()),
		Box:      tm.GetBoundingBox(),
	}
	for k, tri := range tm.EToV {
		var x, y [3]float64
		for n := 0; n < 3; n++ {
			x[n], y[n] = vx[tri[n]], vy[tri[n]]
		}
		if sp.Elements[k], err = NewElement(x, y); err != nil {
			err = fmt.Errorf("element %d: %w", k, err)
			return
		}
	}
	return
}

func (sp *Space) Dim() int { return sp.Mesh.Nv() }

func (sp *Space) Local(field []float64, k int) (v [3]float64) {
	tri := sp.Mesh.EToV[k]
	for n := 0; n < 3; n++ {
		v[n] = field[tri[n]]
	}
	return
}

// Locate returns the element containing (x,y), or -1 when it is outside the mesh
func (sp *Space) Locate(x, y float64) (k int) {
	if !sp.Box.PointInside(geometry2D.Point{X: [2]float64{x, y}}) {
		return -1
	}
	for k, el := range sp.Elements {
		if el.Contains(x, y, 1e-10) {
			return k
		}
	}
	return -1
}

// Interpolate evaluates the P1 field at (x,y), ok is false outside the mesh
func (sp *Space) Interpolate(field []float64, x, y float64) (val float64, ok bool) {
	k := sp.Locate(x, y)
	if k < 0 {
		return math.NaN(), false
	}
	lambda := sp.Elements[k].Barycentric(x, y)
	v := sp.Local(field, k)
	for n := 0; n < 3; n++ {
		val += lambda[n] * v[n]
	}
	return val, true
}

// Integrate returns ∫ field dx over the mesh
func (sp *Space) Integrate(field []float64) (sum float64) {
	for k, el := range sp.Elements {
		v := sp.Local(field, k)
		sum += el.Area * (v[0] + v[1] + v[2]) / 3
	}
	return
}

/*
Sample evaluates the field on the tensor grid X by Y. The result has len(Y) rows and len(X) columns,
points outside of the mesh are NaN.
*/
func (sp *Space) Sample(field []float64, X, Y []float64) (R utils.Matrix) {
	R = utils.NewMatrix(len(Y), len(X))
	for j, y := range Y {
		for i, x := range X {
			val, _ := sp.Interpolate(field, x, y)
			R.Set(j, i, val)
		}
	}
	return
}

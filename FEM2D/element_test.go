package FEM2D

import (
	"math"
	"testing"

	"github.com/notargets/goeit/geometry2D"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElement(t *testing.T) {
	el, err := NewElement([3]float64{0, 1, 0}, [3]float64{0, 0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, el.Area, 1.e-15)
	{ // Reference triangle stiffness
		S := el.Stiffness()
		expected := [3][3]float64{
			{1, -0.5, -0.5},
			{-0.5, 0.5, 0},
			{-0.5, 0, 0.5},
		}
		for i := 0; i < 3; i++ {
			var rowSum float64
			for j := 0; j < 3; j++ {
				assert.InDelta(t, expected[i][j], S[i][j], 1.e-15)
				rowSum += S[i][j]
			}
			assert.InDelta(t, 0., rowSum, 1.e-15)
		}
	}
	{ // Linear functions are reproduced exactly
		f := func(x, y float64) float64 { return 2 + 3*x - 4*y }
		v := [3]float64{f(0, 0), f(1, 0), f(0, 1)}
		gx, gy := el.Gradient(v)
		assert.InDelta(t, 3., gx, 1.e-14)
		assert.InDelta(t, -4., gy, 1.e-14)
		lambda := el.Barycentric(0.2, 0.3)
		var val float64
		for n := 0; n < 3; n++ {
			val += lambda[n] * v[n]
		}
		assert.InDelta(t, f(0.2, 0.3), val, 1.e-14)
	}
	assert.True(t, el.Contains(0.25, 0.25, 0))
	assert.False(t, el.Contains(0.75, 0.75, 1.e-10))
	{
		M := BoundaryMass(0.6)
		assert.InDelta(t, 0.6, M[0][0]+M[0][1]+M[1][0]+M[1][1], 1.e-15)
	}
	_, err = NewElement([3]float64{0, 0, 1}, [3]float64{0, 1, 0})
	assert.Error(t, err, "clockwise element")
}

func TestSpace(t *testing.T) {
	tm, err := geometry2D.NewDiskMesh(geometry2D.DiskParameters{
		Radius: 1, Rings: 5, Electrodes: 8, NodesPerElectrode: 4,
	})
	require.NoError(t, err)
	sp, err := NewSpace(tm)
	require.NoError(t, err)
	assert.Equal(t, tm.Nv(), sp.Dim())
	field := make([]float64, sp.Dim())
	for i := range field {
		field[i] = 1 + tm.VX.AtVec(i) + 2*tm.VY.AtVec(i)
	}
	{ // Mean of a linear function over a symmetric domain is its value at the center
		ones := make([]float64, sp.Dim())
		for i := range ones {
			ones[i] = 1
		}
		area := sp.Integrate(ones)
		assert.InDelta(t, tm.TotalArea(), area, 1.e-12)
		assert.InDelta(t, 1., sp.Integrate(field)/area, 1.e-12)
	}
	{
		val, ok := sp.Interpolate(field, 0.1, -0.3)
		assert.True(t, ok)
		assert.InDelta(t, 1+0.1-0.6, val, 1.e-12)
		_, ok = sp.Interpolate(field, 0.99, 0.99)
		assert.False(t, ok)
		assert.Equal(t, -1, sp.Locate(5, 5))
	}
	{
		X := []float64{-0.5, 0, 0.5, 1.5}
		Y := []float64{0.25, -0.25}
		R := sp.Sample(field, X, Y)
		nr, nc := R.Dims()
		assert.Equal(t, 2, nr)
		assert.Equal(t, 4, nc)
		assert.InDelta(t, 1+0.5+0.5, R.At(0, 2), 1.e-12)
		assert.True(t, math.IsNaN(R.At(1, 3)))
	}
}

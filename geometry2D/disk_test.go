package geometry2D

import (
	"math"
	"testing"

	"github.com/notargets/goeit/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskMesh(t *testing.T) {
	dp := DiskParameters{
		Radius:            1,
		Rings:             4,
		Electrodes:        8,
		NodesPerElectrode: 4,
		Coverage:          0.5,
	}
	tm, err := NewDiskMesh(dp)
	require.NoError(t, err)
	nOuter := dp.Electrodes * dp.NodesPerElectrode
	{ // Counts follow from the ring construction
		counts := []int{1, 8, 16, 24, 32}
		var nv, nt int
		for i, n := range counts {
			nv += n
			switch {
			case i == 1:
				nt += n
			case i > 1:
				nt += counts[i-1] + n
			}
		}
		assert.Equal(t, nv, tm.Nv())
		assert.Equal(t, nt, tm.K())
		assert.Equal(t, nOuter, len(tm.BoundaryEdges()))
	}
	{ // All elements are counter-clockwise and the area approaches the disk area
		for k := 0; k < tm.K(); k++ {
			assert.Greater(t, tm.SignedArea(k), 0.)
		}
		// Inscribed polygon area
		polyArea := 0.5 * float64(nOuter) * math.Sin(2*math.Pi/float64(nOuter))
		assert.InDelta(t, polyArea, tm.TotalArea(), 1.e-12)
	}
	{ // Euler characteristic of a disk: V - E + F = 1
		edges := make(map[types.EdgeKey]bool)
		for _, tri := range tm.EToV {
			for n := 0; n < 3; n++ {
				edges[types.NewEdgeKey([2]int{tri[n], tri[(n+1)%3]})] = true
			}
		}
		assert.Equal(t, 1, tm.Nv()-len(edges)+tm.K())
	}
	{ // Electrodes are non empty and centered where expected
		electrodes, err := tm.Electrodes(dp.Electrodes)
		require.NoError(t, err)
		for l, edges := range electrodes {
			assert.Equal(t, 2, len(edges), "electrode %d", l+1)
			var mx, my float64
			for _, e := range edges {
				v := e.GetVertices()
				mx += tm.VX.AtVec(v[0]) + tm.VX.AtVec(v[1])
				my += tm.VY.AtVec(v[0]) + tm.VY.AtVec(v[1])
			}
			center := math.Atan2(my, mx)
			expected := 2 * math.Pi * float64(l) / float64(dp.Electrodes)
			assert.InDelta(t, 0., math.Remainder(center-expected, 2*math.Pi), 1.e-9, "electrode %d", l+1)
		}
	}
	{
		cx, cy, R := tm.Center()
		assert.InDelta(t, 0., cx, 1.e-12)
		assert.InDelta(t, 0., cy, 1.e-12)
		assert.InDelta(t, 1., R, 1.e-12)
	}
}

func TestDiskMeshErrors(t *testing.T) {
	_, err := NewDiskMesh(DiskParameters{Radius: 1, Rings: 0, Electrodes: 8, NodesPerElectrode: 2})
	assert.Error(t, err)
	_, err = NewDiskMesh(DiskParameters{Radius: -1, Rings: 2, Electrodes: 8, NodesPerElectrode: 2})
	assert.Error(t, err)
	// Full coverage tags every boundary edge exactly once
	tm, err := NewDiskMesh(DiskParameters{Radius: 1, Rings: 2, Electrodes: 16, NodesPerElectrode: 2, Coverage: 1})
	require.NoError(t, err)
	electrodes, err := tm.Electrodes(16)
	require.NoError(t, err)
	var total int
	for _, edges := range electrodes {
		total += len(edges)
	}
	assert.Equal(t, 32, total)
}

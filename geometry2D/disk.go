package geometry2D

import (
	"fmt"
	"math"

	"github.com/notargets/goeit/types"
	"github.com/notargets/goeit/utils"
)

type DiskParameters struct {
	Radius            float64 // Tank radius
	Rings             int     // Number of concentric rings of vertices, not counting the center
	Electrodes        int     // Number of electrodes L
	NodesPerElectrode int     // Boundary vertices per electrode pitch
	Coverage          float64 // Fraction of the boundary covered by electrodes
	Offset            float64 // Angle of the center of electrode 1, radians
}

/*
NewDiskMesh builds a circular tank mesh from concentric rings of vertices. The outer ring has
Electrodes*NodesPerElectrode vertices, inner rings scale down with their radius. Consecutive rings
are stitched by walking both rings in angle, so every element has vertices on two neighboring
rings. Electrodes are tagged on the boundary using AssignElectrodes.
*/
func NewDiskMesh(dp DiskParameters) (tm *TriMesh, err error) {
	var (
		nOuter = dp.Electrodes * dp.NodesPerElectrode
	)
	if dp.Radius <= 0 || dp.Rings < 1 || dp.Electrodes < 2 || dp.NodesPerElectrode < 1 {
		err = fmt.Errorf("invalid disk parameters: %+v", dp)
		return
	}
	counts := make([]int, dp.Rings+1)
	counts[0] = 1
	for i := 1; i <= dp.Rings; i++ {
		n := int(math.Round(float64(nOuter) * float64(i) / float64(dp.Rings)))
		if n < 6 {
			n = 6
		}
		counts[i] = n
	}
	counts[dp.Rings] = nOuter
	offsets := make([]int, dp.Rings+1)
	Nv := 0
	for i, n := range counts {
		offsets[i] = Nv
		Nv += n
	}
	VX, VY := utils.NewVector(Nv), utils.NewVector(Nv)
	vx, vy := VX.Data(), VY.Data()
	phase := func(i int) float64 {
		if i == dp.Rings {
			return dp.Offset
		}
		// Stagger the inner rings by half a step
		return dp.Offset + float64(i%2)*math.Pi/float64(counts[i])
	}
	angle := func(i, j int) float64 {
		return phase(i) + 2*math.Pi*float64(j)/float64(counts[i])
	}
	for i := 1; i <= dp.Rings; i++ {
		r := dp.Radius * float64(i) / float64(dp.Rings)
		for j := 0; j < counts[i]; j++ {
			theta := angle(i, j)
			vx[offsets[i]+j] = r * math.Cos(theta)
			vy[offsets[i]+j] = r * math.Sin(theta)
		}
	}

	var tris [][3]int
	// Center fan
	for j := 0; j < counts[1]; j++ {
		tris = append(tris, [3]int{0, offsets[1] + j, offsets[1] + (j+1)%counts[1]})
	}
	for i := 2; i <= dp.Rings; i++ {
		var (
			nIn, nOut = counts[i-1], counts[i]
			in, out   int
		)
		inner := func(j int) int { return offsets[i-1] + j%nIn }
		outer := func(j int) int { return offsets[i] + j%nOut }
		for in < nIn || out < nOut {
			advanceOuter := in == nIn
			if !advanceOuter && out < nOut {
				advanceOuter = angle(i, out+1) <= angle(i-1, in+1)
			}
			if advanceOuter {
				tris = append(tris, [3]int{inner(in), outer(out), outer(out + 1)})
				out++
			} else {
				tris = append(tris, [3]int{inner(in), outer(out), inner(in + 1)})
				in++
			}
		}
	}
	EToV := utils.NewMatrix(len(tris), 3)
	for k, tri := range tris {
		for n := 0; n < 3; n++ {
			EToV.Set(k, n, float64(tri[n]))
		}
	}
	if tm, err = NewTriMesh(VX, VY, EToV, make(types.BCMAP)); err != nil {
		return
	}
	coverage := dp.Coverage
	if coverage == 0 {
		coverage = 0.5
	}
	err = tm.AssignElectrodes(dp.Electrodes, coverage, dp.Offset)
	return
}

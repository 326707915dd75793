package EIT2D

import (
	"math"

	"github.com/notargets/goeit/FEM2D"
	"github.com/notargets/goeit/geometry2D"
	"github.com/notargets/goeit/utils"
)

// PhantomMap assigns a conductivity to each phantom label
type PhantomMap struct {
	Background float64 // label 0
	Low        float64 // label 1, resistive inclusion
	High       float64 // label 2, conductive inclusion
}

func DefaultPhantomMap() PhantomMap {
	return PhantomMap{
		Background: 0.8,
		Low:        1.e-2,
		High:       1.e1,
	}
}

// Conductivity maps a label image to conductivity values, labels other than 0, 1 and 2 map to 0
func (pm PhantomMap) Conductivity(labels utils.Matrix) (sigma utils.Matrix) {
	var (
		nr, nc = labels.Dims()
	)
	sigma = utils.NewMatrix(nr, nc)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			var val float64
			switch label := labels.At(i, j); {
			case label == 0:
				val = pm.Background
			case utils.IsClose(label, 1, 0.01, 0):
				val = pm.Low
			case label == 2:
				val = pm.High
			}
			sigma.Set(i, j, val)
		}
	}
	return
}

/*
ImageToMesh samples a pixel image onto the mesh vertices. The image covers the square [-R,R]²
around the tank center, row 0 is at the top (y = +R) and column 0 at the left (x = -R).
*/
func ImageToMesh(img utils.Matrix, tm *geometry2D.TriMesh) (field []float64) {
	var (
		nr, nc    = img.Dims()
		cx, cy, R = tm.Center()
		vx, vy    = tm.VX.Data(), tm.VY.Data()
	)
	pixel := func(t float64, n int) int {
		i := int(math.Floor(t * float64(n)))
		switch {
		case i < 0:
			return 0
		case i >= n:
			return n - 1
		}
		return i
	}
	field = make([]float64, tm.Nv())
	for v := range field {
		col := pixel((vx[v]-(cx-R))/(2*R), nc)
		row := pixel(((cy+R)-vy[v])/(2*R), nr)
		field[v] = img.At(row, col)
	}
	return
}

// ElementToNodal averages piecewise constant element values onto the vertices, weighted by area
func ElementToNodal(sp *FEM2D.Space, elValues []float64) (field []float64) {
	var (
		weight = make([]float64, sp.Dim())
	)
	field = make([]float64, sp.Dim())
	for k, el := range sp.Elements {
		for _, v := range sp.Mesh.EToV[k] {
			field[v] += el.Area * elValues[k]
			weight[v] += el.Area
		}
	}
	for v := range field {
		if weight[v] > 0 {
			field[v] /= weight[v]
		}
	}
	return
}

package regularization

import (
	"fmt"
	"math"

	"github.com/notargets/goeit/FEM2D"
)

/*
TV is the smoothed total variation of a P1 field

	TV(x) = Alpha * Σ_K |K| sqrt(|∇x_K|² + Delta)

The gradient of a P1 field is constant per element. Delta keeps the penalty differentiable where
the field is flat.
*/
type TV struct {
	Space *FEM2D.Space
	Delta float64
	Alpha float64
}

func NewTV(sp *FEM2D.Space, delta float64) (tv *TV, err error) {
	if delta <= 0 {
		err = fmt.Errorf("TV smoothing delta must be positive, have %g", delta)
		return
	}
	tv = &TV{
		Space: sp,
		Delta: delta,
		Alpha: 1,
	}
	return
}

func (tv *TV) Name() string { return "TV" }

func (tv *TV) Evaluate(x, grad []float64) (val float64) {
	checkDim(tv.Space, x)
	if grad != nil {
		for i := range grad {
			grad[i] = 0
		}
	}
	for k, el := range tv.Space.Elements {
		gx, gy := el.Gradient(tv.Space.Local(x, k))
		s := math.Sqrt(gx*gx + gy*gy + tv.Delta)
		val += el.Area * s
		if grad == nil {
			continue
		}
		tri := tv.Space.Mesh.EToV[k]
		for n := 0; n < 3; n++ {
			grad[tri[n]] += tv.Alpha * el.Area * (gx*el.Dx[n] + gy*el.Dy[n]) / s
		}
	}
	return tv.Alpha * val
}

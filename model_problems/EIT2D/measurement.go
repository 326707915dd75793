package EIT2D

import (
	"fmt"
	"math"

	"github.com/notargets/goeit/utils"
)

// AdjacentPattern measures U_l - U_{l+1} for l = 1...L-1, one column per measurement
func AdjacentPattern(L int) (M utils.Matrix) {
	M = utils.NewMatrix(L, L-1)
	for l := 0; l < L-1; l++ {
		M.Set(l, l, 1)
		M.Set(l+1, l, -1)
	}
	return
}

// AdjacentInjections drives current I between neighboring electrodes, electrode l to l+1 modulo L
func AdjacentInjections(L int, I float64) (Inj utils.Matrix) {
	Inj = utils.NewMatrix(L, L)
	for p := 0; p < L; p++ {
		Inj.Set(p, p, I)
		Inj.Set((p+1)%L, p, -I)
	}
	return
}

// CheckInjections verifies every current pattern sums to zero
func CheckInjections(Inj utils.Matrix) (err error) {
	var (
		L, Ninj = Inj.Dims()
	)
	for p := 0; p < Ninj; p++ {
		var sum, mag float64
		for l := 0; l < L; l++ {
			sum += Inj.At(l, p)
			mag += math.Abs(Inj.At(l, p))
		}
		if math.Abs(sum) > 1.e-9*math.Max(mag, 1.e-300) {
			return fmt.Errorf("injection %d does not conserve current, sum = %g", p, sum)
		}
	}
	return
}

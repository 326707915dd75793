package EIT2D

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

/*
NoiseModel is additive Gaussian measurement noise with standard deviation

	std_i = Relative * |V_i| + Floor * max_j |V_j|
*/
type NoiseModel struct {
	Relative float64
	Floor    float64
	Seed     uint64
}

func (nm NoiseModel) IsZero() bool {
	return nm.Relative == 0 && nm.Floor == 0
}

func (nm NoiseModel) Std(V []float64) (std []float64) {
	var (
		vMax float64
	)
	for _, v := range V {
		vMax = math.Max(vMax, math.Abs(v))
	}
	std = make([]float64, len(V))
	for i, v := range V {
		std[i] = nm.Relative*math.Abs(v) + nm.Floor*vMax
	}
	return
}

// Apply returns a noisy copy of V, the same seed gives the same noise
func (nm NoiseModel) Apply(V []float64) (noisy []float64) {
	var (
		normal = distuv.Normal{
			Mu:    0,
			Sigma: 1,
			Src:   rand.NewPCG(nm.Seed, nm.Seed),
		}
		std = nm.Std(V)
	)
	noisy = make([]float64, len(V))
	for i, v := range V {
		noisy[i] = v + std[i]*normal.Rand()
	}
	return
}

// Weights are the inverse standard deviations, nil when the model is noise free
func (nm NoiseModel) Weights(V []float64) (w []float64) {
	if nm.IsZero() {
		return nil
	}
	w = nm.Std(V)
	for i := range w {
		if w[i] == 0 {
			w[i] = 1
			continue
		}
		w[i] = 1 / w[i]
	}
	return
}

// NoiseSummary returns the mean and sample standard deviation of the noise that was added
func NoiseSummary(clean, noisy []float64) (mean, std float64) {
	diff := make([]float64, len(clean))
	floats.SubTo(diff, noisy, clean)
	return stat.MeanStdDev(diff, nil)
}

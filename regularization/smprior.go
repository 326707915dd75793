package regularization

import (
	"fmt"
	"math"
	"os"

	"github.com/ghodss/yaml"
	"github.com/notargets/goeit/FEM2D"
	"gonum.org/v1/gonum/mat"
)

// SMPriorParameters is the serialized form of a smoothness prior
type SMPriorParameters struct {
	Mean       float64 `json:"Mean"`
	Std        float64 `json:"Std"`
	CorrLength float64 `json:"CorrLength"`
	Jitter     float64 `json:"Jitter,omitempty"`
	Weight     float64 `json:"Weight,omitempty"`
}

func (pp *SMPriorParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, pp)
}

func (pp *SMPriorParameters) Print() {
	fmt.Printf("%8.5f\t\t= Mean\n", pp.Mean)
	fmt.Printf("%8.5f\t\t= Std\n", pp.Std)
	fmt.Printf("%8.5f\t\t= CorrLength\n", pp.CorrLength)
	fmt.Printf("%8.2e\t\t= Jitter\n", pp.Jitter)
}

/*
SMPrior is a Gaussian smoothness prior over the nodal field with squared exponential covariance

	C_ij = Std² exp(-d_ij² / (2 CorrLength²)) + Jitter δ_ij

The penalty is Weight * ½ (x - Mean)ᵀ C⁻¹ (x - Mean), its gradient Weight * C⁻¹ (x - Mean).
*/
type SMPrior struct {
	SMPriorParameters
	Space *FEM2D.Space
	chol  mat.Cholesky
}

func NewSMPrior(sp *FEM2D.Space, pp SMPriorParameters) (prior *SMPrior, err error) {
	var (
		N      = sp.Dim()
		vx, vy = sp.Mesh.VX.Data(), sp.Mesh.VY.Data()
	)
	if pp.Std <= 0 || pp.CorrLength <= 0 {
		err = fmt.Errorf("prior standard deviation and correlation length must be positive: %+v", pp)
		return
	}
	if pp.Jitter == 0 {
		pp.Jitter = 1.e-6 * pp.Std * pp.Std
	}
	if pp.Weight == 0 {
		pp.Weight = 1
	}
	prior = &SMPrior{
		SMPriorParameters: pp,
		Space:             sp,
	}
	C := mat.NewSymDense(N, nil)
	s2, l2 := pp.Std*pp.Std, 2*pp.CorrLength*pp.CorrLength
	for i := 0; i < N; i++ {
		C.SetSym(i, i, s2+pp.Jitter)
		for j := i + 1; j < N; j++ {
			dx, dy := vx[i]-vx[j], vy[i]-vy[j]
			C.SetSym(i, j, s2*math.Exp(-(dx*dx+dy*dy)/l2))
		}
	}
	if ok := prior.chol.Factorize(C); !ok {
		err = fmt.Errorf("prior covariance is not positive definite, increase Jitter (%g)", pp.Jitter)
		return
	}
	return
}

func (prior *SMPrior) Name() string { return "SMPrior" }

func (prior *SMPrior) Evaluate(x, grad []float64) (val float64) {
	var (
		N = len(x)
		r = mat.NewVecDense(N, nil)
		z = mat.NewVecDense(N, nil)
	)
	checkDim(prior.Space, x)
	for i, xi := range x {
		r.SetVec(i, xi-prior.Mean)
	}
	if err := prior.chol.SolveVecTo(z, r); err != nil {
		// The factorization succeeded, so this is a condition number warning only
		fmt.Printf("SMPrior: %v\n", err)
	}
	val = 0.5 * prior.Weight * mat.Dot(r, z)
	if grad != nil {
		for i := range grad {
			grad[i] = prior.Weight * z.AtVec(i)
		}
	}
	return
}

func (prior *SMPrior) Save(filename string) (err error) {
	var data []byte
	if data, err = yaml.Marshal(prior.SMPriorParameters); err != nil {
		return
	}
	return os.WriteFile(filename, data, 0644)
}

// LoadSMPrior reads prior parameters and rebuilds the covariance factorization on the given space
func LoadSMPrior(filename string, sp *FEM2D.Space) (prior *SMPrior, err error) {
	var (
		data []byte
		pp   SMPriorParameters
	)
	if data, err = os.ReadFile(filename); err != nil {
		return nil, fmt.Errorf("unable to read prior file: %w", err)
	}
	if err = pp.Parse(data); err != nil {
		return nil, fmt.Errorf("unable to parse prior file %s: %w", filename, err)
	}
	return NewSMPrior(sp, pp)
}

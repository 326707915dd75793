package regularization

import (
	"fmt"
	"strings"

	"github.com/notargets/goeit/FEM2D"
)

// Penalty is a regularization term over the nodal conductivity field
type Penalty interface {
	Name() string
	// Evaluate returns the penalty at x, the gradient is written into grad unless grad is nil
	Evaluate(x, grad []float64) float64
}

type PenaltyType uint8

const (
	PenaltyTV PenaltyType = iota
	PenaltySMPrior
	PenaltyNone
)

var PenaltyNameMap = map[string]PenaltyType{
	"tv":      PenaltyTV,
	"smprior": PenaltySMPrior,
	"prior":   PenaltySMPrior,
	"none":    PenaltyNone,
}

func NewPenaltyType(label string) (pt PenaltyType, err error) {
	var ok bool
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return PenaltyTV, nil
	}
	if pt, ok = PenaltyNameMap[label]; !ok {
		err = fmt.Errorf("unknown regularization [%s], use one of tv, smprior, none", label)
	}
	return
}

func (pt PenaltyType) String() string {
	switch pt {
	case PenaltyTV:
		return "TV"
	case PenaltySMPrior:
		return "SMPrior"
	default:
		return "None"
	}
}

// Zero is the absent penalty
type Zero struct{}

func (Zero) Name() string { return "None" }

func (Zero) Evaluate(x, grad []float64) float64 {
	for i := range grad {
		grad[i] = 0
	}
	return 0
}

func checkDim(sp *FEM2D.Space, x []float64) {
	if len(x) != sp.Dim() {
		panic(fmt.Errorf("field has %d values, function space has dimension %d", len(x), sp.Dim()))
	}
}

package EIT2D

import (
	"fmt"

	"github.com/notargets/goeit/regularization"
	"github.com/notargets/goeit/utils"
	"gonum.org/v1/gonum/floats"
)

// FieldPlotter renders one nodal field, name is one of sigma, grad_misfit, grad_penalty, grad_total
type FieldPlotter interface {
	PlotField(name string, eval int, field []float64) error
}

/*
Target is the reconstruction objective: data misfit of the forward model plus the regularization
penalty. The last forward state is kept, so a gradient request at the point of the previous value
evaluation only costs the adjoint solves.
*/
type Target struct {
	Model    *ForwardModel
	Penalty  regularization.Penalty
	Data     []float64
	X0       []float64
	Plotters []FieldPlotter

	Count                       int // Value evaluations so far
	Misfit, PenaltyValue, Total float64
	GradMisfit, GradPenalty     []float64
	state                       *State
	stateEval                   int
}

func NewTarget(fm *ForwardModel, penalty regularization.Penalty, data, x0 []float64) (tg *Target, err error) {
	if len(data) != fm.NData() {
		err = fmt.Errorf("data has %d values, the forward model produces %d", len(data), fm.NData())
		return
	}
	if len(x0) != fm.Nn {
		err = fmt.Errorf("initial field has %d values, mesh has %d vertices", len(x0), fm.Nn)
		return
	}
	if penalty == nil {
		penalty = regularization.Zero{}
	}
	tg = &Target{
		Model:       fm,
		Penalty:     penalty,
		Data:        data,
		X0:          append([]float64(nil), x0...),
		GradMisfit:  make([]float64, fm.Nn),
		GradPenalty: make([]float64, fm.Nn),
	}
	return
}

// Value evaluates misfit + penalty and logs "[n]: total ( misfit + penalty )"
func (tg *Target) Value(x []float64) (val float64, err error) {
	var st *State
	if utils.IsNan(x) {
		return 0, fmt.Errorf("conductivity has NaN values at evaluation %d", tg.Count)
	}
	if st, err = tg.Model.Solve(x, tg.Data); err != nil {
		return
	}
	tg.state, tg.stateEval = st, tg.Count
	tg.Misfit = st.Misfit
	tg.PenaltyValue = tg.Penalty.Evaluate(x, nil)
	tg.Total = tg.Misfit + tg.PenaltyValue
	fmt.Printf("[%d]: %g ( %g + %g )\n", tg.Count, tg.Total, tg.Misfit, tg.PenaltyValue)
	tg.Count++
	if err = tg.plot("sigma", tg.stateEval, x); err != nil {
		return
	}
	return tg.Total, nil
}

// Gradient writes the gradient of misfit + penalty at x into grad
func (tg *Target) Gradient(x, grad []float64) (err error) {
	if tg.state == nil || !floats.Equal(tg.state.Sigma, x) {
		if _, err = tg.Value(x); err != nil {
			return
		}
	}
	if err = tg.Model.Gradient(tg.state, tg.GradMisfit); err != nil {
		return
	}
	tg.Penalty.Evaluate(x, tg.GradPenalty)
	floats.AddTo(grad, tg.GradMisfit, tg.GradPenalty)
	for _, pf := range []struct {
		name  string
		field []float64
	}{
		{"grad_misfit", tg.GradMisfit},
		{"grad_penalty", tg.GradPenalty},
		{"grad_total", grad},
	} {
		if err = tg.plot(pf.name, tg.stateEval, pf.field); err != nil {
			return
		}
	}
	return
}

// Eval computes the value and, when grad is not nil, the gradient
func (tg *Target) Eval(x, grad []float64) (val float64, err error) {
	if val, err = tg.Value(x); err != nil {
		return
	}
	if grad != nil {
		err = tg.Gradient(x, grad)
	}
	return
}

func (tg *Target) plot(name string, eval int, field []float64) (err error) {
	for _, p := range tg.Plotters {
		if err = p.PlotField(name, eval, field); err != nil {
			return fmt.Errorf("plotting %s: %w", name, err)
		}
	}
	return
}

package EIT2D

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/notargets/goeit/utils"
	"gonum.org/v1/gonum/optimize"
)

/*
BoundTransform maps an unconstrained variable y onto [Lo, Hi] with

	x = exp(a + (b - a)(1 + tanh y)/2),  a = ln Lo, b = ln Hi

so the conductivity stays within the bounds for every step the optimizer takes and moves in
logarithmic scale.
*/
type BoundTransform struct {
	Lo, Hi float64
	a, b   float64
}

func NewBoundTransform(lo, hi float64) (bt BoundTransform, err error) {
	if !(lo > 0 && hi > lo) {
		err = fmt.Errorf("bounds must satisfy 0 < lower < upper, have [%g, %g]", lo, hi)
		return
	}
	bt = BoundTransform{
		Lo: lo, Hi: hi,
		a: math.Log(lo), b: math.Log(hi),
	}
	return
}

func (bt BoundTransform) ToX(y float64) (x float64) {
	x = math.Exp(bt.a + (bt.b-bt.a)*(1+math.Tanh(y))/2)
	// Saturation of tanh can overshoot by rounding
	return math.Min(math.Max(x, bt.Lo), bt.Hi)
}

// ToY inverts ToX, x is clipped slightly inside the bounds to keep y finite
func (bt BoundTransform) ToY(x float64) (y float64) {
	var (
		eps = 1.e-12
		t   = (math.Log(x) - bt.a) / (bt.b - bt.a)
	)
	t = math.Min(math.Max(t, eps), 1-eps)
	return math.Atanh(2*t - 1)
}

// Deriv is dx/dy at y, x must be ToX(y)
func (bt BoundTransform) Deriv(y, x float64) float64 {
	th := math.Tanh(y)
	return x * (bt.b - bt.a) * (1 - th*th) / 2
}

func (bt BoundTransform) ToXVec(x, y []float64) {
	for i, yi := range y {
		x[i] = bt.ToX(yi)
	}
}

func (bt BoundTransform) ToYVec(y, x []float64) {
	for i, xi := range x {
		y[i] = bt.ToY(xi)
	}
}

/*
XTolConverger stops when every component of the conductivity changes by less than Tol relative to
its value for Patience consecutive major iterations, measured in the bounded variable. A single
short step after heavy line search backtracking does not stop the run.
*/
type XTolConverger struct {
	Tol       float64
	Patience  int // Default 3
	Transform BoundTransform
	last      []float64
	x         []float64
	small     int
}

func (c *XTolConverger) Init(dim int) {
	c.last = nil
	c.x = make([]float64, dim)
	c.small = 0
	if c.Patience < 1 {
		c.Patience = 3
	}
}

func (c *XTolConverger) Converged(loc *optimize.Location) optimize.Status {
	c.Transform.ToXVec(c.x, loc.X)
	if c.last == nil {
		c.last = append([]float64(nil), c.x...)
		return optimize.NotTerminated
	}
	converged := true
	for i, xi := range c.x {
		if math.Abs(xi-c.last[i]) > c.Tol*math.Abs(xi) {
			converged = false
			break
		}
	}
	copy(c.last, c.x)
	if !converged {
		c.small = 0
		return optimize.NotTerminated
	}
	if c.small++; c.small >= c.Patience {
		return optimize.StepConvergence
	}
	return optimize.NotTerminated
}

var MethodNames = []string{"lbfgs", "bfgs", "cg", "gradientdescent"}

func NewMethod(name string) (method optimize.Method, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lbfgs":
		method = &optimize.LBFGS{}
	case "bfgs":
		method = &optimize.BFGS{}
	case "cg":
		method = &optimize.CG{}
	case "gradientdescent", "gd":
		method = &optimize.GradientDescent{}
	default:
		err = fmt.Errorf("unknown optimization method [%s], use one of %v", name, MethodNames)
	}
	return
}

type Options struct {
	Lower, Upper float64
	XTolRel      float64
	MaxEval      int
	Method       string
	Verbose      bool
}

func DefaultOptions() Options {
	return Options{
		Lower:   1.e-5,
		Upper:   1.e2,
		XTolRel: 1.e-4,
		MaxEval: 100,
		Method:  "lbfgs",
	}
}

type Result struct {
	X           []float64
	Value       float64
	Status      optimize.Status
	Evaluations int
	Iterations  int
	Runtime     time.Duration
}

func (r *Result) Print() {
	x := utils.NewVector(len(r.X), r.X)
	fmt.Printf("Optimum found: min = %g, %d values in [%g, %g]\n",
		r.Value, len(r.X), x.Min(), x.Max())
	fmt.Printf("Result code: %v, function evaluations: %d, iterations: %d, time: %v\n",
		r.Status, r.Evaluations, r.Iterations, r.Runtime)
}

/*
Reconstruct minimizes the target over conductivities within [Lower, Upper], starting from the
target's X0.
*/
func Reconstruct(tg *Target, opts Options) (res *Result, err error) {
	var (
		bt       BoundTransform
		method   optimize.Method
		n        = len(tg.X0)
		x        = make([]float64, n)
		gradX    = make([]float64, n)
		evalErr  error
		y0       = make([]float64, n)
		start    = time.Now()
		optimRes *optimize.Result
	)
	if bt, err = NewBoundTransform(opts.Lower, opts.Upper); err != nil {
		return
	}
	if method, err = NewMethod(opts.Method); err != nil {
		return
	}
	bt.ToYVec(y0, tg.X0)
	problem := optimize.Problem{
		Func: func(y []float64) float64 {
			bt.ToXVec(x, y)
			val, err := tg.Value(x)
			if err != nil {
				evalErr = err
				return math.NaN()
			}
			return val
		},
		Grad: func(grad, y []float64) {
			bt.ToXVec(x, y)
			if err := tg.Gradient(x, gradX); err != nil {
				evalErr = err
				for i := range grad {
					grad[i] = math.NaN()
				}
				return
			}
			for i, yi := range y {
				grad[i] = gradX[i] * bt.Deriv(yi, x[i])
			}
		},
		Status: func() (optimize.Status, error) {
			if evalErr != nil {
				return optimize.Failure, evalErr
			}
			return optimize.NotTerminated, nil
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: opts.MaxEval,
		Converger: &XTolConverger{
			Tol:       opts.XTolRel,
			Transform: bt,
		},
	}
	if opts.Verbose {
		fmt.Printf("Minimizing over %d conductivity values in [%g, %g] with %T, xtol_rel = %g, max evaluations = %d\n",
			n, opts.Lower, opts.Upper, method, opts.XTolRel, opts.MaxEval)
	}
	optimRes, err = optimize.Minimize(problem, y0, settings, method)
	if evalErr != nil {
		err = fmt.Errorf("evaluation %d: %w", tg.Count, evalErr)
	}
	if optimRes == nil {
		return nil, err
	}
	res = &Result{
		X:           make([]float64, n),
		Value:       optimRes.F,
		Status:      optimRes.Status,
		Evaluations: optimRes.FuncEvaluations,
		Iterations:  optimRes.MajorIterations,
		Runtime:     time.Since(start),
	}
	bt.ToXVec(res.X, optimRes.X)
	if evalErr != nil {
		res.Status = optimize.Failure
		return
	}
	if err != nil && optimRes.Status != optimize.Failure {
		// Evaluation limits are not failures
		err = nil
	}
	return
}

package EIT2D

import (
	"fmt"
	"strings"
	"time"

	"github.com/notargets/goeit/FEM2D"
	"github.com/notargets/goeit/types"
	"github.com/notargets/goeit/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type SolverType uint8

const (
	SolverCholesky SolverType = iota
	SolverCG
)

var SolverNameMap = map[string]SolverType{
	"cholesky": SolverCholesky,
	"direct":   SolverCholesky,
	"cg":       SolverCG,
	"pcg":      SolverCG,
}

func NewSolverType(label string) (st SolverType, err error) {
	var ok bool
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return SolverCholesky, nil
	}
	if st, ok = SolverNameMap[label]; !ok {
		err = fmt.Errorf("unknown linear solver [%s], use cholesky or cg", label)
	}
	return
}

func (st SolverType) String() string {
	switch st {
	case SolverCG:
		return "CG"
	default:
		return "Cholesky"
	}
}

type entry struct {
	i, j int
	val  float64
}

/*
ForwardModel is the Complete Electrode Model on a P1 triangle mesh. The unknowns are the nodal
potentials u followed by the electrode potentials U_1...U_{L-1}, electrode L is the ground. The
system matrix is

	[ A_σ + A_z   A_w ] [u]   [0]
	[ A_wᵀ        A_d ] [U] = [I]

where only A_σ depends on the conductivity.
*/
type ForwardModel struct {
	Space       *FEM2D.Space
	L           int
	Z           []float64 // Contact impedance per electrode
	Injections  utils.Matrix
	MeasPattern utils.Matrix
	Weights     []float64 // Optional, one per measurement
	Solver      SolverType
	CGTol       float64
	CGMaxIter   int
	Verbose     bool

	Nn, N       int
	Ninj, Nmeas int
	electrodes  [][]types.EdgeInt
	boundary    []entry
	pm          *utils.PartitionMap
}

func NewForwardModel(sp *FEM2D.Space, L int, z float64, Inj, Mpat utils.Matrix,
	ParallelDegree int) (fm *ForwardModel, err error) {
	var (
		nrI, Ninj  = Inj.Dims()
		nrM, Nmeas = Mpat.Dims()
	)
	if nrI != L || nrM != L {
		err = fmt.Errorf("patterns do not match %d electrodes: injections are %dx%d, measurements %dx%d",
			L, nrI, Ninj, nrM, Nmeas)
		return
	}
	if z <= 0 {
		err = fmt.Errorf("contact impedance must be positive, have %g", z)
		return
	}
	if err = CheckInjections(Inj); err != nil {
		return
	}
	fm = &ForwardModel{
		Space:       sp,
		L:           L,
		Z:           utils.ConstArray(L, z),
		Injections:  Inj,
		MeasPattern: Mpat,
		Solver:      SolverCholesky,
		CGTol:       1.e-10,
		CGMaxIter:   10000,
		Nn:          sp.Dim(),
		N:           sp.Dim() + L - 1,
		Ninj:        Ninj,
		Nmeas:       Nmeas,
		pm:          utils.NewPartitionMap(ParallelDegree, Ninj),
	}
	if fm.electrodes, err = sp.Mesh.Electrodes(L); err != nil {
		return nil, err
	}
	fm.assembleBoundary()
	return
}

// NData is the length of the injection major data vector
func (fm *ForwardModel) NData() int { return fm.Ninj * fm.Nmeas }

// SetContactImpedance replaces the per electrode contact impedances
func (fm *ForwardModel) SetContactImpedance(z []float64) (err error) {
	if len(z) != fm.L {
		return fmt.Errorf("have %d contact impedances for %d electrodes", len(z), fm.L)
	}
	for l, zl := range z {
		if zl <= 0 {
			return fmt.Errorf("contact impedance of electrode %d must be positive, have %g", l+1, zl)
		}
	}
	copy(fm.Z, z)
	fm.assembleBoundary()
	return
}

// assembleBoundary collects the conductivity independent electrode terms A_z, A_w and A_d
func (fm *ForwardModel) assembleBoundary() {
	var (
		tm = fm.Space.Mesh
	)
	fm.boundary = fm.boundary[:0]
	for l, edges := range fm.electrodes {
		zInv := 1. / fm.Z[l]
		var length float64
		for _, e := range edges {
			var (
				v = e.GetVertices()
				h = tm.EdgeLength(e)
				M = FEM2D.BoundaryMass(h)
			)
			length += h
			for a := 0; a < 2; a++ {
				for b := 0; b < 2; b++ {
					fm.boundary = append(fm.boundary, entry{v[a], v[b], zInv * M[a][b]})
				}
			}
			if l == fm.L-1 {
				// Grounded electrode
				continue
			}
			for a := 0; a < 2; a++ {
				w := -zInv * 0.5 * h
				fm.boundary = append(fm.boundary,
					entry{v[a], fm.Nn + l, w},
					entry{fm.Nn + l, v[a], w})
			}
		}
		if l < fm.L-1 {
			fm.boundary = append(fm.boundary, entry{fm.Nn + l, fm.Nn + l, zInv * length})
		}
	}
}

// Assemble builds the system matrix for the nodal conductivity sigma
func (fm *ForwardModel) Assemble(sigma []float64) (A utils.CSR, err error) {
	var (
		sp = fm.Space
	)
	if len(sigma) != fm.Nn {
		err = fmt.Errorf("conductivity has %d values, mesh has %d vertices", len(sigma), fm.Nn)
		return
	}
	D := utils.NewDOK(fm.N, fm.N)
	for k, el := range sp.Elements {
		var (
			s    = sp.Local(sigma, k)
			sBar = (s[0] + s[1] + s[2]) / 3
			S    = el.Stiffness()
			tri  = sp.Mesh.EToV[k]
		)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				D.AddAt(tri[i], tri[j], sBar*S[i][j])
			}
		}
	}
	for _, e := range fm.boundary {
		D.AddAt(e.i, e.j, e.val)
	}
	A = D.ToCSR()
	return
}

// State is the forward solution for one conductivity, kept so the gradient can reuse it
type State struct {
	Sigma    []float64
	A        utils.CSR
	chol     *mat.Cholesky
	U        [][]float64 // Full solution per injection: nodes, then all L electrodes, centered
	V        []float64   // Simulated measurements, injection major
	Residual []float64   // Weighted V - data
	Misfit   float64
}

// Electrode returns the L electrode potentials of injection p
func (st *State) Electrode(p, Nn int) []float64 {
	return st.U[p][Nn:]
}

func (fm *ForwardModel) factorize(st *State) (err error) {
	if fm.Solver != SolverCholesky {
		return
	}
	st.chol = new(mat.Cholesky)
	if ok := st.chol.Factorize(st.A.ToSymDense()); !ok {
		return fmt.Errorf("system matrix is not positive definite, check the conductivity and contact impedance")
	}
	return
}

func (fm *ForwardModel) solve(st *State, x, b []float64) (err error) {
	switch fm.Solver {
	case SolverCG:
		_, err = st.A.SolveCG(x, b, fm.CGTol, fm.CGMaxIter)
	default:
		xv := mat.NewVecDense(len(x), x)
		if err = st.chol.SolveVecTo(xv, mat.NewVecDense(len(b), b)); err != nil {
			// Ill conditioning is reported but the solution is still usable
			if _, ok := err.(mat.Condition); ok {
				err = nil
			}
		}
	}
	return
}

/*
Solve computes the electrode potentials for every injection. Potentials are shifted so the mean
electrode potential is zero. When data is not nil the weighted misfit ½ Σ ((V - data) * W)² is
evaluated as well.
*/
func (fm *ForwardModel) Solve(sigma, data []float64) (st *State, err error) {
	var (
		start = time.Now()
	)
	if data != nil && len(data) != fm.NData() {
		return nil, fmt.Errorf("data has %d values, %d injections with %d measurements need %d",
			len(data), fm.Ninj, fm.Nmeas, fm.NData())
	}
	st = &State{
		Sigma: append([]float64(nil), sigma...),
		U:     make([][]float64, fm.Ninj),
		V:     make([]float64, fm.NData()),
	}
	if st.A, err = fm.Assemble(sigma); err != nil {
		return nil, err
	}
	if err = fm.factorize(st); err != nil {
		return nil, err
	}
	err = fm.pm.Run(func(np, pMin, pMax int) (err error) {
		b := make([]float64, fm.N)
		for p := pMin; p < pMax; p++ {
			for i := range b {
				b[i] = 0
			}
			for l := 0; l < fm.L-1; l++ {
				b[fm.Nn+l] = fm.Injections.At(l, p)
			}
			x := make([]float64, fm.N)
			if err = fm.solve(st, x, b); err != nil {
				return fmt.Errorf("injection %d: %w", p, err)
			}
			// Append the ground electrode and center on the mean electrode potential
			u := append(x, 0)
			shift := floats.Sum(u[fm.Nn:]) / float64(fm.L)
			for i := range u {
				u[i] -= shift
			}
			st.U[p] = u
			for m := 0; m < fm.Nmeas; m++ {
				var val float64
				for l := 0; l < fm.L; l++ {
					val += fm.MeasPattern.At(l, m) * u[fm.Nn+l]
				}
				st.V[p*fm.Nmeas+m] = val
			}
		}
		return
	})
	if err != nil {
		return nil, err
	}
	if data != nil {
		st.Residual = make([]float64, len(data))
		for i := range data {
			r := st.V[i] - data[i]
			if fm.Weights != nil {
				r *= fm.Weights[i]
			}
			st.Residual[i] = r
			st.Misfit += 0.5 * r * r
		}
	}
	if fm.Verbose {
		fmt.Printf("Forward solve: %d injections, %d unknowns, %d non zeros, %s solver, %v\n",
			fm.Ninj, fm.N, st.A.NNZ(), fm.Solver, time.Since(start))
	}
	return
}

/*
Gradient computes the derivative of the misfit with respect to the nodal conductivity with one
adjoint solve per injection

	∂J/∂σ_n = -Σ_p Σ_{K∋n} (|K|/3) ∇λ_p·∇u_p
*/
func (fm *ForwardModel) Gradient(st *State, grad []float64) (err error) {
	var (
		sp       = fm.Space
		partials = make([][]float64, fm.pm.ParallelDegree)
	)
	if st.Residual == nil {
		return fmt.Errorf("state has no residual, solve with data to compute a gradient")
	}
	if len(grad) != fm.Nn {
		return fmt.Errorf("gradient has %d values, mesh has %d vertices", len(grad), fm.Nn)
	}
	err = fm.pm.Run(func(np, pMin, pMax int) (err error) {
		var (
			g = make([]float64, fm.Nn)
			b = make([]float64, fm.N)
			s = make([]float64, fm.L)
		)
		partials[np] = g
		for p := pMin; p < pMax; p++ {
			// dJ/dU = C Mpat (W ⊙ r), C removes the mean electrode potential
			for l := range s {
				s[l] = 0
			}
			for m := 0; m < fm.Nmeas; m++ {
				r := st.Residual[p*fm.Nmeas+m]
				if fm.Weights != nil {
					r *= fm.Weights[p*fm.Nmeas+m]
				}
				for l := 0; l < fm.L; l++ {
					s[l] += fm.MeasPattern.At(l, m) * r
				}
			}
			mean := floats.Sum(s) / float64(fm.L)
			for i := range b {
				b[i] = 0
			}
			for l := 0; l < fm.L-1; l++ {
				b[fm.Nn+l] = s[l] - mean
			}
			lambda := make([]float64, fm.N)
			if err = fm.solve(st, lambda, b); err != nil {
				return fmt.Errorf("adjoint of injection %d: %w", p, err)
			}
			u := st.U[p]
			for k, el := range sp.Elements {
				ux, uy := el.Gradient(sp.Local(u, k))
				lx, ly := el.Gradient(sp.Local(lambda, k))
				val := -el.Area / 3 * (ux*lx + uy*ly)
				for _, v := range sp.Mesh.EToV[k] {
					g[v] += val
				}
			}
		}
		return
	})
	if err != nil {
		return
	}
	for i := range grad {
		grad[i] = 0
	}
	for _, g := range partials {
		if g != nil {
			floats.Add(grad, g)
		}
	}
	return
}

// Forward returns the simulated data vector for the conductivity
func (fm *ForwardModel) Forward(sigma []float64) (V []float64, err error) {
	var st *State
	if st, err = fm.Solve(sigma, nil); err != nil {
		return
	}
	return st.V, nil
}

// SetWeights scales each residual, nil removes the weighting
func (fm *ForwardModel) SetWeights(w []float64) (err error) {
	if w != nil && len(w) != fm.NData() {
		return fmt.Errorf("have %d weights for %d measurements", len(w), fm.NData())
	}
	fm.Weights = w
	return
}

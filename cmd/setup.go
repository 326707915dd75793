package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/notargets/goeit/FEM2D"
	"github.com/notargets/goeit/InputParameters"
	"github.com/notargets/goeit/geometry2D"
	"github.com/notargets/goeit/model_problems/EIT2D"
	"github.com/notargets/goeit/readfiles"
	"github.com/notargets/goeit/regularization"
	"github.com/notargets/goeit/utils"
)

// Problem is everything a reconstruction or simulation run is built from
type Problem struct {
	Input     *InputParameters.InputParametersEIT
	Case      *EIT2D.CaseData
	Space     *FEM2D.Space
	Model     *EIT2D.ForwardModel
	Materials utils.Vector // Per element values from a Gambit mesh, if any
	Truth     []float64    // Nodal conductivity of the phantom
	Verbose   bool
}

/*
BuildMesh reads the mesh file named in the input, or generates a disk. Meshes read from file get
electrodes assigned by angle when they do not carry L electrode markers.
*/
func BuildMesh(ip *InputParameters.InputParametersEIT, L int, verbose bool) (tm *geometry2D.TriMesh,
	Materials utils.Vector, err error) {
	switch ext := strings.ToLower(filepath.Ext(ip.MeshFile)); {
	case ip.MeshFile == "":
		tm, err = geometry2D.NewDiskMesh(geometry2D.DiskParameters{
			Radius:            ip.Radius,
			Rings:             ip.Rings,
			Electrodes:        L,
			NodesPerElectrode: ip.NodesPerElectrode,
			Coverage:          ip.Coverage,
			Offset:            ip.ElectrodeOffset,
		})
		return
	case ext == ".su2":
		tm, err = readfiles.ReadSU2(ip.MeshFile, verbose)
	case ext == ".neu":
		tm, Materials, err = readfiles.ReadGambit2d(ip.MeshFile, verbose)
	default:
		err = fmt.Errorf("unknown mesh file type [%s], use .su2 or .neu", ext)
	}
	if err != nil {
		return
	}
	if _, e := tm.Electrodes(L); e != nil {
		if verbose {
			fmt.Printf("Mesh electrodes: %v, assigning %d electrodes by angle\n", e, L)
		}
		err = tm.AssignElectrodes(L, ip.Coverage, ip.ElectrodeOffset)
	}
	return
}

func NewProblem(ip *InputParameters.InputParametersEIT, verbose bool) (pr *Problem, err error) {
	var (
		tm *geometry2D.TriMesh
	)
	pr = &Problem{Input: ip, Verbose: verbose}
	if pr.Case, err = EIT2D.LoadCase(ip.DataDir, ip.Case, verbose); err != nil {
		return nil, err
	}
	L, _ := pr.Case.Injections.Dims()
	if L != ip.Electrodes {
		fmt.Printf("Case %s has %d electrodes, input requests %d, using %d\n", ip.Case, L, ip.Electrodes, L)
	}
	if tm, pr.Materials, err = BuildMesh(ip, L, verbose); err != nil {
		return nil, err
	}
	if pr.Space, err = FEM2D.NewSpace(tm); err != nil {
		return nil, err
	}
	if pr.Model, err = EIT2D.NewForwardModel(pr.Space, L, ip.ContactImpedance,
		pr.Case.Injections, pr.Case.MeasPattern, ip.ParallelDegree); err != nil {
		return nil, err
	}
	if pr.Model.Solver, err = EIT2D.NewSolverType(ip.Solver); err != nil {
		return nil, err
	}
	pr.Model.Verbose = verbose
	pm := EIT2D.PhantomMap{Background: ip.Background, Low: ip.Low, High: ip.High}
	pr.Truth = EIT2D.ImageToMesh(pm.Conductivity(pr.Case.Phantom), tm)
	if verbose {
		fmt.Printf("Mesh: %d vertices, %d elements, %d boundary edges, %d electrodes\n",
			tm.Nv(), tm.K(), len(tm.BoundaryEdges()), L)
	}
	return
}

// UseMaterials replaces the phantom conductivity with the element materials of the mesh file
func (pr *Problem) UseMaterials() (err error) {
	if pr.Materials.V == nil || pr.Materials.Len() != pr.Space.Mesh.K() {
		return fmt.Errorf("mesh has no element materials, use a Gambit mesh with material groups")
	}
	pr.Truth = EIT2D.ElementToNodal(pr.Space, pr.Materials.Data())
	return
}

/*
Data returns the voltages to fit: the measured case data, or the forward solution of the phantom
with noise applied. Weights are set on the model when noise is modeled.
*/
func (pr *Problem) Data() (data []float64, err error) {
	var (
		ip    = pr.Input
		noise = EIT2D.NoiseModel{Relative: ip.NoiseLevel, Floor: ip.NoiseFloor, Seed: ip.Seed}
		clean []float64
	)
	if !ip.Simulated() {
		data = pr.Case.Uel
		if len(data) != pr.Model.NData() {
			return nil, fmt.Errorf("case %s has %d voltages, %d injections with %d measurements need %d",
				ip.Case, len(data), pr.Model.Ninj, pr.Model.Nmeas, pr.Model.NData())
		}
		return
	}
	if clean, err = pr.Model.Forward(pr.Truth); err != nil {
		return nil, err
	}
	if noise.IsZero() {
		return clean, nil
	}
	data = noise.Apply(clean)
	if err = pr.Model.SetWeights(noise.Weights(clean)); err != nil {
		return nil, err
	}
	if pr.Verbose {
		mean, std := EIT2D.NoiseSummary(clean, data)
		fmt.Printf("Noise: mean %g, standard deviation %g\n", mean, std)
	}
	return
}

func (pr *Problem) Penalty() (p regularization.Penalty, err error) {
	var (
		ip = pr.Input
		pt regularization.PenaltyType
	)
	if pt, err = regularization.NewPenaltyType(ip.Regularization); err != nil {
		return
	}
	switch pt {
	case regularization.PenaltyTV:
		var tv *regularization.TV
		if tv, err = regularization.NewTV(pr.Space, ip.Delta); err != nil {
			return
		}
		tv.Alpha = ip.Alpha
		p = tv
	case regularization.PenaltySMPrior:
		var prior *regularization.SMPrior
		if ip.PriorFile != "" {
			prior, err = regularization.LoadSMPrior(ip.PriorFile, pr.Space)
		} else {
			prior, err = regularization.NewSMPrior(pr.Space, PriorParameters(ip, pr.Space))
		}
		if err != nil {
			return
		}
		p = prior
	default:
		p = regularization.Zero{}
	}
	if pr.Verbose {
		fmt.Printf("Regularization: %s\n", p.Name())
	}
	return
}

package cmd

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/goeit/InputParameters"
	"github.com/notargets/goeit/geometry2D"
	"github.com/notargets/goeit/model_problems/EIT2D"
	"github.com/notargets/goeit/readfiles"
	"github.com/notargets/goeit/regularization"
	"github.com/notargets/goeit/utils"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeData creates the files of case1 and case_ref for L adjacent electrodes
func writeData(t *testing.T, dir string, L int) {
	ref := readfiles.NewOctaveData()
	ref.Add(EIT2D.InjectionVar, EIT2D.AdjacentInjections(L, 1))
	ref.Add("Uelref", utils.NewMatrix(L*(L-1), 1))
	require.NoError(t, readfiles.WriteOctaveText(filepath.Join(dir, "ref.txt"), ref))

	// Conductive inclusion right of the center
	img := utils.NewMatrix(8, 8)
	for i := 2; i < 5; i++ {
		for j := 4; j < 7; j++ {
			img.Set(i, j, 2)
		}
	}
	truth := readfiles.NewOctaveData()
	truth.Add("truth", img)
	require.NoError(t, readfiles.WriteOctaveText(filepath.Join(dir, "true1.txt"), truth))

	data := readfiles.NewOctaveData()
	data.Add("Uel", utils.NewMatrix(L*(L-1), 1))
	require.NoError(t, readfiles.WriteOctaveText(filepath.Join(dir, "data1.txt"), data))
}

func smallInput(dir string) *InputParameters.InputParametersEIT {
	ip := InputParameters.NewInputParametersEIT()
	ip.DataDir = dir
	ip.Case = "case1"
	ip.DataSource = "measured"
	ip.Rings = 3
	ip.NodesPerElectrode = 2
	ip.Electrodes = 8
	ip.MaxEval = 10
	ip.ParallelDegree = 2
	return ip
}

func TestPipeline(t *testing.T) {
	var (
		dir = t.TempDir()
		L   = 8
	)
	writeData(t, dir, L)
	meshFile := filepath.Join(dir, "disk.su2")
	require.NoError(t, RunMesh(geometry2D.DiskParameters{
		Radius:            1,
		Rings:             3,
		Electrodes:        L,
		NodesPerElectrode: 2,
		Coverage:          0.5,
	}, meshFile, false))

	ip := smallInput(dir)
	ip.MeshFile = meshFile
	simFile := filepath.Join(dir, "sim.txt")
	require.NoError(t, RunSimulate(ip, simFile, false, true))
	sim, err := readfiles.ReadOctaveText(simFile)
	require.NoError(t, err)
	Uel, err := sim.Vector("Uel")
	require.NoError(t, err)
	assert.Equal(t, L*(L-1), len(Uel))
	// The simulated data becomes the measured data of case1
	require.NoError(t, readfiles.WriteOctaveText(filepath.Join(dir, "data1.txt"), sim))

	ip = smallInput(dir)
	ip.MeshFile = meshFile
	ip.Alpha = 1.e-4
	rr := &ReconstructRun{
		PlotDir:    filepath.Join(dir, "plots"),
		OutputFile: filepath.Join(dir, "sigma.txt"),
	}
	ip.PlotEvery = 5
	ip.MaxEval = 40
	res, err := RunReconstruct(rr, ip)
	require.NoError(t, err)
	assert.True(t, res.Evaluations > 0)
	for _, x := range res.X {
		assert.True(t, x >= ip.Lower && x <= ip.Upper)
	}
	// The default start is far above the phantom, the fit has to come down from there
	pr, err := NewProblem(ip, false)
	require.NoError(t, err)
	data, err := pr.Data()
	require.NoError(t, err)
	st0, err := pr.Model.Solve(utils.ConstArray(pr.Space.Dim(), ip.X0), data)
	require.NoError(t, err)
	st, err := pr.Model.Solve(res.X, data)
	require.NoError(t, err)
	assert.True(t, st.Misfit < 0.1*st0.Misfit, "misfit went from %g to %g", st0.Misfit, st.Misfit)
	_, err = os.Stat(filepath.Join(rr.PlotDir, "sigma_final.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(rr.PlotDir, "sigma_0000.png"))
	assert.NoError(t, err)
	out, err := readfiles.ReadOctaveText(rr.OutputFile)
	require.NoError(t, err)
	sigma, err := out.Vector("sigma")
	require.NoError(t, err)
	assert.Equal(t, res.X, sigma)
	assert.True(t, out.Has("truth") && out.Has("VX") && out.Has("VY"))
}

func TestProblem(t *testing.T) {
	var (
		dir = t.TempDir()
		L   = 8
	)
	writeData(t, dir, L)
	ip := smallInput(dir)
	ip.Electrodes = 16
	pr, err := NewProblem(ip, false)
	require.NoError(t, err)
	assert.Equal(t, L, pr.Model.L, "the case decides the electrode count")
	assert.Error(t, pr.UseMaterials())
	// Truth carries the inclusion and the background
	var nHigh, nBack int
	for _, s := range pr.Truth {
		switch s {
		case ip.High:
			nHigh++
		case ip.Background:
			nBack++
		}
	}
	assert.True(t, nHigh > 0)
	assert.True(t, nBack > nHigh)

	data, err := pr.Data()
	require.NoError(t, err)
	assert.Equal(t, pr.Case.Uel, data)

	ip.DataSource = "simulated"
	ip.NoiseLevel = 0.01
	ip.Seed = 1
	noisy, err := pr.Data()
	require.NoError(t, err)
	clean, err := pr.Model.Forward(pr.Truth)
	require.NoError(t, err)
	assert.NotEqual(t, clean, noisy)
	assert.NotNil(t, pr.Model.Weights)

	for _, name := range []string{"TV", "SMPrior", "None"} {
		ip.Regularization = name
		p, err := pr.Penalty()
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name())
	}
	ip.Regularization = "SMPrior"
	priorFile := filepath.Join(dir, "prior.yaml")
	_, err = RunPrior(ip, regularization.SMPriorParameters{Std: 0.5, CorrLength: 0.3}, priorFile, false)
	require.NoError(t, err)
	ip.PriorFile = priorFile
	p, err := pr.Penalty()
	require.NoError(t, err)
	prior := p.(*regularization.SMPrior)
	assert.InDelta(t, 0.3, prior.CorrLength, 1.e-15)
	assert.Equal(t, 0.5, prior.Std)
	assert.Equal(t, ip.Background, prior.Mean, "unset values take the defaults")
	assert.Equal(t, ip.Alpha, prior.Weight)
	_, err = RunPrior(ip, regularization.SMPriorParameters{Std: -1}, priorFile, false)
	assert.Error(t, err)
	ip.Regularization = "L1"
	_, err = pr.Penalty()
	assert.Error(t, err)

	ip = smallInput(dir)
	ip.Case = "case9"
	_, err = NewProblem(ip, false)
	assert.EqualError(t, err, `unknown case "case9"`)
	ip = smallInput(dir)
	ip.MeshFile = filepath.Join(dir, "mesh.msh")
	_, err = NewProblem(ip, false)
	assert.Error(t, err)
}

func TestBuildMeshAssignsElectrodes(t *testing.T) {
	var (
		dir = t.TempDir()
	)
	// A mesh file without electrode markers
	tm, err := geometry2D.NewDiskMesh(geometry2D.DiskParameters{
		Radius: 2, Rings: 3, Electrodes: 4, NodesPerElectrode: 4, Coverage: 0.5,
	})
	require.NoError(t, err)
	for tag := range tm.BCEdges {
		delete(tm.BCEdges, tag)
	}
	meshFile := filepath.Join(dir, "bare.su2")
	require.NoError(t, readfiles.WriteSU2(meshFile, tm))
	ip := smallInput(dir)
	ip.MeshFile = meshFile
	tm2, _, err := BuildMesh(ip, 8, false)
	require.NoError(t, err)
	electrodes, err := tm2.Electrodes(8)
	require.NoError(t, err)
	assert.Equal(t, 8, len(electrodes))
	_, _, R := tm2.Center()
	assert.InDelta(t, 2, R, 1.e-12)
	assert.False(t, math.IsNaN(tm2.TotalArea()))
}

func TestProcessInput(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addInputFlags(cmd)
	require.NoError(t, cmd.Flags().Set("case", "case_ref"))
	require.NoError(t, cmd.Flags().Set("dataSource", "simulated"))
	ip, err := processInput(cmd, "")
	require.NoError(t, err)
	assert.Equal(t, "case_ref", ip.Case)
	assert.True(t, ip.Simulated())
	require.NoError(t, cmd.Flags().Set("dataSource", "guessed"))
	_, err = processInput(cmd, "")
	assert.Error(t, err)
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/notargets/goeit/InputParameters"
	"github.com/notargets/goeit/model_problems/EIT2D"
	"github.com/notargets/goeit/readfiles"
	"github.com/notargets/goeit/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type ReconstructRun struct {
	InputFile  string
	Graph      bool
	PlotDir    string
	OutputFile string
	Perf       bool
	Verbose    bool
}

// ReconstructCmd represents the reconstruct command
var ReconstructCmd = &cobra.Command{
	Use:   "reconstruct",
	Short: "Reconstruct the conductivity of a case from its electrode voltages",
	Long: `
Fits the nodal conductivity to the measured (or simulated) voltages of a case by minimizing the
data misfit plus a regularization penalty within the conductivity bounds.

goeit reconstruct -I input.yaml -c case2 -S measured -D data -P plots -o sigma.txt`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			ip  *InputParameters.InputParametersEIT
		)
		rr := &ReconstructRun{}
		rr.InputFile, _ = cmd.Flags().GetString("inputConditionsFile")
		rr.Graph, _ = cmd.Flags().GetBool("graph")
		rr.OutputFile, _ = cmd.Flags().GetString("output")
		rr.Perf, _ = cmd.Flags().GetBool("perf")
		rr.Verbose = viper.GetBool("verbose")
		if ip, err = processInput(cmd, rr.InputFile); err != nil {
			exitOnError(err)
		}
		rr.PlotDir = ip.PlotDir
		if _, err = RunReconstruct(rr, ip); err != nil {
			exitOnError(err)
		}
		if rr.Graph {
			fmt.Println("Close the window or interrupt to exit")
			select {}
		}
	},
}

func init() {
	rootCmd.AddCommand(ReconstructCmd)
	addInputFlags(ReconstructCmd)
	ReconstructCmd.Flags().BoolP("graph", "g", false, "display the conductivity while reconstructing")
	ReconstructCmd.Flags().StringP("output", "o", "", "write the reconstruction as Octave text to this file")
	ReconstructCmd.Flags().Bool("perf", false, "count the CPU instructions of one forward solve (linux)")
}

// addInputFlags are the flags shared by the commands that load a case
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters")
	cmd.Flags().StringP("case", "c", "", fmt.Sprintf("case to run, one of %v", EIT2D.CaseNames()))
	cmd.Flags().StringP("meshFile", "M", "", "mesh file in SU2 (.su2) or Gambit (.neu) format, default generates a disk")
	cmd.Flags().StringP("plotDir", "P", "", "directory for PNG plots of the fields")
	cmd.Flags().StringP("dataSource", "S", "", "measured or simulated")
}

/*
processInput reads the input file and applies the command line and config file overrides. Flags
set on the command line win over the config file, which wins over the input file.
*/
func processInput(cmd *cobra.Command, inputFile string) (ip *InputParameters.InputParametersEIT, err error) {
	if ip, err = InputParameters.ReadInputParametersEIT(inputFile); err != nil {
		return
	}
	override := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
			return
		}
		if viper.IsSet(name) && viper.GetString(name) != "" {
			*dst = viper.GetString(name)
		}
	}
	override("case", &ip.Case)
	override("meshFile", &ip.MeshFile)
	override("plotDir", &ip.PlotDir)
	override("dataSource", &ip.DataSource)
	override("dataDir", &ip.DataDir)
	if err = ip.Validate(); err != nil {
		return nil, err
	}
	if viper.GetBool("verbose") {
		ip.Print()
	}
	return
}

func exitOnError(err error) {
	fmt.Printf("error: %s\n", err.Error())
	os.Exit(1)
}

func RunReconstruct(rr *ReconstructRun, ip *InputParameters.InputParametersEIT) (res *EIT2D.Result, err error) {
	var (
		pr   *Problem
		data []float64
		tg   *EIT2D.Target
		png  *EIT2D.PNGPlotter
	)
	if pr, err = NewProblem(ip, rr.Verbose); err != nil {
		return
	}
	if data, err = pr.Data(); err != nil {
		return
	}
	x0 := utils.ConstArray(pr.Space.Dim(), ip.X0)
	if rr.Perf {
		var count uint64
		if count, err = EIT2D.CountForward(pr.Model, x0); err != nil {
			fmt.Printf("perf: %s\n", err.Error())
			err = nil
		} else {
			fmt.Printf("Forward solve: %d CPU instructions\n", count)
		}
	}
	penalty, err := pr.Penalty()
	if err != nil {
		return
	}
	if tg, err = EIT2D.NewTarget(pr.Model, penalty, data, x0); err != nil {
		return
	}
	if rr.PlotDir != "" {
		if png, err = EIT2D.NewPNGPlotter(pr.Space, rr.PlotDir, ip.PlotEvery); err != nil {
			return
		}
		tg.Plotters = append(tg.Plotters, png)
	}
	if rr.Graph {
		tg.Plotters = append(tg.Plotters, EIT2D.NewWindowPlotter(pr.Space, ip.PlotEvery))
	}
	opts := EIT2D.Options{
		Lower:   ip.Lower,
		Upper:   ip.Upper,
		XTolRel: ip.XTolRel,
		MaxEval: ip.MaxEval,
		Method:  ip.Method,
		Verbose: rr.Verbose,
	}
	if res, err = EIT2D.Reconstruct(tg, opts); err != nil {
		return
	}
	res.Print()
	if rr.Verbose {
		fmt.Println(utils.GetMemUsage())
	}
	if png != nil {
		if err = png.Save(filepath.Join(rr.PlotDir, "sigma_final.png"), "sigma, final", res.X); err != nil {
			return
		}
	}
	if rr.OutputFile != "" {
		if err = WriteResult(rr.OutputFile, pr, res.X); err != nil {
			return
		}
	}
	return
}

// WriteResult saves the reconstruction and the mesh vertices it lives on
func WriteResult(fileName string, pr *Problem, sigma []float64) (err error) {
	var (
		tm = pr.Space.Mesh
		n  = len(sigma)
		od = readfiles.NewOctaveData()
	)
	od.Add("sigma", utils.NewMatrix(n, 1, append([]float64(nil), sigma...)))
	od.Add("truth", utils.NewMatrix(n, 1, append([]float64(nil), pr.Truth...)))
	od.Add("VX", utils.NewMatrix(n, 1, append([]float64(nil), tm.VX.Data()...)))
	od.Add("VY", utils.NewMatrix(n, 1, append([]float64(nil), tm.VY.Data()...)))
	return readfiles.WriteOctaveText(fileName, od)
}

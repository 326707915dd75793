package cmd

import (
	"fmt"

	"github.com/notargets/goeit/InputParameters"
	"github.com/notargets/goeit/readfiles"
	"github.com/notargets/goeit/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// SimulateCmd represents the simulate command
var SimulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Compute the electrode voltages of a case phantom",
	Long: `
Solves the forward problem for the phantom of a case, adds the configured measurement noise and
writes the voltages as Octave text in the layout of the measured data.

goeit simulate -c case3 -D data -o sim3.txt`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			ip  *InputParameters.InputParametersEIT
		)
		inputFile, _ := cmd.Flags().GetString("inputConditionsFile")
		output, _ := cmd.Flags().GetString("output")
		materials, _ := cmd.Flags().GetBool("materials")
		if ip, err = processInput(cmd, inputFile); err != nil {
			exitOnError(err)
		}
		if err = RunSimulate(ip, output, materials, viper.GetBool("verbose")); err != nil {
			exitOnError(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(SimulateCmd)
	addInputFlags(SimulateCmd)
	SimulateCmd.Flags().StringP("output", "o", "simulated.txt", "Octave text file for the simulated voltages")
	SimulateCmd.Flags().Bool("materials", false, "use the Gambit mesh material values as the conductivity")
}

// RunSimulate writes the simulated voltages as variable Uel to output
func RunSimulate(ip *InputParameters.InputParametersEIT, output string, materials, verbose bool) (err error) {
	var (
		pr   *Problem
		data []float64
	)
	ip.DataSource = "simulated"
	if pr, err = NewProblem(ip, verbose); err != nil {
		return
	}
	if materials {
		if err = pr.UseMaterials(); err != nil {
			return
		}
	}
	if data, err = pr.Data(); err != nil {
		return
	}
	od := readfiles.NewOctaveData()
	od.Add("Uel", utils.NewMatrix(len(data), 1, data))
	if err = readfiles.WriteOctaveText(output, od); err != nil {
		return
	}
	fmt.Printf("Wrote %d voltages of case %s to %s\n", len(data), ip.Case, output)
	return
}

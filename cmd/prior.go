package cmd

import (
	"fmt"

	"github.com/notargets/goeit/FEM2D"
	"github.com/notargets/goeit/InputParameters"
	"github.com/notargets/goeit/geometry2D"
	"github.com/notargets/goeit/regularization"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// PriorCmd represents the prior command
var PriorCmd = &cobra.Command{
	Use:   "prior",
	Short: "Write a smoothness prior file for the SMPrior regularization",
	Long: `
Builds the smoothness prior on the mesh of the input, checks that its covariance factorizes and
writes the prior parameters as YAML, ready to be named as PriorFile in the input file.
Unset values default to the background conductivity and a correlation length of 0.2 radius.

goeit prior -I input.yaml --std 2 --corrLength 0.1 -o prior.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			ip  *InputParameters.InputParametersEIT
			pp  regularization.SMPriorParameters
		)
		inputFile, _ := cmd.Flags().GetString("inputConditionsFile")
		output, _ := cmd.Flags().GetString("output")
		pp.Mean, _ = cmd.Flags().GetFloat64("mean")
		pp.Std, _ = cmd.Flags().GetFloat64("std")
		pp.CorrLength, _ = cmd.Flags().GetFloat64("corrLength")
		pp.Jitter, _ = cmd.Flags().GetFloat64("jitter")
		if ip, err = processInput(cmd, inputFile); err != nil {
			exitOnError(err)
		}
		if _, err = RunPrior(ip, pp, output, viper.GetBool("verbose")); err != nil {
			exitOnError(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(PriorCmd)
	addInputFlags(PriorCmd)
	PriorCmd.Flags().Float64("mean", 0, "prior mean conductivity, default Background")
	PriorCmd.Flags().Float64("std", 0, "prior standard deviation, default Background")
	PriorCmd.Flags().Float64("corrLength", 0, "correlation length, default 0.2 times the mesh radius")
	PriorCmd.Flags().Float64("jitter", 0, "diagonal added to the covariance, default 1e-6 std²")
	PriorCmd.Flags().StringP("output", "o", "prior.yaml", "YAML prior file to write")
}

// PriorParameters are the smoothness prior settings used where none are given
func PriorParameters(ip *InputParameters.InputParametersEIT, sp *FEM2D.Space) regularization.SMPriorParameters {
	_, _, R := sp.Mesh.Center()
	return regularization.SMPriorParameters{
		Mean:       ip.Background,
		Std:        ip.Background,
		CorrLength: 0.2 * R,
		Weight:     ip.Alpha,
	}
}

// RunPrior completes pp with the defaults, factorizes it on the input mesh and saves it to output
func RunPrior(ip *InputParameters.InputParametersEIT, pp regularization.SMPriorParameters, output string,
	verbose bool) (prior *regularization.SMPrior, err error) {
	var (
		tm *geometry2D.TriMesh
		sp *FEM2D.Space
	)
	if tm, _, err = BuildMesh(ip, ip.Electrodes, verbose); err != nil {
		return
	}
	if sp, err = FEM2D.NewSpace(tm); err != nil {
		return
	}
	def := PriorParameters(ip, sp)
	if pp.Mean == 0 {
		pp.Mean = def.Mean
	}
	if pp.Std == 0 {
		pp.Std = def.Std
	}
	if pp.CorrLength == 0 {
		pp.CorrLength = def.CorrLength
	}
	if pp.Weight == 0 {
		pp.Weight = def.Weight
	}
	if prior, err = regularization.NewSMPrior(sp, pp); err != nil {
		return
	}
	if verbose {
		prior.SMPriorParameters.Print()
	}
	if err = prior.Save(output); err != nil {
		return nil, fmt.Errorf("unable to write prior file: %w", err)
	}
	fmt.Printf("Wrote smoothness prior for %d vertices to %s\n", sp.Dim(), output)
	return
}

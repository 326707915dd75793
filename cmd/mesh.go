package cmd

import (
	"fmt"

	"github.com/notargets/goeit/FEM2D"
	"github.com/notargets/goeit/geometry2D"
	"github.com/notargets/goeit/model_problems/EIT2D"
	"github.com/notargets/goeit/readfiles"
	"github.com/spf13/cobra"
)

// MeshCmd represents the mesh command
var MeshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Generate a circular tank mesh with tagged electrodes",
	Long: `
Generates a disk mesh with electrode markers and writes it in SU2 format.

goeit mesh -L 32 -r 12 -n 4 -o disk.su2`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			dp  geometry2D.DiskParameters
		)
		dp.Radius, _ = cmd.Flags().GetFloat64("radius")
		dp.Rings, _ = cmd.Flags().GetInt("rings")
		dp.Electrodes, _ = cmd.Flags().GetInt("electrodes")
		dp.NodesPerElectrode, _ = cmd.Flags().GetInt("nodesPerElectrode")
		dp.Coverage, _ = cmd.Flags().GetFloat64("coverage")
		dp.Offset, _ = cmd.Flags().GetFloat64("offset")
		output, _ := cmd.Flags().GetString("output")
		graph, _ := cmd.Flags().GetBool("graph")
		if err = RunMesh(dp, output, graph); err != nil {
			exitOnError(err)
		}
		if graph {
			fmt.Println("Close the window or interrupt to exit")
			select {}
		}
	},
}

func init() {
	rootCmd.AddCommand(MeshCmd)
	MeshCmd.Flags().Float64("radius", 1, "tank radius")
	MeshCmd.Flags().IntP("rings", "r", 12, "number of vertex rings")
	MeshCmd.Flags().IntP("electrodes", "L", 32, "number of electrodes")
	MeshCmd.Flags().IntP("nodesPerElectrode", "n", 4, "boundary vertices per electrode pitch")
	MeshCmd.Flags().Float64("coverage", 0.5, "fraction of the boundary covered by electrodes")
	MeshCmd.Flags().Float64("offset", 0, "angle of the center of electrode 1, radians")
	MeshCmd.Flags().StringP("output", "o", "disk.su2", "SU2 mesh file to write")
	MeshCmd.Flags().BoolP("graph", "g", false, "display the mesh")
}

func RunMesh(dp geometry2D.DiskParameters, output string, graph bool) (err error) {
	var (
		tm *geometry2D.TriMesh
		sp *FEM2D.Space
	)
	if tm, err = geometry2D.NewDiskMesh(dp); err != nil {
		return
	}
	if sp, err = FEM2D.NewSpace(tm); err != nil {
		return
	}
	if err = readfiles.WriteSU2(output, tm); err != nil {
		return
	}
	fmt.Printf("Wrote mesh with %d vertices, %d elements and %d electrodes to %s, area %8.5f\n",
		tm.Nv(), tm.K(), dp.Electrodes, output, tm.TotalArea())
	if graph {
		EIT2D.ShowMesh(sp)
	}
	return
}

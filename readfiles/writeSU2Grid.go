package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/notargets/goeit/geometry2D"
	"github.com/notargets/goeit/types"
)

// WriteSU2Mesh writes the mesh in SU2 native format, markers are written in tag order
func WriteSU2Mesh(w io.Writer, tm *geometry2D.TriMesh) (err error) {
	var (
		bw     = bufio.NewWriter(w)
		vx, vy = tm.VX.Data(), tm.VY.Data()
		tags   = make([]types.BCTAG, 0, len(tm.BCEdges))
	)
	fmt.Fprintf(bw, "%% Circular EIT tank, %d vertices, %d elements\n", tm.Nv(), tm.K())
	fmt.Fprintf(bw, "NDIME= 2\n")
	fmt.Fprintf(bw, "NELEM= %d\n", tm.K())
	for k, tri := range tm.EToV {
		fmt.Fprintf(bw, "%d %d %d %d %d\n", ELType_Triangle, tri[0], tri[1], tri[2], k)
	}
	fmt.Fprintf(bw, "NPOIN= %d\n", tm.Nv())
	for i := range vx {
		fmt.Fprintf(bw, "%.17g %.17g %d\n", vx[i], vy[i], i)
	}
	for tag := range tm.BCEdges {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	fmt.Fprintf(bw, "NMARK= %d\n", len(tags))
	for _, tag := range tags {
		edges := tm.BCEdges[tag]
		fmt.Fprintf(bw, "MARKER_TAG= %s\n", tag)
		fmt.Fprintf(bw, "MARKER_ELEMS= %d\n", len(edges))
		for _, e := range edges {
			v := e.GetVertices()
			fmt.Fprintf(bw, "%d %d %d\n", ELType_LINE, v[0], v[1])
		}
	}
	return bw.Flush()
}

func WriteSU2(filename string, tm *geometry2D.TriMesh) (err error) {
	var (
		file *os.File
	)
	if file, err = os.Create(filename); err != nil {
		return fmt.Errorf("unable to create file %s: %w", filename, err)
	}
	if err = WriteSU2Mesh(file, tm); err != nil {
		file.Close()
		return
	}
	return file.Close()
}

package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/notargets/goeit/geometry2D"
	"github.com/notargets/goeit/types"
	"github.com/notargets/goeit/utils"
)

type Material struct {
	ElementCount  int
	MaterialValue float64
	Title         string
}

/*
ReadGambit2d reads a 2D Gambit neutral file. Element groups carry a material value which is
returned per element in Materials, the EIT model uses it as a piecewise constant conductivity.
Boundary sets named "Electrode-l" become electrode l.
*/
func ReadGambit2d(filename string, verbose bool) (tm *geometry2D.TriMesh, Materials utils.Vector, err error) {
	var (
		file *os.File
	)
	if verbose {
		fmt.Printf("Reading Gambit Neutral file named: %s\n", filename)
	}
	if file, err = os.Open(filename); err != nil {
		err = fmt.Errorf("unable to open file %s: %w", filename, err)
		return
	}
	defer file.Close()
	return ReadGambit2dMesh(file, verbose)
}

func ReadGambit2dMesh(r io.Reader, verbose bool) (tm *geometry2D.TriMesh, Materials utils.Vector, err error) {
	var (
		reader = bufio.NewReader(r)
	)
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("unable to read Gambit mesh: %v", rec)
		}
	}()

	// Skip first six lines
	skipLines(6, reader)

	// Get dimensions
	Nv, K, Nmats, Nbcs, Nsd := ReadHeader(reader)
	skipLines(2, reader)

	if verbose {
		fmt.Printf("Nv = %d, K = %d\n", Nv, K)
		fmt.Printf("Nmats = %d, Nbcs = %d\n%d space dimensions\n", Nmats, Nbcs, Nsd)
	}
	if Nsd != 2 {
		err = fmt.Errorf("mesh has %d space dimensions, only 2D meshes are supported", Nsd)
		return
	}

	VX, VY := Read2DVertices(Nv, reader)
	skipLines(2, reader)

	// Read Elements
	EToV := ReadTris(K, reader)
	skipLines(2, reader)

	if verbose {
		fmt.Printf("Bounding Box:\nXMin/XMax = %5.3f, %5.3f\nYMin/YMax = %5.3f, %5.3f\n",
			VX.Min(), VX.Max(), VY.Min(), VY.Max())
	}

	matGroups := make(map[int]*Material)
	// Read material values
	Materials = utils.NewVector(K)
	for i := 0; i < Nmats; i++ {
		gn, elnum, matval, title := ReadMaterialHeader(reader)
		matGroups[gn] = &Material{
			ElementCount:  elnum,
			MaterialValue: matval,
			Title:         title,
		}
		ReadMaterialGroup(reader, elnum, matval, Materials, verbose)
		skipLines(2, reader)
	}
	if verbose {
		for gn, mat := range matGroups {
			fmt.Printf("Group %d [%s]: %d elements, material = %g\n",
				gn, strings.Trim(mat.Title, " "), mat.ElementCount, mat.MaterialValue)
		}
	}

	// Read BCs
	BCEdges := ReadBCS(Nbcs, reader, EToV)
	tm, err = geometry2D.NewTriMesh(VX, VY, EToV, BCEdges)
	return
}

func ReadBCS(Nbcs int, reader *bufio.Reader, EToV utils.Matrix) (BCEdges types.BCMAP) {
	var (
		line, bctyp string
		err         error
		nargs       int
		n, bcid     int
	)
	BCEdges = make(types.BCMAP, Nbcs)
	for i := 0; i < Nbcs; i++ {
		// Read BC header, if BC text is "Cyl", read a float parameter
		if i != 0 {
			skipLines(1, reader)
		}
		line = getLine(reader)
		if _, err = fmt.Sscanf(line, "%32s", &bctyp); err != nil {
			panic(err)
		}
		bctyp = strings.Trim(bctyp, " ")
		var paramf float64
		var numfaces int
		switch strings.ToLower(bctyp) {
		case "cyl":
			if _, err = fmt.Sscanf(line, "%32s%8f%8d", &bctyp, &paramf, &numfaces); err != nil {
				panic(err)
			}
		default:
			if _, err = fmt.Sscanf(line, "%32s%8d%8d", &bctyp, &bcid, &numfaces); err != nil {
				panic(err)
			}
		}
		edges := make([]types.EdgeInt, numfaces)
		var verts [3]int
		for i := 0; i < numfaces; i++ {
			line = getLine(reader)
			nargs = 3
			var kp1, n2, faceNumberp1 int
			if n, err = fmt.Sscanf(line, "%d %d %d", &kp1, &n2, &faceNumberp1); err != nil || n < nargs {
				if err == nil && n < nargs {
					err = fmt.Errorf("read fewer than required dimensions, read %d, need %d\n, line: %s", n, nargs, line)
				}
				panic(err)
			}
			verts[0] = int(EToV.At(kp1-1, 0))
			verts[1] = int(EToV.At(kp1-1, 1))
			verts[2] = int(EToV.At(kp1-1, 2))
			var e types.EdgeInt
			switch faceNumberp1 {
			case 1:
				e = types.NewEdgeInt([2]int{verts[0], verts[1]})
			case 2:
				e = types.NewEdgeInt([2]int{verts[1], verts[2]})
			case 3:
				e = types.NewEdgeInt([2]int{verts[2], verts[0]})
			default:
				panic(fmt.Errorf("face number %d out of range for a triangle, line: %s", faceNumberp1, line))
			}
			edges[i] = e
		}
		BCEdges.AddEdges(types.NewBCTAG(bctyp), edges)
		skipLines(1, reader)
	}
	return
}

func ReadMaterialGroup(reader *bufio.Reader, elementCount int, matval float64, epsilon utils.Vector, verbose bool) {
	var (
		n       int
		nn      = make([]int, 10)
		epsData = epsilon.Data()
		err     error
		added   int
	)
	if elementCount%10 != 0 {
		added = 1
	}
	numLines := elementCount/10 + added
	if verbose {
		fmt.Printf("Reading %d lines of materials with %d elements\n", numLines, elementCount)
	}
	for i := 0; i < numLines; i++ {
		line := getLine(reader)
		nargs := 10
		if n, err = fmt.Sscanf(line, "%d %d %d %d %d %d %d %d %d %d", &nn[0], &nn[1], &nn[2], &nn[3], &nn[4], &nn[5], &nn[6], &nn[7], &nn[8], &nn[9]); err != nil || n < nargs {
			if !(n < nargs && i == numLines-1) {
				if err == nil && n < nargs {
					err = fmt.Errorf("read fewer than %d dimensions, read %d, line: %s", nargs, n, line)
				}
				panic(err)
			}
		}
		for j := 0; j < n; j++ {
			epsData[nn[j]-1] = matval
		}
	}
}

func ReadMaterialHeader(reader *bufio.Reader) (gn, elnum int, matval float64, title string) {
	/*
	   GROUP:           1 ELEMENTS:        977 MATERIAL:      1.000 NFLAGS:          0
	                     epsilon: 1.000
	          0
	*/
	var (
		line = getLine(reader)
		n    int
		err  error
	)
	nargs := 3
	if n, err = fmt.Sscanf(line, "GROUP: %11d ELEMENTS:%11d MATERIAL:%11f", &gn, &elnum, &matval); err != nil || n < nargs {
		if err == nil && n < nargs {
			err = fmt.Errorf("read fewer than %d dimensions, read %d, line: %s", nargs, n, line)
		}
		panic(err)
	}
	title = getLine(reader)
	skipLines(1, reader)
	return
}

func ReadHeader(reader *bufio.Reader) (Nv, K, Nmats, Nbcs, Nsd int) {
	/*
		Nv      // num nodes in mesh
		K       // num elements
		Nmats   // num material groups
		Nbcs    // num boundary groups
		Nsd;    // num space dimensions
	*/
	var (
		line   = getLine(reader)
		n, dum int
		err    error
	)
	nargs := 6
	if n, err = fmt.Sscanf(line, "%d %d %d %d %d %d", &Nv, &K, &Nmats, &Nbcs, &Nsd, &dum); err != nil || n < nargs {
		if err == nil && n < nargs {
			err = fmt.Errorf("read fewer than %d dimensions, read %d, line: %s", nargs, n, line)
		}
		panic(err)
	}
	return
}

func Read2DVertices(Nv int, reader *bufio.Reader) (VX, VY utils.Vector) {
	var (
		line   string
		err    error
		n, ind int
	)
	nargs := 3
	VX, VY = utils.NewVector(Nv), utils.NewVector(Nv)
	vx, vy := VX.Data(), VY.Data()
	for i := 0; i < Nv; i++ {
		line = getLine(reader)
		if n, err = fmt.Sscanf(line, "%d", &ind); err != nil || n < 1 {
			err = fmt.Errorf("error reading index, line: %s, err: %v", line, err)
			panic(err)
		}
		if ind < 1 || ind > Nv {
			panic(fmt.Errorf("vertex index %d out of range [1,%d], line: %s", ind, Nv, line))
		}
		if n, err = fmt.Sscanf(line, "%d %f %f", &ind, &vx[ind-1], &vy[ind-1]); err != nil || n < nargs {
			if err == nil && n < nargs {
				err = fmt.Errorf("read fewer than required dimensions, read %d, need %d\n, line: %s", n, nargs, line)
			}
			panic(err)
		}
	}
	return
}

func ReadTris(K int, reader *bufio.Reader) (EToV utils.Matrix) {
	//-------------------------------------
	// Triangles in 2D:
	//-------------------------------------
	// ENDOFSECTION
	//    ELEMENTS/CELLS 1.3.0
	//      1  3  3        1       2       3
	//      2  3  3        3       2       4
	var (
		line                       string
		err                        error
		n, ind, typ, nfaces, nargs int
	)
	EToV = utils.NewMatrix(K, 3)
	for i := 0; i < K; i++ {
		line = getLine(reader)
		nargs = 6
		var n1, n2, n3 int
		if n, err = fmt.Sscanf(line, "%d %d %d %d %d %d", &ind, &typ, &nfaces, &n1, &n2, &n3); err != nil || n < nargs {
			if err == nil && n < nargs {
				err = fmt.Errorf("read fewer than required dimensions, read %d, need %d\n, line: %s", n, nargs, line)
			}
			panic(err)
		}
		EToV.Set(ind-1, 0, float64(n1-1))
		EToV.Set(ind-1, 1, float64(n2-1))
		EToV.Set(ind-1, 2, float64(n3-1))
	}
	return
}

func getLine(reader *bufio.Reader) (line string) {
	var (
		err error
	)
	line, err = reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			err = fmt.Errorf("early end of file")
		}
		panic(err)
	}
	line = line[:len(line)-1] // Strip away the newline
	return
}

func skipLines(n int, reader *bufio.Reader) {
	for i := 0; i < n; i++ {
		getLine(reader)
	}
}

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

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle                     = 5
	ELType_Quadrilateral                = 9
	ELType_Tetrahedral                  = 10
	ELType_Hexahedral                   = 12
	ELType_Prism                        = 13
	ELType_Pyramid                      = 14
)

func readBCs(NBCs int, reader *bufio.Reader) (BCEdges types.BCMAP) {
	var (
		nType  int
		v1, v2 int
		err    error
	)
	BCEdges = make(types.BCMAP, NBCs)
	for n := 0; n < NBCs; n++ {
		label := readLabel(reader)
		key := types.NewBCTAG(label)
		nEdges := readNumber(reader)
		// Duplicate tags append to a common slice
		edges := make([]types.EdgeInt, nEdges)
		for i := 0; i < nEdges; i++ {
			line := getLine(reader)
			if _, err = fmt.Sscanf(line, "%d %d %d", &nType, &v1, &v2); err != nil {
				panic(err)
			}
			if SU2ElementType(nType) != ELType_LINE {
				panic("BCs should only contain line elements in 2D")
			}
			edges[i] = types.NewEdgeInt([2]int{v1, v2})
		}
		BCEdges.AddEdges(key, edges)
	}
	return
}

func readVertices(Nv int, reader *bufio.Reader) (VX, VY utils.Vector) {
	var (
		n    int
		x, y float64
		err  error
	)
	VX, VY = utils.NewVector(Nv), utils.NewVector(Nv)
	vxD, vyD := VX.Data(), VY.Data()
	for i := 0; i < Nv; i++ {
		line := getLine(reader)
		if n, err = fmt.Sscanf(line, "%f %f", &x, &y); err != nil {
			panic(err)
		}
		if n != 2 {
			panic("unable to read coordinates")
		}
		vxD[i], vyD[i] = x, y
	}
	return
}

func readElements(K int, reader *bufio.Reader) (EToV utils.Matrix) {
	var (
		n          int
		nType      int
		v1, v2, v3 int
		err        error
	)
	// EToV is K x 3
	EToV = utils.NewMatrix(K, 3)
	for k := 0; k < K; k++ {
		line := getLine(reader)
		if n, err = fmt.Sscanf(line, "%d %d %d %d", &nType, &v1, &v2, &v3); err != nil {
			panic(err)
		}
		if n != 4 {
			panic("unable to read vertices")
		}
		if SU2ElementType(nType) != ELType_Triangle {
			panic(fmt.Errorf("element %d has SU2 type %d, only triangles are supported", k, nType))
		}
		EToV.Set(k, 0, float64(v1))
		EToV.Set(k, 1, float64(v2))
		EToV.Set(k, 2, float64(v3))
	}
	return
}

func splitToken(line string) (key, token string) {
	ind := strings.Index(line, "=")
	if ind < 0 {
		err := fmt.Errorf("badly formed input line [%s], should have an =", line)
		panic(err)
	}
	key = strings.ToUpper(strings.Trim(line[:ind], " \t"))
	token = line[ind+1:]
	return
}

func getToken(reader *bufio.Reader) (token string) {
	_, token = splitToken(getLineNoComments(reader))
	return
}

func parseLabel(token string) (label string) {
	if _, err := fmt.Sscanf(token, "%s", &label); err != nil {
		err = fmt.Errorf("unable to read label from token: [%s]", token)
		panic(err)
	}
	label = strings.Trim(label, " ")
	return
}

func parseNumber(token string) (num int) {
	if _, err := fmt.Sscanf(token, "%d", &num); err != nil {
		err = fmt.Errorf("unable to read number from token: [%s]", token)
		panic(err)
	}
	return
}

func readLabel(reader *bufio.Reader) (label string) {
	return parseLabel(getToken(reader))
}

func readNumber(reader *bufio.Reader) (num int) {
	return parseNumber(getToken(reader))
}

func getLineNoComments(reader *bufio.Reader) (line string) {
	for {
		line = strings.Trim(getLine(reader), " \r")
		if len(line) != 0 && !strings.HasPrefix(line, "%") {
			return
		}
	}
}

/*
ReadSU2Mesh reads a 2D triangle mesh in SU2 native format. The NELEM, NPOIN and NMARK sections may
appear in any order. Markers named "Electrode-l" become electrode l of the tank.
*/
func ReadSU2Mesh(r io.Reader, verbose bool) (tm *geometry2D.TriMesh, err error) {
	var (
		reader   = bufio.NewReader(r)
		VX, VY   utils.Vector
		EToV     utils.Matrix
		BCEdges  = make(types.BCMAP)
		haveElem bool
		havePts  bool
	)
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("unable to read SU2 mesh: %v", rec)
		}
	}()
	for !(haveElem && havePts) || peekData(reader) {
		key, token := splitToken(getLineNoComments(reader))
		switch key {
		case "NDIME":
			if dim := parseNumber(token); dim != 2 {
				return nil, fmt.Errorf("mesh has dimension %d, only 2D meshes are supported", dim)
			}
			if verbose {
				fmt.Printf("Read file with 2 dimensional data...\n")
			}
		case "NELEM":
			EToV = readElements(parseNumber(token), reader)
			haveElem = true
		case "NPOIN":
			VX, VY = readVertices(parseNumber(token), reader)
			havePts = true
		case "NMARK":
			BCEdges = readBCs(parseNumber(token), reader)
		default:
			return nil, fmt.Errorf("unknown SU2 section [%s]", key)
		}
	}
	if verbose {
		K, _ := EToV.Dims()
		fmt.Printf("Nv = %d, K = %d, %d boundary markers\n", VX.Len(), K, len(BCEdges))
	}
	return geometry2D.NewTriMesh(VX, VY, EToV, BCEdges)
}

// peekData reports whether any non comment content remains
func peekData(reader *bufio.Reader) bool {
	for {
		b, err := reader.Peek(1)
		if err != nil {
			return false
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			_, _ = reader.ReadByte()
		case '%':
			if _, err = reader.ReadString('\n'); err != nil {
				return false
			}
		default:
			return true
		}
	}
}

func ReadSU2(filename string, verbose bool) (tm *geometry2D.TriMesh, err error) {
	var (
		file *os.File
	)
	if verbose {
		fmt.Printf("Reading SU2 file named: %s\n", filename)
	}
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	return ReadSU2Mesh(file, verbose)
}

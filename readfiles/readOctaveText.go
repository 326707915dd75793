package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/goeit/utils"
)

/*
OctaveData holds the named variables of an Octave text file, as written by "save -text". Scalars
are stored as 1x1 matrices. Order keeps the order in which the variables appear.
*/
type OctaveData struct {
	Vars  map[string]utils.Matrix
	Order []string
}

func NewOctaveData() *OctaveData {
	return &OctaveData{Vars: make(map[string]utils.Matrix)}
}

func (od *OctaveData) Add(name string, m utils.Matrix) {
	if _, ok := od.Vars[name]; !ok {
		od.Order = append(od.Order, name)
	}
	od.Vars[name] = m
}

func (od *OctaveData) Get(name string) (m utils.Matrix, err error) {
	var ok bool
	if m, ok = od.Vars[name]; !ok {
		err = fmt.Errorf("variable [%s] not found, have %v", name, od.Order)
	}
	return
}

func (od *OctaveData) Has(name string) bool {
	_, ok := od.Vars[name]
	return ok
}

// Vector returns a variable flattened in row major order, the layout numpy's flatten gives a
// matrix loaded from the same data. Row and column vectors come out in index order either way.
func (od *OctaveData) Vector(name string) (v []float64, err error) {
	var m utils.Matrix
	if m, err = od.Get(name); err != nil {
		return
	}
	nr, nc := m.Dims()
	v = make([]float64, 0, nr*nc)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			v = append(v, m.At(i, j))
		}
	}
	return
}

func (od *OctaveData) Scalar(name string) (val float64, err error) {
	var m utils.Matrix
	if m, err = od.Get(name); err != nil {
		return
	}
	if nr, nc := m.Dims(); nr != 1 || nc != 1 {
		err = fmt.Errorf("variable [%s] is %dx%d, not a scalar", name, nr, nc)
		return
	}
	return m.At(0, 0), nil
}

func ReadOctaveText(filename string) (od *OctaveData, err error) {
	var (
		file *os.File
	)
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	if od, err = ReadOctave(file); err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
	}
	return
}

/*
octaveShape reduces an Octave type to scalar or matrix. Integer and logical classes, as in
"uint8 matrix" or "bool", are read as numbers like the double types.
*/
func octaveShape(typ string) (shape string, ok bool) {
	fields := strings.Fields(typ)
	switch len(fields) {
	case 1:
		switch fields[0] {
		case "scalar", "matrix":
			return fields[0], true
		case "bool":
			return "scalar", true
		}
	case 2:
		class := fields[0]
		isInt := strings.HasPrefix(class, "int") || strings.HasPrefix(class, "uint")
		if !isInt && class != "bool" {
			return
		}
		if _, err := strconv.Atoi(strings.TrimLeft(class, "uint")); isInt && err != nil {
			return
		}
		switch fields[1] {
		case "scalar", "matrix":
			return fields[1], true
		}
	}
	return
}

func ReadOctave(r io.Reader) (od *OctaveData, err error) {
	var (
		scanner = bufio.NewScanner(r)
		lineNum int
		header  = make(map[string]string)
	)
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	od = NewOctaveData()
	nextLine := func() (line string, ok bool) {
		for scanner.Scan() {
			lineNum++
			line = strings.TrimSpace(scanner.Text())
			if len(line) != 0 {
				return line, true
			}
		}
		return "", false
	}
	// readValues reads n whitespace separated numbers spread over any number of lines
	readValues := func(n int, name string) (vals []float64, err error) {
		vals = make([]float64, 0, n)
		for len(vals) < n {
			line, ok := nextLine()
			if !ok {
				return nil, fmt.Errorf("early end of file reading [%s], have %d of %d values", name, len(vals), n)
			}
			for _, f := range strings.Fields(line) {
				var val float64
				if val, err = parseOctaveFloat(f); err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				vals = append(vals, val)
			}
		}
		if len(vals) != n {
			return nil, fmt.Errorf("line %d: [%s] has %d values, expected %d", lineNum, name, len(vals), n)
		}
		return
	}
	// readNDims reads the dimension line of an "ndims" array and its column major values
	readNDims := func(name string) (m utils.Matrix, err error) {
		var (
			line string
			ok   bool
			dims []int
		)
		if line, ok = nextLine(); !ok {
			return m, fmt.Errorf("early end of file reading the dimensions of [%s]", name)
		}
		for _, f := range strings.Fields(line) {
			var d int
			if d, err = strconv.Atoi(f); err != nil {
				return m, fmt.Errorf("line %d: bad dimension of [%s]: %w", lineNum, name, err)
			}
			dims = append(dims, d)
		}
		if len(dims) < 2 {
			return m, fmt.Errorf("line %d: [%s] needs at least 2 dimensions, have %v", lineNum, name, dims)
		}
		for _, d := range dims[2:] {
			if d != 1 {
				return m, fmt.Errorf("variable [%s] has dimensions %v, only 2D matrices are supported", name, dims)
			}
		}
		nr, nc := dims[0], dims[1]
		if nr < 1 || nc < 1 {
			return m, fmt.Errorf("variable [%s] is empty (%dx%d)", name, nr, nc)
		}
		var vals []float64
		if vals, err = readValues(nr*nc, name); err != nil {
			return
		}
		m = utils.NewMatrix(nr, nc)
		for idx, val := range vals {
			m.Set(idx%nr, idx/nr, val)
		}
		return
	}
	flush := func() (err error) {
		var (
			name     = header["name"]
			shape, _ = octaveShape(header["type"])
			m        utils.Matrix
		)
		switch {
		case shape == "scalar":
			var vals []float64
			if vals, err = readValues(1, name); err != nil {
				return
			}
			m = utils.NewMatrix(1, 1, vals)
		case header["ndims"] != "":
			if m, err = readNDims(name); err != nil {
				return
			}
		default:
			var nr, nc int
			if nr, err = strconv.Atoi(header["rows"]); err != nil {
				return fmt.Errorf("variable [%s]: bad row count: %w", name, err)
			}
			if nc, err = strconv.Atoi(header["columns"]); err != nil {
				return fmt.Errorf("variable [%s]: bad column count: %w", name, err)
			}
			if nr < 1 || nc < 1 {
				return fmt.Errorf("variable [%s] is empty (%dx%d)", name, nr, nc)
			}
			m = utils.NewMatrix(nr, nc)
			for i := 0; i < nr; i++ {
				line, ok := nextLine()
				if !ok {
					return fmt.Errorf("early end of file reading row %d of [%s]", i, name)
				}
				fields := strings.Fields(line)
				if len(fields) != nc {
					return fmt.Errorf("line %d: row %d of [%s] has %d values, expected %d",
						lineNum, i, name, len(fields), nc)
				}
				for j, f := range fields {
					var val float64
					if val, err = parseOctaveFloat(f); err != nil {
						return fmt.Errorf("line %d: %w", lineNum, err)
					}
					m.Set(i, j, val)
				}
			}
		}
		od.Add(name, m)
		return
	}
	for {
		line, ok := nextLine()
		if !ok {
			break
		}
		if !strings.HasPrefix(line, "#") {
			return nil, fmt.Errorf("line %d: unexpected data outside of a variable: [%s]", lineNum, line)
		}
		key, value, found := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "#")), ":")
		if !found {
			// "# Created by Octave ..."
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "name" {
			header = make(map[string]string)
		}
		header[key] = value
		switch key {
		case "type":
			shape, ok := octaveShape(value)
			if !ok {
				return nil, fmt.Errorf("line %d: variable [%s] has unsupported type [%s]", lineNum, header["name"], value)
			}
			if shape == "scalar" {
				if err = flush(); err != nil {
					return nil, err
				}
			}
		case "columns", "ndims":
			if err = flush(); err != nil {
				return nil, err
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	return
}

func parseOctaveFloat(s string) (val float64, err error) {
	switch strings.ToLower(s) {
	case "inf":
		return strconv.ParseFloat("+Inf", 64)
	case "-inf":
		return strconv.ParseFloat("-Inf", 64)
	case "nan", "na":
		return strconv.ParseFloat("NaN", 64)
	}
	if val, err = strconv.ParseFloat(s, 64); err != nil {
		err = fmt.Errorf("unable to parse number [%s]", s)
	}
	return
}

// WriteOctave writes the variables in Octave text format, readable with "load" in Octave
func WriteOctave(w io.Writer, od *OctaveData) (err error) {
	var (
		bw = bufio.NewWriter(w)
	)
	fmt.Fprintf(bw, "# Created by goeit\n")
	for _, name := range od.Order {
		m := od.Vars[name]
		nr, nc := m.Dims()
		fmt.Fprintf(bw, "# name: %s\n", name)
		if nr == 1 && nc == 1 {
			fmt.Fprintf(bw, "# type: scalar\n%.17g\n\n\n", m.At(0, 0))
			continue
		}
		fmt.Fprintf(bw, "# type: matrix\n# rows: %d\n# columns: %d\n", nr, nc)
		for i := 0; i < nr; i++ {
			for j := 0; j < nc; j++ {
				fmt.Fprintf(bw, " %.17g", m.At(i, j))
			}
			fmt.Fprintf(bw, "\n")
		}
		fmt.Fprintf(bw, "\n\n")
	}
	return bw.Flush()
}

func WriteOctaveText(filename string, od *OctaveData) (err error) {
	var (
		file *os.File
	)
	if file, err = os.Create(filename); err != nil {
		return fmt.Errorf("unable to create file %s: %w", filename, err)
	}
	if err = WriteOctave(file, od); err != nil {
		file.Close()
		return
	}
	return file.Close()
}

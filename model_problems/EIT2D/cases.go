package EIT2D

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/notargets/goeit/readfiles"
	"github.com/notargets/goeit/utils"
)

const (
	RefFile        = "ref"
	InjectionVar   = "Injref"
	MeasPatternVar = "Mpat"
)

// Case names the phantom and voltage files of one acquisition
type Case struct {
	Name        string
	PhantomFile string
	PhantomVar  string
	DataFile    string
	DataVar     string
	// The reference acquisition is of the empty tank
	ZeroPhantom bool
}

var Cases = map[string]Case{
	"case1":    {Name: "case1", PhantomFile: "true1", PhantomVar: "truth", DataFile: "data1", DataVar: "Uel"},
	"case2":    {Name: "case2", PhantomFile: "true2", PhantomVar: "truth", DataFile: "data2", DataVar: "Uel"},
	"case3":    {Name: "case3", PhantomFile: "true3", PhantomVar: "truth", DataFile: "data3", DataVar: "Uel"},
	"case4":    {Name: "case4", PhantomFile: "true4", PhantomVar: "truth", DataFile: "data4", DataVar: "Uel"},
	"case_ref": {Name: "case_ref", PhantomFile: "true1", PhantomVar: "truth", DataFile: RefFile, DataVar: "Uelref", ZeroPhantom: true},
}

func CaseNames() (names []string) {
	for name := range Cases {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

func GetCase(name string) (c Case, err error) {
	var ok bool
	if c, ok = Cases[name]; !ok {
		err = fmt.Errorf("unknown case %q", name)
	}
	return
}

/*
CaseData is everything read from disk for one case. Injections is L x Ninj with one current
pattern per column, MeasPattern is L x Nmeas. Uel is injection major: the Nmeas measurements of
injection 0 first.
*/
type CaseData struct {
	Case
	Phantom     utils.Matrix
	Injections  utils.Matrix
	MeasPattern utils.Matrix
	Uel         []float64
}

func dataFile(dataDir, stem string) string {
	return filepath.Join(dataDir, stem+".txt")
}

func LoadCase(dataDir, name string, verbose bool) (cd *CaseData, err error) {
	var (
		c            Case
		ref, phantom *readfiles.OctaveData
		data         *readfiles.OctaveData
	)
	if c, err = GetCase(name); err != nil {
		return
	}
	cd = &CaseData{Case: c}
	if ref, err = readfiles.ReadOctaveText(dataFile(dataDir, RefFile)); err != nil {
		return nil, err
	}
	if cd.Injections, err = ref.Get(InjectionVar); err != nil {
		return nil, fmt.Errorf("reference file: %w", err)
	}
	L, _ := cd.Injections.Dims()
	if ref.Has(MeasPatternVar) {
		cd.MeasPattern, _ = ref.Get(MeasPatternVar)
		if nr, _ := cd.MeasPattern.Dims(); nr != L {
			return nil, fmt.Errorf("measurement pattern has %d rows, injections have %d electrodes", nr, L)
		}
	} else {
		cd.MeasPattern = AdjacentPattern(L)
	}
	if phantom, err = readfiles.ReadOctaveText(dataFile(dataDir, c.PhantomFile)); err != nil {
		return nil, err
	}
	if cd.Phantom, err = phantom.Get(c.PhantomVar); err != nil {
		return nil, fmt.Errorf("phantom file: %w", err)
	}
	if c.ZeroPhantom {
		cd.Phantom = cd.Phantom.Copy()
		vals := cd.Phantom.Data()
		for i := range vals {
			vals[i] = 0
		}
	}
	data = ref
	if c.DataFile != RefFile {
		if data, err = readfiles.ReadOctaveText(dataFile(dataDir, c.DataFile)); err != nil {
			return nil, err
		}
	}
	if cd.Uel, err = data.Vector(c.DataVar); err != nil {
		return nil, fmt.Errorf("data file: %w", err)
	}
	if verbose {
		_, Ninj := cd.Injections.Dims()
		_, Nmeas := cd.MeasPattern.Dims()
		nr, nc := cd.Phantom.Dims()
		fmt.Printf("Case %s: L = %d, %d injections, %d measurements each, %d voltages, phantom %dx%d\n",
			c.Name, L, Ninj, Nmeas, len(cd.Uel), nr, nc)
	}
	return
}

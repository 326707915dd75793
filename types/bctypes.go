package types

import (
	"fmt"
	"strconv"
	"strings"
)

type BCFLAG uint8

const (
	BC_None BCFLAG = iota
	BC_Electrode
	BC_Insulated
)

var BCNameMap = map[string]BCFLAG{
	"electrode": BC_Electrode,
	"elec":      BC_Electrode,
	"e":         BC_Electrode,
	"insulated": BC_Insulated,
	"wall":      BC_Insulated,
	"gap":       BC_Insulated,
}

func (bcf BCFLAG) String() string {
	switch bcf {
	case BC_Electrode:
		return "Electrode"
	case BC_Insulated:
		return "Insulated"
	default:
		return "None"
	}
}

/*
BCTAG is the boundary marker found in a mesh file, composed of a flag name and an optional label
separated by a dash, for example "Electrode-12" or "wall"
*/
type BCTAG string

func NewBCTAG(label string) (bt BCTAG) {
	bt = BCTAG(strings.Trim(label, " "))
	return
}

func NewElectrodeTAG(l int) BCTAG {
	return BCTAG(fmt.Sprintf("Electrode-%d", l))
}

func (bt BCTAG) split() (flag, label string) {
	s := string(bt)
	ind := strings.Index(s, "-")
	if ind < 0 {
		return strings.ToLower(s), ""
	}
	return strings.ToLower(s[:ind]), s[ind+1:]
}

func (bt BCTAG) GetFLAG() BCFLAG {
	flag, _ := bt.split()
	if f, ok := BCNameMap[flag]; ok {
		return f
	}
	return BC_None
}

func (bt BCTAG) GetLabel() string {
	_, label := bt.split()
	return label
}

// ElectrodeNumber returns the 1-based electrode number of an electrode tag
func (bt BCTAG) ElectrodeNumber() (l int, err error) {
	if bt.GetFLAG() != BC_Electrode {
		err = fmt.Errorf("boundary tag [%s] is not an electrode", bt)
		return
	}
	if l, err = strconv.Atoi(bt.GetLabel()); err != nil {
		err = fmt.Errorf("unable to read electrode number from tag [%s]: %w", bt, err)
		return
	}
	if l < 1 {
		err = fmt.Errorf("electrode numbers start at 1, tag [%s]", bt)
	}
	return
}

type BCMAP map[BCTAG][]EdgeInt

func (bcm BCMAP) AddEdges(key BCTAG, edges []EdgeInt) {
	bcm[key] = append(bcm[key], edges...)
}

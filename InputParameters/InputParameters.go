package InputParameters

import (
	"fmt"
	"os"
	"strings"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type InputParametersEIT struct {
	Title             string  `json:"Title"`
	Case              string  `json:"Case"`
	DataDir           string  `json:"DataDir"`
	DataSource        string  `json:"DataSource"` // measured or simulated
	MeshFile          string  `json:"MeshFile"`   // .su2 or .neu, empty generates a disk
	Radius            float64 `json:"Radius"`
	Rings             int     `json:"Rings"`
	NodesPerElectrode int     `json:"NodesPerElectrode"`
	Electrodes        int     `json:"Electrodes"`
	Coverage          float64 `json:"Coverage"`
	ElectrodeOffset   float64 `json:"ElectrodeOffset"`
	ContactImpedance  float64 `json:"ContactImpedance"`
	Background        float64 `json:"Background"`
	Low               float64 `json:"Low"`
	High              float64 `json:"High"`
	Regularization    string  `json:"Regularization"` // TV, SMPrior or None
	Delta             float64 `json:"Delta"`
	Alpha             float64 `json:"Alpha"`
	PriorFile         string  `json:"PriorFile"`
	Lower             float64 `json:"Lower"`
	Upper             float64 `json:"Upper"`
	X0                float64 `json:"X0"`
	XTolRel           float64 `json:"XTolRel"`
	MaxEval           int     `json:"MaxEval"`
	Method            string  `json:"Method"`
	Solver            string  `json:"Solver"`
	NoiseLevel        float64 `json:"NoiseLevel"`
	NoiseFloor        float64 `json:"NoiseFloor"`
	Seed              uint64  `json:"Seed"`
	ParallelDegree    int     `json:"ParallelDegree"`
	PlotDir           string  `json:"PlotDir"`
	PlotEvery         int     `json:"PlotEvery"`
}

func NewInputParametersEIT() *InputParametersEIT {
	return &InputParametersEIT{
		Title:             "EIT reconstruction",
		Case:              "case_ref",
		DataDir:           ".",
		DataSource:        "simulated",
		Radius:            1,
		Rings:             12,
		NodesPerElectrode: 4,
		Electrodes:        32,
		Coverage:          0.5,
		ContactImpedance:  1.e-6,
		Background:        0.8,
		Low:               1.e-2,
		High:              1.e1,
		Regularization:    "TV",
		Delta:             1.e-3,
		Alpha:             1,
		Lower:             1.e-5,
		Upper:             1.e2,
		X0:                10,
		XTolRel:           1.e-4,
		MaxEval:           100,
		Method:            "lbfgs",
		Solver:            "cholesky",
		PlotEvery:         1,
	}
}

// Parse overlays the values present in data onto the receiver
func (ip *InputParametersEIT) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	return ip.Validate()
}

func ReadInputParametersEIT(fileName string) (ip *InputParametersEIT, err error) {
	var data []byte
	ip = NewInputParametersEIT()
	if fileName == "" {
		return
	}
	if data, err = os.ReadFile(fileName); err != nil {
		return nil, fmt.Errorf("unable to read input file: %w", err)
	}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("input file %s: %w", fileName, err)
	}
	return
}

func (ip *InputParametersEIT) Validate() (err error) {
	switch {
	case ip.Electrodes < 2:
		err = fmt.Errorf("need at least 2 electrodes, have %d", ip.Electrodes)
	case ip.ContactImpedance <= 0:
		err = fmt.Errorf("contact impedance must be positive, have %g", ip.ContactImpedance)
	case !(ip.Lower > 0 && ip.Upper > ip.Lower):
		err = fmt.Errorf("bounds must satisfy 0 < Lower < Upper, have [%g, %g]", ip.Lower, ip.Upper)
	case ip.X0 < ip.Lower || ip.X0 > ip.Upper:
		err = fmt.Errorf("initial conductivity %g is outside of [%g, %g]", ip.X0, ip.Lower, ip.Upper)
	case ip.Delta <= 0:
		err = fmt.Errorf("TV smoothing Delta must be positive, have %g", ip.Delta)
	case ip.MaxEval < 1:
		err = fmt.Errorf("MaxEval must be at least 1, have %d", ip.MaxEval)
	case ip.NoiseLevel < 0 || ip.NoiseFloor < 0:
		err = fmt.Errorf("noise levels must not be negative")
	}
	if err != nil {
		return
	}
	switch strings.ToLower(ip.DataSource) {
	case "measured", "simulated":
	default:
		err = fmt.Errorf("DataSource must be measured or simulated, have [%s]", ip.DataSource)
	}
	return
}

func (ip *InputParametersEIT) Simulated() bool {
	return strings.ToLower(ip.DataSource) == "simulated"
}

func (ip *InputParametersEIT) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t\t= Case\n", ip.Case)
	fmt.Printf("[%s]\t\t= Data Source, directory [%s]\n", ip.DataSource, ip.DataDir)
	if ip.MeshFile != "" {
		fmt.Printf("[%s]\t\t= Mesh File\n", ip.MeshFile)
	} else {
		fmt.Printf("[%d]\t\t\t\t= Disk Rings, radius %g, %d nodes per electrode\n",
			ip.Rings, ip.Radius, ip.NodesPerElectrode)
	}
	fmt.Printf("[%d]\t\t\t\t= Electrodes, coverage %g\n", ip.Electrodes, ip.Coverage)
	fmt.Printf("%8.2e\t\t= Contact Impedance\n", ip.ContactImpedance)
	fmt.Printf("[%s]\t\t\t= Regularization, Delta = %g, Alpha = %g\n", ip.Regularization, ip.Delta, ip.Alpha)
	fmt.Printf("[%g, %g]\t\t= Bounds, X0 = %g\n", ip.Lower, ip.Upper, ip.X0)
	fmt.Printf("[%s]\t\t\t= Method, XTolRel = %g, MaxEval = %d\n", ip.Method, ip.XTolRel, ip.MaxEval)
	fmt.Printf("[%s]\t\t= Linear Solver\n", ip.Solver)
	if ip.NoiseLevel > 0 || ip.NoiseFloor > 0 {
		fmt.Printf("%8.2e, %8.2e\t= Noise Level, Floor (seed %d)\n", ip.NoiseLevel, ip.NoiseFloor, ip.Seed)
	}
}

package EIT2D

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/notargets/avs/chart2d"
	"github.com/notargets/avs/geometry"
	utils2 "github.com/notargets/avs/utils"
	"github.com/notargets/goeit/FEM2D"
	"github.com/notargets/goeit/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// grid adapts a sampled field to plotter.GridXYZ
type grid struct {
	xs, ys []float64
	z      utils.Matrix // len(ys) x len(xs)
}

func (g grid) Dims() (c, r int)   { return len(g.xs), len(g.ys) }
func (g grid) Z(c, r int) float64 { return g.z.At(r, c) }
func (g grid) X(c int) float64    { return g.xs[c] }
func (g grid) Y(r int) float64    { return g.ys[r] }

/*
PNGPlotter writes every Every'th evaluation of each field to Dir as <name>_<eval>.png, sampled on
an N x N grid covering the mesh.
*/
type PNGPlotter struct {
	Space *FEM2D.Space
	Dir   string
	N     int
	Every int
	Names map[string]bool // Fields to plot, nil plots all
}

func NewPNGPlotter(sp *FEM2D.Space, dir string, every int) (pp *PNGPlotter, err error) {
	if err = os.MkdirAll(dir, 0755); err != nil {
		return
	}
	if every < 1 {
		every = 1
	}
	pp = &PNGPlotter{
		Space: sp,
		Dir:   dir,
		N:     128,
		Every: every,
	}
	return
}

func (pp *PNGPlotter) PlotField(name string, eval int, field []float64) (err error) {
	if eval%pp.Every != 0 || (pp.Names != nil && !pp.Names[name]) {
		return
	}
	return pp.Save(filepath.Join(pp.Dir, fmt.Sprintf("%s_%04d.png", name, eval)),
		fmt.Sprintf("%s, evaluation %d", name, eval), field)
}

// Save renders the field as a heat map into fileName
func (pp *PNGPlotter) Save(fileName, title string, field []float64) (err error) {
	var (
		box    = pp.Space.Box
		X, Y   = linspace(box.XMin[0], box.XMax[0], pp.N), linspace(box.XMin[1], box.XMax[1], pp.N)
		g      = grid{xs: X, ys: Y, z: pp.Space.Sample(field, X, Y)}
		fl, fh = fieldRange(field)
	)
	hm := plotter.NewHeatMap(g, palette.Heat(64, 1))
	hm.Min, hm.Max = fl, fh
	hm.NaN = color.Transparent
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(hm)
	return p.Save(6*vg.Inch, 6*vg.Inch, fileName)
}

/*
WindowPlotter shows fields in interactive avs windows, one window per field name. Each plotted
evaluation is shaded over the window contents.
*/
type WindowPlotter struct {
	Mesh   geometry.TriMesh
	Every  int
	Names  map[string]bool
	charts map[string]*chart2d.Chart2D
	xMin   float32
	xMax   float32
	yMin   float32
	yMax   float32
}

func NewWindowPlotter(sp *FEM2D.Space, every int) (wp *WindowPlotter) {
	if every < 1 {
		every = 1
	}
	box := sp.Box
	wp = &WindowPlotter{
		Mesh:   AVSMesh(sp),
		Every:  every,
		Names:  map[string]bool{"sigma": true},
		charts: make(map[string]*chart2d.Chart2D),
		xMin:   float32(box.XMin[0]),
		xMax:   float32(box.XMax[0]),
		yMin:   float32(box.XMin[1]),
		yMax:   float32(box.XMax[1]),
	}
	return
}

// AVSMesh converts the finite element mesh to the avs triangle mesh
func AVSMesh(sp *FEM2D.Space) (gm geometry.TriMesh) {
	var (
		tm     = sp.Mesh
		vx, vy = tm.VX.Data(), tm.VY.Data()
	)
	gm.XY = make([]float32, 2*tm.Nv())
	for i := range vx {
		gm.XY[2*i], gm.XY[2*i+1] = float32(vx[i]), float32(vy[i])
	}
	gm.TriVerts = make([][3]int64, tm.K())
	for k, tri := range tm.EToV {
		gm.TriVerts[k] = [3]int64{int64(tri[0]), int64(tri[1]), int64(tri[2])}
	}
	return
}

func (wp *WindowPlotter) chart(name string) (ch *chart2d.Chart2D) {
	var ok bool
	if ch, ok = wp.charts[name]; !ok {
		ch = chart2d.NewChart2D(wp.xMin, wp.xMax, wp.yMin, wp.yMax,
			1024, 1024, utils2.WHITE, utils2.BLACK)
		wp.charts[name] = ch
	}
	return
}

func (wp *WindowPlotter) PlotField(name string, eval int, field []float64) (err error) {
	if eval%wp.Every != 0 || (wp.Names != nil && !wp.Names[name]) {
		return
	}
	var (
		pField = make([]float32, len(field))
		fl, fh = fieldRange(field)
	)
	if len(field) != len(wp.Mesh.XY)/2 {
		return fmt.Errorf("field has %d values, mesh has %d vertices", len(field), len(wp.Mesh.XY)/2)
	}
	for i, f := range field {
		pField[i] = float32(f)
	}
	vs := geometry.VertexScalar{
		TMesh:       &wp.Mesh,
		FieldValues: pField,
	}
	ch := wp.chart(name)
	ch.AddShadedVertexScalar(&vs, float32(fl), float32(fh))
	ch.AddTriMesh(wp.Mesh)
	return
}

// ShowMesh opens a window with the mesh edges
func ShowMesh(sp *FEM2D.Space) {
	box := sp.Box
	ch := chart2d.NewChart2D(float32(box.XMin[0]), float32(box.XMax[0]), float32(box.XMin[1]), float32(box.XMax[1]),
		1024, 1024, utils2.WHITE, utils2.BLACK)
	ch.AddTriMesh(AVSMesh(sp))
}

func linspace(a, b float64, n int) (x []float64) {
	x = make([]float64, n)
	for i := range x {
		x[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	return
}

// fieldRange skips NaN values and widens a constant range so it can be shaded
func fieldRange(field []float64) (fMin, fMax float64) {
	fMin, fMax = math.Inf(1), math.Inf(-1)
	for _, f := range field {
		if math.IsNaN(f) {
			continue
		}
		fMin, fMax = math.Min(fMin, f), math.Max(fMax, f)
	}
	if math.IsInf(fMin, 1) {
		return 0, 1
	}
	if fMax-fMin <= 1.e-12*math.Max(math.Abs(fMax), 1) {
		d := 0.5 * math.Max(math.Abs(fMax), 1) * 1.e-6
		fMin, fMax = fMin-d, fMax+d
	}
	return
}

package geometry2D

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/goeit/types"
	"github.com/notargets/goeit/utils"
)

type Point struct {
	X [2]float64
}

type BoundingBox struct {
	XMin [2]float64
	XMax [2]float64
}

func NewBoundingBox(Geometry []Point) (Box *BoundingBox) {
	if len(Geometry) == 0 {
		return nil
	}
	Box = new(BoundingBox)
	Box.XMin, Box.XMax = Geometry[0].X, Geometry[0].X
	for _, point := range Geometry {
		for i := 0; i < 2; i++ {
			if point.X[i] < Box.XMin[i] {
				Box.XMin[i] = point.X[i]
			}
			if point.X[i] > Box.XMax[i] {
				Box.XMax[i] = point.X[i]
			}
		}
	}
	return Box
}

func (bb *BoundingBox) Scale(scale float64) (bbOut *BoundingBox) {
	bbOut = new(BoundingBox)
	for i := 0; i < 2; i++ {
		xRange := bb.XMax[i] - bb.XMin[i]
		centroid := bb.XMin[i] + 0.5*xRange
		bbOut.XMin[i] = scale*(bb.XMin[i]-centroid) + centroid
		bbOut.XMax[i] = scale*(bb.XMax[i]-centroid) + centroid
	}
	return bbOut
}

func (bb *BoundingBox) PointInside(point Point) (within bool) {
	for ii := 0; ii < 2; ii++ {
		if point.X[ii] > bb.XMax[ii] || point.X[ii] < bb.XMin[ii] {
			return false
		}
	}
	return true
}

/*
TriMesh is an unstructured triangle mesh with vertex coordinates VX, VY and a zero based element to
vertex map. Elements are stored with counter-clockwise vertex order. BCEdges carries the tagged
boundary edges, electrodes use the tags "Electrode-1" ... "Electrode-L".
*/
type TriMesh struct {
	VX, VY  utils.Vector
	EToV    [][3]int
	BCEdges types.BCMAP
}

func NewTriMesh(VX, VY utils.Vector, EToV utils.Matrix, BCEdges types.BCMAP) (tm *TriMesh, err error) {
	var (
		K, _ = EToV.Dims()
		Nv   = VX.Len()
	)
	if VY.Len() != Nv {
		err = fmt.Errorf("vertex coordinate lengths differ: len(VX) = %d, len(VY) = %d", Nv, VY.Len())
		return
	}
	if BCEdges == nil {
		BCEdges = make(types.BCMAP)
	}
	tm = &TriMesh{
		VX:      VX,
		VY:      VY,
		EToV:    EToV.ToIndex3(),
		BCEdges: BCEdges,
	}
	for k := 0; k < K; k++ {
		for n := 0; n < 3; n++ {
			if v := tm.EToV[k][n]; v < 0 || v >= Nv {
				err = fmt.Errorf("element %d references vertex %d, mesh has %d vertices", k, v, Nv)
				return
			}
		}
		area := tm.SignedArea(k)
		switch {
		case area == 0:
			err = fmt.Errorf("element %d is degenerate", k)
			return
		case area < 0:
			tm.EToV[k][1], tm.EToV[k][2] = tm.EToV[k][2], tm.EToV[k][1]
		}
	}
	return
}

func (tm *TriMesh) Nv() int { return tm.VX.Len() }
func (tm *TriMesh) K() int  { return len(tm.EToV) }

func (tm *TriMesh) Vertex(i int) Point {
	return Point{X: [2]float64{tm.VX.AtVec(i), tm.VY.AtVec(i)}}
}

func (tm *TriMesh) SignedArea(k int) float64 {
	var (
		vx, vy     = tm.VX.Data(), tm.VY.Data()
		v0, v1, v2 = tm.EToV[k][0], tm.EToV[k][1], tm.EToV[k][2]
	)
	return 0.5 * ((vx[v1]-vx[v0])*(vy[v2]-vy[v0]) - (vx[v2]-vx[v0])*(vy[v1]-vy[v0]))
}

func (tm *TriMesh) TotalArea() (area float64) {
	for k := range tm.EToV {
		area += tm.SignedArea(k)
	}
	return
}

func (tm *TriMesh) GetBoundingBox() *BoundingBox {
	pts := make([]Point, tm.Nv())
	for i := range pts {
		pts[i] = tm.Vertex(i)
	}
	return NewBoundingBox(pts)
}

// BoundaryEdges returns the edges connected to a single element, oriented as
// they are traversed by their element, which is counter-clockwise around the
// domain
func (tm *TriMesh) BoundaryEdges() (edges []types.EdgeInt) {
	var (
		count = make(map[types.EdgeKey]int)
		dir   = make(map[types.EdgeKey]types.EdgeInt)
	)
	for _, tri := range tm.EToV {
		for n := 0; n < 3; n++ {
			e := types.NewEdgeInt([2]int{tri[n], tri[(n+1)%3]})
			key := e.GetKey()
			count[key]++
			dir[key] = e
		}
	}
	for key, c := range count {
		if c == 1 {
			edges = append(edges, dir[key])
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].GetKey() < edges[j].GetKey()
	})
	return
}

func (tm *TriMesh) EdgeLength(e types.EdgeInt) float64 {
	var (
		verts  = e.GetVertices()
		vx, vy = tm.VX.Data(), tm.VY.Data()
	)
	return math.Hypot(vx[verts[1]]-vx[verts[0]], vy[verts[1]]-vy[verts[0]])
}

// Center returns the centroid of the boundary vertices and their mean
// distance to it, which for a circular tank is the tank radius
func (tm *TriMesh) Center() (cx, cy, R float64) {
	var (
		edges  = tm.BoundaryEdges()
		vx, vy = tm.VX.Data(), tm.VY.Data()
	)
	if len(edges) == 0 {
		return
	}
	for _, e := range edges {
		v := e.GetVertices()[0]
		cx += vx[v]
		cy += vy[v]
	}
	cx /= float64(len(edges))
	cy /= float64(len(edges))
	for _, e := range edges {
		v := e.GetVertices()[0]
		R += math.Hypot(vx[v]-cx, vy[v]-cy)
	}
	R /= float64(len(edges))
	return
}

/*
AssignElectrodes tags boundary edges as electrodes by angle around the mesh center. Electrode l
(1 based) is centered at angle offset + 2π(l-1)/L and spans a fraction coverage of the angular
pitch 2π/L. An edge belongs to an electrode when its midpoint falls inside the span.
Previously tagged electrodes are replaced.
*/
func (tm *TriMesh) AssignElectrodes(L int, coverage, offset float64) (err error) {
	var (
		cx, cy, _ = tm.Center()
		vx, vy    = tm.VX.Data(), tm.VY.Data()
		pitch     = 2 * math.Pi / float64(L)
		halfWidth = 0.5 * coverage * pitch
	)
	if L < 2 {
		return fmt.Errorf("need at least two electrodes, have %d", L)
	}
	if coverage <= 0 || coverage > 1 {
		return fmt.Errorf("electrode coverage must be in (0, 1], have %g", coverage)
	}
	for tag := range tm.BCEdges {
		if tag.GetFLAG() == types.BC_Electrode {
			delete(tm.BCEdges, tag)
		}
	}
	for _, e := range tm.BoundaryEdges() {
		verts := e.GetVertices()
		mx := 0.5*(vx[verts[0]]+vx[verts[1]]) - cx
		my := 0.5*(vy[verts[0]]+vy[verts[1]]) - cy
		phi := math.Atan2(my, mx) - offset
		// Nearest electrode center
		l := int(math.Round(phi/pitch)) % L
		if l < 0 {
			l += L
		}
		dPhi := math.Remainder(phi-float64(l)*pitch, 2*math.Pi)
		if math.Abs(dPhi) <= halfWidth*(1+1.e-9) {
			tm.BCEdges.AddEdges(types.NewElectrodeTAG(l+1), []types.EdgeInt{e})
		}
	}
	_, err = tm.Electrodes(L)
	return
}

// Electrodes returns the boundary edges of electrodes 1...L, in that order
func (tm *TriMesh) Electrodes(L int) (electrodes [][]types.EdgeInt, err error) {
	electrodes = make([][]types.EdgeInt, L)
	for tag, edges := range tm.BCEdges {
		if tag.GetFLAG() != types.BC_Electrode {
			continue
		}
		var l int
		if l, err = tag.ElectrodeNumber(); err != nil {
			return
		}
		if l > L {
			err = fmt.Errorf("mesh has electrode %d, only %d electrodes are expected", l, L)
			return
		}
		electrodes[l-1] = append(electrodes[l-1], edges...)
	}
	owner := make(map[types.EdgeKey]int)
	for l, edges := range electrodes {
		if len(edges) == 0 {
			err = fmt.Errorf("electrode %d has no boundary edges", l+1)
			return
		}
		for _, e := range edges {
			if prev, ok := owner[e.GetKey()]; ok && prev != l {
				err = fmt.Errorf("edge %v is shared by electrodes %d and %d", e.GetVertices(), prev+1, l+1)
				return
			}
			owner[e.GetKey()] = l
		}
	}
	return
}

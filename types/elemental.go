package types

import (
	"fmt"
	"math"
)

// EdgeKey identifies an undirected mesh edge, [4,0] and [0,4] share a key
type EdgeKey uint64

// EdgeInt is a mesh edge that remembers the direction it was created with. The
// magnitude is the EdgeKey of the edge, the sign is negative when the first
// vertex is the larger index.
type EdgeInt int64

// pack places the smaller vertex index in the low and the larger in the high 32 bits
func pack(verts [2]int, limit int) (packed uint64, reversed bool) {
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("vertex indices %d and %d do not fit an edge", verts[0], verts[1]))
		}
	}
	lo, hi := verts[0], verts[1]
	if lo > hi {
		lo, hi, reversed = hi, lo, true
	}
	return uint64(lo) | uint64(hi)<<32, reversed
}

func NewEdgeKey(verts [2]int) EdgeKey {
	packed, _ := pack(verts, math.MaxUint32)
	return EdgeKey(packed)
}

func NewEdgeInt(verts [2]int) (e EdgeInt) {
	// One bit less than a key, the sign carries the direction
	packed, reversed := pack(verts, math.MaxUint32>>1)
	if e = EdgeInt(packed); reversed {
		e = -e
	}
	return
}

// GetVertices returns the vertices in the order the edge was created with
func (e EdgeInt) GetVertices() (verts [2]int) {
	ek := e.GetKey()
	verts = [2]int{int(ek & math.MaxUint32), int(ek >> 32)}
	if e < 0 {
		verts[0], verts[1] = verts[1], verts[0]
	}
	return
}

func (e EdgeInt) GetKey() EdgeKey {
	if e < 0 {
		return EdgeKey(-e)
	}
	return EdgeKey(e)
}

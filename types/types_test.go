package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Undirected keys order the vertices
		assert.Equal(t, EdgeKey(1<<32), NewEdgeKey([2]int{1, 0}))
		assert.Equal(t, NewEdgeKey([2]int{0, 10}), NewEdgeKey([2]int{10, 0}))
		assert.Equal(t, EdgeKey(100001*(1<<32)+100), NewEdgeKey([2]int{100, 100001}))
		assert.Panics(t, func() { NewEdgeKey([2]int{-1, 2}) })
	}
	{ // Directed edges keep their orientation but share a key
		e1 := NewEdgeInt([2]int{7, 3})
		e2 := NewEdgeInt([2]int{3, 7})
		assert.True(t, e1 < 0 && e2 > 0)
		assert.Equal(t, [2]int{7, 3}, e1.GetVertices())
		assert.Equal(t, [2]int{3, 7}, e2.GetVertices())
		assert.Equal(t, e1.GetKey(), e2.GetKey())
		assert.Equal(t, NewEdgeKey([2]int{3, 7}), e1.GetKey())
		e3 := NewEdgeInt([2]int{100001, 100})
		assert.Equal(t, [2]int{100001, 100}, e3.GetVertices())
		assert.Panics(t, func() { NewEdgeInt([2]int{0, math.MaxUint32}) })
	}
	{
		tokens := []string{"Electrode-1", "electrode-32", "WALL", "gap-3", "Farfield"}
		flags := []BCFLAG{BC_Electrode, BC_Electrode, BC_Insulated, BC_Insulated, BC_None}
		labels := []string{"1", "32", "", "3", ""}
		for i, token := range tokens {
			bt := NewBCTAG(token)
			assert.Equal(t, flags[i], bt.GetFLAG(), bt.GetFLAG().String())
			assert.Equal(t, labels[i], bt.GetLabel())
		}
		l, err := NewBCTAG("Electrode-17").ElectrodeNumber()
		assert.NoError(t, err)
		assert.Equal(t, 17, l)
		assert.Equal(t, BCTAG("Electrode-17"), NewElectrodeTAG(17))
		_, err = NewBCTAG("wall").ElectrodeNumber()
		assert.Error(t, err)
		_, err = NewBCTAG("electrode-x").ElectrodeNumber()
		assert.Error(t, err)
	}
	{
		bcm := make(BCMAP)
		bcm.AddEdges(NewElectrodeTAG(1), []EdgeInt{NewEdgeInt([2]int{0, 1})})
		bcm.AddEdges(NewElectrodeTAG(1), []EdgeInt{NewEdgeInt([2]int{1, 2})})
		assert.Equal(t, 2, len(bcm[NewElectrodeTAG(1)]))
	}
}

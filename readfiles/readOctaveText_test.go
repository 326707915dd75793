package readfiles

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/goeit/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var octaveFile = `# Created by Octave 6.4.0, Mon Jan 03 10:12:44 2022 UTC <eit@lab>
# name: Injref
# type: matrix
# rows: 4
# columns: 3
 1 0 0
 -1 1 0
 0 -1 1
 0 0 -1


# name: L
# type: scalar
4


# name: Uel
# type: matrix
# rows: 2
# columns: 1
 1.5e-3
 -Inf


`

func TestReadOctave(t *testing.T) {
	od, err := ReadOctave(strings.NewReader(octaveFile))
	require.NoError(t, err)
	assert.Equal(t, []string{"Injref", "L", "Uel"}, od.Order)
	{
		m, err := od.Get("Injref")
		require.NoError(t, err)
		nr, nc := m.Dims()
		assert.Equal(t, 4, nr)
		assert.Equal(t, 3, nc)
		assert.Equal(t, -1., m.At(3, 2))
		// Row major flattening
		v, err := od.Vector("Injref")
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 0, 0, -1, 1, 0, 0, -1, 1, 0, 0, -1}, v)
	}
	{
		L, err := od.Scalar("L")
		require.NoError(t, err)
		assert.Equal(t, 4., L)
		_, err = od.Scalar("Injref")
		assert.Error(t, err)
	}
	{
		v, err := od.Vector("Uel")
		require.NoError(t, err)
		assert.Equal(t, 1.5e-3, v[0])
		assert.True(t, math.IsInf(v[1], -1))
	}
	_, err = od.Get("Mpat")
	assert.Error(t, err)
	assert.False(t, od.Has("Mpat"))
}

// Integer and logical arrays, as Octave writes label images loaded from .mat files
var octaveIntFile = `# Created by Octave 8.4.0
# name: truth
# type: uint8 matrix
# ndims: 2
 2 3
 0
 1
 2
 0
 1
 2


# name: mask
# type: bool matrix
# rows: 2
# columns: 2
 1 0
 0 1


# name: L
# type: int32 scalar
32


# name: flag
# type: bool
1


# name: cube
# type: matrix
# ndims: 3
 2 1 1
 0.5 -0.5


`

func TestReadOctaveIntegers(t *testing.T) {
	od, err := ReadOctave(strings.NewReader(octaveIntFile))
	require.NoError(t, err)
	assert.Equal(t, []string{"truth", "mask", "L", "flag", "cube"}, od.Order)
	truth, err := od.Get("truth")
	require.NoError(t, err)
	nr, nc := truth.Dims()
	assert.Equal(t, 2, nr)
	assert.Equal(t, 3, nc)
	// Values are column major
	assert.Equal(t, []float64{0, 2, 1, 1, 0, 2}, truth.Data())
	mask, err := od.Get("mask")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0, 1}, mask.Data())
	L, err := od.Scalar("L")
	require.NoError(t, err)
	assert.Equal(t, 32., L)
	flag, err := od.Scalar("flag")
	require.NoError(t, err)
	assert.Equal(t, 1., flag)
	v, err := od.Vector("cube")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -0.5}, v)

	bad := []string{
		"# name: A\n# type: uint8 matrix\n# ndims: 2\n 2 2\n 0\n 1\n 2\n",
		"# name: A\n# type: int32 matrix\n# ndims: 3\n 2 2 2\n 0 1 2 3 4 5 6 7\n",
		"# name: A\n# type: int matrix\n# ndims: 2\n 1 1\n 0\n",
		"# name: A\n# type: complex matrix\n# rows: 1\n# columns: 1\n (1,2)\n",
	}
	for i, in := range bad {
		_, err := ReadOctave(strings.NewReader(in))
		assert.Error(t, err, "case %d", i)
	}
}

func TestReadOctaveErrors(t *testing.T) {
	bad := []string{
		"# name: A\n# type: matrix\n# rows: 2\n# columns: 2\n 1 2\n",
		"# name: A\n# type: matrix\n# rows: 1\n# columns: 2\n 1 2 3\n",
		"# name: A\n# type: matrix\n# rows: 1\n# columns: 1\n abc\n",
		"# name: A\n# type: cell\n# rows: 1\n# columns: 1\n 1\n",
		"1 2 3\n",
	}
	for i, in := range bad {
		_, err := ReadOctave(strings.NewReader(in))
		assert.Error(t, err, "case %d", i)
	}
}

func TestOctaveRoundTrip(t *testing.T) {
	od := NewOctaveData()
	od.Add("Uel", utils.NewMatrix(3, 1, []float64{0.1, -0.2, 1. / 3.}))
	od.Add("z", utils.NewMatrix(1, 1, []float64{1.e-6}))
	od.Add("Mpat", utils.NewMatrix(2, 2, []float64{1, 0, -1, 1}))
	var buf bytes.Buffer
	require.NoError(t, WriteOctave(&buf, od))
	od2, err := ReadOctave(&buf)
	require.NoError(t, err)
	assert.Equal(t, od.Order, od2.Order)
	for _, name := range od.Order {
		assert.Equal(t, od.Vars[name].Data(), od2.Vars[name].Data(), name)
	}
	fileName := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, WriteOctaveText(fileName, od))
	od3, err := ReadOctaveText(fileName)
	require.NoError(t, err)
	z, err := od3.Scalar("z")
	require.NoError(t, err)
	assert.Equal(t, 1.e-6, z)
}

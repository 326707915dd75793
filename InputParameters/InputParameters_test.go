package InputParameters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inputFile = `
Title: "Case 2 with noise"
Case: case2
DataSource: simulated
Electrodes: 16
Regularization: SMPrior
Delta: 1.0e-2
NoiseLevel: 0.01
Seed: 3
MaxEval: 20
`

func TestParse(t *testing.T) {
	ip := NewInputParametersEIT()
	require.NoError(t, ip.Parse([]byte(inputFile)))
	assert.Equal(t, "Case 2 with noise", ip.Title)
	assert.Equal(t, "case2", ip.Case)
	assert.True(t, ip.Simulated())
	assert.Equal(t, 16, ip.Electrodes)
	assert.Equal(t, "SMPrior", ip.Regularization)
	assert.Equal(t, 1.e-2, ip.Delta)
	assert.Equal(t, uint64(3), ip.Seed)
	assert.Equal(t, 20, ip.MaxEval)
	// Defaults survive
	assert.Equal(t, "case_ref", NewInputParametersEIT().Case)
	assert.True(t, NewInputParametersEIT().Simulated())
	assert.Equal(t, 1.e-6, ip.ContactImpedance)
	assert.Equal(t, 10., ip.X0)
	assert.Equal(t, 1.e-5, ip.Lower)
	assert.Equal(t, 1.e2, ip.Upper)

	fileName := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(fileName, []byte(inputFile), 0644))
	ip2, err := ReadInputParametersEIT(fileName)
	require.NoError(t, err)
	assert.Equal(t, ip, ip2)
	ip3, err := ReadInputParametersEIT("")
	require.NoError(t, err)
	assert.Equal(t, NewInputParametersEIT(), ip3)
	_, err = ReadInputParametersEIT(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	bad := []string{
		"Electrodes: 1",
		"ContactImpedance: 0",
		"Lower: 10\nUpper: 1",
		"X0: 1000",
		"Delta: -1",
		"MaxEval: 0",
		"NoiseLevel: -0.1",
		"DataSource: synthetic",
		"Electrodes: [1, 2]",
	}
	for _, in := range bad {
		ip := NewInputParametersEIT()
		assert.Error(t, ip.Parse([]byte(in)), in)
	}
}

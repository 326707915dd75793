//go:build linux

package EIT2D

import (
	"fmt"

	perf "github.com/hodgesds/perf-utils"
)

// CountForward reports the CPU instructions retired by one forward solve
func CountForward(fm *ForwardModel, sigma []float64) (instructions uint64, err error) {
	var pv *perf.ProfileValue
	pv, err = perf.CPUInstructions(func() (err error) {
		_, err = fm.Forward(sigma)
		return
	})
	if err != nil {
		return 0, fmt.Errorf("counting instructions: %w", err)
	}
	return pv.Value, nil
}

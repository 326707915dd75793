//go:build !linux

package EIT2D

import "fmt"

func CountForward(fm *ForwardModel, sigma []float64) (instructions uint64, err error) {
	return 0, fmt.Errorf("hardware counters are only available on linux")
}

package parallel

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
)

// DefaultThreads returns the number of logical CPUs, capped at limit.
// It falls back to runtime.NumCPU when the CPU count cannot be read.
func DefaultThreads(limit int) int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		n = runtime.NumCPU()
	}
	return max(1, min(n, limit))
}

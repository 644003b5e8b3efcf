package compute

import "github.com/san-kum/mpole/internal/mpole"

// PairResult is one pair's contribution: an antisymmetric force (added to
// particle i, subtracted from particle j), the two site torques, and the
// pair energy.
type PairResult struct {
	Force   mpole.Vec3
	TorqueI mpole.Vec3
	TorqueJ mpole.Vec3
	Energy  float64
}

// PairKernel evaluates one unordered particle pair i < j.
type PairKernel func(i, j int) PairResult

type Backend interface {
	Name() string
	Available() bool

	// PairSum runs kernel over all unordered pairs of n particles,
	// accumulating into forces and torques (which must have length n),
	// and returns the summed energy.
	PairSum(n int, kernel PairKernel, forces, torques []mpole.Vec3) float64

	Cleanup()
}

var activeBackend Backend

func init() {
	activeBackend = AutoSelectBackend()
}

func SetBackend(b Backend) {
	if activeBackend != nil {
		activeBackend.Cleanup()
	}
	activeBackend = b
}

func GetBackend() Backend {
	return activeBackend
}

func AutoSelectBackend() Backend {
	return NewCPUBackend()
}

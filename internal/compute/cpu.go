package compute

import (
	"runtime"
	"sync"

	"github.com/san-kum/mpole/internal/mpole"
)

type CPUBackend struct {
	workers int
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{
		workers: runtime.NumCPU(),
	}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}

func (c *CPUBackend) PairSum(n int, kernel PairKernel, forces, torques []mpole.Vec3) float64 {
	if n < 16 || c.workers < 2 {
		return c.pairSerial(n, kernel, forces, torques)
	}
	return c.pairParallel(n, kernel, forces, torques)
}

func (c *CPUBackend) pairSerial(n int, kernel PairKernel, forces, torques []mpole.Vec3) float64 {
	energy := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := kernel(i, j)
			forces[i] = forces[i].Add(r.Force)
			forces[j] = forces[j].Sub(r.Force)
			torques[i] = torques[i].Add(r.TorqueI)
			torques[j] = torques[j].Add(r.TorqueJ)
			energy += r.Energy
		}
	}
	return energy
}

func (c *CPUBackend) pairParallel(n int, kernel PairKernel, forces, torques []mpole.Vec3) float64 {
	fixedForces := make([]FixedVec, n)
	fixedTorques := make([]FixedVec, n)
	var fixedEnergy FixedScalar

	var wg sync.WaitGroup
	chunkSize := (n + c.workers - 1) / c.workers

	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			start := worker * chunkSize
			end := start + chunkSize
			if end > n {
				end = n
			}

			for i := start; i < end; i++ {
				for j := i + 1; j < n; j++ {
					r := kernel(i, j)
					fixedForces[i].Add(r.Force)
					fixedForces[j].Sub(r.Force)
					fixedTorques[i].Add(r.TorqueI)
					fixedTorques[j].Add(r.TorqueJ)
					fixedEnergy.Add(r.Energy)
				}
			}
		}(w)
	}

	wg.Wait()

	for i := 0; i < n; i++ {
		forces[i] = forces[i].Add(fixedForces[i].Vec3())
		torques[i] = torques[i].Add(fixedTorques[i].Vec3())
	}
	return fixedEnergy.Value()
}

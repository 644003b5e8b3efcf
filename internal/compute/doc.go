// Package compute schedules the pairwise interaction sweeps.
//
// A Backend runs a symmetric pair kernel over all unordered particle
// pairs and accumulates per-particle forces and torques. The parallel CPU
// backend accumulates through scaled-integer atomics, so the result is
// identical from run to run regardless of worker count or scheduling:
//
//	backend := compute.GetBackend()
//	energy := backend.PairSum(n, kernel, forces, torques)
//
// Small systems fall back to a serial sweep where the scheduling overhead
// would dominate.
package compute

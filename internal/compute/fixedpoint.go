package compute

import (
	"sync/atomic"

	"github.com/san-kum/mpole/internal/mpole"
)

// fixedScale converts floating contributions to 64-bit fixed point.
// Integer addition is associative, so atomic accumulation gives the same
// result regardless of the order workers land their contributions.
// Overflow is not guarded; forces large enough to overflow 2^31 force
// units indicate a collapsed geometry upstream.
const fixedScale = float64(1 << 32)

// FixedVec is a deterministic 3-vector accumulator.
type FixedVec struct {
	x, y, z int64
}

func (a *FixedVec) Add(v mpole.Vec3) {
	atomic.AddInt64(&a.x, int64(v.X*fixedScale))
	atomic.AddInt64(&a.y, int64(v.Y*fixedScale))
	atomic.AddInt64(&a.z, int64(v.Z*fixedScale))
}

func (a *FixedVec) Sub(v mpole.Vec3) {
	atomic.AddInt64(&a.x, -int64(v.X*fixedScale))
	atomic.AddInt64(&a.y, -int64(v.Y*fixedScale))
	atomic.AddInt64(&a.z, -int64(v.Z*fixedScale))
}

func (a *FixedVec) Vec3() mpole.Vec3 {
	return mpole.Vec3{
		X: float64(atomic.LoadInt64(&a.x)) / fixedScale,
		Y: float64(atomic.LoadInt64(&a.y)) / fixedScale,
		Z: float64(atomic.LoadInt64(&a.z)) / fixedScale,
	}
}

// FixedScalar is a deterministic scalar accumulator.
type FixedScalar struct {
	v int64
}

func (a *FixedScalar) Add(x float64) {
	atomic.AddInt64(&a.v, int64(x*fixedScale))
}

func (a *FixedScalar) Value() float64 {
	return float64(atomic.LoadInt64(&a.v)) / fixedScale
}

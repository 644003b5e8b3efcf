package scf

import (
	"sync"

	"github.com/san-kum/mpole/internal/mpole"
)

// VecPool recycles per-iteration dipole and field buffers.
type VecPool struct {
	pool sync.Pool
	size int
}

func NewVecPool(n int) *VecPool {
	return &VecPool{
		size: n,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]mpole.Vec3, n)
			},
		},
	}
}

func (p *VecPool) Get() []mpole.Vec3 {
	return p.pool.Get().([]mpole.Vec3)
}

func (p *VecPool) Put(v []mpole.Vec3) {
	if len(v) == p.size {
		for i := range v {
			v[i] = mpole.Vec3{}
		}
		p.pool.Put(v)
	}
}

func (p *VecPool) GetAndCopy(src []mpole.Vec3) []mpole.Vec3 {
	dst := p.Get()
	copy(dst, src)
	return dst
}

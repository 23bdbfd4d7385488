package estimator

import "sync"

// samplePool recycles the per-point buffers of M path statistics, so a run
// holds about one buffer per busy worker.
type samplePool struct {
	pool sync.Pool
	size int
}

func newSamplePool(size int) *samplePool {
	return &samplePool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]float64, size)
				return &buf
			},
		},
	}
}

func (p *samplePool) get() []float64 {
	return *p.pool.Get().(*[]float64)
}

func (p *samplePool) put(buf []float64) {
	if len(buf) == p.size {
		p.pool.Put(&buf)
	}
}

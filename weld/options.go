package weld

import (
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/gorustyt/meshexport/common/logger"
)

type options struct {
	workers int
	log     *zap.Logger
}

type Option func(*options)

// WithWorkers bounds the goroutines used by the data parallel steps.
// n <= 0 means one per CPU.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.workers <= 0 {
		o.workers = runtime.NumCPU()
	}
	o.log = logger.OrNop(o.log)
	return o
}

// minChunk keeps small meshes on the calling goroutine.
const minChunk = 4096

// parallelFor calls fn over disjoint [lo, hi) ranges covering [0, n) and
// returns once every range is done.
func parallelFor(n, workers int, fn func(lo, hi int)) {
	if n == 0 {
		return
	}
	chunks := (n + minChunk - 1) / minChunk
	if chunks > workers {
		chunks = workers
	}
	if chunks <= 1 {
		fn(0, n)
		return
	}
	size := (n + chunks - 1) / chunks
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

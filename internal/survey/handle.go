// Package survey loads and cleans salary survey exports.
package survey

import (
	"context"
	"sync"
)

// Handle loads a source once and hands out the same read-only dataset.
// A changed source file is not picked up until a new Handle is created.
type Handle struct {
	src  Source
	opts Options

	once sync.Once
	ds   *Dataset
	err  error
}

// NewHandle prepares a lazily loaded dataset.
func NewHandle(src Source, opts Options) *Handle {
	return &Handle{src: src, opts: opts}
}

// Source returns the source the handle reads.
func (h *Handle) Source() Source {
	return h.src
}

// Dataset loads and cleans the source on first call and memoizes the result,
// including a load error.
func (h *Handle) Dataset(ctx context.Context) (*Dataset, error) {
	h.once.Do(func() {
		h.ds, h.err = Load(ctx, h.src, h.opts)
	})
	return h.ds, h.err
}

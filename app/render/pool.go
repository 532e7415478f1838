package render

import "context"

// pool bounds how many raster jobs run concurrently. Headless browser pages
// are expensive, so the pipeline takes a slot before each screenshot.
type pool struct {
	slots chan struct{}
}

func newPool(size int) *pool {
	if size < 1 {
		size = 1
	}
	return &pool{slots: make(chan struct{}, size)}
}

// Acquire blocks until a slot frees up or the context ends.
func (p *pool) Acquire(ctx context.Context) error {
	select {
	case p.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pool) Release() {
	<-p.slots
}

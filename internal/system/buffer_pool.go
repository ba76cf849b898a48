package system

import (
	"image"
	"sync"
)

// GrayPool reuses *image.Gray buffers between pages of the same size to
// keep the garbage collector quiet on long rolls.
type GrayPool struct {
	pools map[image.Rectangle]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = &GrayPool{
	pools: make(map[image.Rectangle]*sync.Pool),
}

// GetGray returns a gray image with bounds rect. Its pixels are not cleared.
func GetGray(rect image.Rectangle) *image.Gray {
	return globalPool.Get(rect)
}

// PutGray hands img back for reuse. img must not be used afterwards.
func PutGray(img *image.Gray) {
	globalPool.Put(img)
}

func (p *GrayPool) Get(rect image.Rectangle) *image.Gray {
	p.mu.RLock()
	pool, exists := p.pools[rect]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		pool, exists = p.pools[rect]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewGray(rect)
				},
			}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.Gray)
}

func (p *GrayPool) Put(img *image.Gray) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[img.Rect]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}

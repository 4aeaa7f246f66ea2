package common

import "sync"

// BufferPool provides a pool of reusable byte buffers to reduce garbage
// collector pressure on the receive hot path.
type BufferPool struct {
	pool sync.Pool
}

// ReceiveBufferSize is the wire receive cap: each receive reads at most
// this many bytes off the transport.
const ReceiveBufferSize = 1024

// ReceiveBufferPool is the global pool used by cmd/router's receive loop.
var ReceiveBufferPool = NewBufferPool(ReceiveBufferSize)

// NewBufferPool creates a new buffer pool with the specified buffer size.
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		},
	}
}

// Get retrieves a buffer from the pool.
// The buffer should be returned to the pool using Put() when done.
func (bp *BufferPool) Get() []byte {
	bufPtr := bp.pool.Get().(*[]byte)
	return (*bufPtr)[:cap(*bufPtr)]
}

// Put returns a buffer to the pool. The buffer may be reused by future Get() calls.
func (bp *BufferPool) Put(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	bp.pool.Put(&buf)
}

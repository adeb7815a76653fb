package audio

import "sync"

// Ring is a fixed-size mono sample FIFO shared between a capture callback
// and the output callback. When full, the oldest samples are overwritten.
type Ring struct {
	mu    sync.Mutex
	buf   []float32
	start int
	n     int
}

func NewRing(size int) *Ring {
	if size < 1 {
		size = 1
	}
	return &Ring{buf: make([]float32, size)}
}

// Write appends samples, dropping the oldest ones on overflow.
func (r *Ring) Write(samples []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	size := len(r.buf)
	if len(samples) > size {
		samples = samples[len(samples)-size:]
	}
	for _, s := range samples {
		end := (r.start + r.n) % size
		r.buf[end] = s
		if r.n < size {
			r.n++
		} else {
			r.start = (r.start + 1) % size
		}
	}
}

// Read moves up to len(dst) samples into dst and returns how many it moved.
func (r *Ring) Read(dst []float32) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := min(len(dst), r.n)
	for i := 0; i < n; i++ {
		dst[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	r.start = (r.start + n) % len(r.buf)
	r.n -= n
	return n
}

// Len returns the number of buffered samples.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

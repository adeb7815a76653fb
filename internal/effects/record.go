package effects

// recordChunkFrames is the size of one capture chunk: about a second of
// stereo audio at common rates.
const recordChunkFrames = 1 << 15

// Record passes audio through unchanged and stores every frame it sees as
// interleaved stereo. A bus bypasses disabled slots, so the take only grows
// while the slot is enabled. Frames land in fixed-size chunks so the audio
// thread never copies what it has already captured.
type Record struct {
	chunks    [][]float32
	frames    int
	maxFrames int
	chunkSize int // samples per chunk
}

// NewRecord creates a recorder holding at most maxSeconds of audio.
// Frames past the limit are dropped; maxSeconds <= 0 means unbounded.
func NewRecord(sampleRate int, maxSeconds float64) *Record {
	return &Record{
		maxFrames: int(float64(sampleRate) * maxSeconds),
		chunkSize: recordChunkFrames * 2,
	}
}

// Frames returns the number of stereo frames captured so far.
func (r *Record) Frames() int { return r.frames }

// TakeChunks detaches the captured chunks and starts a new, empty take. It
// does not copy samples.
func (r *Record) TakeChunks() [][]float32 {
	out := r.chunks
	r.chunks = nil
	r.frames = 0
	return out
}

// JoinChunks concatenates chunks returned by TakeChunks.
func JoinChunks(chunks [][]float32) []float32 {
	if len(chunks) == 0 {
		return nil
	}
	n := 0
	for _, c := range chunks {
		n += len(c)
	}
	out := make([]float32, 0, n)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

func (r *Record) Process(l, rr float32) (float32, float32) {
	if r.maxFrames > 0 && r.frames >= r.maxFrames {
		return l, rr
	}
	last := len(r.chunks) - 1
	if last < 0 || len(r.chunks[last]) == cap(r.chunks[last]) {
		r.chunks = append(r.chunks, make([]float32, 0, r.chunkSize))
		last++
	}
	r.chunks[last] = append(r.chunks[last], l, rr)
	r.frames++
	return l, rr
}

func (r *Record) Reset() {
	r.chunks = nil
	r.frames = 0
}

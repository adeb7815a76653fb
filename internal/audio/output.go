package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleSource fills interleaved stereo float32 frames.
type SampleSource interface {
	Process(dst []float32)
}

// pcmReader pulls frames from a SampleSource on demand and encodes them as
// the little-endian float32 stream ebiten's F32 players read. It never
// reaches EOF: a live source always has another buffer.
type pcmReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

func (r *pcmReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames*2 {
		r.buf = make([]float32, frames*2)
	}
	buf := r.buf[:frames*2]
	clear(buf)
	r.source.Process(buf)
	encodeFloat32LE(p, buf)
	return frames * 8, nil
}

func encodeFloat32LE(dst []byte, src []float32) {
	for i, s := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(s))
	}
}

var (
	contextOnce   sync.Once
	sharedContext *ebitaudio.Context
	contextRate   int
)

// ebiten allows one audio context per process, at one sample rate.
func audioContext(sampleRate int) (*ebitaudio.Context, error) {
	contextOnce.Do(func() {
		contextRate = sampleRate
		sharedContext = ebitaudio.NewContext(sampleRate)
	})
	if contextRate != sampleRate {
		return nil, fmt.Errorf("audio context already running at %d Hz, want %d Hz", contextRate, sampleRate)
	}
	return sharedContext, nil
}

// Output streams a SampleSource to the default output device.
type Output struct {
	player *ebitaudio.Player
	reader *pcmReader
}

// OpenOutput prepares playback of source; call Start to begin.
func OpenOutput(sampleRate int, source SampleSource) (*Output, error) {
	ctx, err := audioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := &pcmReader{source: source}
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	// Monitoring wants low latency; the default buffer is sized for music.
	pl.SetBufferSize(bufferLatency)
	return &Output{player: pl, reader: reader}, nil
}

func (o *Output) Start() { o.player.Play() }

func (o *Output) Close() error {
	o.player.Pause()
	return o.player.Close()
}

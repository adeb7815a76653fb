package audio

import (
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	framesPerBuffer = 256
	bufferLatency   = 40 * time.Millisecond
)

// Microphone captures the default input device as mono float32 samples.
type Microphone struct {
	stream *portaudio.Stream
	ring   *Ring
}

// OpenMicrophone opens, but does not start, the default input device.
// Up to half a second of audio is buffered for the reader.
func OpenMicrophone(sampleRate int) (*Microphone, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}
	m := &Microphone{ring: NewRing(sampleRate / 2)}
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), framesPerBuffer, m.capture)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("open microphone stream: %w", err)
	}
	m.stream = stream
	return m, nil
}

// capture runs on the portaudio callback thread.
func (m *Microphone) capture(in []float32) {
	m.ring.Write(in)
}

func (m *Microphone) Start() error {
	if err := m.stream.Start(); err != nil {
		return fmt.Errorf("start microphone stream: %w", err)
	}
	return nil
}

// Read drains captured samples into dst and returns the count.
func (m *Microphone) Read(dst []float32) int {
	return m.ring.Read(dst)
}

// Close stops capture and releases portaudio. Stopping a stream that never
// started fails harmlessly, so that error is ignored.
func (m *Microphone) Close() error {
	_ = m.stream.Stop()
	if err := m.stream.Close(); err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("close microphone stream: %w", err)
	}
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("terminate portaudio: %w", err)
	}
	return nil
}

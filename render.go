package micfx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const renderBlockFrames = 512

var ErrInvalidTone = errors.New("invalid tone")

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// RenderTone feeds seconds of a sine tone at freqHz through the rack, as if
// it came from the microphone, and returns the interleaved stereo output.
// The rack must not be streaming to devices at the same time.
func RenderTone(r *Rack, freqHz, amplitude, seconds float64) ([]float32, error) {
	switch {
	case !finite(seconds) || seconds <= 0:
		return nil, fmt.Errorf("%w: duration %v must be positive", ErrInvalidTone, seconds)
	case !finite(freqHz) || freqHz <= 0:
		return nil, fmt.Errorf("%w: frequency %v must be positive", ErrInvalidTone, freqHz)
	case !finite(amplitude):
		return nil, fmt.Errorf("%w: amplitude %v", ErrInvalidTone, amplitude)
	}
	sr := r.SampleRate()
	total := int(seconds * float64(sr))
	out := make([]float32, 0, total*2)
	in := make([]float32, renderBlockFrames)
	dst := make([]float32, renderBlockFrames*2)
	step := 2 * math.Pi * freqHz / float64(sr)
	for pos := 0; pos < total; pos += renderBlockFrames {
		n := min(renderBlockFrames, total-pos)
		for i := 0; i < n; i++ {
			in[i] = float32(amplitude * math.Sin(step*float64(pos+i)))
		}
		if err := r.Process(in[:n], dst[:n*2]); err != nil {
			return nil, err
		}
		out = append(out, dst[:n*2]...)
	}
	return out, nil
}

// EncodeWAVFloat32LE wraps interleaved samples in an IEEE float WAV container.
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	out := make([]byte, 44+dataSize)
	le := binary.LittleEndian
	copy(out[0:], "RIFF")
	le.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVEfmt ")
	le.PutUint32(out[16:], 16)
	le.PutUint16(out[20:], 3) // WAVE_FORMAT_IEEE_FLOAT
	le.PutUint16(out[22:], uint16(channels))
	le.PutUint32(out[24:], uint32(sampleRate))
	le.PutUint32(out[28:], uint32(sampleRate*channels*4))
	le.PutUint16(out[32:], uint16(channels*4))
	le.PutUint16(out[34:], 32)
	copy(out[36:], "data")
	le.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		le.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}

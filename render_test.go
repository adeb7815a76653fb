package micfx

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestEncodeWAVFloat32LEHeader(t *testing.T) {
	data := EncodeWAVFloat32LE([]float32{0.5, -0.5, 1, 0}, 44100, 2)
	if len(data) != 44+16 {
		t.Fatalf("len = %d, want 60", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:16]) != "WAVEfmt " || string(data[36:40]) != "data" {
		t.Fatalf("bad chunk ids: %q", data[:40])
	}
	le := binary.LittleEndian
	checks := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"riff size", le.Uint32(data[4:]), 52},
		{"format", uint32(le.Uint16(data[20:])), 3},
		{"channels", uint32(le.Uint16(data[22:])), 2},
		{"sample rate", le.Uint32(data[24:]), 44100},
		{"byte rate", le.Uint32(data[28:]), 44100 * 8},
		{"block align", uint32(le.Uint16(data[32:])), 8},
		{"bits", uint32(le.Uint16(data[34:])), 32},
		{"data size", le.Uint32(data[40:]), 16},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
	if s := math.Float32frombits(le.Uint32(data[48:])); s != -0.5 {
		t.Errorf("second sample = %v, want -0.5", s)
	}
}

func TestRenderToneLength(t *testing.T) {
	r := newTestRack(t)
	out, err := RenderTone(r, 440, 0.5, 0.0251)
	if err != nil {
		t.Fatal(err)
	}
	frames := int(0.0251 * float64(r.SampleRate()))
	if len(out) != frames*2 {
		t.Errorf("len = %d, want %d", len(out), frames*2)
	}
}

func TestRenderToneRejectsBadInput(t *testing.T) {
	r := newTestRack(t)
	cases := []struct {
		name                     string
		freq, amplitude, seconds float64
	}{
		{"negative duration", 440, 0.5, -1},
		{"zero duration", 440, 0.5, 0},
		{"nan duration", 440, 0.5, math.NaN()},
		{"infinite duration", 440, 0.5, math.Inf(1)},
		{"zero frequency", 0, 0.5, 0.1},
		{"negative frequency", -440, 0.5, 0.1},
		{"nan amplitude", 440, math.NaN(), 0.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := RenderTone(r, tc.freq, tc.amplitude, tc.seconds)
			if !errors.Is(err, ErrInvalidTone) {
				t.Fatalf("err = %v, want ErrInvalidTone", err)
			}
			if out != nil {
				t.Errorf("got %d samples on error", len(out))
			}
		})
	}
}

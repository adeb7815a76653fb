package micfx

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/cbegin/micfx-go/internal/config"
	"github.com/cbegin/micfx-go/internal/rack"
	"github.com/cbegin/micfx-go/internal/toggle"
)

func newTestRack(t *testing.T, opts ...Option) *Rack {
	t.Helper()
	r, err := New(config.Default(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestNewDefaultState(t *testing.T) {
	r := newTestRack(t)
	if r.Bus() != 1 {
		t.Fatalf("record bus = %d, want 1 (after Master)", r.Bus())
	}
	for _, kind := range rack.Kinds() {
		got, err := r.Enabled(kind)
		if err != nil {
			t.Fatalf("Enabled(%s): %v", kind, err)
		}
		want := kind == rack.Delay || kind == rack.Amplify
		if got != want {
			t.Errorf("Enabled(%s) = %v, want %v", kind, got, want)
		}
	}
	controls := r.Controls()
	if len(controls) != rack.KindCount {
		t.Fatalf("got %d controls, want %d", len(controls), rack.KindCount)
	}
	if controls[0].Label != "Delay" || controls[len(controls)-1].Kind != rack.Record {
		t.Errorf("unexpected control order: first %q, last %s", controls[0].Label, controls[len(controls)-1].Kind)
	}
	slots, err := r.Slots()
	if err != nil {
		t.Fatal(err)
	}
	if last := slots[len(slots)-1]; last.Kind != rack.Delay || last.Index != rack.KindCount-1 {
		t.Errorf("last slot = %+v, want Delay at %d", last, rack.KindCount-1)
	}
}

func TestDefaultChainHoldsEchoBack(t *testing.T) {
	r := newTestRack(t)
	out, err := RenderTone(r, 440, 0.5, 0.2)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range out {
		if s != 0 {
			t.Fatalf("sample %d = %v, want silence before the 5s echo", i, s)
		}
	}
}

func TestAllOffPassesInput(t *testing.T) {
	r := newTestRack(t, WithoutLimiter())
	for _, kind := range []rack.Kind{rack.Delay, rack.Amplify} {
		if err := r.Toggle(kind); err != nil {
			t.Fatal(err)
		}
	}
	out, err := RenderTone(r, 440, 0.5, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	step := 2 * math.Pi * 440 / float64(r.SampleRate())
	for i := 0; i < len(out)/2; i++ {
		want := float32(0.5 * math.Sin(step*float64(i)))
		if out[2*i] != want || out[2*i+1] != want {
			t.Fatalf("frame %d = (%v, %v), want %v", i, out[2*i], out[2*i+1], want)
		}
	}
}

func TestAmplifyPresetGain(t *testing.T) {
	r := newTestRack(t, WithoutLimiter())
	if err := r.SetEnabled(rack.Delay, false); err != nil {
		t.Fatal(err)
	}
	in := []float32{0.01, -0.02}
	dst := make([]float32, 4)
	if err := r.Process(in, dst); err != nil {
		t.Fatal(err)
	}
	gain := math.Pow(10, 18.0/20)
	for i, s := range in {
		want := float64(s) * gain
		if math.Abs(float64(dst[2*i])-want) > 1e-4 {
			t.Errorf("out[%d] = %v, want %v", i, dst[2*i], want)
		}
	}
}

func TestSoundDisabledMutesMaster(t *testing.T) {
	settings := config.Default()
	settings.SoundEnabled = false
	r, err := New(settings)
	if err != nil {
		t.Fatal(err)
	}
	_ = r.SetEnabled(rack.Delay, false)
	out, err := RenderTone(r, 440, 0.5, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range out {
		if s != 0 {
			t.Fatalf("sample %d = %v, want silence", i, s)
		}
	}
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	settings := config.Default()
	settings.SampleRate = 10
	if _, err := New(settings); err == nil {
		t.Fatal("expected error for invalid sample rate")
	}
}

func TestProcessBufferSize(t *testing.T) {
	r := newTestRack(t)
	if err := r.Process(make([]float32, 4), make([]float32, 4)); !errors.Is(err, ErrBufferSize) {
		t.Fatalf("err = %v, want ErrBufferSize", err)
	}
}

func TestSampleTapSeesOutput(t *testing.T) {
	var frames int
	r := newTestRack(t, WithSampleTap(func(buf []float32) { frames += len(buf) / 2 }))
	if _, err := RenderTone(r, 220, 0.1, 0.01); err != nil {
		t.Fatal(err)
	}
	if want := r.SampleRate() / 100; frames != want {
		t.Errorf("tap saw %d frames, want %d", frames, want)
	}
}

func TestSaveRecording(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 15, 12, 34, 56, 0, time.UTC))
	r := newTestRack(t, WithClock(clock))
	dir := t.TempDir()

	if _, err := r.SaveRecording(dir); !errors.Is(err, ErrNoRecording) {
		t.Fatalf("empty take: err = %v, want ErrNoRecording", err)
	}
	if err := r.Toggle(rack.Record); err != nil {
		t.Fatal(err)
	}
	if _, err := RenderTone(r, 440, 0.5, 0.1); err != nil {
		t.Fatal(err)
	}
	path, err := r.SaveRecording(dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "micfx-20261015-123456.wav"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	frames := r.SampleRate() / 10
	if want := int64(44 + frames*2*4); info.Size() != want {
		t.Errorf("file size = %d, want %d", info.Size(), want)
	}
	if _, err := r.SaveRecording(dir); !errors.Is(err, ErrNoRecording) {
		t.Errorf("drained take: err = %v, want ErrNoRecording", err)
	}
}

func TestAutoSaveOnRecordOff(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	dir := t.TempDir()
	var saved string
	var saveErr error
	r := newTestRack(t, WithClock(clock), WithAutoSave(dir, func(path string, err error) {
		saved, saveErr = path, err
	}))
	if err := r.Toggle(rack.Record); err != nil {
		t.Fatal(err)
	}
	if saved != "" {
		t.Fatalf("saved on record start: %q", saved)
	}
	if _, err := RenderTone(r, 440, 0.5, 0.01); err != nil {
		t.Fatal(err)
	}
	if err := r.Toggle(rack.Record); err != nil {
		t.Fatal(err)
	}
	if saveErr != nil {
		t.Fatal(saveErr)
	}
	if filepath.Base(saved) != "micfx-20260102-030405.wav" {
		t.Errorf("saved = %q", saved)
	}
}

func TestWithEntriesLeavesUnboundSlotsOff(t *testing.T) {
	r := newTestRack(t, WithEntries(toggle.Entry{Kind: rack.Reverb, Label: "Reverb"}))
	for _, kind := range rack.Kinds() {
		on, err := r.Enabled(kind)
		if err != nil {
			t.Fatal(err)
		}
		if on {
			t.Errorf("%s enabled without a control", kind)
		}
	}
	var unknown *rack.UnknownKindError
	if err := r.Toggle(rack.Amplify); !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownKindError", err)
	}
	if err := r.Toggle(rack.Reverb); err != nil {
		t.Fatal(err)
	}
	if on, _ := r.Enabled(rack.Reverb); !on {
		t.Error("reverb not enabled after toggle")
	}
}

func TestListenerSeesToggle(t *testing.T) {
	var seen []rack.Kind
	r := newTestRack(t, WithListener(func(c *Control) { seen = append(seen, c.Kind) }))
	if err := r.Toggle(rack.Phaser); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 || seen[0] != rack.Phaser {
		t.Errorf("listener saw %v", seen)
	}
}

func TestStopWithoutStart(t *testing.T) {
	r := newTestRack(t)
	if err := r.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("err = %v, want ErrNotRunning", err)
	}
}

type fakeMic struct {
	samples []float32
}

func (m *fakeMic) Read(dst []float32) int {
	n := copy(dst, m.samples)
	m.samples = m.samples[n:]
	return n
}

func TestLiveSourceReadsItsOwnMicrophone(t *testing.T) {
	r := newTestRack(t, WithoutLimiter())
	for _, kind := range []rack.Kind{rack.Delay, rack.Amplify} {
		if err := r.Toggle(kind); err != nil {
			t.Fatal(err)
		}
	}
	// The rack never started, so it holds no microphone of its own.
	src := &liveSource{rack: r, mic: &fakeMic{samples: []float32{0.25, -0.5}}}
	dst := []float32{9, 9, 9, 9, 9, 9, 9, 9}
	src.Process(dst)
	want := []float32{0.25, 0.25, -0.5, -0.5, 0, 0, 0, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
	// A short read pads with silence rather than stale input.
	src.Process(dst)
	for i, s := range dst {
		if s != 0 {
			t.Fatalf("sample %d = %v after the microphone ran dry", i, s)
		}
	}
}

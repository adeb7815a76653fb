// Package micfx runs microphone input through a bank of switchable effects.
//
// A Rack owns one effect bus placed directly after Master, one slot per
// effect kind, and a toggle control per slot. Toggling a control is the only
// way a slot's enabled state changes.
package micfx

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonboulle/clockwork"

	intaudio "github.com/cbegin/micfx-go/internal/audio"
	intbus "github.com/cbegin/micfx-go/internal/bus"
	"github.com/cbegin/micfx-go/internal/config"
	intfx "github.com/cbegin/micfx-go/internal/effects"
	"github.com/cbegin/micfx-go/internal/rack"
	"github.com/cbegin/micfx-go/internal/toggle"
)

// RecordBusName is the bus the microphone feeds.
const RecordBusName = "Record"

var (
	ErrRunning     = errors.New("rack already running")
	ErrNotRunning  = errors.New("rack not running")
	ErrNoRecording = errors.New("no recorded audio")
	ErrBufferSize  = errors.New("output buffer must hold two samples per input sample")
)

// Re-exported so callers outside this module can name kinds and controls.
type (
	Kind     = rack.Kind
	Control  = toggle.Control
	Entry    = toggle.Entry
	Preset   = rack.Preset
	SlotInfo = rack.SlotInfo
)

type Option func(*rackConfig)

type rackConfig struct {
	clock     clockwork.Clock
	sampleTap func([]float32)
	entries   []toggle.Entry
	presets   []rack.Preset
	limiter   bool
	listeners []toggle.Listener
	saveDir   string
	onSave    func(path string, err error)
}

func defaultRackConfig() rackConfig {
	return rackConfig{
		clock:   clockwork.NewRealClock(),
		entries: toggle.DefaultEntries(),
		presets: rack.DefaultPresets(),
		limiter: true,
	}
}

// WithClock sets the clock used to name recordings.
func WithClock(clock clockwork.Clock) Option {
	return func(cfg *rackConfig) {
		cfg.clock = clock
	}
}

// WithSampleTap installs a callback invoked with each processed stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) Option {
	return func(cfg *rackConfig) {
		cfg.sampleTap = tap
	}
}

// WithEntries replaces the controls built at startup and their order.
func WithEntries(entries ...Entry) Option {
	return func(cfg *rackConfig) {
		cfg.entries = entries
	}
}

// WithPresets replaces the parameter presets applied at startup.
func WithPresets(presets ...Preset) Option {
	return func(cfg *rackConfig) {
		cfg.presets = presets
	}
}

// WithoutLimiter leaves the Master bus without its output limiter.
func WithoutLimiter() Option {
	return func(cfg *rackConfig) {
		cfg.limiter = false
	}
}

// WithListener observes every toggle after it reached the chain. It runs
// with the rack locked and must not call back into the rack.
func WithListener(fn func(c *Control)) Option {
	return func(cfg *rackConfig) {
		cfg.listeners = append(cfg.listeners, fn)
	}
}

// WithAutoSave writes the current take to dir whenever the Record control
// is switched off. done, if non-nil, receives the outcome.
func WithAutoSave(dir string, done func(path string, err error)) Option {
	return func(cfg *rackConfig) {
		cfg.saveDir = dir
		cfg.onSave = done
	}
}

type Rack struct {
	mu        sync.Mutex
	settings  config.Settings
	clock     clockwork.Clock
	server    *intbus.Server
	chain     *rack.Controller
	controls  *toggle.Binding
	bus       int
	sampleTap func([]float32)

	mic *intaudio.Microphone
	out *intaudio.Output
}

// New builds the server, the Record bus and its controls. Any failure aborts
// startup; there is no partially initialized rack.
func New(settings config.Settings, opts ...Option) (*Rack, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	cfg := defaultRackConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Rack{
		settings:  settings,
		clock:     cfg.clock,
		server:    intbus.NewServer(settings.SampleRate),
		sampleTap: cfg.sampleTap,
	}
	if cfg.limiter {
		lim, err := intfx.NewLimiter(settings.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("master limiter: %w", err)
		}
		if _, err := r.server.AddEffect(0, lim); err != nil {
			return nil, fmt.Errorf("master limiter: %w", err)
		}
	}
	if !settings.SoundEnabled {
		if err := r.server.SetBusMute(0, true); err != nil {
			return nil, err
		}
		log.Printf("sound disabled: %s bus muted", intbus.MasterName)
	}

	r.chain = rack.New(r.server)
	bus, err := r.chain.CreateBus(RecordBusName)
	if err != nil {
		return nil, err
	}
	r.bus = bus
	if err := r.chain.RegisterAll(bus, settings.SampleRate); err != nil {
		return nil, err
	}
	// Slots without a control stay off.
	for _, kind := range rack.Kinds() {
		slot, err := r.chain.Slot(kind)
		if err != nil {
			return nil, err
		}
		if err := r.chain.SetEnabled(bus, slot, false); err != nil {
			return nil, err
		}
	}

	bindOpts := []toggle.Option{toggle.WithPresets(cfg.presets...)}
	for _, fn := range cfg.listeners {
		bindOpts = append(bindOpts, toggle.WithListener(fn))
	}
	if cfg.saveDir != "" {
		dir, done := cfg.saveDir, cfg.onSave
		bindOpts = append(bindOpts, toggle.WithListener(func(c *Control) {
			if c.Kind != rack.Record || c.Pressed() {
				return
			}
			path, err := r.saveLocked(dir)
			if done != nil {
				done(path, err)
			}
		}))
	}
	r.controls = toggle.New(r.chain, bus, bindOpts...)
	if err := r.controls.BuildControls(cfg.entries); err != nil {
		return nil, err
	}
	return r, nil
}

// Settings returns the settings the rack was built with.
func (r *Rack) Settings() config.Settings { return r.settings }

func (r *Rack) SampleRate() int { return r.settings.SampleRate }

// Bus returns the index of the Record bus.
func (r *Rack) Bus() int { return r.bus }

// Controls returns the controls in display order.
func (r *Rack) Controls() []*Control {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.controls.Controls()
}

// Toggle flips kind's control as a user click would.
func (r *Rack) Toggle(kind Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.controls.Press(kind)
}

// SetEnabled moves kind's control to the given state.
func (r *Rack) SetEnabled(kind Kind, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controls.Control(kind)
	if !ok {
		return &rack.UnknownKindError{Kind: kind}
	}
	return r.controls.OnToggled(c, enabled)
}

func (r *Rack) Enabled(kind Kind) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chain.Enabled(kind)
}

// Slots returns a snapshot of every registered slot.
func (r *Rack) Slots() ([]SlotInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chain.Slots()
}

// Process renders mono input through the Record bus into interleaved stereo
// dst, which must hold 2*len(in) samples.
func (r *Rack) Process(in, dst []float32) error {
	if len(dst) != 2*len(in) {
		return ErrBufferSize
	}
	for i, s := range in {
		dst[2*i] = s
		dst[2*i+1] = s
	}
	if err := r.server.Process(r.bus, dst); err != nil {
		return err
	}
	if r.sampleTap != nil {
		r.sampleTap(dst)
	}
	return nil
}

type sampleReader interface {
	Read(dst []float32) int
}

// liveSource pulls microphone samples for the output stream. It keeps its
// own reader so Stop can drop the rack's handle while a pull is in flight.
type liveSource struct {
	rack *Rack
	mic  sampleReader
	in   []float32
}

func (s *liveSource) Process(dst []float32) {
	frames := len(dst) / 2
	if cap(s.in) < frames {
		s.in = make([]float32, frames)
	}
	in := s.in[:frames]
	n := s.mic.Read(in)
	clear(in[n:])
	if err := s.rack.Process(in, dst[:frames*2]); err != nil {
		clear(dst)
	}
}

// Start opens the default microphone and output device and begins streaming
// the Record bus.
func (r *Rack) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.out != nil {
		return ErrRunning
	}
	mic, err := intaudio.OpenMicrophone(r.settings.SampleRate)
	if err != nil {
		return err
	}
	out, err := intaudio.OpenOutput(r.settings.SampleRate, &liveSource{rack: r, mic: mic})
	if err != nil {
		_ = mic.Close()
		return err
	}
	if err := mic.Start(); err != nil {
		_ = out.Close()
		_ = mic.Close()
		return err
	}
	r.mic, r.out = mic, out
	out.Start()
	return nil
}

// Stop closes the devices opened by Start.
func (r *Rack) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.out == nil {
		return ErrNotRunning
	}
	outErr := r.out.Close()
	micErr := r.mic.Close()
	r.out, r.mic = nil, nil
	return errors.Join(outErr, micErr)
}

// SaveRecording drains the current take into a float32 WAV file in dir and
// returns its path.
func (r *Rack) SaveRecording(dir string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(dir)
}

func (r *Rack) saveLocked(dir string) (string, error) {
	var chunks [][]float32
	err := r.chain.Configure(rack.Record, func(fx intfx.Effector) error {
		rec, ok := fx.(*intfx.Record)
		if !ok {
			return &rack.UnknownKindError{Kind: rack.Record}
		}
		chunks = rec.TakeChunks()
		return nil
	})
	if err != nil {
		return "", err
	}
	// Joined outside Configure so the audio thread is not held up.
	take := intfx.JoinChunks(chunks)
	if len(take) == 0 {
		return "", ErrNoRecording
	}
	name := fmt.Sprintf("micfx-%s.wav", r.clock.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, EncodeWAVFloat32LE(take, r.settings.SampleRate, 2), 0o644); err != nil {
		return "", fmt.Errorf("write recording: %w", err)
	}
	return path, nil
}

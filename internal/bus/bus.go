// Package bus is the in-process audio server: an ordered list of named
// buses, each carrying an ordered list of effect slots that can be
// individually bypassed. Every bus other than Master feeds Master.
package bus

import (
	"errors"
	"fmt"
	"sync"

	intfx "github.com/cbegin/micfx-go/internal/effects"
)

// MasterName is the name of bus 0, which always exists.
const MasterName = "Master"

// MaxBuses bounds the number of buses a server can hold.
const MaxBuses = 16

var (
	ErrBusExists    = errors.New("bus name already in use")
	ErrTooManyBuses = errors.New("no free bus")
	ErrBusIndex     = errors.New("bus index out of range")
	ErrSlotIndex    = errors.New("effect slot out of range")
)

type slot struct {
	effect  intfx.Effector
	enabled bool
}

type audioBus struct {
	name   string
	muted  bool
	slots  []slot
	active *intfx.Chain // enabled effects in slot order
}

func (b *audioBus) rebuild() {
	chain := intfx.NewChain()
	for _, s := range b.slots {
		if s.enabled {
			chain.Add(s.effect)
		}
	}
	b.active = chain
}

// Server owns every bus and serializes access between the control side
// (configuration, toggles) and the audio callback.
type Server struct {
	mu         sync.Mutex
	sampleRate int
	buses      []*audioBus
}

func NewServer(sampleRate int) *Server {
	master := &audioBus{name: MasterName}
	master.rebuild()
	return &Server{
		sampleRate: sampleRate,
		buses:      []*audioBus{master},
	}
}

func (s *Server) SampleRate() int { return s.sampleRate }

// CreateBus inserts a new bus named name at position at, shifting later
// buses up. Master cannot be displaced, so at must be in [1, BusCount()].
func (s *Server) CreateBus(name string, at int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(name) >= 0 {
		return -1, fmt.Errorf("%w: %q", ErrBusExists, name)
	}
	if len(s.buses) >= MaxBuses {
		return -1, ErrTooManyBuses
	}
	if at < 1 || at > len(s.buses) {
		return -1, fmt.Errorf("%w: %d", ErrBusIndex, at)
	}
	b := &audioBus{name: name}
	b.rebuild()
	s.buses = append(s.buses, nil)
	copy(s.buses[at+1:], s.buses[at:])
	s.buses[at] = b
	return at, nil
}

// BusIndex returns the index of the named bus, or -1.
func (s *Server) BusIndex(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(name)
}

func (s *Server) indexLocked(name string) int {
	for i, b := range s.buses {
		if b.name == name {
			return i
		}
	}
	return -1
}

func (s *Server) BusCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buses)
}

func (s *Server) BusName(idx int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.busLocked(idx)
	if err != nil {
		return "", err
	}
	return b.name, nil
}

func (s *Server) SetBusMute(idx int, muted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.busLocked(idx)
	if err != nil {
		return err
	}
	b.muted = muted
	return nil
}

func (s *Server) BusMuted(idx int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.busLocked(idx)
	if err != nil {
		return false, err
	}
	return b.muted, nil
}

// AddEffect appends fx to the bus and returns its slot. New slots are enabled.
func (s *Server) AddEffect(idx int, fx intfx.Effector) (int, error) {
	if fx == nil {
		return -1, errors.New("nil effect")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.busLocked(idx)
	if err != nil {
		return -1, err
	}
	b.slots = append(b.slots, slot{effect: fx, enabled: true})
	b.rebuild()
	return len(b.slots) - 1, nil
}

// SetEffectEnabled writes the slot's enabled flag. Re-enabling a slot does
// not reset its state; disabling one resets it so it restarts clean.
func (s *Server) SetEffectEnabled(idx, slotIdx int, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, b, err := s.slotLocked(idx, slotIdx)
	if err != nil {
		return err
	}
	if sl.enabled && !enabled && !isRecorder(sl.effect) {
		sl.effect.Reset()
	}
	sl.enabled = enabled
	b.rebuild()
	return nil
}

func isRecorder(fx intfx.Effector) bool {
	_, ok := fx.(*intfx.Record)
	return ok
}

func (s *Server) EffectEnabled(idx, slotIdx int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, _, err := s.slotLocked(idx, slotIdx)
	if err != nil {
		return false, err
	}
	return sl.enabled, nil
}

// EffectAt returns the instance in the slot. Callers that change its
// parameters while audio is running should go through Configure.
func (s *Server) EffectAt(idx, slotIdx int) (intfx.Effector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, _, err := s.slotLocked(idx, slotIdx)
	if err != nil {
		return nil, err
	}
	return sl.effect, nil
}

// Configure runs fn on the slot's instance while holding the server lock.
func (s *Server) Configure(idx, slotIdx int, fn func(intfx.Effector) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, _, err := s.slotLocked(idx, slotIdx)
	if err != nil {
		return err
	}
	return fn(sl.effect)
}

// Process runs interleaved stereo frames in dst through the enabled slots of
// bus idx and then through Master. A muted bus, or a muted Master, leaves
// silence in dst.
func (s *Server) Process(idx int, dst []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.busLocked(idx)
	if err != nil {
		return err
	}
	b.active.ProcessBuffer(dst)
	if b.muted {
		clear(dst)
		return nil
	}
	if idx == 0 {
		return nil
	}
	master := s.buses[0]
	master.active.ProcessBuffer(dst)
	if master.muted {
		clear(dst)
	}
	return nil
}

func (s *Server) busLocked(idx int) (*audioBus, error) {
	if idx < 0 || idx >= len(s.buses) {
		return nil, fmt.Errorf("%w: %d", ErrBusIndex, idx)
	}
	return s.buses[idx], nil
}

func (s *Server) slotLocked(idx, slotIdx int) (*slot, *audioBus, error) {
	b, err := s.busLocked(idx)
	if err != nil {
		return nil, nil, err
	}
	if slotIdx < 0 || slotIdx >= len(b.slots) {
		return nil, nil, fmt.Errorf("%w: bus %d slot %d", ErrSlotIndex, idx, slotIdx)
	}
	return &b.slots[slotIdx], b, nil
}

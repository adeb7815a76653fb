package bus

import (
	"errors"
	"testing"

	intfx "github.com/cbegin/micfx-go/internal/effects"
)

func TestNewServerHasMaster(t *testing.T) {
	s := NewServer(48000)
	if got := s.BusIndex(MasterName); got != 0 {
		t.Fatalf("master index = %d, want 0", got)
	}
	if got := s.BusIndex("Record"); got != -1 {
		t.Fatalf("missing bus index = %d, want -1", got)
	}
}

func TestCreateBusInsertsAfterMaster(t *testing.T) {
	s := NewServer(48000)
	if _, err := s.CreateBus("A", 1); err != nil {
		t.Fatalf("create A: %v", err)
	}
	idx, err := s.CreateBus("B", 1)
	if err != nil {
		t.Fatalf("create B: %v", err)
	}
	if idx != 1 {
		t.Fatalf("B index = %d, want 1", idx)
	}
	if got := s.BusIndex("A"); got != 2 {
		t.Errorf("A should shift to 2, got %d", got)
	}
	if name, _ := s.BusName(0); name != MasterName {
		t.Errorf("bus 0 = %q, want Master", name)
	}
}

func TestCreateBusErrors(t *testing.T) {
	s := NewServer(48000)
	if _, err := s.CreateBus(MasterName, 1); !errors.Is(err, ErrBusExists) {
		t.Errorf("duplicate name: got %v, want ErrBusExists", err)
	}
	if _, err := s.CreateBus("X", 0); !errors.Is(err, ErrBusIndex) {
		t.Errorf("index 0: got %v, want ErrBusIndex", err)
	}
	for i := 1; i < MaxBuses; i++ {
		if _, err := s.CreateBus(string(rune('a'+i)), 1); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	if _, err := s.CreateBus("overflow", 1); !errors.Is(err, ErrTooManyBuses) {
		t.Errorf("overflow: got %v, want ErrTooManyBuses", err)
	}
}

func TestSlotsEnableAndBypass(t *testing.T) {
	s := NewServer(48000)
	idx, _ := s.CreateBus("Record", 1)
	amp := intfx.NewAmplify()
	amp.SetVolumeDB(6)
	slot, err := s.AddEffect(idx, amp)
	if err != nil || slot != 0 {
		t.Fatalf("add effect: slot=%d err=%v", slot, err)
	}
	on, _ := s.EffectEnabled(idx, slot)
	if !on {
		t.Fatal("new slots should start enabled")
	}

	buf := []float32{0.25, 0.25}
	if err := s.Process(idx, buf); err != nil {
		t.Fatal(err)
	}
	if buf[0] < 0.49 {
		t.Errorf("enabled amplify should boost, got %f", buf[0])
	}

	if err := s.SetEffectEnabled(idx, slot, false); err != nil {
		t.Fatal(err)
	}
	buf = []float32{0.25, 0.25}
	_ = s.Process(idx, buf)
	if buf[0] != 0.25 {
		t.Errorf("disabled slot should be bypassed, got %f", buf[0])
	}

	if err := s.SetEffectEnabled(idx, 5, true); !errors.Is(err, ErrSlotIndex) {
		t.Errorf("bad slot: got %v, want ErrSlotIndex", err)
	}
}

func TestProcessFeedsMasterAndMute(t *testing.T) {
	s := NewServer(48000)
	idx, _ := s.CreateBus("Record", 1)
	pan := intfx.NewPanner()
	pan.SetPan(-1)
	if _, err := s.AddEffect(0, pan); err != nil {
		t.Fatal(err)
	}

	buf := []float32{0.5, 0.5}
	_ = s.Process(idx, buf)
	if buf[1] != 0 {
		t.Errorf("master panner should apply to child bus output, got r=%f", buf[1])
	}

	if err := s.SetBusMute(0, true); err != nil {
		t.Fatal(err)
	}
	buf = []float32{0.5, 0.5}
	_ = s.Process(idx, buf)
	if buf[0] != 0 || buf[1] != 0 {
		t.Errorf("muted master should silence output, got %v", buf)
	}
}

func TestConfigureRunsUnderLock(t *testing.T) {
	s := NewServer(48000)
	slot, _ := s.AddEffect(0, intfx.NewAmplify())
	err := s.Configure(0, slot, func(fx intfx.Effector) error {
		fx.(*intfx.Amplify).SetVolumeDB(-6)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	fx, _ := s.EffectAt(0, slot)
	if got := fx.(*intfx.Amplify).VolumeDB(); got != -6 {
		t.Errorf("volume = %f, want -6", got)
	}
	want := errors.New("boom")
	if err := s.Configure(0, slot, func(intfx.Effector) error { return want }); !errors.Is(err, want) {
		t.Errorf("configure error = %v, want %v", err, want)
	}
}

func TestDisabledRecorderKeepsTake(t *testing.T) {
	s := NewServer(48000)
	rec := intfx.NewRecord(48000, 1)
	slot, _ := s.AddEffect(0, rec)
	_ = s.Process(0, []float32{0.1, 0.2})
	_ = s.SetEffectEnabled(0, slot, false)
	_ = s.Process(0, []float32{0.3, 0.4})
	if rec.Frames() != 1 {
		t.Errorf("frames = %d, want 1", rec.Frames())
	}
}

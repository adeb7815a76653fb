package audio

import (
	"sync"
	"testing"
)

func TestRingFIFO(t *testing.T) {
	r := NewRing(8)
	r.Write([]float32{1, 2, 3})
	dst := make([]float32, 2)
	if n := r.Read(dst); n != 2 || dst[0] != 1 || dst[1] != 2 {
		t.Fatalf("read = %d %v", n, dst)
	}
	if r.Len() != 1 {
		t.Fatalf("len = %d, want 1", r.Len())
	}
}

func TestRingOverwritesOldest(t *testing.T) {
	r := NewRing(4)
	r.Write([]float32{1, 2, 3})
	r.Write([]float32{4, 5, 6})
	dst := make([]float32, 8)
	n := r.Read(dst)
	if n != 4 {
		t.Fatalf("read = %d, want 4", n)
	}
	want := []float32{3, 4, 5, 6}
	for i, v := range want {
		if dst[i] != v {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], v)
		}
	}
	r.Write([]float32{1, 2, 3, 4, 5, 6, 7})
	n = r.Read(dst)
	if n != 4 || dst[0] != 4 || dst[3] != 7 {
		t.Errorf("oversized write kept %v", dst[:n])
	}
}

func TestRingConcurrentAccess(t *testing.T) {
	r := NewRing(1024)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			r.Write([]float32{float32(i)})
		}
	}()
	total := 0
	go func() {
		defer wg.Done()
		dst := make([]float32, 16)
		for i := 0; i < 1000; i++ {
			total += r.Read(dst)
		}
	}()
	wg.Wait()
	total += r.Read(make([]float32, 1024))
	if total != 1000 {
		t.Errorf("read %d samples, want 1000", total)
	}
}

type constSource float32

func (c constSource) Process(dst []float32) {
	for i := range dst {
		dst[i] = float32(c)
	}
}

func TestPCMReaderEncodesWholeFrames(t *testing.T) {
	r := &pcmReader{source: constSource(1)}
	p := make([]byte, 17)
	n, err := r.Read(p)
	if err != nil {
		t.Fatal(err)
	}
	if n != 16 {
		t.Fatalf("n = %d, want 16 (two whole frames)", n)
	}
	// 1.0f is 0x3f800000.
	if p[0] != 0x00 || p[1] != 0x00 || p[2] != 0x80 || p[3] != 0x3f {
		t.Errorf("unexpected encoding % x", p[:4])
	}
	if n, err := r.Read(make([]byte, 80)); err != nil || n != 80 {
		t.Fatalf("Read(80) = %d, %v; want 80 bytes", n, err)
	}
	if n, _ := r.Read(make([]byte, 7)); n != 0 {
		t.Errorf("short read = %d, want 0", n)
	}
}

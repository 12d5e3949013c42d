package oto

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/vsariola/ambientor"
)

type rampSource struct {
	next  float32
	limit int // samples per call, 0 = no limit
	err   error
}

func (s *rampSource) ReadAudio(buffer []float32) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	n := len(buffer)
	if s.limit > 0 {
		n = min(n, s.limit)
	}
	for i := range buffer[:n] {
		buffer[i] = s.next
		s.next++
	}
	return n, nil
}

func decode(p []byte) []float32 {
	ret := make([]float32, len(p)/4)
	for i := range ret {
		ret[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[4*i:]))
	}
	return ret
}

func TestSourceReader(t *testing.T) {
	r := &sourceReader{source: &rampSource{}}
	p := make([]byte, 8*10+3) // a partial frame at the end stays unwritten
	n, err := r.Read(p)
	if err != nil || n != 80 {
		t.Fatalf("Read returned %d, %v; expected 80, nil", n, err)
	}
	for i, v := range decode(p[:n]) {
		if v != float32(i) {
			t.Fatalf("sample %d is %v", i, v)
		}
	}
}

func TestSourceReaderZeroFillsShortReads(t *testing.T) {
	r := &sourceReader{source: &rampSource{next: 1, limit: 6}}
	p := make([]byte, 8*8)
	for i := range p {
		p[i] = 0xff
	}
	n, err := r.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read returned %d, %v", n, err)
	}
	got := decode(p)
	for i, v := range got {
		want := float32(i + 1)
		if i >= 6 {
			want = 0
		}
		if v != want {
			t.Fatalf("sample %d is %v, expected %v", i, v, want)
		}
	}
}

func TestSourceReaderClosedSource(t *testing.T) {
	r := &sourceReader{source: &rampSource{err: ambientor.ErrClosed}}
	if _, err := r.Read(make([]byte, 64)); err != io.EOF {
		t.Fatalf("expected io.EOF from a closed source, got %v", err)
	}
	other := errors.New("device gone")
	r = &sourceReader{source: &rampSource{err: other}}
	if _, err := r.Read(make([]byte, 64)); !errors.Is(err, other) {
		t.Fatalf("expected the source error, got %v", err)
	}
}

func TestSourceReaderEngine(t *testing.T) {
	e, err := ambientor.New(48000)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	r := &sourceReader{source: e}
	p := make([]byte, 8*1000)
	if n, err := r.Read(p); n != len(p) || err != nil {
		t.Fatalf("Read returned %d, %v", n, err)
	}
	for i, v := range decode(p) {
		if math.IsNaN(float64(v)) || v > 1 || v < -1 {
			t.Fatalf("sample %d is %v", i, v)
		}
	}
	e.Close()
	if _, err := r.Read(p); err != io.EOF {
		t.Fatalf("expected io.EOF after closing the engine, got %v", err)
	}
}

func TestFloatBufferToBytes(t *testing.T) {
	src := []float32{0, 1, -0.5, float32(math.Inf(1))}
	dst := make([]byte, 16)
	FloatBufferToBytes(dst, src)
	for i, v := range decode(dst) {
		if v != src[i] {
			t.Fatalf("sample %d: %v, expected %v", i, v, src[i])
		}
	}
	FloatBufferToBytes(nil, nil)
}

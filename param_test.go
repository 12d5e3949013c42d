package ambientor_test

import (
	"math"
	"sync"
	"testing"

	"github.com/vsariola/ambientor"
)

func TestSmoothedParameterConverges(t *testing.T) {
	p := ambientor.NewSmoothedParameter(0, 30, 48000)
	p.SetTarget(1)
	prev := float32(0)
	for block := 0; block < 100; block++ {
		from, to := p.Advance(256)
		if from != prev {
			t.Fatalf("block %d starts at %v, previous block ended at %v", block, from, prev)
		}
		if to < from || to > 1 {
			t.Fatalf("block %d: %v -> %v is not monotonic towards 1", block, from, to)
		}
		prev = to
	}
	if p.Current() != 1 {
		t.Fatalf("expected the parameter to land on 1, got %v", p.Current())
	}
}

func TestSmoothedParameterTimeConstant(t *testing.T) {
	// after one time constant, a step should be within 1/e of the target
	p := ambientor.NewSmoothedParameter(0, 10, 48000)
	p.SetTarget(1)
	_, v := p.Advance(480)
	if want := float32(1 - 1/math.E); math.Abs(float64(v-want)) > 1e-3 {
		t.Fatalf("after 10 ms got %v, expected %v", v, want)
	}
}

func TestSmoothedParameterBlockSizeIndependent(t *testing.T) {
	a := ambientor.NewSmoothedParameter(0, 50, 44100)
	b := ambientor.NewSmoothedParameter(0, 50, 44100)
	a.SetTarget(3)
	b.SetTarget(3)
	for i := 0; i < 8; i++ {
		a.Advance(64)
	}
	b.Advance(512)
	if d := math.Abs(float64(a.Current() - b.Current())); d > 1e-5 {
		t.Fatalf("8 blocks of 64 reached %v, one block of 512 reached %v", a.Current(), b.Current())
	}
}

func TestSmoothedParameterInstant(t *testing.T) {
	p := ambientor.NewSmoothedParameter(2, 0, 48000)
	p.SetTarget(5)
	if from, to := p.Advance(1); from != 2 || to != 5 {
		t.Fatalf("a zero smoothing time should jump, got %v -> %v", from, to)
	}
}

func TestSmoothedParameterZeroFrames(t *testing.T) {
	p := ambientor.NewSmoothedParameter(1, 30, 48000)
	p.SetTarget(2)
	if from, to := p.Advance(0); from != 1 || to != 1 {
		t.Fatalf("advancing zero frames moved the parameter: %v -> %v", from, to)
	}
}

func TestSmoothedParameterSampleRateChangeKeepsValue(t *testing.T) {
	p := ambientor.NewSmoothedParameter(0, 30, 48000)
	p.SetTarget(1)
	p.Advance(100)
	before := p.Current()
	p.SetSampleRate(96000)
	if p.Current() != before {
		t.Fatalf("sample rate change moved the value from %v to %v", before, p.Current())
	}
	if from, _ := p.Advance(1); from != before {
		t.Fatalf("next block starts at %v, expected %v", from, before)
	}
}

func TestSmoothedParameterConcurrentTargets(t *testing.T) {
	p := ambientor.NewSmoothedParameter(0, 5, 48000)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 10000; i++ {
			p.SetTarget(float32(i % 2))
		}
	}()
	for i := 0; i < 1000; i++ {
		_, v := p.Advance(16)
		if v < 0 || v > 1 || math.IsNaN(float64(v)) {
			t.Fatalf("value %v left the range of the targets", v)
		}
	}
	wg.Wait()
}

package dsp_test

import (
	"math"
	"testing"

	"github.com/vsariola/ambientor/dsp"
)

func TestOscWavesBounded(t *testing.T) {
	for _, wave := range []dsp.Wave{dsp.Sine, dsp.Triangle, dsp.Saw, dsp.Noise} {
		t.Run(wave.String(), func(t *testing.T) {
			o := dsp.NewOsc(wave, 0.3, 5)
			buf := make([]float32, 1000)
			for block := 0; block < 50; block++ {
				o.Process(buf, 0.0123)
				for i, x := range buf {
					if !dsp.IsFinite(x) || x < -1.01 || x > 1.01 {
						t.Fatalf("block %d sample %d: %v", block, i, x)
					}
				}
				if p := o.Phase(); p < 0 || p >= 1 {
					t.Fatalf("phase %v outside [0,1)", p)
				}
			}
		})
	}
}

func TestOscSineMatchesMath(t *testing.T) {
	o := dsp.NewOsc(dsp.Sine, 0, 1)
	const inc = 440.0 / 48000
	buf := make([]float32, 4800)
	o.Process(buf, inc)
	for i, x := range buf {
		p := math.Mod(float64(i)*inc, 1)
		if want := math.Sin(2 * math.Pi * p); math.Abs(float64(x)-want) > 5e-3 {
			t.Fatalf("sample %d: %v, expected %v", i, x, want)
		}
	}
}

func TestWaveText(t *testing.T) {
	for _, wave := range []dsp.Wave{dsp.Sine, dsp.Triangle, dsp.Saw, dsp.Noise} {
		text, _ := wave.MarshalText()
		var w dsp.Wave
		if err := w.UnmarshalText(text); err != nil || w != wave {
			t.Fatalf("%v round-tripped to %v (%v)", wave, w, err)
		}
	}
	var w dsp.Wave
	if err := w.UnmarshalText([]byte("square")); err == nil {
		t.Fatalf("expected an error for an unknown wave")
	}
}

func TestDriftModStaysInDepth(t *testing.T) {
	d := dsp.NewDriftMod(6, 0.5, 0.25, testRate, 42)
	for i := 0; i < 2000; i++ {
		v := d.Advance(256)
		if v < -6 || v > 6 {
			t.Fatalf("block %d: drift %v outside depth", i, v)
		}
	}
	if d.Value() == 0 {
		t.Fatalf("drift never moved")
	}
}

func TestLFO(t *testing.T) {
	l := dsp.NewLFO(1, 0, testRate)
	for i := 0; i < testRate/256*4; i++ {
		v := l.Advance(256)
		if v < -1-dsp.SinMaxError || v > 1+dsp.SinMaxError {
			t.Fatalf("LFO value %v", v)
		}
	}
}

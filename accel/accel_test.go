package accel_test

import (
	"math"
	"testing"

	"github.com/vsariola/ambientor/accel"
	"github.com/vsariola/ambientor/dsp"
)

var lengths = []int{0, 1, 7, 8, 9, 63, 64, 100, 256, 257, 1000}

func randomBuffer(n int, seed uint32) []float32 {
	r := dsp.NewRand(seed)
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = r.Next()
	}
	return buf
}

func TestMixInPlaceEquivalence(t *testing.T) {
	scalar := accel.New(accel.Scalar(), 256)
	vector := accel.New(accel.Vector(), 256)
	for _, n := range lengths {
		src := randomBuffer(n, 1)
		a := randomBuffer(n, 2)
		b := append([]float32(nil), a...)
		want := append([]float32(nil), a...)
		for i := range want {
			want[i] += src[i] * 0.37
		}
		scalar.MixInPlace(a, src, 0.37)
		vector.MixInPlace(b, src, 0.37)
		for i := range a {
			if d := math.Abs(float64(a[i] - b[i])); d > accel.EquivalenceTolerance {
				t.Fatalf("n=%d index %d: scalar %v, vector %v", n, i, a[i], b[i])
			}
			if d := math.Abs(float64(a[i] - want[i])); d > accel.EquivalenceTolerance {
				t.Fatalf("n=%d index %d: scalar %v, expected %v", n, i, a[i], want[i])
			}
		}
	}
}

func TestMixInPlaceMismatchedLengths(t *testing.T) {
	k := accel.New(accel.Vector(), 16)
	dst := make([]float32, 10)
	src := randomBuffer(40, 3)
	k.MixInPlace(dst, src, 1)
	for i := range dst {
		if dst[i] != src[i] {
			t.Fatalf("index %d: %v != %v", i, dst[i], src[i])
		}
	}
}

func TestBlockSineEquivalence(t *testing.T) {
	scalar := accel.New(accel.Scalar(), 256)
	vector := accel.New(accel.Vector(), 256)
	for _, inc := range []float32{0, 1e-5, 110.0 / 48000, 0.25, 0.49, -0.01, 1.3} {
		for _, n := range lengths {
			a := make([]float32, n)
			b := make([]float32, n)
			pa, pb := float32(0.3), float32(0.3)
			for call := 0; call < 3; call++ {
				scalar.BlockSine(a, &pa, inc)
				vector.BlockSine(b, &pb, inc)
				if pa != pb {
					t.Fatalf("inc=%v n=%d: phases diverged: %v vs %v", inc, n, pa, pb)
				}
				for i := range a {
					if d := math.Abs(float64(a[i] - b[i])); d > accel.EquivalenceTolerance {
						t.Fatalf("inc=%v n=%d index %d: scalar %v, vector %v", inc, n, i, a[i], b[i])
					}
				}
			}
		}
	}
}

func TestBlockSineAccuracy(t *testing.T) {
	for _, s := range []accel.Strategy{accel.Scalar(), accel.Vector()} {
		t.Run(s.Name, func(t *testing.T) {
			k := accel.New(s, 128)
			out := make([]float32, 300)
			phase := float32(0.125)
			const inc = 0.0031
			start := phase
			k.BlockSine(out, &phase, inc)
			for i, x := range out {
				p := float64(start) + float64(i)*float64(float32(inc))
				want := math.Sin(2 * math.Pi * p)
				if math.Abs(float64(x)-want) > 2e-4 {
					t.Fatalf("sample %d: %v, expected %v", i, x, want)
				}
			}
		})
	}
}

func TestBlockSinePhaseDoesNotDrift(t *testing.T) {
	k := accel.NewSelected(256)
	out := make([]float32, 256)
	phase := float32(0)
	// 1/256 is exact in binary, so after a whole number of cycles the
	// phase must be back at exactly zero.
	const inc = 1.0 / 256
	for i := 0; i < 100000; i++ {
		k.BlockSine(out, &phase, inc)
		if phase != 0 {
			t.Fatalf("phase drifted to %v after %d blocks", phase, i+1)
		}
	}
}

func TestBlockSinePhaseStaysInRange(t *testing.T) {
	k := accel.NewSelected(64)
	out := make([]float32, 61)
	phase := float32(0.999999)
	for i := 0; i < 10000; i++ {
		k.BlockSine(out, &phase, 0.7777777)
		if phase < 0 || phase >= 1 {
			t.Fatalf("phase %v outside [0,1)", phase)
		}
	}
}

func TestSelectedIsStable(t *testing.T) {
	a, b := accel.Selected(), accel.Selected()
	if a.Name != b.Name || a.Width != b.Width {
		t.Fatalf("strategy changed between calls: %v / %v", a.Name, b.Name)
	}
	if f := accel.Probe(); !f.Vectorized() && a.Name != "scalar" {
		t.Logf("strategy %v forced on a CPU without vector support (%v)", a.Name, f)
	}
}

func TestKernelDoesNotAllocate(t *testing.T) {
	k := accel.NewSelected(256)
	dst := make([]float32, 256)
	src := randomBuffer(256, 9)
	phase := float32(0)
	allocs := testing.AllocsPerRun(100, func() {
		k.BlockSine(src, &phase, 0.01)
		k.MixInPlace(dst, src, 0.5)
	})
	if allocs != 0 {
		t.Fatalf("kernels allocated %v times per run", allocs)
	}
}

func BenchmarkMixInPlace(b *testing.B) {
	for _, s := range []accel.Strategy{accel.Scalar(), accel.Vector()} {
		b.Run(s.Name, func(b *testing.B) {
			k := accel.New(s, 256)
			dst := make([]float32, 256)
			src := randomBuffer(256, 4)
			for i := 0; i < b.N; i++ {
				k.MixInPlace(dst, src, 0.5)
			}
		})
	}
}

func BenchmarkBlockSine(b *testing.B) {
	for _, s := range []accel.Strategy{accel.Scalar(), accel.Vector()} {
		b.Run(s.Name, func(b *testing.B) {
			k := accel.New(s, 256)
			out := make([]float32, 256)
			phase := float32(0)
			for i := 0; i < b.N; i++ {
				k.BlockSine(out, &phase, 0.01)
			}
		})
	}
}

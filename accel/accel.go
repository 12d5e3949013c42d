// Package accel implements the buffer kernels of the render loop: mixing a
// voice into a bus and evaluating a running-phase sine over a block. Each
// kernel has a vector implementation built on vek32 and a scalar
// implementation that is always available; which one is used is decided
// once per process by probing the CPU.
package accel

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/cpu"
)

// EquivalenceTolerance bounds the difference between the scalar and the
// vector implementation of any kernel for the same input.
const EquivalenceTolerance = 1e-5

// EnvOverride names the environment variable that forces a strategy:
// "scalar" or "vector".
const EnvOverride = "AMBIENTOR_ACCEL"

type (
	// Features are the CPU capabilities relevant for the kernels.
	Features struct {
		AVX2  bool
		FMA   bool
		ASIMD bool
	}

	// Strategy is a resolved set of kernel implementations.
	Strategy struct {
		Name  string
		Width int // samples per vector operation; 1 for scalar

		mixInPlace func(k *Kernel, dst, src []float32, gain float32)
		blockSine  func(k *Kernel, out []float32, phase *float32, inc float32)
	}

	// Kernel binds a Strategy to the scratch memory the vector
	// implementations need. A Kernel is owned by a single render thread;
	// its methods never allocate.
	Kernel struct {
		Strategy
		tmp, tmp2 []float32
	}
)

// Probe reads the CPU features.
func Probe() Features {
	return Features{
		AVX2:  cpu.X86.HasAVX2,
		FMA:   cpu.X86.HasFMA,
		ASIMD: cpu.ARM64.HasASIMD,
	}
}

// Vectorized reports whether the vector kernels run on native vector
// instructions. vek32 ships AVX2+FMA kernels only; on other CPUs it falls
// back to plain Go loops, which are slower than the scalar strategy.
func (f Features) Vectorized() bool {
	return f.AVX2 && f.FMA
}

func (f Features) String() string {
	return fmt.Sprintf("avx2=%v fma=%v asimd=%v", f.AVX2, f.FMA, f.ASIMD)
}

// Scalar returns the scalar strategy.
func Scalar() Strategy {
	return Strategy{Name: "scalar", Width: 1, mixInPlace: scalarMixInPlace, blockSine: scalarBlockSine}
}

// Vector returns the vek32 strategy, whether or not the CPU has vector
// instructions.
func Vector() Strategy {
	return Strategy{Name: "avx2", Width: vectorWidth, mixInPlace: vectorMixInPlace, blockSine: vectorBlockSine}
}

var selected = sync.OnceValue(func() Strategy {
	return choose(Probe(), os.Getenv(EnvOverride))
})

// Selected returns the strategy chosen for this process. The CPU is probed
// on the first call only.
func Selected() Strategy {
	return selected()
}

func choose(f Features, override string) Strategy {
	switch override {
	case "scalar":
		return Scalar()
	case "vector":
		return Vector()
	}
	if f.Vectorized() {
		return Vector()
	}
	return Scalar()
}

// New returns a Kernel running strategy s, with scratch memory for blocks
// of up to maxBlock samples. Longer buffers are processed in pieces.
func New(s Strategy, maxBlock int) *Kernel {
	maxBlock = max(maxBlock, vectorWidth)
	return &Kernel{Strategy: s, tmp: make([]float32, maxBlock), tmp2: make([]float32, maxBlock)}
}

// NewSelected returns a Kernel running the strategy chosen for this
// process.
func NewSelected(maxBlock int) *Kernel {
	return New(Selected(), maxBlock)
}

// MixInPlace computes dst[i] += src[i]*gain for i < min(len(dst), len(src)).
func (k *Kernel) MixInPlace(dst, src []float32, gain float32) {
	n := min(len(dst), len(src))
	k.mixInPlace(k, dst[:n], src[:n], gain)
}

// BlockSine writes len(out) samples of sin(2*pi*phase) into out, advancing
// phase by inc cycles per sample. The phase is kept in [0,1) and is
// wrapped exactly every sample, so it does not drift no matter how many
// blocks are rendered.
func (k *Kernel) BlockSine(out []float32, phase *float32, inc float32) {
	k.blockSine(k, out, phase, inc)
}

package accel

import (
	"github.com/viterin/vek/vek32"
	"github.com/vsariola/ambientor/dsp"
)

const vectorWidth = 8

// vectorMixInPlace runs the width-aligned prefix of every chunk through
// vek32 and leaves the tail to the scalar loop.
func vectorMixInPlace(k *Kernel, dst, src []float32, gain float32) {
	for off := 0; off < len(dst); off += len(k.tmp) {
		m := min(len(k.tmp), len(dst)-off)
		m8 := m &^ (vectorWidth - 1)
		if m8 > 0 {
			scaled := vek32.MulNumber_Into(k.tmp[:m8], src[off:off+m8], gain)
			vek32.Add_Inplace(dst[off:off+m8], scaled)
		}
		scalarMixInPlace(k, dst[off+m8:off+m], src[off+m8:off+m], gain)
	}
}

// vectorBlockSine prepares the folded angles sample by sample, so the phase
// handling is identical to the scalar path, and evaluates the sine
// polynomial over the whole block with vek32 in the same Horner order.
func vectorBlockSine(k *Kernel, out []float32, phase *float32, inc float32) {
	p := dsp.WrapPhase01(*phase)
	for off := 0; off < len(out); off += len(k.tmp) {
		m := min(len(k.tmp), len(out)-off)
		m8 := m &^ (vectorWidth - 1)
		x := out[off : off+m8]
		for i := range x {
			x[i] = dsp.FoldPhase(p)
			p = dsp.WrapPhase01(p + inc)
		}
		if m8 > 0 {
			x2 := vek32.Mul_Into(k.tmp[:m8], x, x)
			acc := vek32.MulNumber_Into(k.tmp2[:m8], x2, dsp.SinC9)
			vek32.AddNumber_Inplace(acc, dsp.SinC7)
			vek32.Mul_Inplace(acc, x2)
			vek32.AddNumber_Inplace(acc, dsp.SinC5)
			vek32.Mul_Inplace(acc, x2)
			vek32.AddNumber_Inplace(acc, dsp.SinC3)
			vek32.Mul_Inplace(acc, x2)
			vek32.AddNumber_Inplace(acc, 1)
			vek32.Mul_Inplace(x, acc)
		}
		*phase = p
		scalarBlockSine(k, out[off+m8:off+m], phase, inc)
		p = *phase
	}
	*phase = p
}

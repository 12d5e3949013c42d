package accel

import "github.com/vsariola/ambientor/dsp"

func scalarMixInPlace(_ *Kernel, dst, src []float32, gain float32) {
	for i, x := range src {
		dst[i] += x * gain
	}
}

func scalarBlockSine(_ *Kernel, out []float32, phase *float32, inc float32) {
	p := dsp.WrapPhase01(*phase)
	for i := range out {
		out[i] = dsp.SinPhase01(p)
		p = dsp.WrapPhase01(p + inc)
	}
	*phase = p
}

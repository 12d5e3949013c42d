package oto

import (
	"encoding/binary"
	"math"
)

// FloatBufferToBytes encodes src into dst as float32 little endian. dst
// must hold 4*len(src) bytes.
func FloatBufferToBytes(dst []byte, src []float32) {
	if len(src) == 0 {
		return
	}
	_ = dst[4*len(src)-1]
	for i, v := range src {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(v))
	}
}

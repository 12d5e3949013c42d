// Command libambientor builds the engine as a C library:
//
//	go build -buildmode=c-shared -o libambientor.so ./cmd/libambientor
//
// The declarations are in the header written by ambientor-header.
package main

// #include <stdint.h>
import "C"

import (
	"io"
	"log"
	"unsafe"

	"github.com/vsariola/ambientor"
)

// warnings of the control thread go nowhere; the C API reports errors in
// return values
var logger = log.New(io.Discard, "", 0)

//export ambientor_create
func ambientor_create(sampleRate C.float) C.uint64_t {
	return C.uint64_t(ambientor.Create(float32(sampleRate), ambientor.WithLogger(logger)))
}

//export ambientor_destroy
func ambientor_destroy(h C.uint64_t) {
	ambientor.Destroy(ambientor.Handle(h))
}

//export ambientor_reset
func ambientor_reset(h C.uint64_t, sampleRate C.float) C.int32_t {
	e, ok := ambientor.Lookup(ambientor.Handle(h))
	if !ok {
		return -1
	}
	return status(e.Reset(float32(sampleRate)))
}

//export ambientor_render
func ambientor_render(h C.uint64_t, out *C.float, frames, channels C.uint32_t) C.uint32_t {
	e, ok := ambientor.Lookup(ambientor.Handle(h))
	if !ok || out == nil || channels == 0 {
		return 0
	}
	buf := unsafe.Slice((*float32)(unsafe.Pointer(out)), int(frames)*int(channels))
	return C.uint32_t(e.Render(buf, int(frames), int(channels)))
}

//export ambientor_set_scene
func ambientor_set_scene(h C.uint64_t, name *C.char) C.int32_t {
	e, ok := ambientor.Lookup(ambientor.Handle(h))
	if !ok || name == nil {
		return -1
	}
	return status(e.SetScene(C.GoString(name)))
}

//export ambientor_set_master_gain
func ambientor_set_master_gain(h C.uint64_t, v C.float) C.int32_t {
	return setParam(h, ambientor.MasterGain, v)
}

//export ambientor_set_cut_base
func ambientor_set_cut_base(h C.uint64_t, v C.float) C.int32_t {
	return setParam(h, ambientor.CutBase, v)
}

//export ambientor_set_cut_span
func ambientor_set_cut_span(h C.uint64_t, v C.float) C.int32_t {
	return setParam(h, ambientor.CutSpan, v)
}

//export ambientor_set_drive
func ambientor_set_drive(h C.uint64_t, v C.float) C.int32_t {
	return setParam(h, ambientor.Drive, v)
}

//export ambientor_set_out_gain
func ambientor_set_out_gain(h C.uint64_t, v C.float) C.int32_t {
	return setParam(h, ambientor.OutGain, v)
}

//export ambientor_set_detune
func ambientor_set_detune(h C.uint64_t, v C.float) C.int32_t {
	return setParam(h, ambientor.Detune, v)
}

//export ambientor_level
func ambientor_level(h C.uint64_t) C.float {
	e, ok := ambientor.Lookup(ambientor.Handle(h))
	if !ok {
		return 0
	}
	return C.float(e.Level())
}

func setParam(h C.uint64_t, id ambientor.ParamID, v C.float) C.int32_t {
	e, ok := ambientor.Lookup(ambientor.Handle(h))
	if !ok {
		return -1
	}
	return status(e.SetParam(id, float32(v)))
}

func status(err error) C.int32_t {
	if err != nil {
		return -1
	}
	return 0
}

func main() {}

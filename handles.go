package ambientor

import (
	"sync"
	"sync/atomic"
)

// Handle is an opaque reference to an Engine for callers that cannot hold
// Go pointers, such as the C API. The zero Handle is never valid.
type Handle uint64

var (
	handles    sync.Map // Handle -> *Engine
	lastHandle atomic.Uint64
)

// Create creates an engine and returns its handle, or 0 if the engine
// cannot be created.
func Create(sampleRate float32, options ...Option) Handle {
	e, err := New(sampleRate, options...)
	if err != nil {
		return 0
	}
	h := Handle(lastHandle.Add(1))
	handles.Store(h, e)
	return h
}

// Lookup returns the engine of a handle.
func Lookup(h Handle) (*Engine, bool) {
	v, ok := handles.Load(h)
	if !ok {
		return nil, false
	}
	return v.(*Engine), true
}

// Destroy closes the engine of a handle and invalidates the handle. It
// reports whether the handle was valid.
func Destroy(h Handle) bool {
	v, ok := handles.LoadAndDelete(h)
	if !ok {
		return false
	}
	v.(*Engine).Close()
	return true
}

package ambientor

import (
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/vsariola/ambientor/accel"
	"github.com/vsariola/ambientor/dsp"
	"github.com/vsariola/ambientor/graph"
)

type (
	// Engine owns one scene graph and the parameters that drive it. It
	// renders on the audio thread and takes parameter and scene changes
	// from a control thread.
	Engine struct {
		sampleRate atomic.Uint32 // float32 bits
		params     [NumParams]*SmoothedParameter
		scene      *graph.Scene // owned by the audio thread
		pending    atomic.Pointer[graph.Scene]
		sceneName  atomic.Pointer[string]
		catalog    *Catalog
		strategy   accel.Strategy
		logger     *log.Logger
		closed     atomic.Bool
		control    sync.Mutex // serializes SetScene, Reset and Close

		left, right [graph.MaxBlock]float32
		meter       dsp.RMS
		level       atomic.Uint32 // float32 bits
		peak        atomic.Uint32 // float32 bits
	}

	// Option configures an Engine in New.
	Option func(*engineConfig)

	engineConfig struct {
		scene      string
		masterGain float32
		catalog    *Catalog
		strategy   accel.Strategy
		logger     *log.Logger
	}
)

// MeterWindowMs is the window of the output RMS meter.
const MeterWindowMs = 300

// WithScene selects the scene the engine starts with.
func WithScene(name string) Option {
	return func(c *engineConfig) { c.scene = name }
}

// WithMasterGain sets the initial master gain. The value is clamped.
func WithMasterGain(gain float32) Option {
	return func(c *engineConfig) { c.masterGain = gain }
}

// WithCatalog makes the engine choose its scenes from catalog instead of
// the built-in scenes.
func WithCatalog(catalog *Catalog) Option {
	return func(c *engineConfig) { c.catalog = catalog }
}

// WithStrategy forces the kernel strategy of the scenes the engine builds.
func WithStrategy(s accel.Strategy) Option {
	return func(c *engineConfig) { c.strategy = s }
}

// WithLogger sets the logger for warnings of the control thread. The
// render path never logs.
func WithLogger(logger *log.Logger) Option {
	return func(c *engineConfig) { c.logger = logger }
}

// New creates an engine rendering at sampleRate. The only errors are an
// invalid sample rate and a scene that cannot be found or built.
func New(sampleRate float32, options ...Option) (*Engine, error) {
	if err := validSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("cannot create engine: %w", err)
	}
	cfg := engineConfig{
		scene:      DefaultScene,
		masterGain: DefaultMasterGain,
		strategy:   accel.Selected(),
		logger:     log.Default(),
	}
	for _, o := range options {
		o(&cfg)
	}
	if cfg.catalog == nil {
		cfg.catalog = BuiltinScenes()
	}
	e := &Engine{
		catalog:  cfg.catalog,
		strategy: cfg.strategy,
		logger:   cfg.logger,
		meter:    dsp.NewRMS(MeterWindowMs, sampleRate),
	}
	e.sampleRate.Store(math.Float32bits(sampleRate))
	for id, info := range Params {
		e.params[id] = NewSmoothedParameter(0, info.SmoothingMs, sampleRate)
	}
	e.params[MasterGain].Snap(MasterGain.Clamp(cfg.masterGain))
	scene, err := e.buildScene(cfg.scene)
	if err != nil {
		return nil, fmt.Errorf("cannot create engine: %w", err)
	}
	e.setSceneTargets(scene.Defaults())
	for id := range e.params {
		e.params[id].SnapToTarget()
	}
	e.scene = scene
	e.sceneName.Store(&cfg.scene)
	return e, nil
}

func (e *Engine) buildScene(name string) (*graph.Scene, error) {
	spec, ok := e.catalog.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return graph.New(spec, e.SampleRate(), accel.New(e.strategy, graph.MaxBlock))
}

func (e *Engine) setSceneTargets(p graph.Params) {
	e.params[CutBase].SetTarget(CutBase.Clamp(p.CutBase))
	e.params[CutSpan].SetTarget(CutSpan.Clamp(p.CutSpan))
	e.params[Drive].SetTarget(Drive.Clamp(p.Drive))
	e.params[OutGain].SetTarget(OutGain.Clamp(p.OutGain))
	e.params[Detune].SetTarget(Detune.Clamp(p.Detune))
}

// Close releases the scene graph. Render returns 0 after Close.
func (e *Engine) Close() {
	e.control.Lock()
	defer e.control.Unlock()
	e.closed.Store(true)
	e.pending.Store(nil)
	e.scene = nil
}

// Reset re-derives every sample rate dependent coefficient for a new sample
// rate. Oscillator, envelope and filter states are kept, so the output
// continues without restarting. A scene selected but not yet rendered is
// re-derived too, so installing it on the audio thread never resizes
// anything. Reset must not run concurrently with Render.
func (e *Engine) Reset(sampleRate float32) error {
	e.control.Lock()
	defer e.control.Unlock()
	if e.closed.Load() {
		return ErrClosed
	}
	if err := validSampleRate(sampleRate); err != nil {
		return fmt.Errorf("cannot reset engine: %w", err)
	}
	e.sampleRate.Store(math.Float32bits(sampleRate))
	for _, p := range e.params {
		p.SetSampleRate(sampleRate)
	}
	e.meter.SetSampleRate(sampleRate)
	e.scene.SetSampleRate(sampleRate)
	if s := e.pending.Load(); s != nil {
		s.SetSampleRate(sampleRate)
	}
	return nil
}

func (e *Engine) SampleRate() float32 {
	return math.Float32frombits(e.sampleRate.Load())
}

// SceneName returns the name of the most recently selected scene.
func (e *Engine) SceneName() string {
	if n := e.sceneName.Load(); n != nil {
		return *n
	}
	return ""
}

func (e *Engine) Catalog() *Catalog { return e.catalog }

// SetScene replaces the scene graph with a freshly built graph of the named
// scene. The graph is built on the calling thread, so SetScene allocates
// and must not be called from the audio thread. The audio thread picks the
// new graph up at its next block. The scene-level parameters move to the
// defaults of the new scene; the master gain is kept. An unknown name
// leaves the current scene playing and returns ErrUnknownScene.
func (e *Engine) SetScene(name string) error {
	e.control.Lock()
	defer e.control.Unlock()
	if e.closed.Load() {
		return ErrClosed
	}
	scene, err := e.buildScene(name)
	if err != nil {
		e.logger.Printf("ambientor: cannot switch to scene %q, keeping %q: %v", name, e.SceneName(), err)
		return err
	}
	e.setSceneTargets(scene.Defaults())
	e.pending.Store(scene)
	e.sceneName.Store(&name)
	return nil
}

// SetParam records a new target for a parameter. Values outside the range
// of the parameter are clamped; NaN is ignored. The parameter moves to the
// target with smoothing, not instantly.
func (e *Engine) SetParam(id ParamID, value float32) error {
	if id < 0 || id >= NumParams {
		return fmt.Errorf("%w: no parameter %d", ErrInvalidParam, int(id))
	}
	if math32.IsNaN(value) {
		e.logger.Printf("ambientor: ignoring NaN for %v", id)
		return fmt.Errorf("%w: %v is NaN", ErrInvalidParam, id)
	}
	if c := id.Clamp(value); c != value {
		e.logger.Printf("ambientor: %v %v out of range, clamped to %v", id, value, c)
		value = c
	}
	e.params[id].SetTarget(value)
	return nil
}

// Param returns the target of a parameter.
func (e *Engine) Param(id ParamID) float32 {
	return e.params[id].Target()
}

func (e *Engine) SetMasterGain(v float32) error { return e.SetParam(MasterGain, v) }
func (e *Engine) SetCutBase(v float32) error    { return e.SetParam(CutBase, v) }
func (e *Engine) SetCutSpan(v float32) error    { return e.SetParam(CutSpan, v) }
func (e *Engine) SetDrive(v float32) error      { return e.SetParam(Drive, v) }
func (e *Engine) SetOutGain(v float32) error    { return e.SetParam(OutGain, v) }
func (e *Engine) SetDetune(v float32) error     { return e.SetParam(Detune, v) }

// Level returns the RMS level of the mid signal over the last
// MeterWindowMs milliseconds.
func (e *Engine) Level() float32 {
	return math.Float32frombits(e.level.Load())
}

// Peak returns the largest absolute sample since the previous call to
// Peak and starts a new measurement.
func (e *Engine) Peak() float32 {
	return math.Float32frombits(e.peak.Swap(0))
}

// RenderStereo renders min(len(left), len(right)) frames of the panned
// stereo signal into left and right and returns the number of frames
// written. Fewer frames are
// written only if the engine is closed or the render fails internally;
// the caller should zero the rest.
func (e *Engine) RenderStereo(left, right []float32) (frames int) {
	if e.closed.Load() {
		return 0
	}
	n := min(len(left), len(right))
	defer func() {
		recover() // frames holds the blocks completed before the panic
	}()
	for frames < n {
		end := min(frames+graph.MaxBlock, n)
		e.renderBlock(left[frames:end], right[frames:end])
		frames = end
	}
	return frames
}

// Render renders frames frames into the interleaved buffer out with the
// given number of channels and returns the number of frames written. The
// mono mix (L+R)/2 is duplicated across all channels; RenderStereo gives
// the panned signal. If out holds less than frames*channels samples, only
// the frames that fit are written.
func (e *Engine) Render(out []float32, frames, channels int) int {
	n, _ := e.RenderInterleaved(out, frames, channels)
	return n
}

// RenderInterleaved is Render with an error telling why fewer frames than
// requested were written.
func (e *Engine) RenderInterleaved(out []float32, frames, channels int) (int, error) {
	return e.renderInterleaved(out, frames, channels, false)
}

// ReadAudio fills buffer with interleaved, panned stereo frames.
func (e *Engine) ReadAudio(buffer []float32) (int, error) {
	n, err := e.renderInterleaved(buffer, len(buffer)/2, 2, true)
	return n * 2, err
}

func (e *Engine) renderInterleaved(out []float32, frames, channels int, stereo bool) (written int, err error) {
	if e.closed.Load() {
		return 0, ErrClosed
	}
	if channels < 1 || frames < 0 {
		return 0, fmt.Errorf("cannot render %d frames of %d channels", frames, channels)
	}
	if frames > len(out)/channels {
		frames = len(out) / channels
		err = fmt.Errorf("buffer of %d samples holds only %d frames of %d channels", len(out), frames, channels)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()
	for written < frames {
		n := min(frames-written, graph.MaxBlock)
		left, right := e.left[:n], e.right[:n]
		e.renderBlock(left, right)
		o := out[written*channels : (written+n)*channels]
		switch {
		case stereo:
			for i := range left {
				o[2*i] = left[i]
				o[2*i+1] = right[i]
			}
		case channels == 1:
			for i := range left {
				o[i] = (left[i] + right[i]) * 0.5
			}
		default:
			for i := range left {
				mid := (left[i] + right[i]) * 0.5
				f := o[i*channels : (i+1)*channels]
				for c := range f {
					f[c] = mid
				}
			}
		}
		written += n
	}
	return written, err
}

// renderBlock renders at most graph.MaxBlock frames.
func (e *Engine) renderBlock(left, right []float32) {
	if s := e.pending.Swap(nil); s != nil {
		if sr := e.SampleRate(); s.SampleRate() != sr {
			s.SetSampleRate(sr)
		}
		e.scene = s
		for id := CutBase; id < NumParams; id++ {
			e.params[id].SnapToTarget()
		}
	}
	n := len(left)
	var from, to graph.Params
	from.CutBase, to.CutBase = e.params[CutBase].Advance(n)
	from.CutSpan, to.CutSpan = e.params[CutSpan].Advance(n)
	from.Drive, to.Drive = e.params[Drive].Advance(n)
	from.OutGain, to.OutGain = e.params[OutGain].Advance(n)
	from.Detune, to.Detune = e.params[Detune].Advance(n)
	e.scene.Render(left, right, from, to)

	g, gTo := e.params[MasterGain].Advance(n)
	step := (gTo - g) / float32(n)
	peak := float32(0)
	for i := range left {
		g += step
		left[i] *= g
		right[i] *= g
		peak = max(peak, math32.Abs(left[i]), math32.Abs(right[i]))
		e.meter.Add((left[i] + right[i]) * 0.5)
	}
	e.level.Store(math.Float32bits(e.meter.Value()))
	for {
		old := e.peak.Load()
		if math.Float32frombits(old) >= peak || e.peak.CompareAndSwap(old, math.Float32bits(peak)) {
			break
		}
	}
}

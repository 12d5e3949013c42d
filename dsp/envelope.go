package dsp

// Stage is the state of an envelope generator.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

const (
	// AttackEpsilon is how close to 1 an exponential attack has to get
	// before the envelope moves on.
	AttackEpsilon = 1e-3
	// SettleEpsilon is how close to the sustain level an exponential decay
	// has to get before it snaps to sustain.
	SettleEpsilon = 1e-4
	// IdleEpsilon is the level below which a release is considered done.
	IdleEpsilon = 1e-4

	// MinStageSeconds is the shortest attack, decay or release time.
	MinStageSeconds = 0.001
)

// ADSRTimes holds the attack, decay and release times in seconds and the
// sustain level in [0,1].
type ADSRTimes struct {
	Attack  float32 `yaml:"attack"`
	Decay   float32 `yaml:"decay,omitempty"`
	Sustain float32 `yaml:"sustain,omitempty"`
	Release float32 `yaml:"release"`
}

func (t ADSRTimes) clamped() ADSRTimes {
	return ADSRTimes{
		Attack:  max(t.Attack, MinStageSeconds),
		Decay:   max(t.Decay, MinStageSeconds),
		Sustain: Clamp(t.Sustain, 0, 1),
		Release: max(t.Release, MinStageSeconds),
	}
}

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	}
	return "unknown"
}

type (
	// ADSRLinear ramps linearly between the stage targets. The slope of the
	// current stage is kept per second, so changing the sample rate only
	// rescales the per-sample step and the value never jumps.
	ADSRLinear struct {
		times      ADSRTimes
		sampleRate float32
		stage      Stage
		value      float64
		slope      float64 // units per second
		inc        float64 // units per sample
	}

	// ADSRExp approaches each stage target with a one-pole curve. Stage
	// changes happen when the value gets within an epsilon of the target.
	// The curve runs in float64: with stage times of seconds the per-sample
	// step near the target is below the float32 resolution.
	ADSRExp struct {
		times                              ADSRTimes
		sampleRate                         float32
		stage                              Stage
		value                              float64
		attackRate, decayRate, releaseRate float64
	}

	// ARExp is a percussive attack-release envelope: the attack hands over
	// to the release without waiting for a gate-off.
	ARExp struct {
		attack, release         float32 // seconds
		sampleRate              float32
		stage                   Stage
		value                   float64
		attackRate, releaseRate float64
	}

	// SlewLimiter one-pole tracks its target; it has no stages.
	SlewLimiter struct {
		timeMs     float32
		sampleRate float32
		rate       float32
		value      float32
		target     float32
	}
)

func NewADSRLinear(times ADSRTimes, sampleRate float32) *ADSRLinear {
	e := &ADSRLinear{times: times.clamped(), sampleRate: sampleRate}
	return e
}

func (e *ADSRLinear) SetTimes(times ADSRTimes) {
	e.times = times.clamped()
	e.enter(e.stage)
}

func (e *ADSRLinear) SetSampleRate(sampleRate float32) {
	e.sampleRate = sampleRate
	e.inc = e.slope / float64(sampleRate)
}

// enter computes the slope of stage s from the current value, so the ramp
// always starts where the previous one ended.
func (e *ADSRLinear) enter(s Stage) {
	e.stage = s
	var target, seconds float64
	switch s {
	case StageAttack:
		target, seconds = 1, float64(e.times.Attack)
	case StageDecay:
		target, seconds = float64(e.times.Sustain), float64(e.times.Decay)
	case StageRelease:
		target, seconds = 0, float64(e.times.Release)
	default:
		e.slope, e.inc = 0, 0
		return
	}
	e.slope = (target - e.value) / seconds
	e.inc = e.slope / float64(e.sampleRate)
}

func (e *ADSRLinear) Trigger() {
	if e.stage == StageIdle || e.stage == StageRelease {
		e.enter(StageAttack)
	}
}

func (e *ADSRLinear) Release() {
	if e.stage != StageIdle {
		e.enter(StageRelease)
	}
}

func (e *ADSRLinear) Reset() {
	e.value = 0
	e.enter(StageIdle)
}

func (e *ADSRLinear) Next() float32 {
	switch e.stage {
	case StageAttack:
		e.value += e.inc
		if e.value >= 1 {
			e.value = 1
			e.enter(StageDecay)
		}
	case StageDecay:
		s := float64(e.times.Sustain)
		e.value += e.inc
		if e.value <= s {
			e.value = s
			e.enter(StageSustain)
		}
	case StageSustain:
		e.value = float64(e.times.Sustain)
	case StageRelease:
		e.value += e.inc
		if e.value <= 0 {
			e.value = 0
			e.enter(StageIdle)
		}
	}
	return float32(e.value)
}

func (e *ADSRLinear) Value() float32   { return float32(e.value) }
func (e *ADSRLinear) Stage() Stage     { return e.stage }
func (e *ADSRLinear) IsActive() bool   { return e.stage != StageIdle }
func (e *ADSRLinear) Times() ADSRTimes { return e.times }

func NewADSRExp(times ADSRTimes, sampleRate float32) *ADSRExp {
	e := &ADSRExp{times: times.clamped(), sampleRate: sampleRate}
	e.updateRates()
	return e
}

func (e *ADSRExp) updateRates() {
	e.attackRate = onePoleRate(e.times.Attack*1000, e.sampleRate)
	e.decayRate = onePoleRate(e.times.Decay*1000, e.sampleRate)
	e.releaseRate = onePoleRate(e.times.Release*1000, e.sampleRate)
}

func (e *ADSRExp) SetTimes(times ADSRTimes) {
	e.times = times.clamped()
	e.updateRates()
}

func (e *ADSRExp) SetSampleRate(sampleRate float32) {
	e.sampleRate = sampleRate
	e.updateRates()
}

func (e *ADSRExp) Trigger() {
	if e.stage == StageIdle || e.stage == StageRelease {
		e.stage = StageAttack
	}
}

func (e *ADSRExp) Release() {
	if e.stage != StageIdle {
		e.stage = StageRelease
	}
}

func (e *ADSRExp) Reset() {
	e.stage = StageIdle
	e.value = 0
}

func (e *ADSRExp) Next() float32 {
	switch e.stage {
	case StageAttack:
		e.value = approach(e.value, 1, e.attackRate)
		if e.value >= 1-AttackEpsilon {
			e.stage = StageDecay
		}
	case StageDecay:
		s := float64(e.times.Sustain)
		e.value = approach(e.value, s, e.decayRate)
		if d := e.value - s; d < SettleEpsilon && d > -SettleEpsilon {
			e.value = s
			e.stage = StageSustain
		}
	case StageSustain:
		e.value = float64(e.times.Sustain)
	case StageRelease:
		e.value = approach(e.value, 0, e.releaseRate)
		if e.value < IdleEpsilon {
			e.value = 0
			e.stage = StageIdle
		}
	}
	return float32(e.value)
}

func (e *ADSRExp) Value() float32   { return float32(e.value) }
func (e *ADSRExp) Stage() Stage     { return e.stage }
func (e *ADSRExp) IsActive() bool   { return e.stage != StageIdle }
func (e *ADSRExp) Times() ADSRTimes { return e.times }

func NewARExp(attack, release, sampleRate float32) *ARExp {
	e := &ARExp{sampleRate: sampleRate}
	e.SetTimes(attack, release)
	return e
}

func (e *ARExp) SetTimes(attack, release float32) {
	e.attack = max(attack, MinStageSeconds)
	e.release = max(release, MinStageSeconds)
	e.updateRates()
}

func (e *ARExp) SetSampleRate(sampleRate float32) {
	e.sampleRate = sampleRate
	e.updateRates()
}

func (e *ARExp) updateRates() {
	e.attackRate = onePoleRate(e.attack*1000, e.sampleRate)
	e.releaseRate = onePoleRate(e.release*1000, e.sampleRate)
}

func (e *ARExp) Trigger() {
	if e.stage == StageIdle || e.stage == StageRelease {
		e.stage = StageAttack
	}
}

func (e *ARExp) Release() {
	if e.stage != StageIdle {
		e.stage = StageRelease
	}
}

func (e *ARExp) Reset() {
	e.stage = StageIdle
	e.value = 0
}

func (e *ARExp) Next() float32 {
	switch e.stage {
	case StageAttack:
		e.value = approach(e.value, 1, e.attackRate)
		if e.value >= 1-AttackEpsilon {
			e.stage = StageRelease
		}
	case StageRelease:
		e.value = approach(e.value, 0, e.releaseRate)
		if e.value < IdleEpsilon {
			e.value = 0
			e.stage = StageIdle
		}
	}
	return float32(e.value)
}

func (e *ARExp) Value() float32 { return float32(e.value) }
func (e *ARExp) Stage() Stage   { return e.stage }
func (e *ARExp) IsActive() bool { return e.stage != StageIdle }

func NewSlewLimiter(timeMs, sampleRate float32) *SlewLimiter {
	s := &SlewLimiter{timeMs: timeMs, sampleRate: sampleRate}
	s.rate = OnePoleRateMs(timeMs, sampleRate)
	return s
}

// SetTimeMs changes the time constant. The current value is untouched.
func (s *SlewLimiter) SetTimeMs(timeMs float32) {
	s.timeMs = timeMs
	s.rate = OnePoleRateMs(timeMs, s.sampleRate)
}

func (s *SlewLimiter) SetSampleRate(sampleRate float32) {
	s.sampleRate = sampleRate
	s.rate = OnePoleRateMs(s.timeMs, sampleRate)
}

func (s *SlewLimiter) SetTarget(target float32) { s.target = target }

// Snap jumps both the value and the target to v.
func (s *SlewLimiter) Snap(v float32) {
	s.value, s.target = v, v
}

func (s *SlewLimiter) Next() float32 {
	s.value = KillDenormals(s.value + (s.target-s.value)*s.rate)
	return s.value
}

// Advance moves the limiter n samples at once, as if Next had been called n
// times with a constant target.
func (s *SlewLimiter) Advance(n int) float32 {
	for i := 0; i < n; i++ {
		s.value += (s.target - s.value) * s.rate
	}
	s.value = KillDenormals(s.value)
	return s.value
}

func (s *SlewLimiter) Value() float32  { return s.value }
func (s *SlewLimiter) Target() float32 { return s.target }

// Envelope is the gate-driven interface shared by ADSRLinear, ADSRExp and
// ARExp.
type Envelope interface {
	Trigger()
	Release()
	Reset()
	Next() float32
	Value() float32
	Stage() Stage
	IsActive() bool
	SetSampleRate(sampleRate float32)
}

package ambientor

type AudioSource interface {
	// ReadAudio fills buffer with interleaved stereo samples and returns the
	// number of samples written.
	ReadAudio(buffer []float32) (n int, err error)
}

type AudioPlayer interface {
	Close() error
}

// AudioContext is a host audio device that pulls samples from a source.
type AudioContext interface {
	Play(source AudioSource) (AudioPlayer, error)
	SampleRate() int
	Close() error
}

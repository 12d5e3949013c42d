// Package oto plays an audio source on the default output device with
// github.com/ebitengine/oto/v3.
package oto

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/vsariola/ambientor"
)

type (
	// Context is an open output device. A process can have only one.
	Context struct {
		ctx        *oto.Context
		sampleRate int
	}

	Player struct {
		player *oto.Player
	}

	// sourceReader pulls stereo frames from an AudioSource whenever the
	// device needs them and encodes them as float32 little endian.
	sourceReader struct {
		source ambientor.AudioSource
		buf    []float32
	}
)

const bytesPerFrame = 2 * 4

// NewContext opens the output device at sampleRate with a buffer of the
// given length; zero lets the driver choose.
func NewContext(sampleRate int, buffer time.Duration) (*Context, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{ctx: ctx, sampleRate: sampleRate}, nil
}

func (c *Context) SampleRate() int { return c.sampleRate }

// Play starts pulling audio from source until the player is closed or the
// source returns an error.
func (c *Context) Play(source ambientor.AudioSource) (ambientor.AudioPlayer, error) {
	p := c.ctx.NewPlayer(&sourceReader{source: source})
	p.Play()
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("cannot start oto player: %w", err)
	}
	return &Player{player: p}, nil
}

// Close suspends the device; oto cannot release it before the process
// exits.
func (c *Context) Close() error {
	if err := c.ctx.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (p *Player) Close() error {
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

func (r *sourceReader) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames*2 {
		r.buf = make([]float32, frames*2)
	}
	buf := r.buf[:frames*2]
	n, err := r.source.ReadAudio(buf)
	if n == 0 && err != nil {
		if errors.Is(err, ambientor.ErrClosed) {
			return 0, io.EOF
		}
		return 0, err
	}
	clear(buf[n:]) // the device must not hear stale samples
	FloatBufferToBytes(p, buf)
	return frames * bytesPerFrame, nil
}

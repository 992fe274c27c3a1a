package cosmac

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	SampleRate = 44100
	ToneHz     = 440

	framesPerSecond = 60
	silence         = 0x80 // 8-bit PCM is unsigned
	amplitude       = 0x20
)

// Beeper synthesizes the tone heard while the sound timer is running,
// one frame at a time, and records it as 8-bit mono PCM.
type Beeper struct {
	buf   *audio.IntBuffer
	phase int // samples into the current tone period
}

func NewBeeper() *Beeper {
	return &Beeper{buf: &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
		SourceBitDepth: 8,
	}}
}

// Frame appends one frame of samples: a square wave if on, else silence.
func (b *Beeper) Frame(on bool) {
	const (
		n      = SampleRate / framesPerSecond
		period = SampleRate / ToneHz
	)
	for i := 0; i < n; i++ {
		v := silence
		if on {
			if b.phase < period/2 {
				v += amplitude
			} else {
				v -= amplitude
			}
			b.phase = (b.phase + 1) % period
		}
		b.buf.Data = append(b.buf.Data, v)
	}
	if !on {
		b.phase = 0
	}
}

// Samples returns the samples recorded so far.
func (b *Beeper) Samples() []int { return b.buf.Data }

func (b *Beeper) WriteWAV(w io.WriteSeeker) error {
	enc := wav.NewEncoder(w, SampleRate, 8, 1, 1)
	if err := enc.Write(b.buf); err != nil {
		return err
	}
	return enc.Close()
}

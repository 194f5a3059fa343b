package tui

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Beeper plays short sine tones through the system speaker.
type Beeper struct{}

// NewBeeper initializes the speaker. Callers fall back to Silent when it
// fails, since the game runs fine without sound.
func NewBeeper() (*Beeper, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &Beeper{}, nil
}

func (b *Beeper) Win() {
	b.play(tone(660, 90), tone(880, 90), tone(1320, 160))
}

func (b *Beeper) Lose() {
	b.play(tone(330, 150), tone(220, 260))
}

func (b *Beeper) Close() {
	speaker.Close()
}

func (b *Beeper) play(parts ...beep.Streamer) {
	done := make(chan struct{})
	speaker.Play(beep.Seq(append(parts, beep.Callback(func() { close(done) }))...))
	<-done
}

func tone(freq float64, ms int) beep.Streamer {
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return beep.Silence(0)
	}
	return beep.Take(sampleRate.N(time.Duration(ms)*time.Millisecond), sine)
}

// Silent is a Sounder that does nothing.
type Silent struct{}

func (Silent) Win()  {}
func (Silent) Lose() {}

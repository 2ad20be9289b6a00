package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"stopsign-simulation/intersection"
)

const (
	sampleRate    = beep.SampleRate(44100)
	chimeFreq     = 660
	chimeDuration = 60 * time.Millisecond
)

// chime короткий сигнал, когда машина получает право проезда
type chime struct {
	intersection.BaseObserver
	sr beep.SampleRate
}

func newChime() (*chime, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &chime{sr: sampleRate}, nil
}

func (c *chime) OnGrant(v *intersection.Vehicle) {
	sine, err := generators.SineTone(c.sr, chimeFreq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(c.sr.N(chimeDuration), sine))
}

func (c *chime) Close() {
	speaker.Close()
}

// Package audio implements the square wave beeper that sounds while the
// sound timer is active.
package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

const (
	// SampleRate of the generated audio in Hz.
	SampleRate = 44100

	// Frequency of the beep tone in Hz.
	Frequency = 440

	amplitude      = 0.2
	bytesPerSample = 4 // mono float32
)

// squareWave generates a mono float32 little endian square wave while active
// and silence otherwise.
type squareWave struct {
	active atomic.Bool
	phase  int // sample position inside the current period
	period int // samples per period
}

func newSquareWave(sampleRate, frequency int) *squareWave {
	return &squareWave{
		period: sampleRate / frequency,
	}
}

// Read fills p with samples. A trailing partial sample is left untouched.
func (w *squareWave) Read(p []byte) (int, error) {
	samples := len(p) / bytesPerSample
	active := w.active.Load()

	for i := range samples {
		var sample float32
		if active {
			sample = amplitude
			if w.phase >= w.period/2 {
				sample = -amplitude
			}
			w.phase = (w.phase + 1) % w.period
		}
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(sample))
	}

	if !active {
		w.phase = 0
	}
	return samples * bytesPerSample, nil
}

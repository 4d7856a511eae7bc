package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func readSamples(t *testing.T, w *squareWave, count int) []float32 {
	t.Helper()

	buf := make([]byte, count*bytesPerSample+1)
	n, err := w.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, count*bytesPerSample, n)

	samples := make([]float32, count)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*bytesPerSample:]))
	}
	return samples
}

func TestSquareWave_Silence(t *testing.T) {
	w := newSquareWave(8, 2)
	for _, sample := range readSamples(t, w, 8) {
		assert.Equal(t, float32(0), sample)
	}
}

func TestSquareWave_Active(t *testing.T) {
	w := newSquareWave(8, 2) // period of 4 samples
	w.active.Store(true)

	high, low := float32(amplitude), float32(-amplitude)
	assert.Equal(t, []float32{high, high, low, low, high, high}, readSamples(t, w, 6))
	// phase continues across reads
	assert.Equal(t, []float32{low, low}, readSamples(t, w, 2))

	w.active.Store(false)
	assert.Equal(t, []float32{0, 0}, readSamples(t, w, 2))

	// a new tone starts with a full high half period
	w.active.Store(true)
	assert.Equal(t, []float32{high, high, low}, readSamples(t, w, 3))
}

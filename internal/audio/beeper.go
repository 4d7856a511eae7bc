//go:build !headless

package audio

import (
	"fmt"

	"github.com/ebitengine/oto/v3"
)

// Beeper plays a tone while it is enabled.
type Beeper struct {
	ctx    *oto.Context
	player *oto.Player
	wave   *squareWave
}

// NewBeeper creates the audio output context and starts a player that
// outputs silence until the beeper is enabled.
func NewBeeper() (*Beeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("creating audio context: %w", err)
	}
	<-ready

	wave := newSquareWave(SampleRate, Frequency)
	player := ctx.NewPlayer(wave)
	player.Play()

	return &Beeper{
		ctx:    ctx,
		player: player,
		wave:   wave,
	}, nil
}

// SetEnabled turns the tone on or off.
func (b *Beeper) SetEnabled(enabled bool) {
	b.wave.active.Store(enabled)
}

// Close stops the playback.
func (b *Beeper) Close() error {
	if err := b.player.Close(); err != nil {
		return fmt.Errorf("closing audio player: %w", err)
	}
	return nil
}

//go:build headless

// Package window implements a desktop window frontend with audio output.
package window

import (
	"context"
	"errors"

	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

var _ frontend.Frontend = (*Window)(nil)

var errNotAvailable = errors.New("window frontend is not available in headless builds")

// Window is not available in headless builds.
type Window struct{}

// New returns a window frontend that fails to run.
func New(_ *log.Logger, _ int) *Window {
	return &Window{}
}

// Run returns an error.
func (w *Window) Run(_ context.Context, _ *machine.Machine) error {
	return errNotAvailable
}

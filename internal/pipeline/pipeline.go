// Package pipeline orchestrates the disassembly and execution workflow stages.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/program"
	"github.com/retroenv/retrochip8/internal/verification"
	"github.com/retroenv/retrochip8/internal/writer"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/log"
)

// FrontendFactory creates the frontend that runs a machine.
type FrontendFactory func(logger *log.Logger, opts options.Emulator) (frontend.Frontend, error)

// Pipeline orchestrates the complete disassembly and execution workflow.
type Pipeline struct {
	logger      *log.Logger
	detector    *detector.Detector
	loader      *loader.Loader
	newFrontend FrontendFactory
}

// New creates a new pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:      logger,
		detector:    detector.New(logger),
		loader:      loader.New(),
		newFrontend: config.CreateFrontend,
	}
}

// WithFrontendFactory replaces the factory used to create frontends.
func (p *Pipeline) WithFrontendFactory(factory FrontendFactory) *Pipeline {
	p.newFrontend = factory
	return p
}

// Disassemble runs the complete disassembly pipeline and writes the listing.
func (p *Pipeline) Disassemble(ctx context.Context, opts options.Program, disasmOpts options.Disassembler,
	w io.Writer) (*program.Program, error) {

	system, err := p.detector.Detect(opts)
	if err != nil {
		return nil, fmt.Errorf("detecting system: %w", err)
	}

	image, err := p.loader.Load(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}

	disasmOpts.System = system
	p.printInfo(opts, "Disassembling", system, len(image))

	app, err := p.DisassembleImage(ctx, image, disasmOpts, w)
	if err != nil {
		return nil, err
	}

	if opts.Verify {
		if err := verification.VerifyOutput(p.logger, app, image); err != nil {
			return nil, fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}
	return app, nil
}

// DisassembleImage disassembles a program image that is already in memory.
func (p *Pipeline) DisassembleImage(ctx context.Context, image []byte, disasmOpts options.Disassembler,
	w io.Writer) (*program.Program, error) {

	dis, err := disasm.New(p.logger, image, disasmOpts)
	if err != nil {
		return nil, fmt.Errorf("creating disassembler: %w", err)
	}

	app, err := dis.Process(ctx)
	if err != nil {
		return nil, fmt.Errorf("processing disassembly: %w", err)
	}

	fileWriter := writer.New(app, w, writer.Options{
		OffsetComments: disasmOpts.OffsetComments,
		ZeroBytes:      disasmOpts.ZeroBytes,
	})
	if err := fileWriter.Write(); err != nil {
		return nil, fmt.Errorf("writing disassembly: %w", err)
	}
	return app, nil
}

// Run loads the program and executes it in the selected frontend until the
// frontend returns.
func (p *Pipeline) Run(ctx context.Context, opts options.Program, emuOpts options.Emulator) error {
	system, err := p.detector.Detect(opts)
	if err != nil {
		return fmt.Errorf("detecting system: %w", err)
	}

	image, err := p.loader.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	p.printInfo(opts, "Running", system, len(image))
	return p.RunImage(ctx, image, emuOpts)
}

// RunImage executes a program image that is already in memory.
func (p *Pipeline) RunImage(ctx context.Context, image []byte, emuOpts options.Emulator) error {
	m, err := machine.New(p.logger, image, config.CreateEntropy(emuOpts.Seed),
		config.CreateMachineOptions(emuOpts)...)
	if err != nil {
		return fmt.Errorf("creating machine: %w", err)
	}

	ui, err := p.newFrontend(p.logger, emuOpts)
	if err != nil {
		return fmt.Errorf("creating frontend: %w", err)
	}

	if err := ui.Run(ctx, m); err != nil {
		return fmt.Errorf("running frontend %s: %w", emuOpts.Frontend, err)
	}
	return nil
}

// printInfo prints information about the program being processed.
func (p *Pipeline) printInfo(opts options.Program, action string, system arch.System, size int) {
	if opts.Quiet {
		return
	}

	p.logger.Info(action+" CHIP-8 program",
		log.String("file", opts.Input),
		log.Stringer("system", system),
		log.Int("size", size),
	)
}

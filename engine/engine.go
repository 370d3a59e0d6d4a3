package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/segfault/engine/core"
	"github.com/spaghettifunk/segfault/engine/renderer"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Window is open
	EngineStagePlatformReady
	// Renderer is initializing
	EngineStageInitializing
	// Device and depth attachment exist
	EngineStageInitialized
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Everything has been released
	EngineStageStopped
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageBooting:
		return "booting"
	case EngineStagePlatformReady:
		return "platform ready"
	case EngineStageInitializing:
		return "initializing"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageShuttingDown:
		return "shutting down"
	case EngineStageStopped:
		return "stopped"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// Platform owns the OS window.
type Platform interface {
	Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error
	Shutdown() error
}

type Engine struct {
	currentStage Stage
	config       *ApplicationConfig
	platform     Platform
	renderer     renderer.RendererBackend
	runID        string
}

func New(cfg *ApplicationConfig, p Platform, r renderer.RendererBackend) (*Engine, error) {
	if cfg == nil {
		return nil, core.Errorf(core.KindConfig, "new engine", "application config is nil")
	}
	if p == nil || r == nil {
		return nil, core.Errorf(core.KindConfig, "new engine", "platform and renderer are required")
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       cfg,
		platform:     p,
		renderer:     r,
		runID:        uuid.NewString(),
	}, nil
}

func (e *Engine) RunID() string {
	return e.runID
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// Run opens the window, brings the renderer up and tears everything down
// again. The first failing step ends the run; teardown always happens and
// its errors are joined to the returned one.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already ran (stage %s)", e.currentStage)
	}

	e.currentStage = EngineStageBooting
	core.LogSetLevel(e.config.LogLevel)
	core.LogInfo("Bootstrap run %s starting.", e.runID)

	runErr := e.initialize()
	if runErr != nil {
		core.LogError("Bootstrap failed during %s: %s", e.currentStage, runErr)
	}

	shutdownErr := e.shutdown()
	if runErr == nil && shutdownErr == nil {
		core.LogInfo("Bootstrap run %s completed.", e.runID)
	}
	return errors.Join(runErr, shutdownErr)
}

func (e *Engine) initialize() error {
	if err := e.platform.Startup(e.config.Name,
		e.config.StartPosX,
		e.config.StartPosY,
		e.config.StartWidth,
		e.config.StartHeight); err != nil {
		return err
	}
	e.currentStage = EngineStagePlatformReady

	e.currentStage = EngineStageInitializing
	if err := e.renderer.Initialize(e.config.Name, e.config.StartWidth, e.config.StartHeight); err != nil {
		return err
	}
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) shutdown() error {
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if err := e.renderer.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("renderer shutdown: %w", err))
	}
	if err := e.platform.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("platform shutdown: %w", err))
	}

	e.currentStage = EngineStageStopped
	return errors.Join(errs...)
}

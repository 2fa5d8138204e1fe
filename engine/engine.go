package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/subpasses/engine/core"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything
	EngineStageStopped
)

// How many frames pass between two frame time reports.
const metricsLogInterval = 600

type Engine struct {
	currentStage Stage
	app          Application
	host         Host
	events       *core.EventBus
	clock        *core.Clock
	metrics      *core.FrameMetrics
	width        int
	height       int
	lastTime     float64
	frameCount   uint64

	hostStarted bool
	setupCalled bool
	quit        atomic.Bool
	suspended   atomic.Bool

	shutdownOnce sync.Once
	shutdownErr  error
}

func New(app Application, host Host) (*Engine, error) {
	if app == nil || host == nil {
		return nil, errors.New("engine needs an application and a host")
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		app:          app,
		host:         host,
		clock:        core.NewClock(),
		metrics:      core.NewFrameMetrics(),
	}, nil
}

// Initialize opens the window and sets the application up.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing
	opts := e.app.Options()

	// register some events
	e.events = e.host.Events()
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onQuit)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	if err := e.host.Startup(opts.Name, opts.StartPosX, opts.StartPosY, opts.StartWidth, opts.StartHeight); err != nil {
		return err
	}
	e.hostStarted = true

	window := e.host.Window()
	e.width, e.height = window.Size()

	e.setupCalled = true
	start := time.Now()
	if err := e.app.Setup(window); err != nil {
		return fmt.Errorf("application setup failed: %w", err)
	}
	core.Elapsed(opts.Name+" setup", start)

	e.currentStage = EngineStageInitialized
	return nil
}

// Run calls Update then Render once per frame until the window closes or a
// quit is requested. The first error stops the loop and is returned.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine is not initialized")
	}
	e.currentStage = EngineStageRunning

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for !e.quit.Load() {
		if !e.host.PumpMessages() {
			break
		}
		if e.quit.Load() {
			break
		}
		if e.suspended.Load() {
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if err := e.app.Update(delta, e.width, e.height); err != nil {
			return fmt.Errorf("application update failed: %w", err)
		}
		if err := e.app.Render(); err != nil {
			return fmt.Errorf("application render failed: %w", err)
		}

		e.metrics.Update(delta)
		e.frameCount++
		if e.frameCount%metricsLogInterval == 0 {
			fps, ms := e.metrics.Frame()
			core.LogDebug("%.0f fps, %.2fms per frame", fps, ms)
		}

		// Update last time
		e.lastTime = currentTime
	}
	core.LogInfo("run loop finished after %d frames", e.frameCount)
	return nil
}

// RequestQuit stops the run loop after the current frame. Safe to call from any goroutine.
func (e *Engine) RequestQuit() {
	e.quit.Store(true)
}

// Shutdown tears the application down and closes the window. Only the first call does anything.
func (e *Engine) Shutdown() error {
	e.shutdownOnce.Do(func() {
		e.currentStage = EngineStageShuttingDown
		e.quit.Store(true)

		if e.setupCalled {
			e.app.Teardown()
		}
		if e.events != nil {
			e.events.Unregister(core.EVENT_CODE_APPLICATION_QUIT, e)
			e.events.Unregister(core.EVENT_CODE_KEY_PRESSED, e)
			e.events.Unregister(core.EVENT_CODE_RESIZED, e)
		}
		if e.hostStarted {
			e.shutdownErr = e.host.Shutdown()
		}
		e.currentStage = EngineStageStopped
	})
	return e.shutdownErr
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) onQuit(context core.EventContext) bool {
	core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
	e.RequestQuit()
	return true
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	if ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.events.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		// Block anything else from processing this.
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	width, height := int(se.WindowWidth), int(se.WindowHeight)
	if width == e.width && height == e.height {
		return false
	}
	e.width, e.height = width, height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.suspended.Store(true)
		return false
	}
	if e.suspended.Swap(false) {
		core.LogInfo("Window restored, resuming application.")
	}
	return false
}

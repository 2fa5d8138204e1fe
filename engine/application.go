package engine

import (
	"github.com/spaghettifunk/subpasses/engine/core"
	"github.com/spaghettifunk/subpasses/engine/platform"
)

// Options describes the window the engine opens for an application.
type Options struct {
	// The application name used in windowing.
	Name string
	// Window starting position.
	StartPosX int
	StartPosY int
	// Window starting size.
	StartWidth  int
	StartHeight int
}

// Application is driven by the engine: Setup once the window exists, then
// Update and Render every frame, and Teardown on shutdown.
type Application interface {
	Options() Options
	Setup(window platform.Window) error
	Update(deltaTime float64, width, height int) error
	Render() error
	Teardown()
}

// Host owns the native window and its event pump.
type Host interface {
	Startup(name string, x, y, width, height int) error
	Window() platform.Window
	Events() *core.EventBus
	// PumpMessages processes pending events and reports whether the window is still open.
	PumpMessages() bool
	Shutdown() error
}

var _ Host = (*platform.Platform)(nil)

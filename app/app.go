// Package app is the deferred renderer sample: it loads a scene, sets the
// renderer up from the configured toggles and draws a debug panel on top.
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/subpasses/engine"
	"github.com/spaghettifunk/subpasses/engine/assets"
	"github.com/spaghettifunk/subpasses/engine/config"
	"github.com/spaghettifunk/subpasses/engine/core"
	"github.com/spaghettifunk/subpasses/engine/platform"
	"github.com/spaghettifunk/subpasses/engine/renderer"
	"github.com/spaghettifunk/subpasses/engine/renderer/vulkan"
	"github.com/spaghettifunk/subpasses/engine/scene"
	"github.com/spaghettifunk/subpasses/engine/ui"
)

const (
	Title = "Deferred Renderer"

	pendingNotice = "Changes apply on next launch"
)

// Overlay is the UI drawn on top of the scene.
type Overlay interface {
	BeginFrame(deltaTime float64, width, height int, build func(ui.Builder)) error
	EndFrame() error
	Draw(index int, cmds renderer.CommandBuffers) error
	Destroy()
}

// Backend creates what the application runs on.
type Backend struct {
	LoadScene   func(path string) (*scene.Scene, error)
	NewRenderer func(name string, window platform.Window, req renderer.GPURequirements) (renderer.Renderer, error)
	NewOverlay  func(window platform.Window, ctx renderer.Context) (Overlay, error)
}

// DefaultBackend renders with Vulkan and Dear ImGui. Shaders are loaded
// through am when it is not nil.
func DefaultBackend(am *assets.AssetManager) Backend {
	return Backend{
		LoadScene: scene.Load,
		NewRenderer: func(name string, window platform.Window, req renderer.GPURequirements) (renderer.Renderer, error) {
			return vulkan.New(vulkan.Options{
				AppName:      name,
				Window:       window,
				Requirements: req,
				Assets:       am,
			})
		},
		NewOverlay: func(window platform.Window, ctx renderer.Context) (Overlay, error) {
			return ui.NewOverlay(window, ctx, ui.OverlayOptions{IniFile: ui.DefaultIniFile})
		},
	}
}

type Application struct {
	config  *config.AppConfig
	backend Backend
	debug   bool

	Settings Settings
	// settings the renderer was built with
	applied  Settings
	reported Settings
	panel    *Panel

	renderer renderer.Renderer
	overlay  Overlay
}

var _ engine.Application = (*Application)(nil)

func New(cfg *config.AppConfig, backend Backend) *Application {
	a := &Application{
		config:  cfg,
		backend: backend,
		debug:   core.DebugBuild,
		Settings: Settings{
			UseSubpasses:    cfg.Features.UseSubpasses,
			UseTransient:    cfg.Features.UseTransient,
			UseSmallGBuffer: cfg.Features.UseSmallGBuffer,
		},
	}
	a.panel = &Panel{
		Title:    Title,
		Settings: &a.Settings,
		ReadOnly: cfg.UI.ReadOnlyToggles,
	}
	return a
}

// LogOptions are the console and file sinks the application logs to.
func LogOptions(logFile string) core.LogOptions {
	level := core.DefaultLogLevel
	if core.DebugBuild {
		level = core.DebugLogLevel
	}
	return core.LogOptions{
		Level:       level,
		Prefix:      Title,
		File:        logFile,
		FileSizeMB:  core.DefaultLogFileSizeMB,
		FileBackups: core.DefaultLogFileBackups,
	}
}

func (a *Application) Options() engine.Options {
	return engine.Options{
		Name:        Title,
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  a.config.Window.Width,
		StartHeight: a.config.Window.Height,
	}
}

// Requirements are the GPU capabilities the deferred renderer needs.
func Requirements(debug bool) renderer.GPURequirements {
	return renderer.GPURequirements{
		Version:      renderer.Version{Major: 1, Minor: 3, Patch: 0},
		SRGBSurface:  true,
		MeshShader:   true,
		RayTracing:   false,
		TenBitOutput: false,
		LowLatency:   true,
		Depth:        true,
		ShaderPrintf: debug,
	}
}

// DeferredStrategy maps the settings to the G-buffer layout and pass mode.
// Transient attachments only work with subpasses, since a second render
// pass has to sample stored images.
func DeferredStrategy(s Settings) (renderer.GBufferConfig, renderer.PassMode) {
	cfg := renderer.GBufferConfig{
		UseTransient:      s.UseTransient,
		ColorFormat:       renderer.FormatR32G32B32A32Sfloat,
		NormalDepthFormat: renderer.FormatR32G32B32A32Sfloat,
	}
	if s.UseSmallGBuffer {
		cfg.ColorFormat = renderer.FormatR8G8B8A8Unorm
		cfg.NormalDepthFormat = renderer.FormatA2R10G10B10UnormPack32
	}
	mode := renderer.PassModeMultiPass
	if s.UseSubpasses {
		mode = renderer.PassModeSubpasses
	} else if cfg.UseTransient {
		core.LogWarn("transient G-buffer attachments need subpasses, allocating stored images instead")
		cfg.UseTransient = false
	}
	return cfg, mode
}

// Setup builds the renderer and the overlay. On failure nothing is retained.
func (a *Application) Setup(window platform.Window) error {
	if a.renderer != nil {
		return errors.New("application is already set up")
	}

	start := time.Now()
	sc, err := a.backend.LoadScene(a.config.SceneFile)
	if err != nil {
		return err
	}
	core.Elapsed("Loading scene", start)
	core.LogInfo("%s", sc)

	r, err := a.backend.NewRenderer(Title, window, Requirements(a.debug))
	if err != nil {
		return fmt.Errorf("failed to create the renderer: %w", err)
	}

	ov, err := a.buildRenderer(r, window, sc)
	if err != nil {
		if derr := r.Destroy(); derr != nil {
			core.LogError("failed to release the partially built renderer: %s", derr)
		}
		return err
	}

	a.renderer = r
	a.overlay = ov
	a.applied = a.Settings
	a.reported = a.Settings
	return nil
}

func (a *Application) buildRenderer(r renderer.Renderer, window platform.Window, sc *scene.Scene) (Overlay, error) {
	gbuffer, mode := DeferredStrategy(a.Settings)
	core.LogInfo("deferred strategy: %s, color %s, normal/depth %s, transient %t",
		mode, gbuffer.ColorFormat, gbuffer.NormalDepthFormat, gbuffer.UseTransient)

	if err := r.CreateGBufferImages(gbuffer); err != nil {
		return nil, fmt.Errorf("failed to create the G-buffer: %w", err)
	}
	if err := r.CreateRenderPass(mode); err != nil {
		return nil, fmt.Errorf("failed to create the render pass: %w", err)
	}
	if err := r.PushShadersWithFile(renderer.DefaultShaderSet(a.debug)); err != nil {
		return nil, fmt.Errorf("failed to load the shaders: %w", err)
	}
	if err := r.SetScene(sc); err != nil {
		return nil, err
	}
	if err := r.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit the renderer: %w", err)
	}
	ov, err := a.backend.NewOverlay(window, r.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to create the UI overlay: %w", err)
	}
	return ov, nil
}

// Teardown waits for the GPU, then releases the overlay before the renderer.
func (a *Application) Teardown() {
	if a.renderer == nil {
		return
	}
	if err := a.renderer.WaitIdle(); err != nil {
		panic(fmt.Sprintf("failed to wait for the GPU to become idle: %s", err))
	}
	if a.overlay != nil {
		a.overlay.Destroy()
		a.overlay = nil
	}
	if err := a.renderer.Destroy(); err != nil {
		core.LogError("failed to release the renderer: %s", err)
	}
	a.renderer = nil
}

func (a *Application) Update(deltaTime float64, width, height int) error {
	if a.renderer == nil {
		return core.ErrRendererNotReady
	}
	if err := a.overlay.BeginFrame(deltaTime, width, height, a.panel.Build); err != nil {
		return err
	}
	if err := a.overlay.EndFrame(); err != nil {
		return err
	}
	a.reportSettingChanges()
	return a.renderer.Update(deltaTime, width, height, a.overlay.Draw)
}

func (a *Application) Render() error {
	if a.renderer == nil {
		return core.ErrRendererNotReady
	}
	return a.renderer.Render()
}

func (a *Application) reportSettingChanges() {
	if a.Settings == a.reported {
		return
	}
	report := func(label string, was, now bool) {
		if was != now {
			core.LogInfo("%s set to %t, applies on next launch", label, now)
		}
	}
	report(LabelUseSubpasses, a.reported.UseSubpasses, a.Settings.UseSubpasses)
	report(LabelUseTransient, a.reported.UseTransient, a.Settings.UseTransient)
	report(LabelUseSmallGBuffer, a.reported.UseSmallGBuffer, a.Settings.UseSmallGBuffer)
	a.reported = a.Settings

	a.panel.Notice = ""
	if a.Settings != a.applied {
		a.panel.Notice = pendingNotice
	}
}

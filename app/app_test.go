package app

import (
	"errors"
	"strings"
	"testing"
	"unsafe"

	"github.com/spaghettifunk/subpasses/engine/config"
	"github.com/spaghettifunk/subpasses/engine/core"
	"github.com/spaghettifunk/subpasses/engine/platform"
	"github.com/spaghettifunk/subpasses/engine/renderer"
	"github.com/spaghettifunk/subpasses/engine/scene"
	"github.com/spaghettifunk/subpasses/engine/ui"
)

type journal struct {
	calls []string
}

func (j *journal) add(call string) {
	j.calls = append(j.calls, call)
}

func (j *journal) String() string {
	return strings.Join(j.calls, " ")
}

type fakeWindow struct{}

func (fakeWindow) Size() (int, int)                                    { return 1280, 720 }
func (fakeWindow) RequiredInstanceExtensions() []string                { return nil }
func (fakeWindow) CreateSurface(instance interface{}) (uintptr, error) { return 0, nil }
func (fakeWindow) InstanceProcAddr() unsafe.Pointer                    { return nil }
func (fakeWindow) Events() *core.EventBus                              { return core.NewEventBus() }

type fakeContext struct{}

func (fakeContext) DeviceName() string { return "fake" }
func (fakeContext) ImageCount() int    { return 3 }

type fakeRenderer struct {
	log     *journal
	failAt  string
	idleErr error

	gbuffer renderer.GBufferConfig
	mode    renderer.PassMode
	shaders []renderer.ShaderSet
	scene   *scene.Scene
	destroy int
}

func (r *fakeRenderer) step(name string) error {
	r.log.add(name)
	if r.failAt == name {
		return errors.New(name + " failed")
	}
	return nil
}

func (r *fakeRenderer) CreateGBufferImages(cfg renderer.GBufferConfig) error {
	r.gbuffer = cfg
	return r.step("gbuffer")
}
func (r *fakeRenderer) CreateRenderPass(mode renderer.PassMode) error {
	r.mode = mode
	return r.step("renderpass")
}
func (r *fakeRenderer) PushShadersWithFile(set renderer.ShaderSet) error {
	r.shaders = append(r.shaders, set)
	return r.step("shaders")
}
func (r *fakeRenderer) SetScene(s *scene.Scene) error {
	r.scene = s
	return r.step("scene")
}
func (r *fakeRenderer) Commit() error             { return r.step("commit") }
func (r *fakeRenderer) Context() renderer.Context { return fakeContext{} }
func (r *fakeRenderer) Update(dt float64, width, height int, draw renderer.DrawFunc) error {
	r.log.add("renderer-update")
	if draw != nil {
		return draw(1, nil)
	}
	return nil
}
func (r *fakeRenderer) Render() error { return r.step("renderer-render") }
func (r *fakeRenderer) WaitIdle() error {
	r.log.add("wait-idle")
	return r.idleErr
}
func (r *fakeRenderer) Destroy() error {
	r.destroy++
	r.log.add("renderer-destroy")
	return nil
}

type fakeOverlay struct {
	log     *journal
	builder ui.Builder
	drawn   []int
	destroy int
}

func (o *fakeOverlay) BeginFrame(dt float64, width, height int, build func(ui.Builder)) error {
	o.log.add("overlay-begin")
	build(o.builder)
	return nil
}
func (o *fakeOverlay) EndFrame() error {
	o.log.add("overlay-end")
	return nil
}
func (o *fakeOverlay) Draw(index int, cmds renderer.CommandBuffers) error {
	o.drawn = append(o.drawn, index)
	return nil
}
func (o *fakeOverlay) Destroy() {
	o.destroy++
	o.log.add("overlay-destroy")
}

// clickingBuilder flips every checkbox it is handed, as if the user clicked them all.
type clickingBuilder struct {
	windows []string
	labels  []string
	texts   []string
}

func (b *clickingBuilder) Window(title string, x, y float32, autoResize bool, contents func()) {
	b.windows = append(b.windows, title)
	contents()
}
func (b *clickingBuilder) Checkbox(label string, value *bool) bool {
	b.labels = append(b.labels, label)
	*value = !*value
	return true
}
func (b *clickingBuilder) Disabled(disabled bool, contents func()) { contents() }
func (b *clickingBuilder) Text(format string, args ...interface{}) {
	b.texts = append(b.texts, format)
}

type harness struct {
	log      *journal
	renderer *fakeRenderer
	overlay  *fakeOverlay
	builder  *clickingBuilder
	app      *Application
}

func testConfig() *config.AppConfig {
	cfg := config.Default()
	cfg.SceneFile = "scene.gltf"
	cfg.Window = config.Window{Width: 1280, Height: 720}
	return &cfg
}

func newHarness(cfg *config.AppConfig) *harness {
	h := &harness{log: &journal{}, builder: &clickingBuilder{}}
	h.renderer = &fakeRenderer{log: h.log}
	h.overlay = &fakeOverlay{log: h.log, builder: h.builder}
	h.app = New(cfg, Backend{
		LoadScene: func(path string) (*scene.Scene, error) {
			h.log.add("load-scene")
			return &scene.Scene{Path: path}, nil
		},
		NewRenderer: func(name string, window platform.Window, req renderer.GPURequirements) (renderer.Renderer, error) {
			h.log.add("new-renderer")
			return h.renderer, nil
		},
		NewOverlay: func(window platform.Window, ctx renderer.Context) (Overlay, error) {
			h.log.add("new-overlay")
			if h.renderer.failAt == "overlay" {
				return nil, errors.New("overlay failed")
			}
			return h.overlay, nil
		},
	})
	return h
}

func TestDeferredStrategy(t *testing.T) {
	tests := []struct {
		name      string
		settings  Settings
		color     renderer.Format
		normal    renderer.Format
		mode      renderer.PassMode
		transient bool
	}{
		{"small subpasses", Settings{true, true, true}, renderer.FormatR8G8B8A8Unorm, renderer.FormatA2R10G10B10UnormPack32, renderer.PassModeSubpasses, true},
		{"large subpasses", Settings{true, false, false}, renderer.FormatR32G32B32A32Sfloat, renderer.FormatR32G32B32A32Sfloat, renderer.PassModeSubpasses, false},
		{"multi-pass drops transient", Settings{false, true, true}, renderer.FormatR8G8B8A8Unorm, renderer.FormatA2R10G10B10UnormPack32, renderer.PassModeMultiPass, false},
		{"multi-pass large", Settings{false, false, false}, renderer.FormatR32G32B32A32Sfloat, renderer.FormatR32G32B32A32Sfloat, renderer.PassModeMultiPass, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, mode := DeferredStrategy(tt.settings)
			if cfg.ColorFormat != tt.color || cfg.NormalDepthFormat != tt.normal {
				t.Errorf("formats = %s/%s, want %s/%s", cfg.ColorFormat, cfg.NormalDepthFormat, tt.color, tt.normal)
			}
			if mode != tt.mode {
				t.Errorf("mode = %s, want %s", mode, tt.mode)
			}
			if cfg.UseTransient != tt.transient {
				t.Errorf("transient = %t, want %t", cfg.UseTransient, tt.transient)
			}
		})
	}
}

func TestRequirements(t *testing.T) {
	req := Requirements(true)
	if req.Version != (renderer.Version{Major: 1, Minor: 3}) {
		t.Errorf("version = %s", req.Version)
	}
	if !req.SRGBSurface || !req.MeshShader || req.RayTracing || req.TenBitOutput || !req.LowLatency || !req.Depth {
		t.Errorf("unexpected requirements %+v", req)
	}
	if !req.ShaderPrintf {
		t.Error("shader printf should be enabled in debug builds")
	}
	if Requirements(false).ShaderPrintf {
		t.Error("shader printf should be disabled in release builds")
	}
}

func TestSetupBuildsSmallGBufferEndToEnd(t *testing.T) {
	h := newHarness(testConfig())
	if err := h.app.Setup(fakeWindow{}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	want := "load-scene new-renderer gbuffer renderpass shaders scene commit new-overlay"
	if got := h.log.String(); got != want {
		t.Errorf("calls = %q, want %q", got, want)
	}
	if h.renderer.gbuffer.ColorFormat != renderer.FormatR8G8B8A8Unorm ||
		h.renderer.gbuffer.NormalDepthFormat != renderer.FormatA2R10G10B10UnormPack32 {
		t.Errorf("G-buffer = %+v", h.renderer.gbuffer)
	}
	if h.renderer.mode != renderer.PassModeSubpasses {
		t.Errorf("mode = %s", h.renderer.mode)
	}
	if len(h.renderer.shaders) != 1 || h.renderer.shaders[0] != renderer.DefaultShaderSet(core.DebugBuild) {
		t.Errorf("shaders = %+v", h.renderer.shaders)
	}
	if h.renderer.scene == nil || h.renderer.scene.Path != "scene.gltf" {
		t.Errorf("scene = %+v", h.renderer.scene)
	}
	if err := h.app.Setup(fakeWindow{}); err == nil {
		t.Error("second Setup should fail")
	}
}

func TestSetupFailureReleasesRendererOnce(t *testing.T) {
	for _, step := range []string{"gbuffer", "renderpass", "shaders", "scene", "commit", "overlay"} {
		t.Run(step, func(t *testing.T) {
			h := newHarness(testConfig())
			h.renderer.failAt = step
			if err := h.app.Setup(fakeWindow{}); err == nil {
				t.Fatal("expected Setup to fail")
			}
			if h.renderer.destroy != 1 {
				t.Fatalf("renderer destroyed %d times after setup failure", h.renderer.destroy)
			}

			h.app.Teardown()
			if h.renderer.destroy != 1 {
				t.Errorf("teardown released the renderer again")
			}
			if strings.Contains(h.log.String(), "wait-idle") {
				t.Errorf("teardown waited on a released renderer: %s", h.log)
			}
			if err := h.app.Update(0.016, 1280, 720); !errors.Is(err, core.ErrRendererNotReady) {
				t.Errorf("Update after failed setup = %v", err)
			}
		})
	}
}

func TestSetupSceneFailureCreatesNoRenderer(t *testing.T) {
	h := newHarness(testConfig())
	h.app.backend.LoadScene = func(path string) (*scene.Scene, error) {
		return nil, errors.New("missing scene")
	}
	if err := h.app.Setup(fakeWindow{}); err == nil {
		t.Fatal("expected Setup to fail")
	}
	if strings.Contains(h.log.String(), "new-renderer") {
		t.Errorf("renderer created without a scene: %s", h.log)
	}
}

func TestTeardownOrder(t *testing.T) {
	h := newHarness(testConfig())
	if err := h.app.Setup(fakeWindow{}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	h.log.calls = nil

	h.app.Teardown()
	h.app.Teardown()

	if got := h.log.String(); got != "wait-idle overlay-destroy renderer-destroy" {
		t.Errorf("teardown = %q", got)
	}
	if h.overlay.destroy != 1 || h.renderer.destroy != 1 {
		t.Errorf("overlay destroyed %d times, renderer %d times", h.overlay.destroy, h.renderer.destroy)
	}
}

func TestTeardownWithoutSetupIsNoop(t *testing.T) {
	h := newHarness(testConfig())
	h.app.Teardown()
	if len(h.log.calls) != 0 {
		t.Errorf("calls = %q", h.log)
	}
}

func TestTeardownPanicsWhenGPUNeverIdles(t *testing.T) {
	h := newHarness(testConfig())
	if err := h.app.Setup(fakeWindow{}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	h.renderer.idleErr = errors.New("device lost")

	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	h.app.Teardown()
}

func TestUpdateDrawsPanelThenRenderer(t *testing.T) {
	cfg := testConfig()
	cfg.UI.ReadOnlyToggles = true
	h := newHarness(cfg)
	if err := h.app.Setup(fakeWindow{}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	h.log.calls = nil

	if err := h.app.Update(0.016, 1280, 720); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := h.app.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if got := h.log.String(); got != "overlay-begin overlay-end renderer-update renderer-render" {
		t.Errorf("frame = %q", got)
	}
	if len(h.overlay.drawn) != 1 || h.overlay.drawn[0] != 1 {
		t.Errorf("overlay drawn into %v", h.overlay.drawn)
	}
	if len(h.builder.windows) != 1 || h.builder.windows[0] != Title {
		t.Errorf("windows = %v", h.builder.windows)
	}
	want := []string{LabelUseSubpasses, LabelUseTransient, LabelUseSmallGBuffer}
	if strings.Join(h.builder.labels, ",") != strings.Join(want, ",") {
		t.Errorf("labels = %v", h.builder.labels)
	}
}

func TestReadOnlyPanelNeverMutatesSettings(t *testing.T) {
	settings := Settings{UseSubpasses: true, UseTransient: false, UseSmallGBuffer: true}
	before := settings
	panel := &Panel{Title: Title, Settings: &settings, ReadOnly: true}

	b := &clickingBuilder{}
	for i := 0; i < 3; i++ {
		panel.Build(b)
	}
	if settings != before {
		t.Errorf("settings changed to %+v", settings)
	}
	if len(b.labels) != 9 {
		t.Errorf("checkboxes declared = %d", len(b.labels))
	}
}

func TestToggleAfterSetupAppliesOnNextLaunch(t *testing.T) {
	h := newHarness(testConfig())
	if err := h.app.Setup(fakeWindow{}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	gbuffer := h.renderer.gbuffer

	if err := h.app.Update(0.016, 1280, 720); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if h.app.Settings == (Settings{true, true, true}) {
		t.Fatal("clicks did not reach the settings")
	}
	if h.renderer.gbuffer != gbuffer || strings.Count(h.log.String(), "gbuffer") != 1 {
		t.Error("renderer was rebuilt after a toggle")
	}
	if h.app.panel.Notice != pendingNotice {
		t.Errorf("notice = %q", h.app.panel.Notice)
	}

	// clicking again restores the applied settings
	if err := h.app.Update(0.016, 1280, 720); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if h.app.panel.Notice != "" {
		t.Errorf("notice = %q", h.app.panel.Notice)
	}
}

func TestOptionsFollowConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Window = config.Window{Width: 640, Height: 480}
	opts := New(cfg, Backend{}).Options()
	if opts.Name != Title || opts.StartWidth != 640 || opts.StartHeight != 480 {
		t.Errorf("options = %+v", opts)
	}
}

func TestLogOptions(t *testing.T) {
	opts := LogOptions("./logs/renderer.log")
	if opts.File != "./logs/renderer.log" || opts.FileSizeMB != 1 || opts.FileBackups != 5 {
		t.Errorf("log options = %+v", opts)
	}
}

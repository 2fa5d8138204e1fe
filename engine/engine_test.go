package engine

import (
	"errors"
	"strings"
	"testing"
	"unsafe"

	"github.com/spaghettifunk/subpasses/engine/core"
	"github.com/spaghettifunk/subpasses/engine/platform"
)

type fakeWindow struct {
	events *core.EventBus
}

func (w *fakeWindow) Size() (int, int)                                    { return 800, 600 }
func (w *fakeWindow) RequiredInstanceExtensions() []string                { return nil }
func (w *fakeWindow) CreateSurface(instance interface{}) (uintptr, error) { return 0, nil }
func (w *fakeWindow) InstanceProcAddr() unsafe.Pointer                    { return nil }
func (w *fakeWindow) Events() *core.EventBus                              { return w.events }

// fakeHost stays open for frames pumps, running onPump before each one.
type fakeHost struct {
	events     *core.EventBus
	window     *fakeWindow
	frames     int
	pumps      int
	onPump     func(n int)
	startErr   error
	started    int
	shutdowns  int
	startTitle string
}

func newFakeHost(frames int) *fakeHost {
	bus := core.NewEventBus()
	return &fakeHost{events: bus, window: &fakeWindow{events: bus}, frames: frames}
}

func (h *fakeHost) Startup(name string, x, y, width, height int) error {
	h.started++
	h.startTitle = name
	return h.startErr
}
func (h *fakeHost) Window() platform.Window { return h.window }
func (h *fakeHost) Events() *core.EventBus  { return h.events }
func (h *fakeHost) PumpMessages() bool {
	h.pumps++
	if h.onPump != nil {
		h.onPump(h.pumps)
	}
	return h.pumps <= h.frames
}
func (h *fakeHost) Shutdown() error {
	h.shutdowns++
	return nil
}

type fakeApp struct {
	calls     []string
	setupErr  error
	updateErr error
	renderErr error
	sizes     [][2]int
	teardowns int
}

func (a *fakeApp) Options() Options {
	return Options{Name: "Test", StartWidth: 800, StartHeight: 600}
}
func (a *fakeApp) Setup(window platform.Window) error {
	a.calls = append(a.calls, "setup")
	return a.setupErr
}
func (a *fakeApp) Update(dt float64, width, height int) error {
	a.calls = append(a.calls, "update")
	a.sizes = append(a.sizes, [2]int{width, height})
	return a.updateErr
}
func (a *fakeApp) Render() error {
	a.calls = append(a.calls, "render")
	return a.renderErr
}
func (a *fakeApp) Teardown() {
	a.calls = append(a.calls, "teardown")
	a.teardowns++
}

func startEngine(t *testing.T, app *fakeApp, host *fakeHost) *Engine {
	t.Helper()
	e, err := New(app, host)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return e
}

func TestRunCallsUpdateBeforeRender(t *testing.T) {
	app := &fakeApp{}
	host := newFakeHost(3)
	e := startEngine(t, app, host)

	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	want := "setup update render update render update render teardown"
	if got := strings.Join(app.calls, " "); got != want {
		t.Errorf("calls = %q, want %q", got, want)
	}
	if host.startTitle != "Test" {
		t.Errorf("window title = %q", host.startTitle)
	}
	if app.sizes[0] != [2]int{800, 600} {
		t.Errorf("first frame size = %v", app.sizes[0])
	}
}

func TestRunStopsOnFirstError(t *testing.T) {
	tests := []struct {
		name  string
		app   *fakeApp
		calls string
	}{
		{"update", &fakeApp{updateErr: errors.New("boom")}, "setup update"},
		{"render", &fakeApp{renderErr: errors.New("boom")}, "setup update render"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := startEngine(t, tt.app, newFakeHost(10))
			err := e.Run()
			if err == nil || !strings.Contains(err.Error(), "boom") {
				t.Fatalf("Run error = %v", err)
			}
			if got := strings.Join(tt.app.calls, " "); got != tt.calls {
				t.Errorf("calls = %q, want %q", got, tt.calls)
			}
		})
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	app := &fakeApp{}
	host := newFakeHost(0)
	e := startEngine(t, app, host)

	for i := 0; i < 3; i++ {
		if err := e.Shutdown(); err != nil {
			t.Fatalf("Shutdown: %v", err)
		}
	}
	if app.teardowns != 1 || host.shutdowns != 1 {
		t.Errorf("teardowns = %d, host shutdowns = %d", app.teardowns, host.shutdowns)
	}
	if e.Stage() != EngineStageStopped {
		t.Errorf("stage = %d", e.Stage())
	}
}

func TestShutdownReleasesEventListeners(t *testing.T) {
	host := newFakeHost(0)
	e := startEngine(t, &fakeApp{}, host)
	quit := core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT}
	if !host.events.Fire(quit) {
		t.Fatal("quit not handled by a running engine")
	}
	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if host.events.Fire(quit) {
		t.Error("quit still handled after Shutdown")
	}
}

func TestSetupFailureStillTearsDown(t *testing.T) {
	app := &fakeApp{setupErr: errors.New("no gpu")}
	host := newFakeHost(1)
	e, err := New(app, host)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Initialize(); err == nil {
		t.Fatal("expected setup error")
	}
	if err := e.Run(); err == nil {
		t.Error("Run should refuse an engine that failed to initialize")
	}
	_ = e.Shutdown()
	if app.teardowns != 1 || host.shutdowns != 1 {
		t.Errorf("teardowns = %d, host shutdowns = %d", app.teardowns, host.shutdowns)
	}
}

func TestStartupFailureSkipsTeardown(t *testing.T) {
	app := &fakeApp{}
	host := newFakeHost(1)
	host.startErr = errors.New("no display")
	e, _ := New(app, host)
	if err := e.Initialize(); err == nil {
		t.Fatal("expected startup error")
	}
	_ = e.Shutdown()
	if app.teardowns != 0 || host.shutdowns != 0 {
		t.Errorf("teardowns = %d, host shutdowns = %d", app.teardowns, host.shutdowns)
	}
}

func TestEscapeQuits(t *testing.T) {
	app := &fakeApp{}
	host := newFakeHost(100)
	host.onPump = func(n int) {
		if n == 3 {
			host.events.Fire(core.EventContext{Type: core.EVENT_CODE_KEY_PRESSED, Data: &core.KeyEvent{KeyCode: core.KEY_ESCAPE}})
		}
	}
	e := startEngine(t, app, host)
	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(app.sizes) != 2 {
		t.Errorf("frames = %d, want 2", len(app.sizes))
	}
}

func TestMinimizedWindowSkipsFrames(t *testing.T) {
	app := &fakeApp{}
	host := newFakeHost(6)
	host.onPump = func(n int) {
		switch n {
		case 2:
			host.events.Fire(core.EventContext{Type: core.EVENT_CODE_RESIZED, Data: &core.SystemEvent{}})
		case 5:
			host.events.Fire(core.EventContext{Type: core.EVENT_CODE_RESIZED, Data: &core.SystemEvent{WindowWidth: 1024, WindowHeight: 768}})
		}
	}
	e := startEngine(t, app, host)
	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// frames 1, 5 and 6 run, 2 to 4 are suspended
	if len(app.sizes) != 3 {
		t.Fatalf("frames = %d, want 3", len(app.sizes))
	}
	if app.sizes[2] != [2]int{1024, 768} {
		t.Errorf("size after restore = %v", app.sizes[2])
	}
}

func TestRequestQuitFromAnotherGoroutine(t *testing.T) {
	app := &fakeApp{}
	host := newFakeHost(1 << 30)
	e := startEngine(t, app, host)

	done := make(chan struct{})
	host.onPump = func(n int) {
		if n == 5 {
			go func() {
				e.RequestQuit()
				close(done)
			}()
			<-done
		}
	}
	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(app.sizes) != 4 {
		t.Errorf("frames = %d, want 4", len(app.sizes))
	}
}

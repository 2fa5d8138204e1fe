package ui

import (
	"fmt"
	"sync"

	"github.com/inkyblackness/imgui-go/v4"
	"github.com/spaghettifunk/subpasses/engine/core"
	"github.com/spaghettifunk/subpasses/engine/platform"
	"github.com/spaghettifunk/subpasses/engine/renderer"
)

const DefaultIniFile = "out/imgui.ini"

type OverlayOptions struct {
	// IniFile is where ImGui keeps window positions. Empty disables it.
	IniFile string
}

// FrameStats describes the ImGui geometry of one frame.
type FrameStats struct {
	Lists    int
	Commands int
	Vertices int
	Indices  int
}

// Overlay runs an ImGui context on top of a renderer. It feeds mouse input
// from the window events and hands the draw data to the renderer per image.
type Overlay struct {
	context *imgui.Context
	io      imgui.IO
	events  *core.EventBus
	target  renderer.Context

	// stats per swapchain image
	frames  []FrameStats
	pending FrameStats
	inFrame bool

	handlers map[core.SystemEventCode]core.FnOnEvent

	destroyOnce sync.Once
}

func NewOverlay(window platform.Window, target renderer.Context, opts OverlayOptions) (*Overlay, error) {
	if window == nil || target == nil {
		return nil, fmt.Errorf("overlay needs a window and a renderer context")
	}
	o := &Overlay{
		context: imgui.CreateContext(nil),
		events:  window.Events(),
		target:  target,
		frames:  make([]FrameStats, target.ImageCount()),
	}
	o.io = imgui.CurrentIO()
	o.io.SetIniFilename(opts.IniFile)

	fonts := o.io.Fonts()
	atlas := fonts.TextureDataRGBA32()
	fonts.SetTextureID(imgui.TextureID(1))
	core.LogDebug("imgui font atlas built: %dx%d", atlas.Width, atlas.Height)

	o.handlers = map[core.SystemEventCode]core.FnOnEvent{
		core.EVENT_CODE_MOUSE_MOVED:     o.onMouseMoved,
		core.EVENT_CODE_BUTTON_PRESSED:  o.onButton,
		core.EVENT_CODE_BUTTON_RELEASED: o.onButton,
		core.EVENT_CODE_MOUSE_WHEEL:     o.onWheel,
	}
	if o.events != nil {
		for code, fn := range o.handlers {
			o.events.Register(code, o, fn)
		}
	}

	core.LogInfo("UI overlay created on %s with %d images", target.DeviceName(), len(o.frames))
	return o, nil
}

func (o *Overlay) onMouseMoved(ctx core.EventContext) bool {
	if ev, ok := ctx.Data.(*core.MouseEvent); ok {
		o.io.SetMousePosition(imgui.Vec2{X: float32(ev.X), Y: float32(ev.Y)})
	}
	return false
}

func (o *Overlay) onButton(ctx core.EventContext) bool {
	ev, ok := ctx.Data.(*core.MouseEvent)
	if !ok || ev.Button > 4 {
		return false
	}
	o.io.SetMouseButtonDown(int(ev.Button), ctx.Type == core.EVENT_CODE_BUTTON_PRESSED)
	return o.io.WantCaptureMouse()
}

func (o *Overlay) onWheel(ctx core.EventContext) bool {
	if ev, ok := ctx.Data.(*core.MouseEvent); ok {
		o.io.AddMouseWheelDelta(0, float32(ev.Z))
	}
	return o.io.WantCaptureMouse()
}

// BeginFrame starts a UI frame and lets build declare its widgets.
func (o *Overlay) BeginFrame(deltaTime float64, width, height int, build func(Builder)) error {
	if o.context == nil {
		return fmt.Errorf("overlay is destroyed")
	}
	if o.inFrame {
		return fmt.Errorf("overlay frame already begun")
	}
	if deltaTime <= 0 {
		deltaTime = 1.0 / 60.0
	}
	o.io.SetDisplaySize(imgui.Vec2{X: float32(width), Y: float32(height)})
	o.io.SetDeltaTime(float32(deltaTime))
	imgui.NewFrame()
	o.inFrame = true

	if build != nil {
		build(&ImguiBuilder{})
	}
	return nil
}

// EndFrame finalizes the draw data of the frame.
func (o *Overlay) EndFrame() error {
	if !o.inFrame {
		return fmt.Errorf("overlay frame not begun")
	}
	imgui.Render()
	o.inFrame = false
	o.pending = drawDataStats(imgui.RenderedDrawData())
	return nil
}

// Draw records the last ended frame into the command buffer of image index.
func (o *Overlay) Draw(index int, cmds renderer.CommandBuffers) error {
	if cmds == nil || index < 0 || index >= cmds.Len() || cmds.Buffer(index) == nil {
		return fmt.Errorf("no command buffer for image %d", index)
	}
	if index >= len(o.frames) {
		// the swapchain grew on resize
		o.frames = append(o.frames, make([]FrameStats, index+1-len(o.frames))...)
	}
	o.frames[index] = o.pending
	return nil
}

// Stats returns what was drawn into image index.
func (o *Overlay) Stats(index int) FrameStats {
	if index < 0 || index >= len(o.frames) {
		return FrameStats{}
	}
	return o.frames[index]
}

func (o *Overlay) Destroy() {
	o.destroyOnce.Do(func() {
		if o.events != nil {
			for code := range o.handlers {
				o.events.Unregister(code, o)
			}
		}
		if o.inFrame {
			imgui.EndFrame()
			o.inFrame = false
		}
		o.context.Destroy()
		o.context = nil
		core.LogDebug("UI overlay destroyed")
	})
}

func drawDataStats(data imgui.DrawData) FrameStats {
	var stats FrameStats
	if !data.Valid() {
		return stats
	}
	vertexSize, _, _, _ := imgui.VertexBufferLayout()
	indexSize := imgui.IndexBufferLayout()
	for _, list := range data.CommandLists() {
		stats.Lists++
		stats.Commands += len(list.Commands())
		_, vertexBytes := list.VertexBuffer()
		_, indexBytes := list.IndexBuffer()
		stats.Vertices += vertexBytes / vertexSize
		stats.Indices += indexBytes / indexSize
	}
	return stats
}

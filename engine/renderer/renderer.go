// Package renderer describes the deferred renderer the application drives,
// independent of the graphics API implementing it.
package renderer

import (
	"fmt"
	"path"

	"github.com/spaghettifunk/subpasses/engine/scene"
)

// Format is a G-buffer attachment format.
type Format int

const (
	FormatUndefined Format = iota
	FormatR8G8B8A8Unorm
	FormatA2R10G10B10UnormPack32
	FormatR32G32B32A32Sfloat
)

func (f Format) String() string {
	switch f {
	case FormatR8G8B8A8Unorm:
		return "R8G8B8A8_UNORM"
	case FormatA2R10G10B10UnormPack32:
		return "A2R10G10B10_UNORM_PACK32"
	case FormatR32G32B32A32Sfloat:
		return "R32G32B32A32_SFLOAT"
	default:
		return "UNDEFINED"
	}
}

// Version is a graphics API version.
type Version struct {
	Major, Minor, Patch uint32
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// GPURequirements are the capabilities a device must offer to be selected.
type GPURequirements struct {
	Version Version
	// SRGBSurface asks for an sRGB swapchain format.
	SRGBSurface bool
	MeshShader  bool
	RayTracing  bool
	// TenBitOutput asks for a 10-bit swapchain format.
	TenBitOutput bool
	// LowLatency prefers mailbox presentation over FIFO.
	LowLatency bool
	Depth      bool
	// ShaderPrintf enables debug printf from shaders.
	ShaderPrintf bool
}

// GBufferConfig selects how the G-buffer attachments are allocated.
type GBufferConfig struct {
	// UseTransient requests attachments that live in tile memory only.
	UseTransient      bool
	ColorFormat       Format
	NormalDepthFormat Format
}

type PassMode int

const (
	// PassModeSubpasses runs geometry and lighting as two subpasses of one render pass.
	PassModeSubpasses PassMode = iota
	// PassModeMultiPass runs geometry and lighting as two render passes.
	PassModeMultiPass
)

func (m PassMode) String() string {
	if m == PassModeSubpasses {
		return "subpasses"
	}
	return "multi-pass"
}

// ShaderSet names the task, mesh and fragment SPIR-V binaries of a program.
type ShaderSet struct {
	Name     string
	Task     string
	Mesh     string
	Fragment string
}

const (
	shaderRoot = "shaders/output"
	shaderApp  = "hala-subpasses/HALA_SUBPASSES"
)

// ShaderDir is the directory the compiled shaders are read from.
func ShaderDir(debug bool) string {
	flavor := "release"
	if debug {
		flavor = "debug"
	}
	return path.Join(shaderRoot, flavor, shaderApp)
}

// DefaultShaderSet returns the shader set used by the deferred renderer.
func DefaultShaderSet(debug bool) ShaderSet {
	dir := ShaderDir(debug)
	return ShaderSet{
		Name:     "default",
		Task:     path.Join(dir, "default.as_6_8.spv"),
		Mesh:     path.Join(dir, "default.ms_6_8.spv"),
		Fragment: path.Join(dir, "default.ps_6_8.spv"),
	}
}

// Files returns the binaries of the set in task, mesh, fragment order.
func (s ShaderSet) Files() []string {
	return []string{s.Task, s.Mesh, s.Fragment}
}

// CommandBuffers exposes the per-image command buffers recorded by the renderer.
type CommandBuffers interface {
	Len() int
	Buffer(index int) any
}

// DrawFunc lets a caller record commands into the buffer of image index.
// It is called inside the final pass of the frame.
type DrawFunc func(index int, cmds CommandBuffers) error

// Context is the shared GPU state other renderers, like the UI overlay, bind to.
type Context interface {
	DeviceName() string
	ImageCount() int
}

// Renderer is a deferred renderer.
type Renderer interface {
	CreateGBufferImages(cfg GBufferConfig) error
	CreateRenderPass(mode PassMode) error
	PushShadersWithFile(set ShaderSet) error
	SetScene(s *scene.Scene) error
	// Commit uploads the scene and builds whatever depends on the steps above.
	Commit() error
	Context() Context
	// Update records the frame. draw may be nil.
	Update(deltaTime float64, width, height int, draw DrawFunc) error
	// Render submits the recorded frame and presents it.
	Render() error
	// WaitIdle blocks until the GPU has finished all submitted work.
	WaitIdle() error
	Destroy() error
}

package vulkan

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/subpasses/engine/assets"
	"github.com/spaghettifunk/subpasses/engine/assets/loaders"
	"github.com/spaghettifunk/subpasses/engine/core"
	"github.com/spaghettifunk/subpasses/engine/platform"
	"github.com/spaghettifunk/subpasses/engine/renderer"
	"github.com/spaghettifunk/subpasses/engine/renderer/metadata"
	"github.com/spaghettifunk/subpasses/engine/scene"
)

const validationLayer = "VK_LAYER_KHRONOS_validation"

// Options configures a VulkanRenderer.
type Options struct {
	AppName      string
	Window       platform.Window
	Requirements renderer.GPURequirements
	// Assets loads shader binaries. When nil they are read straight from disk.
	Assets *assets.AssetManager
}

type VulkanRenderer struct {
	window  platform.Window
	req     renderer.GPURequirements
	assets  *assets.AssetManager
	context *VulkanContext
	debug   bool

	FrameNumber uint64

	gbufferConfig  *renderer.GBufferConfig
	passMode       renderer.PassMode
	shaders        []*VulkanShader
	scene          *scene.Scene
	viewProjection mgl32.Mat4

	committed  bool
	frameReady bool
	destroyed  bool
}

var _ renderer.Renderer = (*VulkanRenderer)(nil)

// New brings up the instance, surface, device, swapchain, command buffers and
// sync objects. Anything created before a failure is released again.
func New(opts Options) (*VulkanRenderer, error) {
	if opts.Window == nil {
		return nil, fmt.Errorf("vulkan renderer needs a window")
	}
	vr := &VulkanRenderer{
		window: opts.Window,
		req:    opts.Requirements,
		assets: opts.Assets,
		debug:  core.DebugBuild,
		context: &VulkanContext{
			Locks: NewVulkanLockPool(),
		},
	}
	if err := vr.initialize(opts.AppName); err != nil {
		_ = vr.Destroy()
		return nil, err
	}
	if vr.assets != nil {
		vr.assets.OnChange(func(info assets.AssetInfo, op assets.ChangeOp) {
			if info.Type == metadata.ResourceTypeShader {
				core.LogInfo("shader %s %s, applies on next launch", info.Path, op)
			}
		})
	}
	return vr, nil
}

func (vr *VulkanRenderer) initialize(appName string) error {
	procAddr := vr.window.InstanceProcAddr()
	if procAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vk: %w", err)
	}

	width, height := vr.window.Size()
	vr.context.FramebufferWidth = uint32(width)
	vr.context.FramebufferHeight = uint32(height)

	if err := vr.createInstance(appName); err != nil {
		return err
	}

	if vr.debug {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if res := vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, vr.context.Allocator, &dbg); res != vk.Success {
			return vkError("vkCreateDebugReportCallbackEXT", res)
		}
		vr.context.debugMessenger = dbg
		core.LogDebug("Vulkan debugger created.")
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.window.CreateSurface(vr.context.Instance)
	if err != nil {
		return fmt.Errorf("vulkan surface creation failed: %w", err)
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(vr.context, vr.req); err != nil {
		return err
	}

	sc, err := SwapchainCreate(vr.context, vr.req, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc

	if err := vr.createCommandBuffers(); err != nil {
		return err
	}
	if err := vr.createSyncObjects(); err != nil {
		return err
	}

	core.LogInfo("Vulkan renderer initialized successfully on %s.", vr.context.DeviceName())
	return nil
}

func (vr *VulkanRenderer) createInstance(appName string) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(int(vr.req.Version.Major), int(vr.req.Version.Minor), int(vr.req.Version.Patch))),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("subpasses"),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// Obtain a list of required extensions
	extensions := vr.window.RequiredInstanceExtensions()
	if runtime.GOOS == "darwin" {
		extensions = append(extensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	var layers []string
	if vr.debug {
		extensions = append(extensions, vk.ExtDebugReportExtensionName)
		available, err := instanceLayerNames()
		if err != nil {
			return err
		}
		if missing := missingExtensions([]string{validationLayer}, available); len(missing) > 0 {
			core.LogWarn("validation layer %s is not installed, continuing without it", validationLayer)
		} else {
			core.LogInfo("Validation layers enabled.")
			layers = append(layers, validationLayer)
		}
	}
	core.LogDebug("Required instance extensions: %v", extensions)

	createInfo.EnabledExtensionCount = uint32(len(extensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(extensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &instance); res != vk.Success {
		return vkError("vkCreateInstance", res)
	}
	vr.context.Instance = instance
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		return err
	}
	core.LogInfo("Vulkan Instance created.")
	return nil
}

func instanceLayerNames() ([]string, error) {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return nil, vkError("vkEnumerateInstanceLayerProperties", res)
	}
	if count == 0 {
		return nil, nil
	}
	props := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, props); res != vk.Success {
		return nil, vkError("vkEnumerateInstanceLayerProperties", res)
	}
	names := make([]string, 0, count)
	for i := range props {
		props[i].Deref()
		names = append(names, vk.ToString(props[i].LayerName[:]))
	}
	return names, nil
}

func (vr *VulkanRenderer) createSyncObjects() error {
	frames := int(vr.context.Swapchain.MaxFramesInFlight)
	vr.context.ImageAvailableSemaphores = make([]vk.Semaphore, frames)
	vr.context.QueueCompleteSemaphores = make([]vk.Semaphore, frames)
	vr.context.InFlightFences = make([]*VulkanFence, frames)

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	for i := 0; i < frames; i++ {
		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.ImageAvailableSemaphores[i]); res != vk.Success {
			return vkError("vkCreateSemaphore image available", res)
		}
		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.QueueCompleteSemaphores[i]); res != vk.Success {
			return vkError("vkCreateSemaphore queue complete", res)
		}
		// Create the fence in a signaled state, indicating that the first frame has already been "rendered".
		// This will prevent the application from waiting indefinitely for the first frame to render since it
		// cannot be rendered until a frame is "rendered" before it.
		fence, err := NewFence(vr.context, true)
		if err != nil {
			return err
		}
		vr.context.InFlightFences[i] = fence
	}

	// In flight fences should not yet exist at this point, so clear the list.
	// These are stored in pointers because the initial state should be 0, and will be 0 when not in use.
	// Actual fences are not owned by this list.
	vr.context.ImagesInFlight = make([]*VulkanFence, vr.context.Swapchain.ImageCount)
	return nil
}

func (vr *VulkanRenderer) destroySyncObjects() {
	for i := range vr.context.ImageAvailableSemaphores {
		if vr.context.ImageAvailableSemaphores[i] != nil {
			vk.DestroySemaphore(vr.context.Device.LogicalDevice, vr.context.ImageAvailableSemaphores[i], vr.context.Allocator)
		}
	}
	for i := range vr.context.QueueCompleteSemaphores {
		if vr.context.QueueCompleteSemaphores[i] != nil {
			vk.DestroySemaphore(vr.context.Device.LogicalDevice, vr.context.QueueCompleteSemaphores[i], vr.context.Allocator)
		}
	}
	for _, fence := range vr.context.InFlightFences {
		if fence != nil {
			fence.Destroy(vr.context)
		}
	}
	vr.context.ImageAvailableSemaphores = nil
	vr.context.QueueCompleteSemaphores = nil
	vr.context.InFlightFences = nil
	vr.context.ImagesInFlight = nil
}

func (vr *VulkanRenderer) createCommandBuffers() error {
	vr.freeCommandBuffers()
	vr.context.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, vr.context.Swapchain.ImageCount)
	for i := range vr.context.GraphicsCommandBuffers {
		cb, err := NewVulkanCommandBuffer(vr.context, vr.context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		vr.context.GraphicsCommandBuffers[i] = cb
	}
	core.LogDebug("Vulkan command buffers created.")
	return nil
}

func (vr *VulkanRenderer) freeCommandBuffers() {
	for _, cb := range vr.context.GraphicsCommandBuffers {
		if cb != nil {
			cb.Free(vr.context, vr.context.Device.GraphicsCommandPool)
		}
	}
	vr.context.GraphicsCommandBuffers = nil
}

// CreateGBufferImages allocates the G-buffer at the swapchain size.
func (vr *VulkanRenderer) CreateGBufferImages(cfg renderer.GBufferConfig) error {
	if vr.destroyed || vr.context.Swapchain == nil {
		return core.ErrRendererNotReady
	}
	if vr.context.GBuffer != nil {
		vr.context.GBuffer.Destroy(vr.context)
		vr.context.GBuffer = nil
	}
	gb, err := GBufferCreate(vr.context, cfg, vr.context.Swapchain.Extent.Width, vr.context.Swapchain.Extent.Height)
	if err != nil {
		return err
	}
	vr.context.GBuffer = gb
	vr.gbufferConfig = &cfg
	return nil
}

// CreateRenderPass builds the deferred render pass(es) for the current G-buffer.
func (vr *VulkanRenderer) CreateRenderPass(mode renderer.PassMode) error {
	if vr.context.GBuffer == nil {
		return fmt.Errorf("%w: G-buffer images must exist before the render pass", core.ErrRendererNotReady)
	}
	if mode == renderer.PassModeMultiPass && vr.gbufferConfig.UseTransient {
		return fmt.Errorf("transient G-buffer attachments cannot be read by a separate render pass")
	}
	vr.passMode = mode
	return vr.createPasses()
}

func (vr *VulkanRenderer) createPasses() error {
	vr.destroyPasses()
	formats := vr.context.GBuffer.Formats(vr.context.Swapchain.ImageFormat.Format)
	for _, desc := range describeDeferredPasses(vr.passMode, formats) {
		pass, err := RenderpassCreate(vr.context, desc)
		if err != nil {
			vr.destroyPasses()
			return err
		}
		vr.context.Passes = append(vr.context.Passes, pass)
	}
	core.LogInfo("deferred render pass created in %s mode (%d passes)", vr.passMode, len(vr.context.Passes))
	return nil
}

func (vr *VulkanRenderer) destroyPasses() {
	for _, pass := range vr.context.Passes {
		pass.RenderpassDestroy(vr.context)
	}
	vr.context.Passes = nil
}

func (vr *VulkanRenderer) createFramebuffers() error {
	vr.destroyFramebuffers()
	for _, pass := range vr.context.Passes {
		fbs, err := FramebuffersCreate(vr.context, pass, vr.context.Swapchain, vr.context.GBuffer)
		if err != nil {
			vr.destroyFramebuffers()
			return err
		}
		vr.context.Framebuffers = append(vr.context.Framebuffers, fbs)
	}
	return nil
}

func (vr *VulkanRenderer) destroyFramebuffers() {
	for _, fbs := range vr.context.Framebuffers {
		for _, fb := range fbs {
			fb.Destroy(vr.context)
		}
	}
	vr.context.Framebuffers = nil
}

// PushShadersWithFile loads the SPIR-V binaries of set into shader modules.
func (vr *VulkanRenderer) PushShadersWithFile(set renderer.ShaderSet) error {
	if vr.destroyed || vr.context.Device == nil {
		return core.ErrRendererNotReady
	}
	shader, err := NewShader(vr.context, set, vr.loadShaderCode)
	if err != nil {
		return err
	}
	vr.shaders = append(vr.shaders, shader)
	return nil
}

func (vr *VulkanRenderer) loadShaderCode(path string) ([]uint32, error) {
	var (
		res *metadata.Resource
		err error
	)
	if vr.assets != nil {
		res, err = vr.assets.LoadAsset(path, nil)
	} else {
		res, err = (&loaders.BinaryLoader{}).Load(path, nil)
	}
	if err != nil {
		return nil, err
	}
	code, ok := res.Data.([]uint32)
	if !ok {
		return nil, fmt.Errorf("%s is not a shader binary", path)
	}
	return code, nil
}

func (vr *VulkanRenderer) SetScene(s *scene.Scene) error {
	if s == nil {
		return fmt.Errorf("scene is nil")
	}
	vr.scene = s
	vr.committed = false
	return nil
}

// Commit checks that every setup step ran and builds the framebuffers.
func (vr *VulkanRenderer) Commit() error {
	var missing []error
	if vr.context.GBuffer == nil {
		missing = append(missing, errors.New("no G-buffer images"))
	}
	if len(vr.context.Passes) == 0 {
		missing = append(missing, errors.New("no render pass"))
	}
	if len(vr.shaders) == 0 {
		missing = append(missing, errors.New("no shaders"))
	}
	if vr.scene == nil {
		missing = append(missing, errors.New("no scene"))
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %w", core.ErrRendererNotReady, errors.Join(missing...))
	}

	if err := vr.createFramebuffers(); err != nil {
		return err
	}
	extent := vr.context.Swapchain.Extent
	vr.viewProjection = sceneViewProjection(vr.scene, extent.Width, extent.Height)
	vr.committed = true
	core.LogInfo("renderer committed: %s", vr.scene)
	return nil
}

func (vr *VulkanRenderer) Context() renderer.Context {
	return vr.context
}

// Update records the commands of the next frame. A frame that cannot be
// recorded, because the window is minimized or the swapchain was rebuilt,
// is skipped and Render does nothing.
func (vr *VulkanRenderer) Update(deltaTime float64, width, height int, draw renderer.DrawFunc) error {
	if vr.destroyed || !vr.committed {
		return core.ErrRendererNotReady
	}
	vr.frameReady = false
	if width <= 0 || height <= 0 {
		return nil
	}
	if uint32(width) != vr.context.FramebufferWidth || uint32(height) != vr.context.FramebufferHeight {
		vr.context.FramebufferWidth = uint32(width)
		vr.context.FramebufferHeight = uint32(height)
		vr.context.FramebufferSizeGeneration++
		core.LogInfo("Vulkan renderer resized: w/h/gen: %d/%d/%d", width, height, vr.context.FramebufferSizeGeneration)
	}

	err := vr.beginFrame()
	if errors.Is(err, core.ErrSwapchainBooting) {
		return nil
	}
	if err != nil {
		return err
	}

	cb := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]
	last := len(vr.context.Passes) - 1
	for i, pass := range vr.context.Passes {
		pass.RenderpassBegin(cb, vr.context.Framebuffers[i][vr.context.ImageIndex].Handle, vr.context.Swapchain.Extent)
		for range pass.Description.Subpasses[1:] {
			pass.NextSubpass(cb)
		}
		if i == last && draw != nil {
			if err := draw(int(vr.context.ImageIndex), commandBuffers(vr.context.GraphicsCommandBuffers)); err != nil {
				pass.RenderpassEnd(cb)
				_ = cb.End()
				return err
			}
		}
		pass.RenderpassEnd(cb)
	}
	if err := cb.End(); err != nil {
		return err
	}
	vr.frameReady = true
	return nil
}

func (vr *VulkanRenderer) beginFrame() error {
	if vr.context.RecreatingSwapchain {
		return core.ErrSwapchainBooting
	}

	// Check if the framebuffer has been resized. If so, a new swapchain must be created.
	if vr.context.FramebufferSizeGeneration != vr.context.FramebufferSizeLastGeneration {
		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
		core.LogInfo("Resized, booting.")
		return core.ErrSwapchainBooting
	}

	// Wait for the execution of the current frame to complete. The fence being free will allow this one to move on.
	if err := vr.context.InFlightFences[vr.context.CurrentFrame].Wait(vr.context, math.MaxUint64); err != nil {
		return err
	}

	// Acquire the next image from the swap chain. Pass along the semaphore that should signaled when this completes.
	// This same semaphore will later be waited on by the queue submission to ensure this image is available.
	imageIndex, outdated, err := vr.context.Swapchain.SwapchainAcquireNextImageIndex(vr.context, math.MaxUint64, vr.context.ImageAvailableSemaphores[vr.context.CurrentFrame], nil)
	if err != nil {
		return err
	}
	if outdated {
		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
		return core.ErrSwapchainBooting
	}
	vr.context.ImageIndex = imageIndex

	// Begin recording commands.
	cb := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]
	if err := cb.Reset(); err != nil {
		return err
	}
	if err := cb.Begin(false, false, false); err != nil {
		return err
	}

	extent := vr.context.Swapchain.Extent
	viewport := vk.Viewport{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Extent: extent,
	}
	vk.CmdSetViewport(cb.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(cb.Handle, 0, 1, []vk.Rect2D{scissor})
	return nil
}

// Render submits the frame recorded by Update and presents it.
func (vr *VulkanRenderer) Render() error {
	if vr.destroyed || !vr.committed {
		return core.ErrRendererNotReady
	}
	if !vr.frameReady {
		return nil
	}
	vr.frameReady = false

	ctx := vr.context
	cb := ctx.GraphicsCommandBuffers[ctx.ImageIndex]

	// Make sure the previous frame is not using this image (i.e. its fence is being waited on)
	if inFlight := ctx.ImagesInFlight[ctx.ImageIndex]; inFlight != nil {
		if err := inFlight.Wait(ctx, math.MaxUint64); err != nil {
			return err
		}
	}
	// Mark the image fence as in-use by this frame.
	fence := ctx.InFlightFences[ctx.CurrentFrame]
	ctx.ImagesInFlight[ctx.ImageIndex] = fence

	// Reset the fence for use on the next frame
	if err := fence.Reset(ctx); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{ctx.QueueCompleteSemaphores[ctx.CurrentFrame]},
		// Wait semaphore ensures that the operation cannot begin until the image is available.
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{ctx.ImageAvailableSemaphores[ctx.CurrentFrame]},
		// VK_PIPELINE_STAGE_COLOR_ATTACHMENT_OUTPUT_BIT prevents subsequent colour attachment
		// writes from executing until the semaphore signals (i.e. one frame is presented at a time)
		PWaitDstStageMask: []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}
	err := ctx.Locks.SafeQueueCall(uint32(ctx.Device.GraphicsQueueIndex), func() error {
		return vkError("vkQueueSubmit", vk.QueueSubmit(ctx.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fence.Handle))
	})
	if err != nil {
		return err
	}
	cb.UpdateSubmitted()

	// Give the image back to the swapchain.
	var outdated bool
	err = ctx.Locks.SafeQueueCall(uint32(ctx.Device.PresentQueueIndex), func() error {
		var perr error
		outdated, perr = ctx.Swapchain.SwapchainPresent(ctx, ctx.Device.PresentQueue, ctx.QueueCompleteSemaphores[ctx.CurrentFrame], ctx.ImageIndex)
		return perr
	})
	if err != nil {
		return err
	}
	if outdated {
		// Rebuilt at the start of the next frame.
		ctx.FramebufferSizeGeneration++
	}
	vr.FrameNumber++
	return nil
}

func (vr *VulkanRenderer) recreateSwapchain() error {
	ctx := vr.context
	// If already being recreated, do not try again.
	if ctx.RecreatingSwapchain {
		return core.ErrSwapchainBooting
	}
	// Detect if the window is too small to be drawn to
	if ctx.FramebufferWidth == 0 || ctx.FramebufferHeight == 0 {
		return core.ErrSwapchainBooting
	}

	ctx.RecreatingSwapchain = true
	defer func() { ctx.RecreatingSwapchain = false }()

	if err := vr.WaitIdle(); err != nil {
		return err
	}

	err := ctx.Locks.SafeCall(SwapchainManagement, func() error {
		vr.destroyFramebuffers()
		sc, err := ctx.Swapchain.SwapchainRecreate(ctx, vr.req, ctx.FramebufferWidth, ctx.FramebufferHeight)
		if err != nil {
			ctx.Swapchain = nil
			return err
		}
		ctx.Swapchain = sc
		return nil
	})
	if err != nil {
		return err
	}

	if len(ctx.ImagesInFlight) != int(ctx.Swapchain.ImageCount) {
		if err := vr.createCommandBuffers(); err != nil {
			return err
		}
	}
	// Clear these out just in case.
	ctx.ImagesInFlight = make([]*VulkanFence, ctx.Swapchain.ImageCount)

	err = ctx.Locks.SafeCall(ImageManagement, func() error {
		return vr.CreateGBufferImages(*vr.gbufferConfig)
	})
	if err != nil {
		return err
	}
	if err := vr.createPasses(); err != nil {
		return err
	}
	if err := vr.createFramebuffers(); err != nil {
		return err
	}
	vr.viewProjection = sceneViewProjection(vr.scene, ctx.Swapchain.Extent.Width, ctx.Swapchain.Extent.Height)

	// Update framebuffer size generation.
	ctx.FramebufferSizeLastGeneration = ctx.FramebufferSizeGeneration
	return nil
}

// ViewProjection is the camera framing the committed scene.
func (vr *VulkanRenderer) ViewProjection() mgl32.Mat4 {
	return vr.viewProjection
}

func (vr *VulkanRenderer) WaitIdle() error {
	if vr.context.Device == nil || vr.context.Device.LogicalDevice == nil {
		return nil
	}
	return vr.context.Locks.SafeCall(DeviceManagement, func() error {
		return vkError("vkDeviceWaitIdle", vk.DeviceWaitIdle(vr.context.Device.LogicalDevice))
	})
}

// Destroy releases everything in the opposite order of creation. Calling it
// again is a no-op.
func (vr *VulkanRenderer) Destroy() error {
	if vr.destroyed {
		return nil
	}
	vr.destroyed = true
	vr.committed = false
	ctx := vr.context

	var err error
	if ctx.Device != nil && ctx.Device.LogicalDevice != nil {
		err = vr.WaitIdle()

		for _, shader := range vr.shaders {
			shader.Destroy(ctx)
		}
		vr.shaders = nil

		vr.destroyFramebuffers()
		vr.destroyPasses()
		if ctx.GBuffer != nil {
			ctx.GBuffer.Destroy(ctx)
			ctx.GBuffer = nil
		}
		vr.destroySyncObjects()
		vr.freeCommandBuffers()
		if ctx.Swapchain != nil {
			ctx.Swapchain.SwapchainDestroy(ctx)
			ctx.Swapchain = nil
		}
	}

	for _, name := range debugNames.live() {
		core.LogWarn("image %s was not destroyed", name)
	}

	if ctx.Device != nil {
		core.LogDebug("Destroying Vulkan device...")
		DeviceDestroy(ctx)
		ctx.Device = nil
	}

	if ctx.Surface != nil {
		core.LogDebug("Destroying Vulkan surface...")
		vk.DestroySurface(ctx.Instance, ctx.Surface, ctx.Allocator)
		ctx.Surface = nil
	}

	if ctx.debugMessenger != nil {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(ctx.Instance, ctx.debugMessenger, ctx.Allocator)
		ctx.debugMessenger = nil
	}

	if ctx.Instance != nil {
		core.LogDebug("Destroying Vulkan instance...")
		vk.DestroyInstance(ctx.Instance, ctx.Allocator)
		ctx.Instance = nil
	}
	return err
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	pMessage = describeObject(object, pMessage)
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		core.LogDebug("DEBUG: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		return vk.False
	}
	return vk.False
}

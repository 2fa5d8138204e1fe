package vulkan

import (
	"fmt"
	"math"
	"slices"

	vk "github.com/goki/vulkan"
	emath "github.com/spaghettifunk/subpasses/engine/math"
	"github.com/spaghettifunk/subpasses/engine/renderer"
)

// Device extensions that are not exposed as constants by the bindings.
const (
	extSwapchain              = "VK_KHR_swapchain"
	extPortabilitySubset      = "VK_KHR_portability_subset"
	extMeshShader             = "VK_EXT_mesh_shader"
	extRayTracingPipeline     = "VK_KHR_ray_tracing_pipeline"
	extAccelerationStructure  = "VK_KHR_acceleration_structure"
	extDeferredHostOperations = "VK_KHR_deferred_host_operations"
	extShaderNonSemanticInfo  = "VK_KHR_shader_non_semantic_info"
)

// Shader stages of the mesh shading pipeline (VK_EXT_mesh_shader).
const (
	shaderStageTaskBit vk.ShaderStageFlagBits = 0x00000040
	shaderStageMeshBit vk.ShaderStageFlagBits = 0x00000080
)

func toVkFormat(f renderer.Format) (vk.Format, error) {
	switch f {
	case renderer.FormatR8G8B8A8Unorm:
		return vk.FormatR8g8b8a8Unorm, nil
	case renderer.FormatA2R10G10B10UnormPack32:
		return vk.FormatA2r10g10b10UnormPack32, nil
	case renderer.FormatR32G32B32A32Sfloat:
		return vk.FormatR32g32b32a32Sfloat, nil
	}
	return vk.FormatUndefined, fmt.Errorf("unsupported G-buffer format %s", f)
}

// requiredDeviceExtensions lists the device extensions implied by req.
func requiredDeviceExtensions(req renderer.GPURequirements) []string {
	exts := []string{extSwapchain}
	if req.MeshShader {
		exts = append(exts, extMeshShader)
	}
	if req.RayTracing {
		exts = append(exts, extRayTracingPipeline, extAccelerationStructure, extDeferredHostOperations)
	}
	if req.ShaderPrintf {
		exts = append(exts, extShaderNonSemanticInfo)
	}
	return exts
}

// missingExtensions returns the entries of required not present in available.
func missingExtensions(required, available []string) []string {
	var missing []string
	for _, r := range required {
		if !slices.Contains(available, r) {
			missing = append(missing, r)
		}
	}
	return missing
}

// chooseSurfaceFormat picks the swapchain format. 10-bit output wins over
// sRGB when both are requested and available.
func chooseSurfaceFormat(formats []vk.SurfaceFormat, srgb, tenBit bool) (vk.SurfaceFormat, error) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, fmt.Errorf("surface reports no formats")
	}
	var preferred []vk.Format
	if tenBit {
		preferred = append(preferred, vk.FormatA2b10g10r10UnormPack32, vk.FormatA2r10g10b10UnormPack32)
	}
	if srgb {
		preferred = append(preferred, vk.FormatB8g8r8a8Srgb, vk.FormatR8g8b8a8Srgb)
	} else {
		preferred = append(preferred, vk.FormatB8g8r8a8Unorm, vk.FormatR8g8b8a8Unorm)
	}
	for _, want := range preferred {
		for _, f := range formats {
			if f.Format == want && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
				return f, nil
			}
		}
	}
	return formats[0], nil
}

// choosePresentMode prefers mailbox for low latency. FIFO is always available.
func choosePresentMode(modes []vk.PresentMode, lowLatency bool) vk.PresentMode {
	if lowLatency {
		if slices.Contains(modes, vk.PresentModeMailbox) {
			return vk.PresentModeMailbox
		}
		if slices.Contains(modes, vk.PresentModeImmediate) {
			return vk.PresentModeImmediate
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent uses the surface extent unless the window system lets the
// swapchain decide, in which case the requested size is clamped to the limits.
func chooseExtent(current, minExtent, maxExtent vk.Extent2D, width, height uint32) vk.Extent2D {
	if current.Width != math.MaxUint32 {
		return current
	}
	return vk.Extent2D{
		Width:  emath.Clamp(width, minExtent.Width, maxExtent.Width),
		Height: emath.Clamp(height, minExtent.Height, maxExtent.Height),
	}
}

// chooseImageCount asks for one image more than the minimum, within the maximum.
func chooseImageCount(minCount, maxCount uint32) uint32 {
	count := minCount + 1
	if maxCount > 0 && count > maxCount {
		count = maxCount
	}
	return count
}

// gbufferUsage returns the usage and memory flags of a G-buffer color attachment.
// Transient attachments never leave tile memory, so they are only read as
// input attachments within the same render pass.
func gbufferUsage(transient bool) (vk.ImageUsageFlags, vk.MemoryPropertyFlags) {
	if transient {
		return vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageInputAttachmentBit | vk.ImageUsageTransientAttachmentBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit | vk.MemoryPropertyLazilyAllocatedBit)
	}
	return vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageInputAttachmentBit | vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
}

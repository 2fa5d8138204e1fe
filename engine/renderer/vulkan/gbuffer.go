package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/subpasses/engine/core"
	"github.com/spaghettifunk/subpasses/engine/renderer"
)

// GBuffer holds the attachments written by the geometry stage and read by lighting.
type GBuffer struct {
	Config      renderer.GBufferConfig
	Color       *VulkanImage
	NormalDepth *VulkanImage
	Depth       *VulkanImage
}

func GBufferCreate(context *VulkanContext, cfg renderer.GBufferConfig, width, height uint32) (*GBuffer, error) {
	colorFormat, err := toVkFormat(cfg.ColorFormat)
	if err != nil {
		return nil, err
	}
	normalFormat, err := toVkFormat(cfg.NormalDepthFormat)
	if err != nil {
		return nil, err
	}
	if context.Device.DepthFormat == vk.FormatUndefined {
		return nil, fmt.Errorf("no supported depth format on %s", context.DeviceName())
	}

	usage, memory := gbufferUsage(cfg.UseTransient)
	depthUsage := vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit)
	depthMemory := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	if cfg.UseTransient {
		depthUsage |= vk.ImageUsageFlags(vk.ImageUsageTransientAttachmentBit)
		depthMemory |= vk.MemoryPropertyFlags(vk.MemoryPropertyLazilyAllocatedBit)
	}

	gb := &GBuffer{Config: cfg}
	colorAspect := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	if gb.Color, err = ImageCreate(context, "gbuffer-color", width, height, colorFormat, usage, memory, colorAspect); err != nil {
		gb.Destroy(context)
		return nil, err
	}
	if gb.NormalDepth, err = ImageCreate(context, "gbuffer-normal-depth", width, height, normalFormat, usage, memory, colorAspect); err != nil {
		gb.Destroy(context)
		return nil, err
	}
	if gb.Depth, err = ImageCreate(context, "gbuffer-depth", width, height, context.Device.DepthFormat, depthUsage, depthMemory, vk.ImageAspectFlags(vk.ImageAspectDepthBit)); err != nil {
		gb.Destroy(context)
		return nil, err
	}

	core.LogInfo("G-buffer created: color %s, normal/depth %s, transient %t", cfg.ColorFormat, cfg.NormalDepthFormat, cfg.UseTransient)
	return gb, nil
}

func (gb *GBuffer) Destroy(context *VulkanContext) {
	gb.Depth.ImageDestroy(context)
	gb.NormalDepth.ImageDestroy(context)
	gb.Color.ImageDestroy(context)
	gb.Depth, gb.NormalDepth, gb.Color = nil, nil, nil
}

// Formats returns the formats a deferred render pass needs for this G-buffer.
func (gb *GBuffer) Formats(swapchain vk.Format) deferredFormats {
	return deferredFormats{
		Swapchain:   swapchain,
		Color:       gb.Color.Format,
		NormalDepth: gb.NormalDepth.Format,
		Depth:       gb.Depth.Format,
	}
}

func (gb *GBuffer) view(kind attachmentKind) vk.ImageView {
	switch kind {
	case attachmentGBufferColor:
		return gb.Color.View
	case attachmentGBufferNormal:
		return gb.NormalDepth.View
	case attachmentDepth:
		return gb.Depth.View
	}
	return nil
}

package vulkan

import (
	vk "github.com/goki/vulkan"
)

type VulkanFramebuffer struct {
	Handle      vk.Framebuffer
	Attachments []vk.ImageView
	Renderpass  *VulkanRenderpass
}

func FramebufferCreate(context *VulkanContext, renderpass *VulkanRenderpass, width uint32, height uint32, attachments []vk.ImageView) (*VulkanFramebuffer, error) {
	outFramebuffer := &VulkanFramebuffer{
		Attachments: append([]vk.ImageView(nil), attachments...),
		Renderpass:  renderpass,
	}

	framebufferCreateInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderpass.Handle,
		AttachmentCount: uint32(len(outFramebuffer.Attachments)),
		PAttachments:    outFramebuffer.Attachments,
		Width:           width,
		Height:          height,
		Layers:          1,
	}

	var pFramebuffer vk.Framebuffer
	if res := vk.CreateFramebuffer(context.Device.LogicalDevice, &framebufferCreateInfo, context.Allocator, &pFramebuffer); res != vk.Success {
		return nil, vkError("vkCreateFramebuffer "+renderpass.Description.Name, res)
	}
	outFramebuffer.Handle = pFramebuffer
	return outFramebuffer, nil
}

// FramebuffersCreate builds one framebuffer per swapchain image for pass.
func FramebuffersCreate(context *VulkanContext, pass *VulkanRenderpass, swapchain *VulkanSwapchain, gbuffer *GBuffer) ([]*VulkanFramebuffer, error) {
	out := make([]*VulkanFramebuffer, 0, swapchain.ImageCount)
	for i := 0; i < int(swapchain.ImageCount); i++ {
		views := make([]vk.ImageView, len(pass.Description.Kinds))
		for j, kind := range pass.Description.Kinds {
			if kind == attachmentSwapchain {
				views[j] = swapchain.Views[i]
			} else {
				views[j] = gbuffer.view(kind)
			}
		}
		fb, err := FramebufferCreate(context, pass, swapchain.Extent.Width, swapchain.Extent.Height, views)
		if err != nil {
			for _, created := range out {
				created.Destroy(context)
			}
			return nil, err
		}
		out = append(out, fb)
	}
	return out, nil
}

func (vfb *VulkanFramebuffer) Destroy(context *VulkanContext) {
	if vfb.Handle != nil {
		vk.DestroyFramebuffer(context.Device.LogicalDevice, vfb.Handle, context.Allocator)
	}
	vfb.Attachments = nil
	vfb.Handle = nil
	vfb.Renderpass = nil
}

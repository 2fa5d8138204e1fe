package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/subpasses/engine/renderer"
)

// attachmentKind tells the framebuffer which image view fills an attachment slot.
type attachmentKind int

const (
	attachmentSwapchain attachmentKind = iota
	attachmentGBufferColor
	attachmentGBufferNormal
	attachmentDepth
)

type subpassDescription struct {
	Colors []vk.AttachmentReference
	Inputs []vk.AttachmentReference
	Depth  *vk.AttachmentReference
}

// passDescription is everything needed to create one render pass and its framebuffers.
type passDescription struct {
	Name         string
	Kinds        []attachmentKind
	Attachments  []vk.AttachmentDescription
	Subpasses    []subpassDescription
	Dependencies []vk.SubpassDependency
}

type deferredFormats struct {
	Swapchain   vk.Format
	Color       vk.Format
	NormalDepth vk.Format
	Depth       vk.Format
}

func colorAttachment(format vk.Format, store bool, finalLayout vk.ImageLayout) vk.AttachmentDescription {
	storeOp := vk.AttachmentStoreOpDontCare
	if store {
		storeOp = vk.AttachmentStoreOpStore
	}
	return vk.AttachmentDescription{
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        storeOp,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    finalLayout,
	}
}

func depthAttachment(format vk.Format) vk.AttachmentDescription {
	return vk.AttachmentDescription{
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
}

func externalDependency(dstSubpass uint32) vk.SubpassDependency {
	return vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    dstSubpass,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	}
}

// describeDeferredPasses lays out the geometry and lighting stages. With
// subpasses both live in one render pass and lighting reads the G-buffer as
// input attachments. Otherwise the geometry pass stores the G-buffer for a
// second render pass.
func describeDeferredPasses(mode renderer.PassMode, f deferredFormats) []passDescription {
	colorRef := func(i uint32) vk.AttachmentReference {
		return vk.AttachmentReference{Attachment: i, Layout: vk.ImageLayoutColorAttachmentOptimal}
	}
	inputRef := func(i uint32) vk.AttachmentReference {
		return vk.AttachmentReference{Attachment: i, Layout: vk.ImageLayoutShaderReadOnlyOptimal}
	}

	if mode == renderer.PassModeSubpasses {
		depthRef := vk.AttachmentReference{Attachment: 3, Layout: vk.ImageLayoutDepthStencilAttachmentOptimal}
		return []passDescription{{
			Name:  "deferred",
			Kinds: []attachmentKind{attachmentSwapchain, attachmentGBufferColor, attachmentGBufferNormal, attachmentDepth},
			Attachments: []vk.AttachmentDescription{
				colorAttachment(f.Swapchain, true, vk.ImageLayoutPresentSrc),
				colorAttachment(f.Color, false, vk.ImageLayoutColorAttachmentOptimal),
				colorAttachment(f.NormalDepth, false, vk.ImageLayoutColorAttachmentOptimal),
				depthAttachment(f.Depth),
			},
			Subpasses: []subpassDescription{
				{Colors: []vk.AttachmentReference{colorRef(1), colorRef(2)}, Depth: &depthRef},
				{Colors: []vk.AttachmentReference{colorRef(0)}, Inputs: []vk.AttachmentReference{inputRef(1), inputRef(2)}},
			},
			Dependencies: []vk.SubpassDependency{
				externalDependency(0),
				{
					SrcSubpass:      0,
					DstSubpass:      1,
					SrcStageMask:    vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
					DstStageMask:    vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
					SrcAccessMask:   vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
					DstAccessMask:   vk.AccessFlags(vk.AccessInputAttachmentReadBit),
					DependencyFlags: vk.DependencyFlags(vk.DependencyByRegionBit),
				},
			},
		}}
	}

	depthRef := vk.AttachmentReference{Attachment: 2, Layout: vk.ImageLayoutDepthStencilAttachmentOptimal}
	return []passDescription{
		{
			Name:  "geometry",
			Kinds: []attachmentKind{attachmentGBufferColor, attachmentGBufferNormal, attachmentDepth},
			Attachments: []vk.AttachmentDescription{
				colorAttachment(f.Color, true, vk.ImageLayoutShaderReadOnlyOptimal),
				colorAttachment(f.NormalDepth, true, vk.ImageLayoutShaderReadOnlyOptimal),
				depthAttachment(f.Depth),
			},
			Subpasses: []subpassDescription{
				{Colors: []vk.AttachmentReference{colorRef(0), colorRef(1)}, Depth: &depthRef},
			},
			Dependencies: []vk.SubpassDependency{
				externalDependency(0),
				{
					SrcSubpass:    0,
					DstSubpass:    vk.SubpassExternal,
					SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
					DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
					SrcAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
					DstAccessMask: vk.AccessFlags(vk.AccessShaderReadBit),
				},
			},
		},
		{
			Name:  "lighting",
			Kinds: []attachmentKind{attachmentSwapchain},
			Attachments: []vk.AttachmentDescription{
				colorAttachment(f.Swapchain, true, vk.ImageLayoutPresentSrc),
			},
			Subpasses: []subpassDescription{
				{Colors: []vk.AttachmentReference{colorRef(0)}},
			},
			Dependencies: []vk.SubpassDependency{externalDependency(0)},
		},
	}
}

type VulkanRenderpass struct {
	Handle      vk.RenderPass
	Description passDescription
	R, G, B, A  float32
	Depth       float32
	Stencil     uint32
}

func RenderpassCreate(context *VulkanContext, desc passDescription) (*VulkanRenderpass, error) {
	subpasses := make([]vk.SubpassDescription, len(desc.Subpasses))
	for i, sp := range desc.Subpasses {
		subpasses[i] = vk.SubpassDescription{
			PipelineBindPoint:       vk.PipelineBindPointGraphics,
			ColorAttachmentCount:    uint32(len(sp.Colors)),
			PColorAttachments:       sp.Colors,
			InputAttachmentCount:    uint32(len(sp.Inputs)),
			PInputAttachments:       sp.Inputs,
			PDepthStencilAttachment: sp.Depth,
		}
	}

	createInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(desc.Attachments)),
		PAttachments:    desc.Attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(desc.Dependencies)),
		PDependencies:   desc.Dependencies,
	}

	var handle vk.RenderPass
	if res := vk.CreateRenderPass(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); res != vk.Success {
		return nil, vkError("vkCreateRenderPass "+desc.Name, res)
	}
	return &VulkanRenderpass{
		Handle:      handle,
		Description: desc,
		B:           0.2,
		A:           1.0,
		Depth:       1.0,
	}, nil
}

func (vr *VulkanRenderpass) RenderpassDestroy(context *VulkanContext) {
	if vr.Handle != nil {
		vk.DestroyRenderPass(context.Device.LogicalDevice, vr.Handle, context.Allocator)
		vr.Handle = nil
	}
}

func (vr *VulkanRenderpass) clearValues() []vk.ClearValue {
	values := make([]vk.ClearValue, len(vr.Description.Kinds))
	for i, kind := range vr.Description.Kinds {
		if kind == attachmentDepth {
			values[i].SetDepthStencil(vr.Depth, vr.Stencil)
		} else {
			values[i].SetColor([]float32{vr.R, vr.G, vr.B, vr.A})
		}
	}
	return values
}

func (vr *VulkanRenderpass) RenderpassBegin(commandBuffer *VulkanCommandBuffer, frameBuffer vk.Framebuffer, extent vk.Extent2D) {
	clearValues := vr.clearValues()
	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  vr.Handle,
		Framebuffer: frameBuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}

	vk.CmdBeginRenderPass(commandBuffer.Handle, &beginInfo, vk.SubpassContentsInline)
	commandBuffer.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
}

func (vr *VulkanRenderpass) NextSubpass(commandBuffer *VulkanCommandBuffer) {
	vk.CmdNextSubpass(commandBuffer.Handle, vk.SubpassContentsInline)
}

func (vr *VulkanRenderpass) RenderpassEnd(commandBuffer *VulkanCommandBuffer) {
	vk.CmdEndRenderPass(commandBuffer.Handle)
	commandBuffer.State = COMMAND_BUFFER_STATE_RECORDING
}

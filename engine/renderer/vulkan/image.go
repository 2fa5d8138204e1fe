package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/subpasses/engine/core"
)

type VulkanImage struct {
	// Name identifies the image in logs and validation layer messages.
	Name   string
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Format vk.Format
	Width  uint32
	Height uint32
}

func ImageCreate(
	context *VulkanContext,
	label string,
	width, height uint32,
	format vk.Format,
	usage vk.ImageUsageFlags,
	memoryFlags vk.MemoryPropertyFlags,
	viewAspectFlags vk.ImageAspectFlags,
) (*VulkanImage, error) {
	img := &VulkanImage{
		Name:   imageDebugName(label),
		Format: format,
		Width:  width,
		Height: height,
	}

	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        vk.ImageTilingOptimal,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         usage,
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}
	if res := vk.CreateImage(context.Device.LogicalDevice, &imageCreateInfo, context.Allocator, &img.Handle); res != vk.Success {
		return nil, vkError("vkCreateImage "+img.Name, res)
	}
	debugNames.set(imageHandle(img.Handle), img.Name)

	var memoryRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(context.Device.LogicalDevice, img.Handle, &memoryRequirements)
	memoryRequirements.Deref()

	memoryType := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, uint32(memoryFlags))
	if memoryType == -1 && memoryFlags&vk.MemoryPropertyFlags(vk.MemoryPropertyLazilyAllocatedBit) != 0 {
		// Not every device offers lazily allocated memory.
		core.LogWarn("no lazily allocated memory for %s, falling back to device local", img.Name)
		memoryType = context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, uint32(vk.MemoryPropertyDeviceLocalBit))
	}
	if memoryType == -1 {
		img.destroy(context)
		return nil, fmt.Errorf("required memory type not found for image %s", img.Name)
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: uint32(memoryType),
	}
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &img.Memory); res != vk.Success {
		img.destroy(context)
		return nil, vkError("vkAllocateMemory "+img.Name, res)
	}
	if res := vk.BindImageMemory(context.Device.LogicalDevice, img.Handle, img.Memory, 0); res != vk.Success {
		img.destroy(context)
		return nil, vkError("vkBindImageMemory "+img.Name, res)
	}

	viewCreateInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img.Handle,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: viewAspectFlags,
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	if res := vk.CreateImageView(context.Device.LogicalDevice, &viewCreateInfo, context.Allocator, &img.View); res != vk.Success {
		img.destroy(context)
		return nil, vkError("vkCreateImageView "+img.Name, res)
	}

	core.LogDebug("image %s created: %dx%d", img.Name, width, height)
	return img, nil
}

func (img *VulkanImage) ImageDestroy(context *VulkanContext) {
	if img == nil {
		return
	}
	img.destroy(context)
}

func (img *VulkanImage) destroy(context *VulkanContext) {
	if img.View != nil {
		vk.DestroyImageView(context.Device.LogicalDevice, img.View, context.Allocator)
		img.View = nil
	}
	if img.Memory != nil {
		vk.FreeMemory(context.Device.LogicalDevice, img.Memory, context.Allocator)
		img.Memory = nil
	}
	if img.Handle != nil {
		debugNames.remove(imageHandle(img.Handle))
		vk.DestroyImage(context.Device.LogicalDevice, img.Handle, context.Allocator)
		img.Handle = nil
	}
}

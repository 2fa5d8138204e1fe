package vulkan

import (
	"errors"
	"fmt"

	vk "github.com/goki/vulkan"
)

var errFenceTimeout = errors.New("fence wait timed out")

// VulkanFence tracks the signaled state on the host so waits on a fence
// already known to be signaled skip the driver call.
type VulkanFence struct {
	Handle     vk.Fence
	IsSignaled bool
}

func NewFence(context *VulkanContext, signaled bool) (*VulkanFence, error) {
	info := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var handle vk.Fence
	if res := vk.CreateFence(context.Device.LogicalDevice, &info, context.Allocator, &handle); res != vk.Success {
		return nil, vkError("vkCreateFence", res)
	}
	return &VulkanFence{Handle: handle, IsSignaled: signaled}, nil
}

func (vf *VulkanFence) Destroy(context *VulkanContext) {
	if vf.Handle != nil {
		vk.DestroyFence(context.Device.LogicalDevice, vf.Handle, context.Allocator)
		vf.Handle = nil
	}
	vf.IsSignaled = false
}

func (vf *VulkanFence) Wait(context *VulkanContext, timeoutNs uint64) error {
	if vf.IsSignaled {
		return nil
	}
	switch res := vk.WaitForFences(context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}, vk.True, timeoutNs); res {
	case vk.Success:
		vf.IsSignaled = true
		return nil
	case vk.Timeout:
		return fmt.Errorf("%w after %dns", errFenceTimeout, timeoutNs)
	default:
		return vkError("vkWaitForFences", res)
	}
}

// Reset returns the fence to the unsignaled state before a submit.
func (vf *VulkanFence) Reset(context *VulkanContext) error {
	if !vf.IsSignaled {
		return nil
	}
	if res := vk.ResetFences(context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}); res != vk.Success {
		return vkError("vkResetFences", res)
	}
	vf.IsSignaled = false
	return nil
}

package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/subpasses/engine/core"
	"github.com/spaghettifunk/subpasses/engine/renderer"
)

/**
 * @brief Represents a single shader stage.
 */
type VulkanShaderStage struct {
	Path   string
	Stage  vk.ShaderStageFlagBits
	Handle vk.ShaderModule
	/** @brief The pipeline shader stage creation info. */
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

// VulkanShader is a named set of stages making up one mesh shading program.
type VulkanShader struct {
	Name   string
	Stages []*VulkanShaderStage
}

// ShaderCodeFunc loads the SPIR-V words of a shader binary.
type ShaderCodeFunc func(path string) ([]uint32, error)

func NewShader(context *VulkanContext, set renderer.ShaderSet, load ShaderCodeFunc) (*VulkanShader, error) {
	shader := &VulkanShader{Name: set.Name}
	stages := []struct {
		path  string
		stage vk.ShaderStageFlagBits
	}{
		{set.Task, shaderStageTaskBit},
		{set.Mesh, shaderStageMeshBit},
		{set.Fragment, vk.ShaderStageFragmentBit},
	}
	for _, s := range stages {
		if s.path == "" {
			// task shaders are optional
			if s.stage == shaderStageTaskBit {
				continue
			}
			shader.Destroy(context)
			return nil, fmt.Errorf("shader %s is missing its %s stage", set.Name, stageName(s.stage))
		}
		code, err := load(s.path)
		if err != nil {
			shader.Destroy(context)
			return nil, fmt.Errorf("unable to read shader module %s: %w", s.path, err)
		}
		stage, err := NewShaderModule(context, s.path, code, s.stage)
		if err != nil {
			shader.Destroy(context)
			return nil, err
		}
		shader.Stages = append(shader.Stages, stage)
	}
	core.LogInfo("shader %s loaded with %d stages", set.Name, len(shader.Stages))
	return shader, nil
}

func NewShaderModule(context *VulkanContext, path string, code []uint32, stage vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: shaderCodeSize(code),
		PCode:    code,
	}

	out := &VulkanShaderStage{Path: path, Stage: stage}
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &out.Handle); res != vk.Success {
		return nil, vkError("vkCreateShaderModule "+path, res)
	}

	out.ShaderStageCreateInfo = vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: out.Handle,
		PName:  VulkanSafeString("main"),
	}
	return out, nil
}

// shaderCodeSize is the size in bytes of a SPIR-V binary.
func shaderCodeSize(code []uint32) uint64 {
	return uint64(len(code)) * 4
}

func (s *VulkanShader) Destroy(context *VulkanContext) {
	for _, stage := range s.Stages {
		if stage.Handle != nil {
			vk.DestroyShaderModule(context.Device.LogicalDevice, stage.Handle, context.Allocator)
			stage.Handle = nil
		}
	}
	s.Stages = nil
}

func stageName(stage vk.ShaderStageFlagBits) string {
	switch stage {
	case shaderStageTaskBit:
		return "task"
	case shaderStageMeshBit:
		return "mesh"
	case vk.ShaderStageFragmentBit:
		return "fragment"
	}
	return fmt.Sprintf("stage 0x%x", uint32(stage))
}

package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
)

func TestShaderCodeSize(t *testing.T) {
	tests := []struct {
		words int
		want  uint64
	}{
		{0, 0},
		{1, 4},
		{5, 20},
	}
	for _, tt := range tests {
		if got := shaderCodeSize(make([]uint32, tt.words)); got != tt.want {
			t.Errorf("shaderCodeSize(%d words) = %d, want %d", tt.words, got, tt.want)
		}
	}

	// the create info takes the byte size as is
	info := vk.ShaderModuleCreateInfo{CodeSize: shaderCodeSize(make([]uint32, 3))}
	if info.CodeSize != 12 {
		t.Errorf("CodeSize = %d", info.CodeSize)
	}
}

func TestStageName(t *testing.T) {
	tests := []struct {
		stage vk.ShaderStageFlagBits
		want  string
	}{
		{shaderStageTaskBit, "task"},
		{shaderStageMeshBit, "mesh"},
		{vk.ShaderStageFragmentBit, "fragment"},
	}
	for _, tt := range tests {
		if got := stageName(tt.stage); got != tt.want {
			t.Errorf("stageName(%d) = %q, want %q", tt.stage, got, tt.want)
		}
	}
}

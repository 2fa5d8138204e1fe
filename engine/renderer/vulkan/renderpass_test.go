package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/subpasses/engine/renderer"
)

var testFormats = deferredFormats{
	Swapchain:   vk.FormatB8g8r8a8Srgb,
	Color:       vk.FormatR8g8b8a8Unorm,
	NormalDepth: vk.FormatA2r10g10b10UnormPack32,
	Depth:       vk.FormatD32Sfloat,
}

func TestDescribeDeferredPassesSubpasses(t *testing.T) {
	passes := describeDeferredPasses(renderer.PassModeSubpasses, testFormats)
	if len(passes) != 1 {
		t.Fatalf("expected one render pass, got %d", len(passes))
	}
	p := passes[0]
	wantKinds := []attachmentKind{attachmentSwapchain, attachmentGBufferColor, attachmentGBufferNormal, attachmentDepth}
	if len(p.Kinds) != len(wantKinds) {
		t.Fatalf("kinds = %v", p.Kinds)
	}
	for i := range wantKinds {
		if p.Kinds[i] != wantKinds[i] {
			t.Errorf("kind %d = %d, want %d", i, p.Kinds[i], wantKinds[i])
		}
	}
	if len(p.Subpasses) != 2 {
		t.Fatalf("expected two subpasses, got %d", len(p.Subpasses))
	}

	geometry, lighting := p.Subpasses[0], p.Subpasses[1]
	if len(geometry.Colors) != 2 || geometry.Colors[0].Attachment != 1 || geometry.Colors[1].Attachment != 2 {
		t.Errorf("geometry colors = %+v", geometry.Colors)
	}
	if geometry.Depth == nil || geometry.Depth.Attachment != 3 {
		t.Errorf("geometry depth = %+v", geometry.Depth)
	}
	if len(lighting.Inputs) != 2 || lighting.Inputs[0].Attachment != 1 || lighting.Inputs[1].Attachment != 2 {
		t.Errorf("lighting inputs = %+v", lighting.Inputs)
	}
	if len(lighting.Colors) != 1 || lighting.Colors[0].Attachment != 0 {
		t.Errorf("lighting colors = %+v", lighting.Colors)
	}

	// G-buffer contents never leave the render pass.
	for i := 1; i <= 2; i++ {
		if p.Attachments[i].StoreOp != vk.AttachmentStoreOpDontCare {
			t.Errorf("attachment %d is stored", i)
		}
	}
	if p.Attachments[0].FinalLayout != vk.ImageLayoutPresentSrc {
		t.Errorf("swapchain final layout = %d", p.Attachments[0].FinalLayout)
	}

	var byRegion bool
	for _, dep := range p.Dependencies {
		if dep.SrcSubpass == 0 && dep.DstSubpass == 1 {
			byRegion = dep.DependencyFlags&vk.DependencyFlags(vk.DependencyByRegionBit) != 0
		}
	}
	if !byRegion {
		t.Error("geometry to lighting dependency is not by region")
	}
}

func TestDescribeDeferredPassesMultiPass(t *testing.T) {
	passes := describeDeferredPasses(renderer.PassModeMultiPass, testFormats)
	if len(passes) != 2 {
		t.Fatalf("expected two render passes, got %d", len(passes))
	}
	geometry, lighting := passes[0], passes[1]
	if geometry.Name != "geometry" || lighting.Name != "lighting" {
		t.Errorf("names = %s, %s", geometry.Name, lighting.Name)
	}
	for i := 0; i < 2; i++ {
		a := geometry.Attachments[i]
		if a.StoreOp != vk.AttachmentStoreOpStore {
			t.Errorf("geometry attachment %d not stored", i)
		}
		if a.FinalLayout != vk.ImageLayoutShaderReadOnlyOptimal {
			t.Errorf("geometry attachment %d final layout = %d", i, a.FinalLayout)
		}
	}
	if geometry.Attachments[0].Format != testFormats.Color || geometry.Attachments[1].Format != testFormats.NormalDepth {
		t.Error("geometry formats do not follow the G-buffer")
	}
	if len(lighting.Kinds) != 1 || lighting.Kinds[0] != attachmentSwapchain {
		t.Errorf("lighting kinds = %v", lighting.Kinds)
	}
	for _, p := range passes {
		if len(p.Subpasses) != 1 {
			t.Errorf("%s has %d subpasses", p.Name, len(p.Subpasses))
		}
	}
}

func TestClearValuesFollowKinds(t *testing.T) {
	pass := &VulkanRenderpass{
		Description: describeDeferredPasses(renderer.PassModeSubpasses, testFormats)[0],
		Depth:       1,
	}
	if got := len(pass.clearValues()); got != 4 {
		t.Errorf("clear values = %d, want 4", got)
	}
}

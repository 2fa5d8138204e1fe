package renderer

import "testing"

func TestDefaultShaderSet(t *testing.T) {
	tests := []struct {
		debug bool
		want  ShaderSet
	}{
		{true, ShaderSet{
			Name:     "default",
			Task:     "shaders/output/debug/hala-subpasses/HALA_SUBPASSES/default.as_6_8.spv",
			Mesh:     "shaders/output/debug/hala-subpasses/HALA_SUBPASSES/default.ms_6_8.spv",
			Fragment: "shaders/output/debug/hala-subpasses/HALA_SUBPASSES/default.ps_6_8.spv",
		}},
		{false, ShaderSet{
			Name:     "default",
			Task:     "shaders/output/release/hala-subpasses/HALA_SUBPASSES/default.as_6_8.spv",
			Mesh:     "shaders/output/release/hala-subpasses/HALA_SUBPASSES/default.ms_6_8.spv",
			Fragment: "shaders/output/release/hala-subpasses/HALA_SUBPASSES/default.ps_6_8.spv",
		}},
	}
	for _, tt := range tests {
		if got := DefaultShaderSet(tt.debug); got != tt.want {
			t.Errorf("DefaultShaderSet(%t) = %+v, want %+v", tt.debug, got, tt.want)
		}
	}
}

func TestFormatString(t *testing.T) {
	if got := FormatA2R10G10B10UnormPack32.String(); got != "A2R10G10B10_UNORM_PACK32" {
		t.Errorf("String() = %q", got)
	}
	if got := Format(99).String(); got != "UNDEFINED" {
		t.Errorf("String() = %q", got)
	}
	if got := (Version{1, 3, 0}).String(); got != "1.3.0" {
		t.Errorf("Version.String() = %q", got)
	}
}

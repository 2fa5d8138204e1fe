package vulkan

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/subpasses/engine/scene"
)

func TestSceneViewProjectionCentersScene(t *testing.T) {
	s := &scene.Scene{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{3, 1, 1}}
	vp := sceneViewProjection(s, 1280, 720)

	clip := vp.Mul4x1(s.Center().Vec4(1))
	if clip.W() <= 0 {
		t.Fatalf("center is behind the camera: %v", clip)
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	if mgl32.Abs(ndc.X()) > 1e-4 || mgl32.Abs(ndc.Y()) > 1e-4 {
		t.Errorf("center projects to %v, want the origin", ndc)
	}
	if ndc.Z() < 0 || ndc.Z() > 1 {
		t.Errorf("center depth %f outside the clip range", ndc.Z())
	}
}

func TestSceneViewProjectionEmptyScene(t *testing.T) {
	vp := sceneViewProjection(&scene.Scene{}, 0, 0)
	for i, v := range vp {
		if v != v {
			t.Fatalf("element %d is NaN", i)
		}
	}
}

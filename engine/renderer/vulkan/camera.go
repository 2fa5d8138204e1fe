package vulkan

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/subpasses/engine/math"
	"github.com/spaghettifunk/subpasses/engine/renderer/components"
	"github.com/spaghettifunk/subpasses/engine/scene"
)

// sceneViewProjection frames the bounds of s from the +Z side.
func sceneViewProjection(s *scene.Scene, width, height uint32) mgl32.Mat4 {
	camera := components.NewCamera()
	camera.Frame(s.Center(), s.Radius())
	return camera.ViewProjection(math.AspectRatio(width, height))
}

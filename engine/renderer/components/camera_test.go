package components

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// mgl32's ApproxEqual is relative, so it rejects tiny rounding residue next
// to an expected zero. Compare by distance instead.
func closeTo(got, want mgl32.Vec3) bool {
	return got.Sub(want).Len() <= 1e-5
}

func TestCameraLooksDownNegativeZ(t *testing.T) {
	c := NewCamera()
	if !closeTo(c.Forward(), mgl32.Vec3{0, 0, -1}) {
		t.Errorf("forward = %v", c.Forward())
	}
	if !closeTo(c.Right(), mgl32.Vec3{1, 0, 0}) {
		t.Errorf("right = %v", c.Right())
	}
	if !c.View().ApproxEqual(mgl32.Ident4()) {
		t.Errorf("view of a reset camera is not the identity: %v", c.View())
	}
}

func TestCameraViewRebuiltAfterMove(t *testing.T) {
	c := NewCamera()
	_ = c.View()
	c.MoveForward(2)

	if !closeTo(c.Position(), mgl32.Vec3{0, 0, -2}) {
		t.Fatalf("position = %v", c.Position())
	}
	// the origin is now two units behind the camera
	p := c.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if !closeTo(p.Vec3(), mgl32.Vec3{0, 0, 2}) {
		t.Errorf("origin in view space = %v", p)
	}
}

func TestCameraPitchIsClamped(t *testing.T) {
	c := NewCamera()
	c.Pitch(10)
	if got := c.EulerRotation().X(); got != pitchLimit {
		t.Errorf("pitch = %f, want %f", got, pitchLimit)
	}
	c.Pitch(-20)
	if got := c.EulerRotation().X(); got != -pitchLimit {
		t.Errorf("pitch = %f, want %f", got, -pitchLimit)
	}
}

func TestCameraYawTurnsLeft(t *testing.T) {
	c := NewCamera()
	c.Yaw(mgl32.DegToRad(90))
	if !closeTo(c.Forward(), mgl32.Vec3{-1, 0, 0}) {
		t.Errorf("forward = %v", c.Forward())
	}
	if !closeTo(c.Right(), mgl32.Vec3{0, 0, -1}) {
		t.Errorf("right = %v", c.Right())
	}
}

func TestCameraRotationAxes(t *testing.T) {
	c := NewCamera()
	c.SetEulerRotation(mgl32.Vec3{mgl32.DegToRad(90), 0, 0})
	if !closeTo(c.Forward(), mgl32.Vec3{0, 1, 0}) {
		t.Errorf("pitched up, forward = %v", c.Forward())
	}
	c.SetEulerRotation(mgl32.Vec3{0, 0, mgl32.DegToRad(90)})
	if !closeTo(c.Right(), mgl32.Vec3{0, 1, 0}) {
		t.Errorf("rolled, right = %v", c.Right())
	}
}

func TestCameraFrame(t *testing.T) {
	c := NewCamera()
	c.Frame(mgl32.Vec3{1, 2, 3}, 0)
	if !closeTo(c.Position(), mgl32.Vec3{1, 2, 5}) {
		t.Errorf("position = %v", c.Position())
	}
	if c.Near != 0.01 || c.Far != 10 {
		t.Errorf("clip planes = %f %f", c.Near, c.Far)
	}
}

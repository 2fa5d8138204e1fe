package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/subpasses/engine/math"
)

const (
	DefaultFieldOfView = 60.0
	// 89 degrees, keeps the view away from gimbal lock
	pitchLimit = float32(1.55334306)
)

// Camera is a perspective camera. The view matrix is rebuilt lazily when
// the position or rotation changed since it was last read.
type Camera struct {
	position mgl32.Vec3
	// pitch, yaw, roll in radians
	eulerRotation mgl32.Vec3
	isDirty       bool
	view          mgl32.Mat4

	// FieldOfView is the vertical field of view in degrees.
	FieldOfView float32
	Near, Far   float32
}

func NewCamera() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

func (c *Camera) Reset() {
	c.position = mgl32.Vec3{}
	c.eulerRotation = mgl32.Vec3{}
	c.view = mgl32.Ident4()
	c.isDirty = false
	c.FieldOfView = DefaultFieldOfView
	c.Near = 0.1
	c.Far = 1000
}

func (c *Camera) Position() mgl32.Vec3 {
	return c.position
}

func (c *Camera) SetPosition(position mgl32.Vec3) {
	c.position = position
	c.isDirty = true
}

func (c *Camera) EulerRotation() mgl32.Vec3 {
	return c.eulerRotation
}

func (c *Camera) SetEulerRotation(rotation mgl32.Vec3) {
	c.eulerRotation = rotation
	c.isDirty = true
}

// Frame places the camera on the +Z side of a sphere, looking at its center
// with clip planes scaled to its radius.
func (c *Camera) Frame(center mgl32.Vec3, radius float32) {
	if radius <= 0 {
		radius = 1
	}
	c.SetPosition(center.Add(mgl32.Vec3{0, 0, radius * 2}))
	c.SetEulerRotation(mgl32.Vec3{})
	c.Near = radius * 0.01
	c.Far = radius * 10
}

func (c *Camera) world() mgl32.Mat4 {
	rotation := mgl32.HomogRotate3DY(c.eulerRotation.Y()).
		Mul4(mgl32.HomogRotate3DX(c.eulerRotation.X())).
		Mul4(mgl32.HomogRotate3DZ(c.eulerRotation.Z()))
	return mgl32.Translate3D(c.position.X(), c.position.Y(), c.position.Z()).Mul4(rotation)
}

func (c *Camera) View() mgl32.Mat4 {
	if c.isDirty {
		c.view = c.world().Inv()
		c.isDirty = false
	}
	return c.view
}

// Projection is a Vulkan style perspective projection, Y pointing down.
func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	p := mgl32.Perspective(mgl32.DegToRad(c.FieldOfView), aspect, c.Near, c.Far)
	p[5] *= -1
	return p
}

func (c *Camera) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.Projection(aspect).Mul4(c.View())
}

func (c *Camera) Forward() mgl32.Vec3 {
	return c.world().Col(2).Vec3().Mul(-1).Normalize()
}

func (c *Camera) Right() mgl32.Vec3 {
	return c.world().Col(0).Vec3().Normalize()
}

func (c *Camera) MoveForward(amount float32) {
	c.SetPosition(c.position.Add(c.Forward().Mul(amount)))
}

func (c *Camera) Yaw(amount float32) {
	c.eulerRotation[1] += amount
	c.isDirty = true
}

func (c *Camera) Pitch(amount float32) {
	c.eulerRotation[0] = math.Clamp(c.eulerRotation[0]+amount, -pitchLimit, pitchLimit)
	c.isDirty = true
}

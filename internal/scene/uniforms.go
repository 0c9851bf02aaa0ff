package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/core1_0"
)

// UniformBufferObject is the model/view/projection triple written once per
// frame for the image being drawn.
type UniformBufferObject struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

// Projection is a right-handed perspective with Y flipped so that clip
// space matches the device's downward Y axis.
func Projection(fovy, aspectRatio, near, far float32) mgl32.Mat4 {
	fmn, f := far-near, float32(1./math.Tan(float64(fovy)/2.0))

	return mgl32.Mat4{f / aspectRatio, 0, 0, 0, 0, -f, 0, 0, 0, 0, -far / fmn, -1, 0, 0, -(far * near) / fmn, 0}
}

// AspectRatio of extent; a zero height yields 1.
func AspectRatio(extent core1_0.Extent2D) float32 {
	if extent.Height == 0 {
		return 1
	}
	return float32(extent.Width) / float32(extent.Height)
}

// Clock measures seconds since it was started.
type Clock struct {
	start float64
}

func NewClock() Clock {
	return Clock{start: hrtime.Now().Seconds()}
}

func (c Clock) Seconds() float64 {
	return hrtime.Now().Seconds() - c.start
}

// Spinning rotates the model a quarter turn per second about Z and looks at
// it from (2, 2, 2).
func Spinning(seconds float64, extent core1_0.Extent2D) UniformBufferObject {
	timePeriod := float32(math.Mod(seconds, 4.0))

	ubo := UniformBufferObject{}
	ubo.Model = mgl32.HomogRotate3D(timePeriod*mgl32.DegToRad(90.0), mgl32.Vec3{0, 0, 1})
	ubo.View = mgl32.LookAt(2, 2, 2, 0, 0, 0, 0, 0, 1)
	ubo.Proj = Projection(mgl32.DegToRad(45), AspectRatio(extent), 0.1, 10.0)
	return ubo
}

// Light is one point light laid out for a std140 uniform block.
type Light struct {
	Position mgl32.Vec4
	Color    mgl32.Vec3
	Radius   float32
}

// LightCount is fixed by the composition shader.
const LightCount = 6

// LightsUBO feeds the composition pass.
type LightsUBO struct {
	Lights  [LightCount]Light
	ViewPos mgl32.Vec4
}

// DefaultLights places the six lights of the deferred scene. The lights
// circle the origin as seconds advances.
func DefaultLights(seconds float64, viewPos mgl32.Vec3) LightsUBO {
	colors := [LightCount]mgl32.Vec3{
		{1.5, 1.5, 1.5},
		{1, 0, 0},
		{0, 0, 2.5},
		{1, 1, 0},
		{0, 1, 0.2},
		{1, 0.7, 0.3},
	}
	radii := [LightCount]float32{15, 15, 5, 2, 5, 25}

	var ubo LightsUBO
	angle := float32(seconds) * 0.5
	for i := 0; i < LightCount; i++ {
		theta := angle + float32(i)*2*math.Pi/LightCount
		radius := float32(1.5 + 0.5*float64(i%3))
		ubo.Lights[i] = Light{
			Position: mgl32.Vec4{radius * float32(math.Cos(float64(theta))), 1 + 0.25*float32(i%2), radius * float32(math.Sin(float64(theta))), 0},
			Color:    colors[i],
			Radius:   radii[i],
		}
	}
	ubo.ViewPos = viewPos.Vec4(0)
	return ubo
}

// OffscreenUBO transforms G-Buffer geometry.
type OffscreenUBO struct {
	Projection mgl32.Mat4
	Model      mgl32.Mat4
	View       mgl32.Mat4
}

// DeferredEye is where the deferred scene is viewed from.
var DeferredEye = mgl32.Vec3{2.5, 2, 2.5}

// OffscreenTransforms views model from DeferredEye. The projection is not
// Y flipped, so deferred pipelines treat clockwise faces as front facing.
func OffscreenTransforms(model mgl32.Mat4, aspectRatio float32) OffscreenUBO {
	return OffscreenUBO{
		Projection: mgl32.Perspective(mgl32.DegToRad(60), aspectRatio, 0.1, 64),
		Model:      model,
		View:       mgl32.LookAtV(DeferredEye, mgl32.Vec3{0, 0.25, 0}, mgl32.Vec3{0, 1, 0}),
	}
}

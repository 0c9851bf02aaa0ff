// Package scene holds the vertex formats, uniform layouts and mesh and
// texture loaders the renderers consume.
package scene

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/core1_0"
)

// Vertex is shared by every variant; each variant's attribute list picks
// the fields its shaders read.
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	TexCoord mgl32.Vec2
	Normal   mgl32.Vec3
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

func VertexBindingDescription() []core1_0.VertexInputBindingDescription {
	v := Vertex{}
	return []core1_0.VertexInputBindingDescription{
		{
			Binding:   0,
			Stride:    int(unsafe.Sizeof(v)),
			InputRate: core1_0.RateVertex,
		},
	}
}

// ColorAttributes feeds position and color at locations 0 and 1.
func ColorAttributes() []core1_0.VertexInputAttributeDescription {
	v := Vertex{}
	return []core1_0.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Position)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Color)),
		},
	}
}

// TexturedAttributes adds texture coordinates at location 2.
func TexturedAttributes() []core1_0.VertexInputAttributeDescription {
	v := Vertex{}
	return append(ColorAttributes(), core1_0.VertexInputAttributeDescription{
		Binding:  0,
		Location: 2,
		Format:   core1_0.FormatR32G32SignedFloat,
		Offset:   int(unsafe.Offsetof(v.TexCoord)),
	})
}

// GBufferAttributes feeds position, normal and color at locations 0, 1
// and 2.
func GBufferAttributes() []core1_0.VertexInputAttributeDescription {
	v := Vertex{}
	return []core1_0.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Position)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Normal)),
		},
		{
			Binding:  0,
			Location: 2,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Color)),
		},
	}
}

// Triangle is the hard-coded mesh of the triangle variant.
func Triangle() Mesh {
	return Mesh{
		Vertices: []Vertex{
			{Position: mgl32.Vec3{0.0, -0.5, 0}, Color: mgl32.Vec3{1, 0, 0}},
			{Position: mgl32.Vec3{0.5, 0.5, 0}, Color: mgl32.Vec3{0, 1, 0}},
			{Position: mgl32.Vec3{-0.5, 0.5, 0}, Color: mgl32.Vec3{0, 0, 1}},
		},
		Indices: []uint32{0, 1, 2},
	}
}

// Floor is a size x size square in the XZ plane facing +Y.
func Floor(size float32, color mgl32.Vec3) Mesh {
	h := size / 2
	up := mgl32.Vec3{0, 1, 0}
	return Mesh{
		Vertices: []Vertex{
			{Position: mgl32.Vec3{-h, 0, -h}, Color: color, TexCoord: mgl32.Vec2{0, 0}, Normal: up},
			{Position: mgl32.Vec3{h, 0, -h}, Color: color, TexCoord: mgl32.Vec2{1, 0}, Normal: up},
			{Position: mgl32.Vec3{h, 0, h}, Color: color, TexCoord: mgl32.Vec2{1, 1}, Normal: up},
			{Position: mgl32.Vec3{-h, 0, h}, Color: color, TexCoord: mgl32.Vec2{0, 1}, Normal: up},
		},
		Indices: []uint32{0, 2, 1, 2, 0, 3},
	}
}

// Cube is a unit cube centered on the origin with one color and normal per
// face, so each face has its own four vertices.
func Cube() Mesh {
	faces := []struct {
		normal, u, v mgl32.Vec3
		color        mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 1}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{1, 1, 0}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 1}},
	}

	var mesh Mesh
	for _, face := range faces {
		base := uint32(len(mesh.Vertices))
		center := face.normal.Mul(0.5)
		u, v := face.u.Mul(0.5), face.v.Mul(0.5)

		corners := []struct {
			pos mgl32.Vec3
			uv  mgl32.Vec2
		}{
			{center.Sub(u).Sub(v), mgl32.Vec2{0, 1}},
			{center.Add(u).Sub(v), mgl32.Vec2{1, 1}},
			{center.Add(u).Add(v), mgl32.Vec2{1, 0}},
			{center.Sub(u).Add(v), mgl32.Vec2{0, 0}},
		}
		for _, corner := range corners {
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: corner.pos,
				Color:    face.color,
				TexCoord: corner.uv,
				Normal:   face.normal,
			})
		}
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return mesh
}

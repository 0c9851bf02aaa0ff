package scene

import (
	"image"
	"image/png"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

type vertexKey struct {
	vertex, uv, normal int
}

// LoadOBJ decodes a Wavefront model, triangulating polygons as fans and
// sharing vertices that repeat the same position, UV and normal. A
// material library next to the model is used when present.
func LoadOBJ(fsys fs.FS, name string) (Mesh, error) {
	meshFile, err := fsys.Open(name)
	if err != nil {
		return Mesh{}, errors.Wrapf(err, "open model %s", name)
	}
	defer meshFile.Close()

	var matReader io.Reader
	matName := strings.TrimSuffix(name, path.Ext(name)) + ".mtl"
	if matFile, err := fsys.Open(matName); err == nil {
		defer matFile.Close()
		matReader = matFile
	}

	decoder, err := obj.DecodeReader(meshFile, matReader)
	if err != nil {
		return Mesh{}, errors.Wrapf(err, "decode model %s", name)
	}

	var mesh Mesh
	uniqueVertices := make(map[vertexKey]uint32)

	addVertex := func(face obj.Face, faceIndex int) {
		key := vertexKey{vertex: face.Vertices[faceIndex], uv: -1, normal: -1}
		if faceIndex < len(face.Uvs) {
			key.uv = face.Uvs[faceIndex]
		}
		if faceIndex < len(face.Normals) {
			key.normal = face.Normals[faceIndex]
		}

		index, vertexExists := uniqueVertices[key]
		if !vertexExists {
			vert := Vertex{Position: mgl32.Vec3{
				decoder.Vertices[key.vertex*3],
				decoder.Vertices[key.vertex*3+1],
				decoder.Vertices[key.vertex*3+2],
			}, Color: mgl32.Vec3{1, 1, 1}}

			if key.uv >= 0 && key.uv*2+1 < len(decoder.Uvs) {
				vert.TexCoord = mgl32.Vec2{
					decoder.Uvs[key.uv*2],
					1.0 - decoder.Uvs[key.uv*2+1],
				}
			}
			if key.normal >= 0 && key.normal*3+2 < len(decoder.Normals) {
				vert.Normal = mgl32.Vec3{
					decoder.Normals[key.normal*3],
					decoder.Normals[key.normal*3+1],
					decoder.Normals[key.normal*3+2],
				}
			}

			index = uint32(len(mesh.Vertices))
			mesh.Vertices = append(mesh.Vertices, vert)
			uniqueVertices[key] = index
		}

		mesh.Indices = append(mesh.Indices, index)
	}

	for _, decodedObj := range decoder.Objects {
		for _, face := range decodedObj.Faces {
			for i := 2; i < len(face.Vertices); i++ {
				addVertex(face, 0)
				addVertex(face, i-1)
				addVertex(face, i)
			}
		}
	}

	if len(mesh.Indices) == 0 {
		return Mesh{}, errors.Newf("model %s has no faces", name)
	}
	return mesh, nil
}

// LoadTexture decodes a PNG or BMP image into tightly packed RGBA8.
func LoadTexture(fsys fs.FS, name string) (*image.RGBA, error) {
	file, err := fsys.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open texture %s", name)
	}
	defer file.Close()

	var decoded image.Image
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		decoded, err = png.Decode(file)
	case ".bmp":
		decoded, err = bmp.Decode(file)
	default:
		return nil, errors.Newf("texture %s: unsupported image type", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode texture %s", name)
	}

	return ToRGBA(decoded), nil
}

// ToRGBA converts img to an RGBA image whose bounds start at the origin,
// so Pix holds exactly width*height*4 bytes.
func ToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && bounds.Min == (image.Point{}) && rgba.Stride == bounds.Dx()*4 {
		return rgba
	}

	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

package pipeline

import (
	"bytes"
	"io"
	"io/fs"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4/v4"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
)

const compressedSuffix = ".lz4"

// ReadShader reads SPIR-V named name from fsys. When name is missing but
// name.lz4 exists, the compressed blob is inflated instead.
func ReadShader(fsys fs.FS, name string) ([]byte, error) {
	if strings.HasSuffix(name, compressedSuffix) {
		return readCompressed(fsys, name)
	}

	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		if compressed, cerr := readCompressed(fsys, name+compressedSuffix); cerr == nil {
			return compressed, nil
		}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read shader %s", name)
	}
	return data, nil
}

func readCompressed(fsys fs.FS, name string) ([]byte, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrapf(err, "read shader %s", name)
	}

	data, err := io.ReadAll(lz4.NewReader(bytes.NewReader(raw)))
	if err != nil {
		return nil, errors.Wrapf(err, "inflate shader %s", name)
	}
	return data, nil
}

// BytesToBytecode packs little-endian SPIR-V words.
func BytesToBytecode(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, errors.Newf("shader size %d is not a multiple of 4", len(b))
	}

	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode, nil
}

// LoadShader reads name from fsys and creates a shader module from it.
func LoadShader(device core1_0.Device, fsys fs.FS, name string) (core1_0.ShaderModule, error) {
	shaderBytes, err := ReadShader(fsys, name)
	if err != nil {
		return nil, err
	}

	byteCode, err := BytesToBytecode(shaderBytes)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", name)
	}

	shader, _, err := device.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: byteCode,
	})
	if err != nil {
		return nil, gfxerr.ResourceCreation(err, "shader module "+name)
	}
	return shader, nil
}

package resource

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
)

// TextureFormat is the layout of the RGBA8 pixels a texture is created from.
const TextureFormat = core1_0.FormatR8G8B8A8SRGB

// Texture is a sampled, device-local image.
type Texture struct {
	Attachment
	Width, Height int
}

// CreateTexture uploads tightly packed RGBA8 pixels through a staging buffer
// and leaves the image in shader-read-only layout.
func (c *Context) CreateTexture(width, height int, pixels []byte) (*Texture, error) {
	imageSize := width * height * 4
	if len(pixels) != imageSize {
		return nil, errors.Newf("texture of %dx%d needs %d bytes, got %d", width, height, imageSize, len(pixels))
	}

	stagingBuffer, err := CreateBuffer(c, imageSize, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return nil, err
	}
	defer stagingBuffer.Destroy()

	if err = stagingBuffer.Write(0, pixels); err != nil {
		return nil, err
	}

	image, memory, err := c.CreateImage(width, height, TextureFormat, core1_0.ImageTilingOptimal, core1_0.ImageUsageTransferDst|core1_0.ImageUsageSampled, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return nil, err
	}

	texture := &Texture{
		Attachment: Attachment{Image: image, Memory: memory, Format: TextureFormat, owned: true},
		Width:      width,
		Height:     height,
	}

	err = c.TransitionImageLayout(image, core1_0.ImageLayoutUndefined, core1_0.ImageLayoutTransferDstOptimal)
	if err == nil {
		err = c.CopyBufferToImage(stagingBuffer, image, width, height)
	}
	if err == nil {
		err = c.TransitionImageLayout(image, core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutShaderReadOnlyOptimal)
	}
	if err == nil {
		texture.View, err = c.CreateImageView(image, TextureFormat, core1_0.ImageAspectColor)
	}
	if err != nil {
		texture.Destroy()
		return nil, err
	}

	return texture, nil
}

// SamplerOptions are the knobs that differ between the samplers in use.
type SamplerOptions struct {
	AddressMode core1_0.SamplerAddressMode
	Anisotropy  bool
}

// CreateSampler creates a linear sampler; anisotropy uses the device limit.
func (c *Context) CreateSampler(opts SamplerOptions) (core1_0.Sampler, error) {
	var maxAnisotropy float32 = 1
	if opts.Anisotropy {
		properties, err := c.Physical.Properties()
		if err != nil {
			return nil, err
		}
		maxAnisotropy = properties.Limits.MaxSamplerAnisotropy
	}

	sampler, _, err := c.Device.CreateSampler(nil, core1_0.SamplerCreateInfo{
		MagFilter:    core1_0.FilterLinear,
		MinFilter:    core1_0.FilterLinear,
		AddressModeU: opts.AddressMode,
		AddressModeV: opts.AddressMode,
		AddressModeW: opts.AddressMode,

		AnisotropyEnable: opts.Anisotropy,
		MaxAnisotropy:    maxAnisotropy,

		BorderColor: core1_0.BorderColorIntOpaqueBlack,

		MipmapMode: core1_0.SamplerMipmapModeLinear,
	})
	if err != nil {
		return nil, gfxerr.ResourceCreation(err, "sampler")
	}
	return sampler, nil
}

package resource

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
)

// DepthFormatCandidates are tried in order when looking for a depth format.
var DepthFormatCandidates = []core1_0.Format{
	core1_0.FormatD32SignedFloat,
	core1_0.FormatD32SignedFloatS8UnsignedInt,
	core1_0.FormatD24UnsignedNormalizedS8UnsignedInt,
}

// Attachment is an image, its memory and a view, tagged with its format.
// Attachments aliasing swapchain images own neither Image nor Memory.
type Attachment struct {
	Image  core1_0.Image
	Memory core1_0.DeviceMemory
	View   core1_0.ImageView
	Format core1_0.Format

	owned bool
}

// SwapchainAttachment wraps a presentable image and its view.
func SwapchainAttachment(image core1_0.Image, view core1_0.ImageView, format core1_0.Format) Attachment {
	return Attachment{Image: image, View: view, Format: format}
}

// Owned reports whether Destroy releases the image and its memory.
func (a *Attachment) Owned() bool {
	return a.owned
}

// Destroy releases the view and, for owned attachments, the image and then
// its memory.
func (a *Attachment) Destroy() {
	if a.View != nil {
		a.View.Destroy(nil)
		a.View = nil
	}
	if !a.owned {
		a.Image = nil
		return
	}
	if a.Image != nil {
		a.Image.Destroy(nil)
		a.Image = nil
	}
	if a.Memory != nil {
		a.Memory.Free(nil)
		a.Memory = nil
	}
}

// AspectFor returns the view aspect matching an attachment usage.
func AspectFor(usage core1_0.ImageUsageFlags, format core1_0.Format) (core1_0.ImageAspectFlags, error) {
	if usage&core1_0.ImageUsageColorAttachment != 0 {
		return core1_0.ImageAspectColor, nil
	}
	if usage&core1_0.ImageUsageDepthStencilAttachment != 0 {
		if HasStencilComponent(format) {
			return core1_0.ImageAspectDepth | core1_0.ImageAspectStencil, nil
		}
		return core1_0.ImageAspectDepth, nil
	}
	return 0, errors.Mark(errors.Newf("attachment usage %s not supported", usage), gfxerr.ErrUnsupportedOperation)
}

func HasStencilComponent(format core1_0.Format) bool {
	return format == core1_0.FormatD32SignedFloatS8UnsignedInt || format == core1_0.FormatD24UnsignedNormalizedS8UnsignedInt
}

// CreateAttachment allocates a device-local optimal-tiling image of the given
// extent and a view over it.
func (c *Context) CreateAttachment(extent core1_0.Extent2D, format core1_0.Format, usage core1_0.ImageUsageFlags) (Attachment, error) {
	aspect, err := AspectFor(usage, format)
	if err != nil {
		return Attachment{}, err
	}

	image, memory, err := c.CreateImage(extent.Width, extent.Height, format, core1_0.ImageTilingOptimal, usage, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return Attachment{}, err
	}

	attachment := Attachment{Image: image, Memory: memory, Format: format, owned: true}
	attachment.View, err = c.CreateImageView(image, format, aspect)
	if err != nil {
		attachment.Destroy()
		return Attachment{}, err
	}
	return attachment, nil
}

func (c *Context) CreateImageView(image core1_0.Image, format core1_0.Format, aspect core1_0.ImageAspectFlags) (core1_0.ImageView, error) {
	imageView, _, err := c.Device.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    image,
		ViewType: core1_0.ImageViewType2D,
		Format:   format,
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	if err != nil {
		return nil, gfxerr.ResourceCreation(err, "image view")
	}
	return imageView, nil
}

func (c *Context) CreateImage(width, height int, format core1_0.Format, tiling core1_0.ImageTiling, usage core1_0.ImageUsageFlags, memoryProperties core1_0.MemoryPropertyFlags) (core1_0.Image, core1_0.DeviceMemory, error) {
	image, _, err := c.Device.CreateImage(nil, core1_0.ImageCreateOptions{
		ImageType: core1_0.ImageType2D,
		Extent: core1_0.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        tiling,
		InitialLayout: core1_0.ImageLayoutUndefined,
		Usage:         usage,
		SharingMode:   core1_0.SharingModeExclusive,
		Samples:       core1_0.Samples1,
	})
	if err != nil {
		return nil, nil, gfxerr.ResourceCreation(err, "image")
	}

	memReqs := image.MemoryRequirements()
	memoryIndex, err := FindMemoryType(c.MemoryTypes(), memReqs.MemoryTypeBits, memoryProperties)
	if err != nil {
		image.Destroy(nil)
		return nil, nil, err
	}

	imageMemory, _, err := c.Device.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memoryIndex,
	})
	if err != nil {
		image.Destroy(nil)
		return nil, nil, gfxerr.ResourceCreation(err, "image memory")
	}

	_, err = image.BindImageMemory(imageMemory, 0)
	if err != nil {
		image.Destroy(nil)
		imageMemory.Free(nil)
		return nil, nil, gfxerr.ResourceCreation(err, "image memory binding")
	}

	return image, imageMemory, nil
}

// FindSupportedFormat returns the first candidate whose tiling supports
// every feature bit.
func (c *Context) FindSupportedFormat(formats []core1_0.Format, tiling core1_0.ImageTiling, features core1_0.FormatFeatureFlags) (core1_0.Format, error) {
	for _, format := range formats {
		props := c.Physical.FormatProperties(format)

		if tiling == core1_0.ImageTilingLinear && (props.LinearTilingFeatures&features) == features {
			return format, nil
		} else if tiling == core1_0.ImageTilingOptimal && (props.OptimalTilingFeatures&features) == features {
			return format, nil
		}
	}

	return 0, errors.Mark(errors.Newf("failed to find supported format for tiling %s, featureset %s", tiling, features),
		gfxerr.ErrUnsupportedOperation)
}

func (c *Context) FindDepthFormat() (core1_0.Format, error) {
	return c.FindSupportedFormat(DepthFormatCandidates, core1_0.ImageTilingOptimal, core1_0.FormatFeatureDepthStencilAttachment)
}

// CopyBufferToImage copies a tightly packed buffer into the color aspect of
// an image in transfer-destination layout.
func (c *Context) CopyBufferToImage(buffer *Buffer, image core1_0.Image, width, height int) error {
	raw := RawBuffer(buffer.Handle)
	if raw == nil {
		return errors.AssertionFailedf("buffer was not created by a context")
	}

	cmdBuffer, err := c.beginSingleTimeCommands()
	if err != nil {
		return err
	}

	err = cmdBuffer.CmdCopyBufferToImage(raw, image, core1_0.ImageLayoutTransferDstOptimal, []core1_0.BufferImageCopy{
		{
			BufferOffset:      0,
			BufferRowLength:   0,
			BufferImageHeight: 0,

			ImageSubresource: core1_0.ImageSubresourceLayers{
				AspectMask:     core1_0.ImageAspectColor,
				MipLevel:       0,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			ImageOffset: core1_0.Offset3D{X: 0, Y: 0, Z: 0},
			ImageExtent: core1_0.Extent3D{Width: width, Height: height, Depth: 1},
		},
	})
	if err != nil {
		c.FreeCommandBuffers([]core1_0.CommandBuffer{cmdBuffer})
		return err
	}

	return c.endSingleTimeCommands(cmdBuffer)
}

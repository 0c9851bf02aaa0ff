package resource

import (
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
)

// Barrier holds the access and stage masks of one image layout transition.
type Barrier struct {
	SrcAccess core1_0.AccessFlags
	DstAccess core1_0.AccessFlags
	SrcStage  core1_0.PipelineStageFlags
	DstStage  core1_0.PipelineStageFlags
}

// TransitionBarrier knows exactly two transitions: undefined to
// transfer-destination, and transfer-destination to shader-read-only.
func TransitionBarrier(oldLayout, newLayout core1_0.ImageLayout) (Barrier, error) {
	switch {
	case oldLayout == core1_0.ImageLayoutUndefined && newLayout == core1_0.ImageLayoutTransferDstOptimal:
		return Barrier{
			SrcAccess: 0,
			DstAccess: core1_0.AccessTransferWrite,
			SrcStage:  core1_0.PipelineStageTopOfPipe,
			DstStage:  core1_0.PipelineStageTransfer,
		}, nil
	case oldLayout == core1_0.ImageLayoutTransferDstOptimal && newLayout == core1_0.ImageLayoutShaderReadOnlyOptimal:
		return Barrier{
			SrcAccess: core1_0.AccessTransferWrite,
			DstAccess: core1_0.AccessShaderRead,
			SrcStage:  core1_0.PipelineStageTransfer,
			DstStage:  core1_0.PipelineStageFragmentShader,
		}, nil
	}

	return Barrier{}, gfxerr.UnsupportedLayoutTransition(oldLayout, newLayout)
}

// TransitionImageLayout records and flushes a pipeline barrier moving the
// color aspect of image from oldLayout to newLayout.
func (c *Context) TransitionImageLayout(image core1_0.Image, oldLayout, newLayout core1_0.ImageLayout) error {
	barrier, err := TransitionBarrier(oldLayout, newLayout)
	if err != nil {
		return err
	}

	buffer, err := c.beginSingleTimeCommands()
	if err != nil {
		return err
	}

	err = buffer.CmdPipelineBarrier(barrier.SrcStage, barrier.DstStage, 0, nil, nil, []core1_0.ImageMemoryBarrier{
		{
			OldLayout:           oldLayout,
			NewLayout:           newLayout,
			SrcQueueFamilyIndex: -1,
			DstQueueFamilyIndex: -1,
			Image:               image,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			SrcAccessMask: barrier.SrcAccess,
			DstAccessMask: barrier.DstAccess,
		},
	})
	if err != nil {
		c.FreeCommandBuffers([]core1_0.CommandBuffer{buffer})
		return err
	}

	return c.endSingleTimeCommands(buffer)
}

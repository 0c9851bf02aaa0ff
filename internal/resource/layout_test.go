package resource_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/resource"
)

func TestTransitionBarrier(t *testing.T) {
	barrier, err := resource.TransitionBarrier(core1_0.ImageLayoutUndefined, core1_0.ImageLayoutTransferDstOptimal)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, barrier, qt.Equals, resource.Barrier{
		DstAccess: core1_0.AccessTransferWrite,
		SrcStage:  core1_0.PipelineStageTopOfPipe,
		DstStage:  core1_0.PipelineStageTransfer,
	})

	barrier, err = resource.TransitionBarrier(core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutShaderReadOnlyOptimal)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, barrier, qt.Equals, resource.Barrier{
		SrcAccess: core1_0.AccessTransferWrite,
		DstAccess: core1_0.AccessShaderRead,
		SrcStage:  core1_0.PipelineStageTransfer,
		DstStage:  core1_0.PipelineStageFragmentShader,
	})
}

func TestTransitionBarrierUnsupported(t *testing.T) {
	_, err := resource.TransitionBarrier(core1_0.ImageLayoutUndefined, core1_0.ImageLayoutShaderReadOnlyOptimal)
	qt.Assert(t, errors.Is(err, gfxerr.ErrUnsupportedLayoutTransition), qt.IsTrue)
	qt.Assert(t, errors.Is(err, gfxerr.ErrUnsupportedOperation), qt.IsTrue)

	_, err = resource.TransitionBarrier(core1_0.ImageLayoutShaderReadOnlyOptimal, core1_0.ImageLayoutTransferDstOptimal)
	qt.Assert(t, errors.Is(err, gfxerr.ErrUnsupportedLayoutTransition), qt.IsTrue)
}

func TestAspectFor(t *testing.T) {
	aspect, err := resource.AspectFor(core1_0.ImageUsageColorAttachment|core1_0.ImageUsageSampled, core1_0.FormatR16G16B16A16SignedFloat)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, aspect, qt.Equals, core1_0.ImageAspectColor)

	aspect, err = resource.AspectFor(core1_0.ImageUsageDepthStencilAttachment, core1_0.FormatD32SignedFloat)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, aspect, qt.Equals, core1_0.ImageAspectDepth)

	aspect, err = resource.AspectFor(core1_0.ImageUsageDepthStencilAttachment, core1_0.FormatD24UnsignedNormalizedS8UnsignedInt)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, aspect, qt.Equals, core1_0.ImageAspectDepth|core1_0.ImageAspectStencil)

	_, err = resource.AspectFor(core1_0.ImageUsageSampled, core1_0.FormatR8G8B8A8UnsignedNormalized)
	qt.Assert(t, errors.Is(err, gfxerr.ErrUnsupportedOperation), qt.IsTrue)
}

func TestPoolSizes(t *testing.T) {
	bindings := []resource.Binding{
		{Binding: 0, Type: core1_0.DescriptorTypeUniformBuffer, Stages: core1_0.StageVertex},
		{Binding: 1, Type: core1_0.DescriptorTypeCombinedImageSampler, Stages: core1_0.StageFragment},
		{Binding: 2, Type: core1_0.DescriptorTypeCombinedImageSampler, Stages: core1_0.StageFragment},
	}

	sizes := resource.PoolSizes(bindings, 3)
	qt.Assert(t, sizes, qt.DeepEquals, []core1_0.DescriptorPoolSize{
		{Type: core1_0.DescriptorTypeUniformBuffer, DescriptorCount: 3},
		{Type: core1_0.DescriptorTypeCombinedImageSampler, DescriptorCount: 6},
	})
}

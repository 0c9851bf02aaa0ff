package deferred_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_swapchain"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/config"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/deferred"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/resource"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/scene"
)

func TestGBufferRenderPass(t *testing.T) {
	c := qt.New(t)

	desc := deferred.RenderPassDesc()
	c.Assert(desc.AttachmentCount(), qt.Equals, 4)

	options := desc.Options()
	c.Assert(options.Attachments, qt.HasLen, 4)

	formats := []core1_0.Format{
		core1_0.FormatR16G16B16A16SignedFloat,
		core1_0.FormatR16G16B16A16SignedFloat,
		core1_0.FormatR8G8B8A8UnsignedNormalized,
		core1_0.FormatD32SignedFloat,
	}
	for i, attachment := range options.Attachments {
		c.Assert(attachment.Format, qt.Equals, formats[i], qt.Commentf("attachment %d", i))
		c.Assert(attachment.LoadOp, qt.Equals, core1_0.AttachmentLoadOpClear)
		c.Assert(attachment.StoreOp, qt.Equals, core1_0.AttachmentStoreOpStore)
		c.Assert(attachment.InitialLayout, qt.Equals, core1_0.ImageLayoutUndefined)
	}
	for i := 0; i < 3; i++ {
		c.Assert(options.Attachments[i].FinalLayout, qt.Equals, core1_0.ImageLayoutShaderReadOnlyOptimal)
	}
	c.Assert(options.Attachments[3].FinalLayout, qt.Equals, core1_0.ImageLayoutDepthStencilAttachmentOptimal)

	c.Assert(options.Subpasses, qt.HasLen, 1)
	subpass := options.Subpasses[0]
	c.Assert(subpass.ColorAttachments, qt.HasLen, 3)
	for i, ref := range subpass.ColorAttachments {
		c.Assert(ref.Attachment, qt.Equals, i)
		c.Assert(ref.Layout, qt.Equals, core1_0.ImageLayoutColorAttachmentOptimal)
	}
	c.Assert(subpass.DepthStencilAttachment.Attachment, qt.Equals, 3)
	c.Assert(subpass.DepthStencilAttachment.Layout, qt.Equals, core1_0.ImageLayoutDepthStencilAttachmentOptimal)
}

func TestGBufferDependencies(t *testing.T) {
	c := qt.New(t)

	deps := deferred.RenderPassDesc().Options().SubpassDependencies
	c.Assert(deps, qt.HasLen, 2)

	c.Assert(deps[0].SrcSubpass, qt.Equals, core1_0.SubpassExternal)
	c.Assert(deps[0].DstSubpass, qt.Equals, 0)
	c.Assert(deps[0].DstStageMask, qt.Equals, core1_0.PipelineStageColorAttachmentOutput)
	c.Assert(deps[0].DstAccessMask, qt.Equals, core1_0.AccessColorAttachmentRead|core1_0.AccessColorAttachmentWrite)

	c.Assert(deps[0].DependencyFlags, qt.Equals, core1_0.DependencyByRegion)

	// The composition pass samples the attachments in its fragment shader.
	c.Assert(deps[1].SrcSubpass, qt.Equals, 0)
	c.Assert(deps[1].DstSubpass, qt.Equals, core1_0.SubpassExternal)
	c.Assert(deps[1].SrcStageMask, qt.Equals, core1_0.PipelineStageColorAttachmentOutput)
	c.Assert(deps[1].SrcAccessMask, qt.Equals, core1_0.AccessColorAttachmentWrite)
	c.Assert(deps[1].DstStageMask, qt.Equals, core1_0.PipelineStageFragmentShader)
	c.Assert(deps[1].DstAccessMask, qt.Equals, core1_0.AccessShaderRead)
	c.Assert(deps[1].DependencyFlags, qt.Equals, core1_0.DependencyFlags(0))
}

func TestClearValuesMatchAttachments(t *testing.T) {
	qt.Assert(t, deferred.ClearValues(), qt.HasLen, deferred.RenderPassDesc().AttachmentCount())
}

func TestOffscreenPipeline(t *testing.T) {
	c := qt.New(t)

	desc := deferred.OffscreenPipelineDesc(nil, config.Clockwise)
	options := desc.Options(nil, nil, nil, nil)

	c.Assert(options.ColorBlendState.Attachments, qt.HasLen, 3)
	c.Assert(options.DepthStencilState, qt.Not(qt.IsNil))
	c.Assert(options.DynamicState, qt.Not(qt.IsNil))
	c.Assert(options.RasterizationState.FrontFace, qt.Equals, core1_0.FrontFaceClockwise)
	c.Assert(options.VertexInputState.VertexAttributeDescriptions, qt.DeepEquals, scene.GBufferAttributes())
}

func TestCompositionPipeline(t *testing.T) {
	c := qt.New(t)

	extent := core1_0.Extent2D{Width: 1280, Height: 720}
	options := deferred.CompositionPipelineDesc(nil, config.Clockwise, extent).Options(nil, nil, nil, nil)

	c.Assert(options.ColorBlendState.Attachments, qt.HasLen, 1)
	c.Assert(options.DepthStencilState, qt.IsNil)
	c.Assert(options.DynamicState, qt.IsNil)
	c.Assert(options.RasterizationState.CullMode, qt.Equals, core1_0.CullModeFlags(0))
	c.Assert(options.VertexInputState.VertexAttributeDescriptions, qt.HasLen, 0)
	c.Assert(options.ViewportState.Scissors[0].Extent, qt.Equals, extent)

	pass := deferred.CompositionRenderPassDesc(core1_0.FormatB8G8R8A8SRGB).Options()
	c.Assert(pass.Attachments, qt.HasLen, 1)
	c.Assert(pass.Attachments[0].FinalLayout, qt.Equals, khr_swapchain.ImageLayoutPresentSrc)

	bindings := deferred.CompositionBindings()
	c.Assert(bindings, qt.HasLen, 4)
	c.Assert(bindings[3].Type, qt.Equals, core1_0.DescriptorTypeUniformBuffer)
}

func TestOffscreenDraws(t *testing.T) {
	c := qt.New(t)

	floor := &deferred.Object{
		Name: "floor", Vertices: &resource.Buffer{}, Indices: &resource.Buffer{}, IndexCount: 6,
		Sets: make([]core1_0.DescriptorSet, 2),
	}
	model := &deferred.Object{
		Name: "model", Vertices: &resource.Buffer{}, Indices: &resource.Buffer{}, IndexCount: 36,
		Sets: make([]core1_0.DescriptorSet, 2),
	}

	draws, err := deferred.OffscreenDraws([]*deferred.Object{floor, model}, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(draws, qt.HasLen, 2)
	c.Assert(draws[0].IndexCount, qt.Equals, 6)
	c.Assert(draws[1].IndexCount, qt.Equals, 36)

	_, err = deferred.OffscreenDraws([]*deferred.Object{floor, model}, 2)
	c.Assert(errors.IsAssertionFailure(err), qt.IsTrue)
	c.Assert(err, qt.ErrorMatches, "floor has no descriptor set for image 2")
}

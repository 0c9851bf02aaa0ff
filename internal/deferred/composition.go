package deferred

import (
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_swapchain"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/config"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/pipeline"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/resource"
)

// Shader names of the composition pass. The vertex shader emits a
// full-screen triangle from the vertex index.
const (
	CompositionVertexShader   = "composition.vert.spv"
	CompositionFragmentShader = "composition.frag.spv"
)

// CompositionBindings: the three G-Buffer color targets, then the lights.
func CompositionBindings() []resource.Binding {
	return []resource.Binding{
		{Binding: 0, Type: core1_0.DescriptorTypeCombinedImageSampler, Stages: core1_0.StageFragment},
		{Binding: 1, Type: core1_0.DescriptorTypeCombinedImageSampler, Stages: core1_0.StageFragment},
		{Binding: 2, Type: core1_0.DescriptorTypeCombinedImageSampler, Stages: core1_0.StageFragment},
		{Binding: 3, Type: core1_0.DescriptorTypeUniformBuffer, Stages: core1_0.StageFragment},
	}
}

// CompositionRenderPassDesc writes the swapchain image only.
func CompositionRenderPassDesc(format core1_0.Format) pipeline.RenderPassDesc {
	return pipeline.RenderPassDesc{
		Colors: []pipeline.ColorTarget{{Format: format, FinalLayout: khr_swapchain.ImageLayoutPresentSrc}},
	}
}

// CompositionPipelineDesc draws the full-screen triangle without vertex
// input, culling or depth.
func CompositionPipelineDesc(setLayout core1_0.DescriptorSetLayout, frontFace config.Winding, extent core1_0.Extent2D) pipeline.PipelineDesc {
	return pipeline.PipelineDesc{
		VertexShader:   CompositionVertexShader,
		FragmentShader: CompositionFragmentShader,
		FrontFace:      frontFace,
		CullNone:       true,
		SetLayouts:     []core1_0.DescriptorSetLayout{setLayout},
		Extent:         extent,
	}
}

// CompositionWrites points set at the G-Buffer through sampler and at the
// lights uniform buffer.
func CompositionWrites(set core1_0.DescriptorSet, g *GBuffer, sampler core1_0.Sampler, lights *resource.Buffer) []core1_0.WriteDescriptorSet {
	return []core1_0.WriteDescriptorSet{
		resource.SamplerWrite(set, 0, g.Position.View, sampler),
		resource.SamplerWrite(set, 1, g.Normal.View, sampler),
		resource.SamplerWrite(set, 2, g.Albedo.View, sampler),
		resource.UniformWrite(set, 3, lights),
	}
}

// RecordComposition records the lighting pass into framebuffer.
func RecordComposition(buffer core1_0.CommandBuffer, renderPass core1_0.RenderPass, framebuffer core1_0.Framebuffer, extent core1_0.Extent2D, p *pipeline.Pipeline, set core1_0.DescriptorSet) error {
	_, err := buffer.Begin(core1_0.CommandBufferBeginInfo{})
	if err != nil {
		return err
	}

	err = buffer.CmdBeginRenderPass(core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  renderPass,
			Framebuffer: framebuffer,
			RenderArea:  pipeline.Scissor(extent),
			ClearValues: []core1_0.ClearValue{
				core1_0.ClearValueFloat{0, 0, 0, 1},
			},
		})
	if err != nil {
		return err
	}

	buffer.CmdBindPipeline(core1_0.PipelineBindPointGraphics, p.Pipeline)
	buffer.CmdBindDescriptorSets(core1_0.PipelineBindPointGraphics, p.Layout, []core1_0.DescriptorSet{set}, nil)
	buffer.CmdDraw(3, 1, 0, 0)
	buffer.CmdEndRenderPass()

	_, err = buffer.End()
	return err
}

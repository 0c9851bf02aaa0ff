package pipeline

import (
	"io/fs"

	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/config"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
)

// PipelineDesc is the complete state of one graphics pipeline. Topology is
// always a triangle list, back faces are culled and there is no
// multisampling or blending.
type PipelineDesc struct {
	VertexShader   string
	FragmentShader string

	Bindings   []core1_0.VertexInputBindingDescription
	Attributes []core1_0.VertexInputAttributeDescription

	FrontFace config.Winding
	// CullNone disables back-face culling, for full-screen passes.
	CullNone  bool
	DepthTest bool

	// ColorAttachments is the number of color outputs of the subpass.
	ColorAttachments int

	// SetLayouts are bound in order as sets 0, 1, ...
	SetLayouts []core1_0.DescriptorSetLayout

	// Extent sizes the static viewport and scissor. It is ignored when
	// DynamicViewport is set and the command buffer provides both.
	Extent          core1_0.Extent2D
	DynamicViewport bool
}

// Pipeline is a graphics pipeline and the layout it was built with.
type Pipeline struct {
	Layout   core1_0.PipelineLayout
	Pipeline core1_0.Pipeline
}

func (p *Pipeline) Destroy() {
	if p.Pipeline != nil {
		p.Pipeline.Destroy(nil)
		p.Pipeline = nil
	}
	if p.Layout != nil {
		p.Layout.Destroy(nil)
		p.Layout = nil
	}
}

// Viewport covers extent with the full depth range.
func Viewport(extent core1_0.Extent2D) core1_0.Viewport {
	return core1_0.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}

// Scissor covers extent.
func Scissor(extent core1_0.Extent2D) core1_0.Rect2D {
	return core1_0.Rect2D{
		Offset: core1_0.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}
}

func (d PipelineDesc) vertexInput() *core1_0.PipelineVertexInputStateCreateInfo {
	return &core1_0.PipelineVertexInputStateCreateInfo{
		VertexBindingDescriptions:   d.Bindings,
		VertexAttributeDescriptions: d.Attributes,
	}
}

func (d PipelineDesc) viewport() *core1_0.PipelineViewportStateCreateInfo {
	return &core1_0.PipelineViewportStateCreateInfo{
		Viewports: []core1_0.Viewport{Viewport(d.Extent)},
		Scissors:  []core1_0.Rect2D{Scissor(d.Extent)},
	}
}

func (d PipelineDesc) rasterization() *core1_0.PipelineRasterizationStateCreateInfo {
	rasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: core1_0.PolygonModeFill,
		CullMode:    core1_0.CullModeBack,
		FrontFace:   core1_0.FrontFaceCounterClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}
	if d.FrontFace == config.Clockwise {
		rasterization.FrontFace = core1_0.FrontFaceClockwise
	}
	if d.CullNone {
		rasterization.CullMode = 0
	}
	return rasterization
}

func (d PipelineDesc) depthStencil() *core1_0.PipelineDepthStencilStateCreateInfo {
	if !d.DepthTest {
		return nil
	}
	return &core1_0.PipelineDepthStencilStateCreateInfo{
		DepthTestEnable:  true,
		DepthWriteEnable: true,
		DepthCompareOp:   core1_0.CompareOpLess,
	}
}

func (d PipelineDesc) colorBlend() *core1_0.PipelineColorBlendStateCreateInfo {
	count := d.ColorAttachments
	if count == 0 {
		count = 1
	}

	var attachments []core1_0.PipelineColorBlendAttachmentState
	for i := 0; i < count; i++ {
		attachments = append(attachments, core1_0.PipelineColorBlendAttachmentState{
			BlendEnabled:   false,
			ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
		})
	}

	return &core1_0.PipelineColorBlendStateCreateInfo{
		LogicOpEnabled: false,
		LogicOp:        core1_0.LogicOpCopy,

		BlendConstants: [4]float32{0, 0, 0, 0},
		Attachments:    attachments,
	}
}

func (d PipelineDesc) dynamicState() *core1_0.PipelineDynamicStateCreateInfo {
	if !d.DynamicViewport {
		return nil
	}
	return &core1_0.PipelineDynamicStateCreateInfo{
		DynamicStates: []core1_0.DynamicState{
			core1_0.DynamicStateViewport,
			core1_0.DynamicStateScissor,
		},
	}
}

// Options lays the description out as pipeline creation options for the
// first subpass of renderPass.
func (d PipelineDesc) Options(vertShader, fragShader core1_0.ShaderModule, layout core1_0.PipelineLayout, renderPass core1_0.RenderPass) core1_0.GraphicsPipelineCreateInfo {
	return core1_0.GraphicsPipelineCreateInfo{
		Stages: []core1_0.PipelineShaderStageCreateInfo{
			{
				Stage:  core1_0.StageVertex,
				Module: vertShader,
				Name:   "main",
			},
			{
				Stage:  core1_0.StageFragment,
				Module: fragShader,
				Name:   "main",
			},
		},
		VertexInputState: d.vertexInput(),
		InputAssemblyState: &core1_0.PipelineInputAssemblyStateCreateInfo{
			Topology:               core1_0.PrimitiveTopologyTriangleList,
			PrimitiveRestartEnable: false,
		},
		ViewportState:      d.viewport(),
		RasterizationState: d.rasterization(),
		MultisampleState: &core1_0.PipelineMultisampleStateCreateInfo{
			SampleShadingEnable:  false,
			RasterizationSamples: core1_0.Samples1,
			MinSampleShading:     1.0,
		},
		DepthStencilState: d.depthStencil(),
		ColorBlendState:   d.colorBlend(),
		DynamicState:      d.dynamicState(),
		Layout:            layout,
		RenderPass:        renderPass,
		Subpass:           0,
		BasePipelineIndex: -1,
	}
}

// Build loads both shaders from fsys and creates the pipeline layout and
// pipeline. Shader modules are released before returning.
func Build(device core1_0.Device, fsys fs.FS, renderPass core1_0.RenderPass, d PipelineDesc) (*Pipeline, error) {
	vertShader, err := LoadShader(device, fsys, d.VertexShader)
	if err != nil {
		return nil, err
	}
	defer vertShader.Destroy(nil)

	fragShader, err := LoadShader(device, fsys, d.FragmentShader)
	if err != nil {
		return nil, err
	}
	defer fragShader.Destroy(nil)

	p := &Pipeline{}
	p.Layout, _, err = device.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		SetLayouts: d.SetLayouts,
	})
	if err != nil {
		return nil, gfxerr.ResourceCreation(err, "pipeline layout")
	}

	pipelines, _, err := device.CreateGraphicsPipelines(nil, nil, []core1_0.GraphicsPipelineCreateInfo{
		d.Options(vertShader, fragShader, p.Layout, renderPass),
	})
	if err != nil {
		p.Destroy()
		return nil, gfxerr.ResourceCreation(err, "graphics pipeline")
	}
	p.Pipeline = pipelines[0]

	return p, nil
}

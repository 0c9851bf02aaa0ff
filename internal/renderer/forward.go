package renderer

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_swapchain"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/config"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/frames"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/pipeline"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/resource"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/scene"
)

const (
	triangleVertexShader   = "triangle.vert.spv"
	triangleFragmentShader = "triangle.frag.spv"
	modelVertexShader      = "model.vert.spv"
	modelFragmentShader    = "model.frag.spv"
)

// texturedBindings: the transforms for the vertex stage, the texture for the
// fragment stage.
func texturedBindings() []resource.Binding {
	return []resource.Binding{
		{Binding: 0, Type: core1_0.DescriptorTypeUniformBuffer, Stages: core1_0.StageVertex},
		{Binding: 1, Type: core1_0.DescriptorTypeCombinedImageSampler, Stages: core1_0.StageFragment},
	}
}

// forwardRenderPassDesc renders straight into the swapchain image. Only the
// textured variant has a depth attachment.
func forwardRenderPassDesc(v config.Variant, colorFormat, depthFormat core1_0.Format) pipeline.RenderPassDesc {
	desc := pipeline.RenderPassDesc{
		Colors: []pipeline.ColorTarget{{Format: colorFormat, FinalLayout: khr_swapchain.ImageLayoutPresentSrc}},
	}
	if v == config.VariantTextured {
		desc.DepthFormat = depthFormat
		desc.DepthFinalLayout = core1_0.ImageLayoutDepthStencilAttachmentOptimal
	}
	return desc
}

func forwardPipelineDesc(cfg config.Config, setLayout core1_0.DescriptorSetLayout, extent core1_0.Extent2D) pipeline.PipelineDesc {
	desc := pipeline.PipelineDesc{
		VertexShader:   triangleVertexShader,
		FragmentShader: triangleFragmentShader,
		Bindings:       scene.VertexBindingDescription(),
		Attributes:     scene.ColorAttributes(),
		FrontFace:      cfg.FrontFace,
		Extent:         extent,
	}
	if cfg.Variant == config.VariantTextured {
		desc.VertexShader = modelVertexShader
		desc.FragmentShader = modelFragmentShader
		desc.Attributes = scene.TexturedAttributes()
		desc.DepthTest = true
		desc.SetLayouts = []core1_0.DescriptorSetLayout{setLayout}
	}
	return desc
}

func forwardClearValues(v config.Variant) []core1_0.ClearValue {
	clearValues := []core1_0.ClearValue{
		core1_0.ClearValueFloat{0, 0, 0, 1},
	}
	if v == config.VariantTextured {
		clearValues = append(clearValues, core1_0.ClearValueDepthStencil{Depth: 1.0, Stencil: 0})
	}
	return clearValues
}

// forward draws one indexed mesh per frame directly into the swapchain.
type forward struct {
	ctx      *resource.Context
	variant  config.Variant
	textured bool
	clock    scene.Clock

	vertices   *resource.Buffer
	indices    *resource.Buffer
	indexCount int

	texture   *resource.Texture
	sampler   core1_0.Sampler
	setLayout core1_0.DescriptorSetLayout

	extent         core1_0.Extent2D
	renderPass     core1_0.RenderPass
	depth          resource.Attachment
	framebuffers   []core1_0.Framebuffer
	pipeline       *pipeline.Pipeline
	uniforms       []*resource.Buffer
	descriptorPool core1_0.DescriptorPool
	descriptorSets []core1_0.DescriptorSet
	commandBuffers []core1_0.CommandBuffer
}

func (f *forward) chainLength() int {
	return 0
}

func (f *forward) init(r *Renderer) error {
	f.ctx = r.Resources
	f.variant = r.cfg.Variant
	f.textured = f.variant == config.VariantTextured
	f.clock = scene.NewClock()

	mesh := scene.Triangle()
	if f.textured {
		fsys, name := assetFS(r.cfg.ModelPath)
		var err error
		mesh, err = scene.LoadOBJ(fsys, name)
		if err != nil {
			return err
		}
		if err = f.loadTexture(r.cfg.TexturePath); err != nil {
			return err
		}
	}

	vertexData, err := resource.Encode(mesh.Vertices)
	if err != nil {
		return err
	}
	indexData, err := resource.Encode(mesh.Indices)
	if err != nil {
		return err
	}

	f.vertices, err = resource.UploadDeviceLocal(f.ctx, f.ctx, vertexData, core1_0.BufferUsageVertexBuffer)
	if err != nil {
		return errors.Wrap(err, "vertex buffer")
	}
	f.indices, err = resource.UploadDeviceLocal(f.ctx, f.ctx, indexData, core1_0.BufferUsageIndexBuffer)
	if err != nil {
		return errors.Wrap(err, "index buffer")
	}
	f.indexCount = len(mesh.Indices)

	r.log.WithField("vertices", len(mesh.Vertices)).WithField("indices", f.indexCount).Debug("mesh uploaded")
	return nil
}

func (f *forward) loadTexture(path string) error {
	fsys, name := assetFS(path)
	img, err := scene.LoadTexture(fsys, name)
	if err != nil {
		return err
	}

	size := img.Bounds().Size()
	f.texture, err = f.ctx.CreateTexture(size.X, size.Y, img.Pix)
	if err != nil {
		return err
	}

	f.sampler, err = f.ctx.CreateSampler(resource.SamplerOptions{
		AddressMode: core1_0.SamplerAddressModeRepeat,
		Anisotropy:  true,
	})
	if err != nil {
		return err
	}

	f.setLayout, err = f.ctx.CreateDescriptorSetLayout(texturedBindings())
	return err
}

func (f *forward) initSwapchain(r *Renderer) error {
	sc := r.Swapchain
	f.extent = sc.Extent
	imageCount := sc.ImageCount()

	var depthFormat core1_0.Format
	var err error
	if f.textured {
		depthFormat, err = f.ctx.FindDepthFormat()
		if err != nil {
			return err
		}
	}

	f.renderPass, err = pipeline.CreateRenderPass(f.ctx.Device, forwardRenderPassDesc(f.variant, sc.Format.Format, depthFormat))
	if err != nil {
		return err
	}

	f.pipeline, err = pipeline.Build(f.ctx.Device, r.Shaders, f.renderPass, forwardPipelineDesc(r.cfg, f.setLayout, f.extent))
	if err != nil {
		return err
	}

	if f.textured {
		f.depth, err = f.ctx.CreateAttachment(f.extent, depthFormat, core1_0.ImageUsageDepthStencilAttachment)
		if err != nil {
			return err
		}
	}

	var views [][]core1_0.ImageView
	for _, image := range sc.Images {
		attachments := []core1_0.ImageView{image.View}
		if f.textured {
			attachments = append(attachments, f.depth.View)
		}
		views = append(views, attachments)
	}
	f.framebuffers, err = pipeline.CreateFramebuffers(f.ctx.Device, f.renderPass, f.extent, views)
	if err != nil {
		return err
	}

	if f.textured {
		if err = f.createDescriptors(imageCount); err != nil {
			return err
		}
	}

	f.commandBuffers, err = f.ctx.AllocateCommandBuffers(imageCount)
	if err != nil {
		return err
	}
	for i, buffer := range f.commandBuffers {
		if err = f.record(buffer, i); err != nil {
			return errors.Wrapf(err, "record command buffer %d", i)
		}
	}
	return nil
}

func (f *forward) createDescriptors(imageCount int) error {
	var err error
	f.uniforms, err = resource.CreateUniformBuffers(f.ctx, int(unsafe.Sizeof(scene.UniformBufferObject{})), imageCount)
	if err != nil {
		return err
	}

	f.descriptorPool, err = f.ctx.CreateDescriptorPool(texturedBindings(), imageCount)
	if err != nil {
		return err
	}

	f.descriptorSets, err = f.ctx.AllocateDescriptorSets(f.descriptorPool, f.setLayout, imageCount)
	if err != nil {
		return err
	}

	var writes []core1_0.WriteDescriptorSet
	for i, set := range f.descriptorSets {
		writes = append(writes,
			resource.UniformWrite(set, 0, f.uniforms[i]),
			resource.SamplerWrite(set, 1, f.texture.View, f.sampler),
		)
	}
	return f.ctx.UpdateDescriptorSets(writes)
}

func (f *forward) record(buffer core1_0.CommandBuffer, imageIndex int) error {
	_, err := buffer.Begin(core1_0.CommandBufferBeginInfo{})
	if err != nil {
		return err
	}

	err = buffer.CmdBeginRenderPass(core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  f.renderPass,
			Framebuffer: f.framebuffers[imageIndex],
			RenderArea:  pipeline.Scissor(f.extent),
			ClearValues: forwardClearValues(f.variant),
		})
	if err != nil {
		return err
	}

	buffer.CmdBindPipeline(core1_0.PipelineBindPointGraphics, f.pipeline.Pipeline)
	buffer.CmdBindVertexBuffers([]core1_0.Buffer{resource.RawBuffer(f.vertices.Handle)}, []int{0})
	buffer.CmdBindIndexBuffer(resource.RawBuffer(f.indices.Handle), 0, core1_0.IndexTypeUInt32)
	if f.textured {
		buffer.CmdBindDescriptorSets(core1_0.PipelineBindPointGraphics, f.pipeline.Layout, []core1_0.DescriptorSet{
			f.descriptorSets[imageIndex],
		}, nil)
	}
	buffer.CmdDrawIndexed(f.indexCount, 1, 0, 0, 0)
	buffer.CmdEndRenderPass()

	_, err = buffer.End()
	return err
}

func (f *forward) passes(imageIndex int) [][]core1_0.CommandBuffer {
	return [][]core1_0.CommandBuffer{{f.commandBuffers[imageIndex]}}
}

func (f *forward) update(r *Renderer, frame frames.Frame) error {
	if !f.textured {
		return nil
	}
	return f.uniforms[frame.ImageIndex].WriteData(0, scene.Spinning(f.clock.Seconds(), f.extent))
}

func (f *forward) destroySwapchain() {
	if f.ctx == nil {
		return
	}
	f.ctx.FreeCommandBuffers(f.commandBuffers)
	f.commandBuffers = nil

	if f.descriptorPool != nil {
		f.descriptorPool.Destroy(nil)
		f.descriptorPool = nil
	}
	f.descriptorSets = nil
	resource.DestroyBuffers(f.uniforms)
	f.uniforms = nil

	pipeline.DestroyFramebuffers(f.framebuffers)
	f.framebuffers = nil
	f.depth.Destroy()

	if f.pipeline != nil {
		f.pipeline.Destroy()
		f.pipeline = nil
	}
	if f.renderPass != nil {
		f.renderPass.Destroy(nil)
		f.renderPass = nil
	}
}

func (f *forward) destroy() {
	if f.setLayout != nil {
		f.setLayout.Destroy(nil)
		f.setLayout = nil
	}
	if f.sampler != nil {
		f.sampler.Destroy(nil)
		f.sampler = nil
	}
	if f.texture != nil {
		f.texture.Destroy()
		f.texture = nil
	}
	f.indices.Destroy()
	f.indices = nil
	f.vertices.Destroy()
	f.vertices = nil
}

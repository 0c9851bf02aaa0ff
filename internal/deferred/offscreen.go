package deferred

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/config"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/pipeline"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/resource"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/scene"
)

// Shader names of the geometry pass.
const (
	OffscreenVertexShader   = "gbuffer.vert.spv"
	OffscreenFragmentShader = "gbuffer.frag.spv"
)

// Object is one indexed mesh drawn into the G-Buffer, with a uniform buffer
// and descriptor set per swapchain image.
type Object struct {
	Name       string
	Vertices   *resource.Buffer
	Indices    *resource.Buffer
	IndexCount int

	Uniforms []*resource.Buffer
	Sets     []core1_0.DescriptorSet
}

// UploadObject stages mesh into device-local vertex and index buffers.
func UploadObject(device resource.Device, transfer resource.Transfer, name string, mesh scene.Mesh) (*Object, error) {
	vertexData, err := resource.Encode(mesh.Vertices)
	if err != nil {
		return nil, err
	}
	indexData, err := resource.Encode(mesh.Indices)
	if err != nil {
		return nil, err
	}

	o := &Object{Name: name, IndexCount: len(mesh.Indices)}
	o.Vertices, err = resource.UploadDeviceLocal(device, transfer, vertexData, core1_0.BufferUsageVertexBuffer)
	if err != nil {
		return nil, errors.Wrapf(err, "%s vertices", name)
	}
	o.Indices, err = resource.UploadDeviceLocal(device, transfer, indexData, core1_0.BufferUsageIndexBuffer)
	if err != nil {
		o.Destroy()
		return nil, errors.Wrapf(err, "%s indices", name)
	}
	return o, nil
}

// DestroyUniforms releases the per-image uniform buffers. Descriptor sets
// go with their pool.
func (o *Object) DestroyUniforms() {
	for _, buffer := range o.Uniforms {
		buffer.Destroy()
	}
	o.Uniforms = nil
	o.Sets = nil
}

func (o *Object) Destroy() {
	o.DestroyUniforms()
	o.Indices.Destroy()
	o.Vertices.Destroy()
}

// OffscreenBindings is the single set the geometry pass binds per object.
func OffscreenBindings() []resource.Binding {
	return []resource.Binding{
		{Binding: 0, Type: core1_0.DescriptorTypeUniformBuffer, Stages: core1_0.StageVertex},
	}
}

// OffscreenPipelineDesc writes all three color targets with depth testing.
// Viewport and scissor are set while recording.
func OffscreenPipelineDesc(setLayout core1_0.DescriptorSetLayout, frontFace config.Winding) pipeline.PipelineDesc {
	return pipeline.PipelineDesc{
		VertexShader:     OffscreenVertexShader,
		FragmentShader:   OffscreenFragmentShader,
		Bindings:         scene.VertexBindingDescription(),
		Attributes:       scene.GBufferAttributes(),
		FrontFace:        frontFace,
		DepthTest:        true,
		ColorAttachments: 3,
		SetLayouts:       []core1_0.DescriptorSetLayout{setLayout},
		DynamicViewport:  true,
	}
}

// Draw is one indexed draw of the geometry pass.
type Draw struct {
	Vertices   core1_0.Buffer
	Indices    core1_0.Buffer
	IndexCount int
	Set        core1_0.DescriptorSet
}

// OffscreenDraws lists the draws for imageIndex in object order.
func OffscreenDraws(objects []*Object, imageIndex int) ([]Draw, error) {
	var draws []Draw
	for _, o := range objects {
		if imageIndex >= len(o.Sets) {
			return nil, errors.AssertionFailedf("%s has no descriptor set for image %d", o.Name, imageIndex)
		}
		draws = append(draws, Draw{
			Vertices:   resource.RawBuffer(o.Vertices.Handle),
			Indices:    resource.RawBuffer(o.Indices.Handle),
			IndexCount: o.IndexCount,
			Set:        o.Sets[imageIndex],
		})
	}
	return draws, nil
}

// RecordOffscreenPass records the geometry pass for imageIndex into
// buffer: viewport and scissor cover the G-Buffer, then every object is
// drawn with its own descriptor set.
func RecordOffscreenPass(buffer core1_0.CommandBuffer, g *GBuffer, p *pipeline.Pipeline, objects []*Object, imageIndex int) error {
	draws, err := OffscreenDraws(objects, imageIndex)
	if err != nil {
		return err
	}

	_, err = buffer.Begin(core1_0.CommandBufferBeginInfo{})
	if err != nil {
		return err
	}

	err = buffer.CmdBeginRenderPass(core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  g.RenderPass,
			Framebuffer: g.Framebuffer,
			RenderArea:  pipeline.Scissor(g.Extent()),
			ClearValues: ClearValues(),
		})
	if err != nil {
		return err
	}

	buffer.CmdSetViewport([]core1_0.Viewport{pipeline.Viewport(g.Extent())})
	buffer.CmdSetScissor([]core1_0.Rect2D{pipeline.Scissor(g.Extent())})

	buffer.CmdBindPipeline(core1_0.PipelineBindPointGraphics, p.Pipeline)
	for _, draw := range draws {
		buffer.CmdBindVertexBuffers([]core1_0.Buffer{draw.Vertices}, []int{0})
		buffer.CmdBindIndexBuffer(draw.Indices, 0, core1_0.IndexTypeUInt32)
		buffer.CmdBindDescriptorSets(core1_0.PipelineBindPointGraphics, p.Layout, []core1_0.DescriptorSet{draw.Set}, nil)
		buffer.CmdDrawIndexed(draw.IndexCount, 1, 0, 0, 0)
	}
	buffer.CmdEndRenderPass()

	_, err = buffer.End()
	return err
}

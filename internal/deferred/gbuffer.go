// Package deferred renders geometry into an offscreen G-Buffer and lights
// it in a second, on-screen composition pass.
package deferred

import (
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/pipeline"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/resource"
)

// G-Buffer attachment formats.
const (
	PositionFormat = core1_0.FormatR16G16B16A16SignedFloat
	NormalFormat   = core1_0.FormatR16G16B16A16SignedFloat
	AlbedoFormat   = core1_0.FormatR8G8B8A8UnsignedNormalized
	DepthFormat    = core1_0.FormatD32SignedFloat
)

// GBuffer is the offscreen framebuffer the geometry pass writes. Its size
// is fixed and independent of the swapchain.
type GBuffer struct {
	Width, Height int

	Position, Normal, Albedo resource.Attachment
	Depth                    resource.Attachment

	RenderPass  core1_0.RenderPass
	Framebuffer core1_0.Framebuffer
}

// Dependencies bracket the geometry pass. The first moves the attachments
// into color-attachment-writable state. The second makes the color writes
// visible to the composition pass's fragment shader reads; it is not
// by-region because composition samples the G-Buffer at its own resolution.
func Dependencies() []core1_0.SubpassDependency {
	return []core1_0.SubpassDependency{
		{
			SrcSubpass: core1_0.SubpassExternal,
			DstSubpass: 0,

			SrcStageMask:  core1_0.PipelineStageBottomOfPipe,
			SrcAccessMask: core1_0.AccessMemoryRead,

			DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
			DstAccessMask: core1_0.AccessColorAttachmentRead | core1_0.AccessColorAttachmentWrite,

			DependencyFlags: core1_0.DependencyByRegion,
		},
		{
			SrcSubpass: 0,
			DstSubpass: core1_0.SubpassExternal,

			SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
			SrcAccessMask: core1_0.AccessColorAttachmentWrite,

			DstStageMask:  core1_0.PipelineStageFragmentShader,
			DstAccessMask: core1_0.AccessShaderRead,
		},
	}
}

// RenderPassDesc has four attachments: position, normal and albedo left
// shader-readable, then depth. Everything is cleared and stored.
func RenderPassDesc() pipeline.RenderPassDesc {
	return pipeline.RenderPassDesc{
		Colors: []pipeline.ColorTarget{
			{Format: PositionFormat, FinalLayout: core1_0.ImageLayoutShaderReadOnlyOptimal},
			{Format: NormalFormat, FinalLayout: core1_0.ImageLayoutShaderReadOnlyOptimal},
			{Format: AlbedoFormat, FinalLayout: core1_0.ImageLayoutShaderReadOnlyOptimal},
		},
		DepthFormat:      DepthFormat,
		DepthFinalLayout: core1_0.ImageLayoutDepthStencilAttachmentOptimal,
		StoreDepth:       true,
		Dependencies:     Dependencies(),
	}
}

// ClearValues matches the attachment order of RenderPassDesc.
func ClearValues() []core1_0.ClearValue {
	return []core1_0.ClearValue{
		core1_0.ClearValueFloat{0, 0, 0, 0},
		core1_0.ClearValueFloat{0, 0, 0, 0},
		core1_0.ClearValueFloat{0, 0, 0, 0},
		core1_0.ClearValueDepthStencil{Depth: 1.0, Stencil: 0},
	}
}

// InitGBuffer allocates the attachments at dimension x dimension and builds
// the geometry render pass and its framebuffer.
func InitGBuffer(ctx *resource.Context, dimension int) (*GBuffer, error) {
	g := &GBuffer{Width: dimension, Height: dimension}
	extent := g.Extent()

	colorUsage := core1_0.ImageUsageColorAttachment | core1_0.ImageUsageSampled

	var err error
	for _, a := range []struct {
		dst    *resource.Attachment
		format core1_0.Format
		usage  core1_0.ImageUsageFlags
	}{
		{&g.Position, PositionFormat, colorUsage},
		{&g.Normal, NormalFormat, colorUsage},
		{&g.Albedo, AlbedoFormat, colorUsage},
		{&g.Depth, DepthFormat, core1_0.ImageUsageDepthStencilAttachment},
	} {
		*a.dst, err = ctx.CreateAttachment(extent, a.format, a.usage)
		if err != nil {
			g.Destroy()
			return nil, err
		}
	}

	g.RenderPass, err = pipeline.CreateRenderPass(ctx.Device, RenderPassDesc())
	if err != nil {
		g.Destroy()
		return nil, err
	}

	framebuffers, err := pipeline.CreateFramebuffers(ctx.Device, g.RenderPass, extent, [][]core1_0.ImageView{g.Views()})
	if err != nil {
		g.Destroy()
		return nil, err
	}
	g.Framebuffer = framebuffers[0]

	return g, nil
}

func (g *GBuffer) Extent() core1_0.Extent2D {
	return core1_0.Extent2D{Width: g.Width, Height: g.Height}
}

// Views are the attachment views in render pass order.
func (g *GBuffer) Views() []core1_0.ImageView {
	return []core1_0.ImageView{g.Position.View, g.Normal.View, g.Albedo.View, g.Depth.View}
}

// Destroy releases the framebuffer, the render pass and then each
// attachment.
func (g *GBuffer) Destroy() {
	if g.Framebuffer != nil {
		g.Framebuffer.Destroy(nil)
		g.Framebuffer = nil
	}
	if g.RenderPass != nil {
		g.RenderPass.Destroy(nil)
		g.RenderPass = nil
	}
	g.Depth.Destroy()
	g.Albedo.Destroy()
	g.Normal.Destroy()
	g.Position.Destroy()
}

// Package pipeline describes render passes and graphics pipelines as plain
// values and turns them into device objects.
package pipeline

import (
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
)

// ColorTarget is one color attachment of a single-subpass render pass.
type ColorTarget struct {
	Format      core1_0.Format
	FinalLayout core1_0.ImageLayout
}

// RenderPassDesc describes a render pass with one subpass writing every
// color target and, when DepthFormat is set, a depth target. Color targets
// are cleared and stored; depth is cleared and discarded unless StoreDepth.
type RenderPassDesc struct {
	Colors []ColorTarget

	DepthFormat      core1_0.Format
	DepthFinalLayout core1_0.ImageLayout
	StoreDepth       bool

	// Dependencies replace the default external-to-first-subpass guard.
	Dependencies []core1_0.SubpassDependency
}

// HasDepth reports whether the pass has a depth attachment.
func (d RenderPassDesc) HasDepth() bool {
	return d.DepthFormat != core1_0.FormatUndefined
}

// AttachmentCount is the number of framebuffer views the pass expects.
func (d RenderPassDesc) AttachmentCount() int {
	if d.HasDepth() {
		return len(d.Colors) + 1
	}
	return len(d.Colors)
}

// ExternalDependency keeps the first subpass's attachment writes from racing
// the layout transition out of the previous frame's use of the image.
func ExternalDependency(depth bool) core1_0.SubpassDependency {
	stages := core1_0.PipelineStageColorAttachmentOutput
	access := core1_0.AccessColorAttachmentWrite
	if depth {
		stages |= core1_0.PipelineStageEarlyFragmentTests
		access |= core1_0.AccessDepthStencilAttachmentWrite
	}

	return core1_0.SubpassDependency{
		SrcSubpass: core1_0.SubpassExternal,
		DstSubpass: 0,

		SrcStageMask:  stages,
		SrcAccessMask: 0,

		DstStageMask:  stages,
		DstAccessMask: access,
	}
}

// Options lays the description out as render pass creation options.
func (d RenderPassDesc) Options() core1_0.RenderPassCreateInfo {
	var attachments []core1_0.AttachmentDescription
	var colorRefs []core1_0.AttachmentReference

	for i, color := range d.Colors {
		attachments = append(attachments, core1_0.AttachmentDescription{
			Format:         color.Format,
			Samples:        core1_0.Samples1,
			LoadOp:         core1_0.AttachmentLoadOpClear,
			StoreOp:        core1_0.AttachmentStoreOpStore,
			StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
			StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
			InitialLayout:  core1_0.ImageLayoutUndefined,
			FinalLayout:    color.FinalLayout,
		})
		colorRefs = append(colorRefs, core1_0.AttachmentReference{
			Attachment: i,
			Layout:          core1_0.ImageLayoutColorAttachmentOptimal,
		})
	}

	subpass := core1_0.SubpassDescription{
		PipelineBindPoint: core1_0.PipelineBindPointGraphics,
		ColorAttachments:  colorRefs,
	}

	if d.HasDepth() {
		depthStore := core1_0.AttachmentStoreOpDontCare
		if d.StoreDepth {
			depthStore = core1_0.AttachmentStoreOpStore
		}
		finalLayout := d.DepthFinalLayout
		if finalLayout == core1_0.ImageLayoutUndefined {
			finalLayout = core1_0.ImageLayoutDepthStencilAttachmentOptimal
		}

		attachments = append(attachments, core1_0.AttachmentDescription{
			Format:         d.DepthFormat,
			Samples:        core1_0.Samples1,
			LoadOp:         core1_0.AttachmentLoadOpClear,
			StoreOp:        depthStore,
			StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
			StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
			InitialLayout:  core1_0.ImageLayoutUndefined,
			FinalLayout:    finalLayout,
		})
		subpass.DepthStencilAttachment = &core1_0.AttachmentReference{
			Attachment: len(d.Colors),
			Layout:          core1_0.ImageLayoutDepthStencilAttachmentOptimal,
		}
	}

	dependencies := d.Dependencies
	if dependencies == nil {
		dependencies = []core1_0.SubpassDependency{ExternalDependency(d.HasDepth())}
	}

	return core1_0.RenderPassCreateInfo{
		Attachments:         attachments,
		Subpasses:           []core1_0.SubpassDescription{subpass},
		SubpassDependencies: dependencies,
	}
}

// CreateRenderPass creates the render pass d describes.
func CreateRenderPass(device core1_0.Device, d RenderPassDesc) (core1_0.RenderPass, error) {
	renderPass, _, err := device.CreateRenderPass(nil, d.Options())
	if err != nil {
		return nil, gfxerr.ResourceCreation(err, "render pass")
	}
	return renderPass, nil
}

// CreateFramebuffers creates one framebuffer per entry of views, each
// holding that entry's attachments in render pass order.
func CreateFramebuffers(device core1_0.Device, renderPass core1_0.RenderPass, extent core1_0.Extent2D, views [][]core1_0.ImageView) ([]core1_0.Framebuffer, error) {
	var framebuffers []core1_0.Framebuffer
	for _, attachments := range views {
		framebuffer, _, err := device.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass:  renderPass,
			Layers:      1,
			Attachments: attachments,
			Width:       extent.Width,
			Height:      extent.Height,
		})
		if err != nil {
			DestroyFramebuffers(framebuffers)
			return nil, gfxerr.ResourceCreation(err, "framebuffer")
		}

		framebuffers = append(framebuffers, framebuffer)
	}

	return framebuffers, nil
}

func DestroyFramebuffers(framebuffers []core1_0.Framebuffer) {
	for _, framebuffer := range framebuffers {
		framebuffer.Destroy(nil)
	}
}

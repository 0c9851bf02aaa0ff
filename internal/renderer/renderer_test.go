package renderer

import (
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/config"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/frames"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/resource"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/scene"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/window"
)

func TestNewVariant(t *testing.T) {
	c := qt.New(t)

	for _, test := range []struct {
		variant config.Variant
		chain   int
	}{
		{config.VariantTriangle, 0},
		{config.VariantTextured, 0},
		{config.VariantDeferred, 1},
	} {
		v, err := newVariant(config.Default(test.variant))
		c.Assert(err, qt.IsNil)
		c.Assert(v.chainLength(), qt.Equals, test.chain, qt.Commentf("%s", test.variant))
	}

	cfg := config.Default(config.VariantTriangle)
	cfg.Variant = config.Variant(9)
	_, err := newVariant(cfg)
	c.Assert(errors.Is(err, gfxerr.ErrConfiguration), qt.IsTrue)
}

func TestVariantPassesFitChain(t *testing.T) {
	c := qt.New(t)

	for _, v := range []variant{
		&forward{commandBuffers: make([]core1_0.CommandBuffer, 2)},
		&deferredRenderer{
			offscreenBuffers:   make([]core1_0.CommandBuffer, 2),
			compositionBuffers: make([]core1_0.CommandBuffer, 2),
		},
	} {
		slot := frames.Slot{Chain: make([]frames.Semaphore, v.chainLength())}
		plan, err := frames.PlanSubmits(slot, len(v.passes(1)))
		c.Assert(err, qt.IsNil, qt.Commentf("%T", v))
		c.Assert(plan, qt.HasLen, v.chainLength()+1)
	}
}

func TestForwardRenderPass(t *testing.T) {
	c := qt.New(t)

	triangle := forwardRenderPassDesc(config.VariantTriangle, core1_0.FormatB8G8R8A8SRGB, core1_0.FormatD32SignedFloat)
	c.Assert(triangle.HasDepth(), qt.IsFalse)
	c.Assert(triangle.AttachmentCount(), qt.Equals, 1)
	c.Assert(forwardClearValues(config.VariantTriangle), qt.HasLen, 1)

	textured := forwardRenderPassDesc(config.VariantTextured, core1_0.FormatB8G8R8A8SRGB, core1_0.FormatD32SignedFloat)
	c.Assert(textured.HasDepth(), qt.IsTrue)
	c.Assert(textured.AttachmentCount(), qt.Equals, 2)
	c.Assert(forwardClearValues(config.VariantTextured), qt.HasLen, 2)
}

func TestForwardPipeline(t *testing.T) {
	c := qt.New(t)
	extent := core1_0.Extent2D{Width: 800, Height: 600}

	triangle := forwardPipelineDesc(config.Default(config.VariantTriangle), nil, extent)
	c.Assert(triangle.VertexShader, qt.Equals, triangleVertexShader)
	c.Assert(triangle.FrontFace, qt.Equals, config.Clockwise)
	c.Assert(triangle.DepthTest, qt.IsFalse)
	c.Assert(triangle.SetLayouts, qt.HasLen, 0)
	c.Assert(triangle.Attributes, qt.DeepEquals, scene.ColorAttributes())

	textured := forwardPipelineDesc(config.Default(config.VariantTextured), nil, extent)
	c.Assert(textured.FragmentShader, qt.Equals, modelFragmentShader)
	c.Assert(textured.FrontFace, qt.Equals, config.CounterClockwise)
	c.Assert(textured.DepthTest, qt.IsTrue)
	c.Assert(textured.SetLayouts, qt.HasLen, 1)
	c.Assert(textured.Extent, qt.Equals, extent)
}

func TestTexturedPoolSizes(t *testing.T) {
	sizes := resource.PoolSizes(texturedBindings(), 3)
	qt.Assert(t, sizes, qt.DeepEquals, []core1_0.DescriptorPoolSize{
		{Type: core1_0.DescriptorTypeUniformBuffer, DescriptorCount: 3},
		{Type: core1_0.DescriptorTypeCombinedImageSampler, DescriptorCount: 3},
	})
}

func TestModelTransform(t *testing.T) {
	c := qt.New(t)

	c.Assert(modelTransform(0).ApproxEqual(mgl32.Translate3D(0, 0.5, 0)), qt.IsTrue)
	c.Assert(modelTransform(12).ApproxEqualThreshold(modelTransform(0), 1e-4), qt.IsTrue)
}

func TestAssetFS(t *testing.T) {
	_, name := assetFS("meshes/viking_room.obj")
	qt.Assert(t, name, qt.Equals, "viking_room.obj")
}

type fakeEvents struct {
	polls, waits int
	queued       []window.Event
}

func (f *fakeEvents) PollEvents() []window.Event {
	f.polls++
	events := f.queued
	f.queued = nil
	return events
}

func (f *fakeEvents) WaitEvents() []window.Event {
	f.waits++
	events := f.queued
	f.queued = nil
	return events
}

func TestNextEventsBlocksWhileMinimized(t *testing.T) {
	c := qt.New(t)
	source := &fakeEvents{}

	c.Assert(nextEvents(source, true), qt.HasLen, 0)
	c.Assert(source.polls, qt.Equals, 1)
	c.Assert(source.waits, qt.Equals, 0)

	source.queued = []window.Event{window.EventRestored}
	c.Assert(nextEvents(source, false), qt.DeepEquals, []window.Event{window.EventRestored})
	c.Assert(source.polls, qt.Equals, 1)
	c.Assert(source.waits, qt.Equals, 1)
}

package renderer

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/config"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/deferred"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/frames"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/pipeline"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/resource"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/scene"
)

const floorSize = 8

var floorColor = mgl32.Vec3{0.6, 0.6, 0.6}

// modelTransform turns the model about +Y, a full turn every twelve seconds.
func modelTransform(seconds float64) mgl32.Mat4 {
	angle := float32(seconds) * mgl32.DegToRad(30)
	return mgl32.Translate3D(0, 0.5, 0).Mul4(mgl32.HomogRotate3D(angle, mgl32.Vec3{0, 1, 0}))
}

// deferredRenderer writes the scene into the G-Buffer and then lights it
// into the swapchain image. Each frame is two submissions chained by a
// semaphore.
type deferredRenderer struct {
	ctx   *resource.Context
	cfg   config.Config
	clock scene.Clock

	gbuffer           *deferred.GBuffer
	sampler           core1_0.Sampler
	offscreenLayout   core1_0.DescriptorSetLayout
	offscreen         *pipeline.Pipeline
	compositionLayout core1_0.DescriptorSetLayout
	objects           []*deferred.Object

	extent             core1_0.Extent2D
	offscreenPool      core1_0.DescriptorPool
	lights             []*resource.Buffer
	compositionPool    core1_0.DescriptorPool
	compositionSets    []core1_0.DescriptorSet
	compositionPass    core1_0.RenderPass
	framebuffers       []core1_0.Framebuffer
	composition        *pipeline.Pipeline
	offscreenBuffers   []core1_0.CommandBuffer
	compositionBuffers []core1_0.CommandBuffer
}

func (d *deferredRenderer) chainLength() int {
	return 1
}

func (d *deferredRenderer) init(r *Renderer) error {
	d.ctx = r.Resources
	d.cfg = r.cfg
	d.clock = scene.NewClock()

	var err error
	d.gbuffer, err = deferred.InitGBuffer(d.ctx, d.cfg.OffscreenDimension)
	if err != nil {
		return err
	}

	d.sampler, err = d.ctx.CreateSampler(resource.SamplerOptions{AddressMode: core1_0.SamplerAddressModeClampToEdge})
	if err != nil {
		return err
	}

	d.offscreenLayout, err = d.ctx.CreateDescriptorSetLayout(deferred.OffscreenBindings())
	if err != nil {
		return err
	}

	d.offscreen, err = pipeline.Build(d.ctx.Device, r.Shaders, d.gbuffer.RenderPass, deferred.OffscreenPipelineDesc(d.offscreenLayout, d.cfg.FrontFace))
	if err != nil {
		return err
	}

	d.compositionLayout, err = d.ctx.CreateDescriptorSetLayout(deferred.CompositionBindings())
	if err != nil {
		return err
	}

	model := scene.Cube()
	if d.cfg.ModelPath != "" {
		fsys, name := assetFS(d.cfg.ModelPath)
		model, err = scene.LoadOBJ(fsys, name)
		if err != nil {
			return err
		}
	}

	for _, o := range []struct {
		name string
		mesh scene.Mesh
	}{
		{"floor", scene.Floor(floorSize, floorColor)},
		{"model", model},
	} {
		object, err := deferred.UploadObject(d.ctx, d.ctx, o.name, o.mesh)
		if err != nil {
			return err
		}
		d.objects = append(d.objects, object)
	}

	r.log.WithFields(logrus.Fields{
		"dimension": d.gbuffer.Width,
		"objects":   len(d.objects),
	}).Debug("g-buffer ready")
	return nil
}

func (d *deferredRenderer) initSwapchain(r *Renderer) error {
	sc := r.Swapchain
	d.extent = sc.Extent
	imageCount := sc.ImageCount()

	if err := d.createOffscreenSets(imageCount); err != nil {
		return err
	}
	if err := d.createCompositionSets(imageCount); err != nil {
		return err
	}

	var err error
	d.compositionPass, err = pipeline.CreateRenderPass(d.ctx.Device, deferred.CompositionRenderPassDesc(sc.Format.Format))
	if err != nil {
		return err
	}

	d.composition, err = pipeline.Build(d.ctx.Device, r.Shaders, d.compositionPass, deferred.CompositionPipelineDesc(d.compositionLayout, d.cfg.FrontFace, d.extent))
	if err != nil {
		return err
	}

	var views [][]core1_0.ImageView
	for _, image := range sc.Images {
		views = append(views, []core1_0.ImageView{image.View})
	}
	d.framebuffers, err = pipeline.CreateFramebuffers(d.ctx.Device, d.compositionPass, d.extent, views)
	if err != nil {
		return err
	}

	d.offscreenBuffers, err = d.ctx.AllocateCommandBuffers(imageCount)
	if err != nil {
		return err
	}
	d.compositionBuffers, err = d.ctx.AllocateCommandBuffers(imageCount)
	if err != nil {
		return err
	}

	for i := 0; i < imageCount; i++ {
		err = deferred.RecordOffscreenPass(d.offscreenBuffers[i], d.gbuffer, d.offscreen, d.objects, i)
		if err != nil {
			return err
		}
		err = deferred.RecordComposition(d.compositionBuffers[i], d.compositionPass, d.framebuffers[i], d.extent, d.composition, d.compositionSets[i])
		if err != nil {
			return err
		}
	}
	return nil
}

// createOffscreenSets gives every object one uniform buffer and descriptor
// set per swapchain image.
func (d *deferredRenderer) createOffscreenSets(imageCount int) error {
	var err error
	d.offscreenPool, err = d.ctx.CreateDescriptorPool(deferred.OffscreenBindings(), imageCount*len(d.objects))
	if err != nil {
		return err
	}

	var writes []core1_0.WriteDescriptorSet
	for _, object := range d.objects {
		object.Uniforms, err = resource.CreateUniformBuffers(d.ctx, int(unsafe.Sizeof(scene.OffscreenUBO{})), imageCount)
		if err != nil {
			return err
		}
		object.Sets, err = d.ctx.AllocateDescriptorSets(d.offscreenPool, d.offscreenLayout, imageCount)
		if err != nil {
			return err
		}
		for i, set := range object.Sets {
			writes = append(writes, resource.UniformWrite(set, 0, object.Uniforms[i]))
		}
	}
	return d.ctx.UpdateDescriptorSets(writes)
}

func (d *deferredRenderer) createCompositionSets(imageCount int) error {
	var err error
	d.lights, err = resource.CreateUniformBuffers(d.ctx, int(unsafe.Sizeof(scene.LightsUBO{})), imageCount)
	if err != nil {
		return err
	}

	d.compositionPool, err = d.ctx.CreateDescriptorPool(deferred.CompositionBindings(), imageCount)
	if err != nil {
		return err
	}

	d.compositionSets, err = d.ctx.AllocateDescriptorSets(d.compositionPool, d.compositionLayout, imageCount)
	if err != nil {
		return err
	}

	var writes []core1_0.WriteDescriptorSet
	for i, set := range d.compositionSets {
		writes = append(writes, deferred.CompositionWrites(set, d.gbuffer, d.sampler, d.lights[i])...)
	}
	return d.ctx.UpdateDescriptorSets(writes)
}

func (d *deferredRenderer) passes(imageIndex int) [][]core1_0.CommandBuffer {
	return [][]core1_0.CommandBuffer{
		{d.offscreenBuffers[imageIndex]},
		{d.compositionBuffers[imageIndex]},
	}
}

func (d *deferredRenderer) update(r *Renderer, frame frames.Frame) error {
	seconds := d.clock.Seconds()
	aspectRatio := scene.AspectRatio(d.extent)

	models := []mgl32.Mat4{mgl32.Ident4(), modelTransform(seconds)}
	for i, object := range d.objects {
		err := object.Uniforms[frame.ImageIndex].WriteData(0, scene.OffscreenTransforms(models[i], aspectRatio))
		if err != nil {
			return err
		}
	}

	return d.lights[frame.ImageIndex].WriteData(0, scene.DefaultLights(seconds, scene.DeferredEye))
}

func (d *deferredRenderer) destroySwapchain() {
	if d.ctx == nil {
		return
	}
	d.ctx.FreeCommandBuffers(d.compositionBuffers)
	d.compositionBuffers = nil
	d.ctx.FreeCommandBuffers(d.offscreenBuffers)
	d.offscreenBuffers = nil

	pipeline.DestroyFramebuffers(d.framebuffers)
	d.framebuffers = nil

	if d.composition != nil {
		d.composition.Destroy()
		d.composition = nil
	}
	if d.compositionPass != nil {
		d.compositionPass.Destroy(nil)
		d.compositionPass = nil
	}

	if d.compositionPool != nil {
		d.compositionPool.Destroy(nil)
		d.compositionPool = nil
	}
	d.compositionSets = nil
	resource.DestroyBuffers(d.lights)
	d.lights = nil

	if d.offscreenPool != nil {
		d.offscreenPool.Destroy(nil)
		d.offscreenPool = nil
	}
	for _, object := range d.objects {
		object.DestroyUniforms()
	}
}

func (d *deferredRenderer) destroy() {
	for _, object := range d.objects {
		object.Destroy()
	}
	d.objects = nil

	if d.compositionLayout != nil {
		d.compositionLayout.Destroy(nil)
		d.compositionLayout = nil
	}
	if d.offscreen != nil {
		d.offscreen.Destroy()
		d.offscreen = nil
	}
	if d.offscreenLayout != nil {
		d.offscreenLayout.Destroy(nil)
		d.offscreenLayout = nil
	}
	if d.sampler != nil {
		d.sampler.Destroy(nil)
		d.sampler = nil
	}
	if d.gbuffer != nil {
		d.gbuffer.Destroy()
		d.gbuffer = nil
	}
}

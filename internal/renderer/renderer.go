// Package renderer brings the device, swapchain and frame engine up for
// one variant and drives the per-frame loop.
package renderer

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/config"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/frames"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/gpu"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/resource"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/swapchain"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/window"
)

// variant is what differs between the forward and deferred renderers.
// Static resources live from init to destroy, swapchain resources are
// rebuilt on every recreation.
type variant interface {
	// chainLength is the number of passes per frame minus one.
	chainLength() int

	init(r *Renderer) error
	initSwapchain(r *Renderer) error
	destroySwapchain()
	destroy()

	passes(imageIndex int) [][]core1_0.CommandBuffer
	update(r *Renderer, frame frames.Frame) error
}

// Renderer owns every API object of a running program.
type Renderer struct {
	cfg    config.Config
	log    logrus.FieldLogger
	window *window.Window

	Instance  *gpu.Instance
	Surface   khr_surface.Surface
	Device    *gpu.Device
	Resources *resource.Context
	Swapchain *swapchain.Swapchain
	Frames    *frames.Engine

	// Shaders is where pipelines load SPIR-V from.
	Shaders fs.FS

	variant variant
	target  *frames.SwapchainTarget
	stats   *frameStats
}

func newVariant(cfg config.Config) (variant, error) {
	switch cfg.Variant {
	case config.VariantTriangle, config.VariantTextured:
		return &forward{}, nil
	case config.VariantDeferred:
		return &deferredRenderer{}, nil
	}
	return nil, gfxerr.Configuration("unknown renderer variant %d", cfg.Variant)
}

// New initializes the renderer for cfg.Variant into win. On failure
// everything created so far is released.
func New(cfg config.Config, win *window.Window, log logrus.FieldLogger) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v, err := newVariant(cfg)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		cfg:     cfg,
		log:     log.WithField("variant", cfg.Variant),
		window:  win,
		Shaders: os.DirFS(cfg.ShaderDir),
		variant: v,
		stats:   newFrameStats(),
	}

	if err = r.init(); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) init() error {
	loader, err := r.window.Loader()
	if err != nil {
		return err
	}

	r.Instance, err = gpu.CreateInstance(loader, r.window.InstanceExtensions(), r.cfg, r.log)
	if err != nil {
		return err
	}

	r.Surface, err = r.window.CreateSurface(r.Instance.Instance)
	if err != nil {
		return err
	}

	anisotropy := r.cfg.Variant == config.VariantTextured
	candidate, err := gpu.SelectDevice(r.Instance, r.Surface, gpu.Requirements{
		DeviceExtensions:  r.cfg.DeviceExtensions,
		SamplerAnisotropy: anisotropy,
	}, r.log)
	if err != nil {
		return err
	}

	validationLayers := []string(nil)
	if r.cfg.EnableValidation {
		validationLayers = r.cfg.ValidationLayers
	}
	r.Device, err = gpu.CreateLogicalDevice(candidate, gpu.LogicalDeviceOptions{
		Extensions:        r.cfg.DeviceExtensions,
		ValidationLayers:  validationLayers,
		SamplerAnisotropy: anisotropy,
	}, r.log)
	if err != nil {
		return err
	}

	r.Resources, err = resource.NewContext(r.Device.Device, r.Device.Physical, r.Device.GraphicsQueue, *r.Device.Indices.GraphicsFamily)
	if err != nil {
		return err
	}

	if err = r.createSwapchain(); err != nil {
		return err
	}

	if err = r.variant.init(r); err != nil {
		return err
	}
	if err = r.variant.initSwapchain(r); err != nil {
		return err
	}

	r.Frames, err = frames.New(frames.DeviceSync{Device: r.Device.Device}, r.cfg.FramesInFlight, r.variant.chainLength())
	if err != nil {
		return err
	}
	r.Frames.ResetImages(r.Swapchain.ImageCount())

	r.target = &frames.SwapchainTarget{
		GraphicsQueue: r.Device.GraphicsQueue,
		PresentQueue:  r.Device.PresentQueue,
		Passes:        r.variant.passes,
	}

	r.log.WithFields(logrus.Fields{
		"framesInFlight": r.Frames.FramesInFlight(),
		"images":         r.Swapchain.ImageCount(),
	}).Info("renderer ready")
	return nil
}

func (r *Renderer) createSwapchain() error {
	var err error
	r.Swapchain, err = swapchain.Create(r.Resources, swapchain.Options{
		Surface:        r.Surface,
		GraphicsFamily: *r.Device.Indices.GraphicsFamily,
		PresentFamily:  *r.Device.Indices.PresentFamily,
		Window:         r.window.DrawableSize(),
		ImageCount:     r.cfg.ImageCount,
	}, r.log)
	return err
}

// Config is the configuration the renderer was built with.
func (r *Renderer) Config() config.Config {
	return r.cfg
}

// DrawFrame renders and presents one frame. An ErrSwapchainOutOfDate
// result means the caller should RecreateSwapchain.
func (r *Renderer) DrawFrame() error {
	r.target.Swapchain = r.Swapchain
	err := r.Frames.DrawFrame(r.target, func(frame frames.Frame) error {
		return r.variant.update(r, frame)
	})
	if err != nil {
		return err
	}

	if fps, ms, ok := r.stats.frame(); ok {
		r.log.WithFields(logrus.Fields{
			"fps": fps,
			"ms":  ms,
		}).Debug("frame stats")
	}
	return nil
}

// RecreateSwapchain rebuilds the swapchain and everything sized to it once
// the device is idle. It does nothing while the window has no area.
func (r *Renderer) RecreateSwapchain() error {
	extent := r.window.DrawableSize()
	if extent.Width == 0 || extent.Height == 0 || r.window.Minimized() {
		return nil
	}

	if err := r.Device.WaitIdle(); err != nil {
		return errors.Wrap(err, "wait for idle before recreation")
	}

	r.variant.destroySwapchain()
	r.Swapchain.Destroy()
	r.Swapchain = nil

	if err := r.createSwapchain(); err != nil {
		return err
	}
	if err := r.variant.initSwapchain(r); err != nil {
		return err
	}
	r.Frames.ResetImages(r.Swapchain.ImageCount())

	r.log.WithField("extent", r.Swapchain.Extent).Debug("swapchain recreated")
	return nil
}

// eventSource is the part of the window the render loop reads events from.
type eventSource interface {
	PollEvents() []window.Event
	WaitEvents() []window.Event
}

// nextEvents polls while frames are being drawn. Otherwise nothing is drawn
// until the window changes, so it blocks.
func nextEvents(source eventSource, rendering bool) []window.Event {
	if rendering {
		return source.PollEvents()
	}
	return source.WaitEvents()
}

// Run polls the window and draws until it is closed, then waits for the
// device to drain. While the window is minimized it sleeps on the event
// queue instead.
func (r *Renderer) Run() error {
	rendering := true

	for {
		for _, event := range nextEvents(r.window, rendering) {
			switch event {
			case window.EventQuit:
				return r.Device.WaitIdle()
			case window.EventMinimized:
				rendering = false
			case window.EventRestored:
				rendering = true
			case window.EventResized:
				extent := r.window.DrawableSize()
				rendering = extent.Width > 0 && extent.Height > 0
				if rendering {
					if err := r.RecreateSwapchain(); err != nil {
						return err
					}
				}
			}
		}

		if !rendering {
			continue
		}

		err := r.DrawFrame()
		if errors.Is(err, gfxerr.ErrSwapchainOutOfDate) {
			err = r.RecreateSwapchain()
		}
		if err != nil {
			return err
		}
	}
}

// Destroy releases everything in reverse creation order. It is safe on a
// partially initialized renderer.
func (r *Renderer) Destroy() {
	if r.Device != nil && r.Device.Device != nil {
		if err := r.Device.WaitIdle(); err != nil {
			r.log.WithError(err).Warn("wait for idle before destroy")
		}
	}

	if r.Frames != nil {
		r.Frames.Destroy()
		r.Frames = nil
	}

	if r.Resources != nil {
		r.variant.destroySwapchain()
		r.variant.destroy()
	}

	if r.Swapchain != nil {
		r.Swapchain.Destroy()
		r.Swapchain = nil
	}

	if r.Resources != nil {
		r.Resources.Destroy()
		r.Resources = nil
	}

	r.Device.Destroy()
	r.Device = nil

	if r.Surface != nil {
		r.Surface.Destroy(nil)
		r.Surface = nil
	}

	r.Instance.Destroy()
	r.Instance = nil
}

// assetFS splits path into a file system rooted at its directory and the
// base name inside it.
func assetFS(path string) (fs.FS, string) {
	return os.DirFS(filepath.Dir(path)), filepath.Base(path)
}

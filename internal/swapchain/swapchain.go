// Package swapchain picks the presentation parameters for a surface and
// owns the swapchain images built from them.
package swapchain

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/config"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/resource"
)

// Options carry everything Create needs besides the device context.
type Options struct {
	Surface        khr_surface.Surface
	GraphicsFamily int
	PresentFamily  int
	Window         core1_0.Extent2D
	ImageCount     config.ImageCountPolicy
}

// Swapchain is a created swapchain together with its images and one color
// view per image.
type Swapchain struct {
	Extension   khr_swapchain.Extension
	Swapchain   khr_swapchain.Swapchain
	Images      []resource.Attachment
	Format      khr_surface.Format
	PresentMode khr_surface.PresentMode
	Extent      core1_0.Extent2D
}

// Create builds a swapchain sized to the window and a view for each image
// it hands back.
func Create(ctx *resource.Context, opts Options, log logrus.FieldLogger) (*Swapchain, error) {
	support, err := QuerySupport(opts.Surface, ctx.Physical)
	if err != nil {
		return nil, gfxerr.SwapchainCreation(err)
	}
	if !support.Adequate() {
		return nil, gfxerr.SwapchainCreation(gfxerr.NoSuitableDevice("surface reports no formats or present modes"))
	}

	surfaceFormat := ChooseSurfaceFormat(support.Formats)
	presentMode := ChoosePresentMode(support.PresentModes)
	extent := ChooseExtent(support.Capabilities, opts.Window)
	imageCount := ChooseImageCount(support.Capabilities, opts.ImageCount)

	sharingMode := core1_0.SharingModeExclusive
	queueFamilyIndices := ConcurrentFamilies(opts.GraphicsFamily, opts.PresentFamily)
	if queueFamilyIndices != nil {
		sharingMode = core1_0.SharingModeConcurrent
	}

	extension := khr_swapchain.CreateExtensionFromDevice(ctx.Device)
	if extension == nil {
		return nil, gfxerr.SwapchainCreation(errors.Newf("device extension %s is not enabled", khr_swapchain.ExtensionName))
	}

	sc := &Swapchain{
		Extension:   extension,
		Format:      surfaceFormat,
		PresentMode: presentMode,
		Extent:      extent,
	}

	sc.Swapchain, _, err = sc.Extension.CreateSwapchain(ctx.Device, nil, khr_swapchain.SwapchainCreateInfo{
		Surface: opts.Surface,

		MinImageCount:    imageCount,
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: queueFamilyIndices,

		PreTransform:   support.Capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    presentMode,
		Clipped:        true,
	})
	if err != nil {
		return nil, gfxerr.SwapchainCreation(err)
	}

	images, _, err := sc.Swapchain.SwapchainImages()
	if err != nil {
		sc.Destroy()
		return nil, gfxerr.SwapchainCreation(err)
	}

	for _, image := range images {
		view, err := ctx.CreateImageView(image, surfaceFormat.Format, core1_0.ImageAspectColor)
		if err != nil {
			sc.Destroy()
			return nil, err
		}
		sc.Images = append(sc.Images, resource.SwapchainAttachment(image, view, surfaceFormat.Format))
	}

	log.WithFields(logrus.Fields{
		"format":      surfaceFormat.Format,
		"presentMode": presentMode,
		"extent":      extent,
		"requested":   imageCount,
		"images":      len(sc.Images),
	}).Info("created swapchain")

	return sc, nil
}

// ImageCount is the number of images the implementation actually created.
func (s *Swapchain) ImageCount() int {
	return len(s.Images)
}

// Acquire returns the index of the next presentable image, signaling
// semaphore once it may be rendered to.
func (s *Swapchain) Acquire(semaphore core1_0.Semaphore) (int, error) {
	imageIndex, res, err := s.Swapchain.AcquireNextImage(common.NoTimeout, semaphore, nil)
	if res == khr_swapchain.VKErrorOutOfDate {
		return 0, gfxerr.OutOfDate("acquire")
	} else if err != nil {
		return 0, gfxerr.FrameSubmission(err, "acquire")
	}
	return imageIndex, nil
}

// Present queues imageIndex for display once waitSemaphore is signaled.
// Suboptimal is treated like out of date.
func (s *Swapchain) Present(queue core1_0.Queue, waitSemaphore core1_0.Semaphore, imageIndex int) error {
	res, err := s.Extension.QueuePresent(queue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{waitSemaphore},
		Swapchains:     []khr_swapchain.Swapchain{s.Swapchain},
		ImageIndices:   []int{imageIndex},
	})
	if res == khr_swapchain.VKErrorOutOfDate || res == khr_swapchain.VKSuboptimal {
		return gfxerr.OutOfDate("present")
	} else if err != nil {
		return gfxerr.FrameSubmission(err, "present")
	}
	return nil
}

// Destroy releases the image views before the swapchain that owns the images.
func (s *Swapchain) Destroy() {
	for i := range s.Images {
		s.Images[i].Destroy()
	}
	s.Images = nil

	if s.Swapchain != nil {
		s.Swapchain.Destroy(nil)
		s.Swapchain = nil
	}
}

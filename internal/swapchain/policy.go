package swapchain

import (
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/config"
)

// PreferredFormat is used verbatim when the surface has no preference and
// chosen first when the surface offers it.
var PreferredFormat = khr_surface.Format{
	Format:     core1_0.FormatB8G8R8A8SRGB,
	ColorSpace: khr_surface.ColorSpaceSRGBNonlinear,
}

// currentExtentMatchWindow is the surface's "size follows the window" sentinel.
const currentExtentMatchWindow = -1

// ChooseSurfaceFormat is a pure function of the reported format list.
func ChooseSurfaceFormat(availableFormats []khr_surface.Format) khr_surface.Format {
	if len(availableFormats) == 0 {
		return PreferredFormat
	}

	if len(availableFormats) == 1 && availableFormats[0].Format == core1_0.FormatUndefined {
		return PreferredFormat
	}

	for _, format := range availableFormats {
		if format.Format == PreferredFormat.Format && format.ColorSpace == PreferredFormat.ColorSpace {
			return format
		}
	}

	return availableFormats[0]
}

// ChoosePresentMode prefers mailbox and otherwise falls back to FIFO, the
// one mode every surface must support. Immediate is never chosen.
func ChoosePresentMode(availablePresentModes []khr_surface.PresentMode) khr_surface.PresentMode {
	for _, presentMode := range availablePresentModes {
		if presentMode == khr_surface.PresentModeMailbox {
			return presentMode
		}
	}

	return khr_surface.PresentModeFIFO
}

// ChooseExtent uses the surface-dictated extent unless the surface reports
// the match-window sentinel, in which case the window size is clamped into
// the capability bounds.
func ChooseExtent(capabilities *khr_surface.Capabilities, window core1_0.Extent2D) core1_0.Extent2D {
	if capabilities.CurrentExtent.Width != currentExtentMatchWindow {
		return capabilities.CurrentExtent
	}

	return core1_0.Extent2D{
		Width:  clamp(window.Width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clamp(window.Height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

// ChooseImageCount applies the configured policy and clamps the result to
// the surface capabilities.
func ChooseImageCount(capabilities *khr_surface.Capabilities, policy config.ImageCountPolicy) int {
	requested := capabilities.MinImageCount + policy.Extra
	if policy.Fixed > 0 {
		requested = policy.Fixed
	}
	return ClampImageCount(requested, capabilities.MinImageCount, capabilities.MaxImageCount)
}

// ClampImageCount bounds requested to [min, max]; max == 0 means unbounded.
func ClampImageCount(requested, min, max int) int {
	imageCount := requested
	if imageCount < min {
		imageCount = min
	}
	if max > 0 && imageCount > max {
		imageCount = max
	}
	return imageCount
}

// ConcurrentFamilies returns the family indices an image must be shared
// across, or nil when one family does both jobs and exclusive ownership
// suffices.
func ConcurrentFamilies(graphicsFamily, presentFamily int) []int {
	if graphicsFamily == presentFamily {
		return nil
	}
	return []int{graphicsFamily, presentFamily}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

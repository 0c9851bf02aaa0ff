package gpu

import (
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/swapchain"
)

// Candidate is a physical device together with everything selection
// looks at. It is queried once and never mutated.
type Candidate struct {
	Device     core1_0.PhysicalDevice
	Name       string
	Families   []QueueFamily
	Indices    QueueFamilyIndices
	Extensions map[string]struct{}
	Support    swapchain.Support

	SamplerAnisotropy bool
}

// Requirements lists what a device must provide to be selected.
type Requirements struct {
	DeviceExtensions  []string
	SamplerAnisotropy bool
}

// Suitable reports whether c satisfies req. When it does not, the second
// result names the first failed check.
func Suitable(c Candidate, req Requirements) (bool, string) {
	if !c.Indices.IsComplete() {
		return false, "missing graphics or present queue family"
	}

	for _, extension := range req.DeviceExtensions {
		if _, hasExtension := c.Extensions[extension]; !hasExtension {
			return false, "missing device extension " + extension
		}
	}

	if !c.Support.Adequate() {
		return false, "no surface formats or present modes"
	}

	if req.SamplerAnisotropy && !c.SamplerAnisotropy {
		return false, "sampler anisotropy not supported"
	}

	return true, ""
}

// Select returns the first suitable candidate.
func Select(candidates []Candidate, req Requirements) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, gfxerr.NoSuitableDevice("no physical devices with Vulkan support")
	}

	for _, candidate := range candidates {
		if ok, _ := Suitable(candidate, req); ok {
			return candidate, nil
		}
	}

	return Candidate{}, gfxerr.NoSuitableDevice("%d devices rejected", len(candidates))
}

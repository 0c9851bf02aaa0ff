package swapchain_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/config"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/swapchain"
)

func TestChooseSurfaceFormat(t *testing.T) {
	unorm := khr_surface.Format{Format: core1_0.FormatB8G8R8A8UnsignedNormalized, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear}

	tests := []struct {
		name      string
		available []khr_surface.Format
		want      khr_surface.Format
	}{
		{
			name:      "single undefined falls back to preferred",
			available: []khr_surface.Format{{Format: core1_0.FormatUndefined}},
			want:      swapchain.PreferredFormat,
		},
		{
			name:      "exact match wins over earlier entries",
			available: []khr_surface.Format{unorm, swapchain.PreferredFormat},
			want:      swapchain.PreferredFormat,
		},
		{
			name:      "first entry when nothing matches",
			available: []khr_surface.Format{unorm},
			want:      unorm,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			qt.Assert(t, swapchain.ChooseSurfaceFormat(test.available), qt.Equals, test.want)
		})
	}
}

func TestChooseSurfaceFormatIsPure(t *testing.T) {
	c := qt.New(t)

	available := []khr_surface.Format{
		{Format: core1_0.FormatB8G8R8A8UnsignedNormalized, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
		swapchain.PreferredFormat,
	}
	first := swapchain.ChooseSurfaceFormat(available)
	for i := 0; i < 10; i++ {
		c.Assert(swapchain.ChooseSurfaceFormat(available), qt.Equals, first)
	}
	c.Assert(available[1], qt.Equals, swapchain.PreferredFormat)
}

func TestChoosePresentMode(t *testing.T) {
	tests := []struct {
		name      string
		available []khr_surface.PresentMode
		want      khr_surface.PresentMode
	}{
		{"mailbox preferred", []khr_surface.PresentMode{khr_surface.PresentModeFIFO, khr_surface.PresentModeMailbox}, khr_surface.PresentModeMailbox},
		{"fifo only", []khr_surface.PresentMode{khr_surface.PresentModeFIFO}, khr_surface.PresentModeFIFO},
		{"immediate never chosen", []khr_surface.PresentMode{khr_surface.PresentModeImmediate, khr_surface.PresentModeFIFO}, khr_surface.PresentModeFIFO},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			qt.Assert(t, swapchain.ChoosePresentMode(test.available), qt.Equals, test.want)
		})
	}
}

func TestChooseExtent(t *testing.T) {
	c := qt.New(t)

	fixed := &khr_surface.Capabilities{
		CurrentExtent: core1_0.Extent2D{Width: 1024, Height: 768},
	}
	c.Assert(swapchain.ChooseExtent(fixed, core1_0.Extent2D{Width: 800, Height: 600}), qt.Equals, core1_0.Extent2D{Width: 1024, Height: 768})

	followsWindow := &khr_surface.Capabilities{
		CurrentExtent:  core1_0.Extent2D{Width: -1, Height: -1},
		MinImageExtent: core1_0.Extent2D{Width: 100, Height: 100},
		MaxImageExtent: core1_0.Extent2D{Width: 1920, Height: 1080},
	}
	c.Assert(swapchain.ChooseExtent(followsWindow, core1_0.Extent2D{Width: 800, Height: 600}), qt.Equals, core1_0.Extent2D{Width: 800, Height: 600})
	c.Assert(swapchain.ChooseExtent(followsWindow, core1_0.Extent2D{Width: 4000, Height: 50}), qt.Equals, core1_0.Extent2D{Width: 1920, Height: 100})
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		policy   config.ImageCountPolicy
		want     int
	}{
		{"unbounded max leaves request alone", 2, 0, config.ImageCountPolicy{Fixed: 3}, 3},
		{"clamped to max", 2, 2, config.ImageCountPolicy{Fixed: 3}, 2},
		{"min plus two", 2, 8, config.ImageCountPolicy{Extra: 2}, 4},
		{"min plus two clamped", 3, 4, config.ImageCountPolicy{Extra: 2}, 4},
		{"fixed below min raised", 3, 0, config.ImageCountPolicy{Fixed: 1}, 3},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			caps := &khr_surface.Capabilities{MinImageCount: test.min, MaxImageCount: test.max}
			qt.Assert(t, swapchain.ChooseImageCount(caps, test.policy), qt.Equals, test.want)
		})
	}
}

func TestClampImageCountBounds(t *testing.T) {
	c := qt.New(t)

	for min := 1; min <= 4; min++ {
		for max := 0; max <= 6; max++ {
			if max != 0 && max < min {
				continue
			}
			for requested := 0; requested <= 8; requested++ {
				got := swapchain.ClampImageCount(requested, min, max)
				c.Assert(got >= min, qt.IsTrue, qt.Commentf("min=%d max=%d requested=%d", min, max, requested))
				if max > 0 {
					c.Assert(got <= max, qt.IsTrue, qt.Commentf("min=%d max=%d requested=%d", min, max, requested))
				} else if requested >= min {
					c.Assert(got, qt.Equals, requested)
				}
			}
		}
	}
}

func TestConcurrentFamilies(t *testing.T) {
	c := qt.New(t)

	c.Assert(swapchain.ConcurrentFamilies(0, 0), qt.IsNil)
	c.Assert(swapchain.ConcurrentFamilies(0, 2), qt.DeepEquals, []int{0, 2})
}

func TestSupportAdequate(t *testing.T) {
	c := qt.New(t)

	c.Assert(swapchain.Support{}.Adequate(), qt.IsFalse)
	c.Assert(swapchain.Support{
		Formats:      []khr_surface.Format{swapchain.PreferredFormat},
		PresentModes: []khr_surface.PresentMode{khr_surface.PresentModeFIFO},
	}.Adequate(), qt.IsTrue)
}

// Package window owns the SDL2 window the renderer presents into.
package window

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	vkng_surface_sdl2 "github.com/vkngwrapper/integrations/sdl2"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/config"
)

// Event is the subset of window events the render loop reacts to.
type Event int

const (
	EventNone Event = iota
	EventQuit
	EventMinimized
	EventRestored
	EventResized
)

func (e Event) String() string {
	switch e {
	case EventQuit:
		return "quit"
	case EventMinimized:
		return "minimized"
	case EventRestored:
		return "restored"
	case EventResized:
		return "resized"
	}
	return "none"
}

// Classify maps an SDL event onto an Event. Anything the loop ignores is
// EventNone.
func Classify(event sdl.Event) Event {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return EventQuit
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_MINIMIZED:
			return EventMinimized
		case sdl.WINDOWEVENT_RESTORED:
			return EventRestored
		case sdl.WINDOWEVENT_RESIZED:
			return EventResized
		}
	}
	return EventNone
}

// Window is a resizable Vulkan-capable SDL window.
type Window struct {
	window *sdl.Window
}

// Create initializes SDL video and opens the window.
func Create(cfg config.Window) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "init sdl")
	}

	window, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(cfg.Width), int32(cfg.Height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "create window")
	}

	return &Window{window: window}, nil
}

// Loader resolves the Vulkan entry points through SDL.
func (w *Window) Loader() (core.Loader, error) {
	loader, err := core.CreateLoaderFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return nil, errors.Wrap(err, "create loader")
	}
	return loader, nil
}

// InstanceExtensions are the extensions the instance needs to present to
// this window.
func (w *Window) InstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// DrawableSize is the framebuffer size in pixels, which may differ from the
// window size on high-DPI displays.
func (w *Window) DrawableSize() core1_0.Extent2D {
	width, height := w.window.VulkanGetDrawableSize()
	return core1_0.Extent2D{Width: int(width), Height: int(height)}
}

func (w *Window) Minimized() bool {
	return w.window.GetFlags()&sdl.WINDOW_MINIMIZED != 0
}

// CreateSurface creates the presentation surface for instance.
func (w *Window) CreateSurface(instance core1_0.Instance) (khr_surface.Surface, error) {
	surfaceLoader := vkng_surface_sdl2.CreateExtensionFromInstance(instance)
	surface, _, err := surfaceLoader.CreateSurface(instance, w.window)
	if err != nil {
		return nil, errors.Wrap(err, "create surface")
	}
	return surface, nil
}

// PollEvents drains the SDL queue and returns the events the loop cares
// about, in arrival order.
func (w *Window) PollEvents() []Event {
	return drain(nil)
}

// WaitEvents blocks until SDL has at least one event queued, then drains the
// queue like PollEvents. The result may be empty if nothing queued matters
// to the loop.
func (w *Window) WaitEvents() []Event {
	var events []Event
	if e := Classify(sdl.WaitEvent()); e != EventNone {
		events = append(events, e)
	}
	return drain(events)
}

func drain(events []Event) []Event {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if e := Classify(event); e != EventNone {
			events = append(events, e)
		}
	}
	return events
}

func (w *Window) Destroy() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}

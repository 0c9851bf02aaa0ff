// Package frames throttles the CPU to a fixed number of frames in flight.
//
// Each frame slot owns an image-acquired semaphore, a render-finished
// semaphore and a fence that starts signaled. Synchronization objects are
// indexed by slot, while anything tied to a presentable image (command
// buffers, uniform buffers, descriptor sets, framebuffers) is indexed by the
// image index the target hands back, which need not match the slot.
package frames

import (
	"github.com/cockroachdb/errors"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
)

// Fence is a CPU-waitable completion signal.
type Fence interface {
	// Wait blocks until the fence is signaled.
	Wait() error
	Reset() error
	Destroy()
}

// Semaphore is a GPU-side ordering signal.
type Semaphore interface {
	Destroy()
}

// SyncFactory creates synchronization objects.
type SyncFactory interface {
	NewSemaphore() (Semaphore, error)
	NewFence(signaled bool) (Fence, error)
}

// Target is what a frame is drawn to: something that hands out images,
// accepts work and presents.
type Target interface {
	// Acquire returns the next image index and signals semaphore when the
	// image may be written.
	Acquire(semaphore Semaphore) (int, error)
	// Submit queues the frame's work. It must wait on ImageAvailable,
	// signal RenderFinished and signal InFlight when the work completes.
	Submit(frame Frame) error
	// Present displays the image once RenderFinished is signaled.
	Present(frame Frame) error
}

// Slot is the synchronization state of one frame in flight. Chain holds
// additional semaphores linking consecutive submissions of a multi-pass
// frame.
type Slot struct {
	ImageAvailable Semaphore
	RenderFinished Semaphore
	Chain          []Semaphore
	InFlight       Fence
}

func (s *Slot) destroy() {
	if s.InFlight != nil {
		s.InFlight.Destroy()
	}
	for _, semaphore := range s.Chain {
		semaphore.Destroy()
	}
	if s.RenderFinished != nil {
		s.RenderFinished.Destroy()
	}
	if s.ImageAvailable != nil {
		s.ImageAvailable.Destroy()
	}
}

// Frame identifies one frame being drawn.
type Frame struct {
	Slot       *Slot
	SlotIndex  int
	ImageIndex int
}

// Engine cycles through its slots, one per DrawFrame.
type Engine struct {
	slots   []Slot
	current int

	// imagesInFlight is the fence of the slot last submitted to each image.
	imagesInFlight []Fence
}

// New creates n slots, each with chainLength extra chaining semaphores.
func New(factory SyncFactory, n, chainLength int) (*Engine, error) {
	if n < 1 {
		return nil, errors.AssertionFailedf("frames in flight must be positive, got %d", n)
	}

	e := &Engine{}
	for i := 0; i < n; i++ {
		slot, err := newSlot(factory, chainLength)
		if err != nil {
			slot.destroy()
			e.Destroy()
			return nil, gfxerr.ResourceCreation(err, "frame sync objects")
		}
		e.slots = append(e.slots, slot)
	}

	return e, nil
}

func newSlot(factory SyncFactory, chainLength int) (Slot, error) {
	var slot Slot
	var err error

	slot.ImageAvailable, err = factory.NewSemaphore()
	if err != nil {
		return slot, err
	}

	slot.RenderFinished, err = factory.NewSemaphore()
	if err != nil {
		return slot, err
	}

	for i := 0; i < chainLength; i++ {
		semaphore, err := factory.NewSemaphore()
		if err != nil {
			return slot, err
		}
		slot.Chain = append(slot.Chain, semaphore)
	}

	slot.InFlight, err = factory.NewFence(true)
	return slot, err
}

// FramesInFlight is the number of slots.
func (e *Engine) FramesInFlight() int {
	return len(e.slots)
}

// Current is the index of the slot the next DrawFrame will use.
func (e *Engine) Current() int {
	return e.current
}

// ResetImages forgets which slot last used each image; call it whenever
// the set of presentable images changes.
func (e *Engine) ResetImages(imageCount int) {
	e.imagesInFlight = make([]Fence, imageCount)
}

// DrawFrame runs one frame through target. prepare is called once the image
// index is known and its previous frame has retired, before anything is
// submitted; per-image uniforms are written there.
//
// Errors are marked gfxerr.ErrFrameSubmission; a stale swapchain is reported
// as gfxerr.ErrSwapchainOutOfDate and leaves the slot reusable.
func (e *Engine) DrawFrame(target Target, prepare func(Frame) error) error {
	slot := &e.slots[e.current]

	if err := slot.InFlight.Wait(); err != nil {
		return gfxerr.FrameSubmission(err, "fence wait")
	}

	imageIndex, err := target.Acquire(slot.ImageAvailable)
	if err != nil {
		return markFrame(err, "acquire")
	}

	if imageIndex >= len(e.imagesInFlight) {
		grown := make([]Fence, imageIndex+1)
		copy(grown, e.imagesInFlight)
		e.imagesInFlight = grown
	}
	if previous := e.imagesInFlight[imageIndex]; previous != nil && previous != slot.InFlight {
		if err = previous.Wait(); err != nil {
			return gfxerr.FrameSubmission(err, "image fence wait")
		}
	}
	e.imagesInFlight[imageIndex] = slot.InFlight

	frame := Frame{Slot: slot, SlotIndex: e.current, ImageIndex: imageIndex}

	if prepare != nil {
		if err = prepare(frame); err != nil {
			return err
		}
	}

	if err = slot.InFlight.Reset(); err != nil {
		return gfxerr.FrameSubmission(err, "fence reset")
	}

	if err = target.Submit(frame); err != nil {
		return markFrame(err, "submit")
	}

	e.current = (e.current + 1) % len(e.slots)

	if err = target.Present(frame); err != nil {
		return markFrame(err, "present")
	}

	return nil
}

func markFrame(err error, stage string) error {
	if errors.Is(err, gfxerr.ErrFrameSubmission) {
		return err
	}
	return gfxerr.FrameSubmission(err, stage)
}

// Destroy releases every slot's objects. The device must be idle.
func (e *Engine) Destroy() {
	for i := range e.slots {
		e.slots[i].destroy()
	}
	e.slots = nil
	e.imagesInFlight = nil
}

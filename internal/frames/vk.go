package frames

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/swapchain"
)

// DeviceSync creates fences and semaphores on a logical device.
type DeviceSync struct {
	Device core1_0.Device
}

func (s DeviceSync) NewSemaphore() (Semaphore, error) {
	semaphore, _, err := s.Device.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return nil, err
	}
	return deviceSemaphore{semaphore}, nil
}

func (s DeviceSync) NewFence(signaled bool) (Fence, error) {
	options := core1_0.FenceCreateInfo{}
	if signaled {
		options.Flags = core1_0.FenceCreateSignaled
	}
	fence, _, err := s.Device.CreateFence(nil, options)
	if err != nil {
		return nil, err
	}
	return deviceFence{device: s.Device, fence: fence}, nil
}

type deviceSemaphore struct {
	semaphore core1_0.Semaphore
}

func (s deviceSemaphore) Destroy() {
	s.semaphore.Destroy(nil)
}

type deviceFence struct {
	device core1_0.Device
	fence  core1_0.Fence
}

func (f deviceFence) Wait() error {
	_, err := f.device.WaitForFences(true, common.NoTimeout, []core1_0.Fence{f.fence})
	return err
}

func (f deviceFence) Reset() error {
	_, err := f.device.ResetFences([]core1_0.Fence{f.fence})
	return err
}

func (f deviceFence) Destroy() {
	f.fence.Destroy(nil)
}

// RawSemaphore returns the API object behind a semaphore from DeviceSync.
func RawSemaphore(semaphore Semaphore) core1_0.Semaphore {
	if s, ok := semaphore.(deviceSemaphore); ok {
		return s.semaphore
	}
	return nil
}

// RawFence returns the API object behind a fence from DeviceSync.
func RawFence(fence Fence) core1_0.Fence {
	if f, ok := fence.(deviceFence); ok {
		return f.fence
	}
	return nil
}

// PassSubmit is the synchronization of one pass in a frame's submission.
type PassSubmit struct {
	Wait      Semaphore
	WaitStage core1_0.PipelineStageFlags
	Signal    Semaphore
	// Fence is set on the last pass only.
	Fence Fence
}

// PlanSubmits chains passCount passes through slot. The first pass waits on
// ImageAvailable before writing color attachments. Every later pass waits on
// the previous pass's chain semaphore before its fragment shaders run, since
// it samples what that pass wrote. The last pass signals RenderFinished and
// carries the slot fence.
func PlanSubmits(slot Slot, passCount int) ([]PassSubmit, error) {
	if passCount == 0 {
		return nil, errors.AssertionFailedf("frame has no passes")
	}
	if len(slot.Chain) < passCount-1 {
		return nil, errors.AssertionFailedf("%d passes need %d chain semaphores, slot has %d",
			passCount, passCount-1, len(slot.Chain))
	}

	plan := make([]PassSubmit, passCount)
	for i := range plan {
		pass := &plan[i]
		if i == 0 {
			pass.Wait = slot.ImageAvailable
			pass.WaitStage = core1_0.PipelineStageColorAttachmentOutput
		} else {
			pass.Wait = slot.Chain[i-1]
			pass.WaitStage = core1_0.PipelineStageFragmentShader
		}

		if i == passCount-1 {
			pass.Signal = slot.RenderFinished
			pass.Fence = slot.InFlight
		} else {
			pass.Signal = slot.Chain[i]
		}
	}
	return plan, nil
}

// SwapchainTarget draws into a swapchain. Each frame is a sequence of
// passes submitted in one batch, synchronized as PlanSubmits describes.
type SwapchainTarget struct {
	Swapchain     *swapchain.Swapchain
	GraphicsQueue core1_0.Queue
	PresentQueue  core1_0.Queue

	// Passes returns the command buffers to submit for an image, one entry
	// per pass.
	Passes func(imageIndex int) [][]core1_0.CommandBuffer
}

func (t *SwapchainTarget) Acquire(semaphore Semaphore) (int, error) {
	return t.Swapchain.Acquire(RawSemaphore(semaphore))
}

func (t *SwapchainTarget) Submit(frame Frame) error {
	passes := t.Passes(frame.ImageIndex)
	plan, err := PlanSubmits(*frame.Slot, len(passes))
	if err != nil {
		return errors.Wrapf(err, "image %d", frame.ImageIndex)
	}

	submits := make([]core1_0.SubmitInfo, 0, len(plan))
	for i, pass := range plan {
		submits = append(submits, core1_0.SubmitInfo{
			WaitSemaphores:   []core1_0.Semaphore{RawSemaphore(pass.Wait)},
			WaitDstStageMask: []core1_0.PipelineStageFlags{pass.WaitStage},
			CommandBuffers:   passes[i],
			SignalSemaphores: []core1_0.Semaphore{RawSemaphore(pass.Signal)},
		})
	}

	_, err = t.GraphicsQueue.Submit(RawFence(frame.Slot.InFlight), submits)
	if err != nil {
		return gfxerr.FrameSubmission(err, "submit")
	}
	return nil
}

func (t *SwapchainTarget) Present(frame Frame) error {
	return t.Swapchain.Present(t.PresentQueue, RawSemaphore(frame.Slot.RenderFinished), frame.ImageIndex)
}

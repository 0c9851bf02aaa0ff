// Package gfxerr holds the error taxonomy shared by the renderer packages.
// Every error leaving a package carries a category mark and, where one
// exists, a specific mark, so callers can branch with errors.Is.
package gfxerr

import (
	"github.com/cockroachdb/errors"
)

// Categories.
var (
	ErrConfiguration        = errors.New("configuration error")
	ErrDeviceSelection      = errors.New("device selection error")
	ErrResourceCreation     = errors.New("resource creation error")
	ErrFrameSubmission      = errors.New("frame submission error")
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// Specific failures.
var (
	ErrNoSuitableDevice            = errors.New("failed to find a suitable GPU")
	ErrDeviceCreation              = errors.New("failed to create logical device")
	ErrSwapchainCreation           = errors.New("failed to create swapchain")
	ErrUnsupportedMemoryType       = errors.New("failed to find any suitable memory type")
	ErrUnsupportedLayoutTransition = errors.New("unsupported layout transition")

	// ErrSwapchainOutOfDate reports an acquire or present result that
	// requires the swapchain to be rebuilt before the next frame.
	ErrSwapchainOutOfDate = errors.New("swapchain out of date")
)

func mark(err error, marks ...error) error {
	for _, m := range marks {
		err = errors.Mark(err, m)
	}
	return err
}

// Configuration builds a configuration error.
func Configuration(format string, args ...interface{}) error {
	return mark(errors.Newf(format, args...), ErrConfiguration)
}

// NoSuitableDevice reports that device selection found nothing usable.
func NoSuitableDevice(format string, args ...interface{}) error {
	return mark(errors.Wrapf(ErrNoSuitableDevice, format, args...), ErrDeviceSelection)
}

// DeviceCreation wraps a logical device creation failure.
func DeviceCreation(cause error) error {
	return mark(errors.Wrap(cause, "create logical device"), ErrDeviceCreation, ErrResourceCreation)
}

// SwapchainCreation wraps a swapchain creation failure.
func SwapchainCreation(cause error) error {
	return mark(errors.Wrap(cause, "create swapchain"), ErrSwapchainCreation, ErrResourceCreation)
}

// ResourceCreation wraps the failure of any other device object creation.
func ResourceCreation(cause error, object string) error {
	return mark(errors.Wrapf(cause, "create %s", object), ErrResourceCreation)
}

// FrameSubmission wraps an acquire, submit or present failure.
func FrameSubmission(cause error, stage string) error {
	return mark(errors.Wrapf(cause, "frame %s", stage), ErrFrameSubmission)
}

// OutOfDate reports a stale swapchain observed during the given stage.
func OutOfDate(stage string) error {
	return mark(errors.Wrapf(ErrSwapchainOutOfDate, "frame %s", stage), ErrFrameSubmission)
}

// UnsupportedMemoryType reports a memory type lookup with no match.
func UnsupportedMemoryType(typeFilter uint32, properties interface{}) error {
	return mark(errors.Wrapf(ErrUnsupportedMemoryType, "filter %#b, properties %v", typeFilter, properties),
		ErrUnsupportedOperation)
}

// UnsupportedLayoutTransition reports an image layout pair with no barrier recipe.
func UnsupportedLayoutTransition(oldLayout, newLayout interface{}) error {
	return mark(errors.Wrapf(ErrUnsupportedLayoutTransition, "%v -> %v", oldLayout, newLayout),
		ErrUnsupportedOperation)
}

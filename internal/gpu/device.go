package gpu

import (
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_portability_subset"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
)

// Device is the logical device plus the queues the renderer submits to.
// Graphics and present may be the same queue.
type Device struct {
	Physical core1_0.PhysicalDevice
	Device   core1_0.Device
	Indices  QueueFamilyIndices

	GraphicsQueue core1_0.Queue
	PresentQueue  core1_0.Queue
}

// LogicalDeviceOptions carries the parts of the configuration device
// creation depends on.
type LogicalDeviceOptions struct {
	Extensions        []string
	ValidationLayers  []string
	SamplerAnisotropy bool
}

// CreateLogicalDevice requests one queue of priority 1.0 per unique family.
func CreateLogicalDevice(candidate Candidate, opts LogicalDeviceOptions, log logrus.FieldLogger) (*Device, error) {
	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	queuePriority := float32(1.0)
	for _, queueFamily := range UniqueFamilies(candidate.Indices) {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{queuePriority},
		})
	}
	if len(queueFamilyOptions) == 0 {
		return nil, gfxerr.DeviceCreation(gfxerr.NoSuitableDevice("%s has incomplete queue families", candidate.Name))
	}

	extensionNames := DeviceExtensions(candidate, opts.Extensions)

	device, _, err := candidate.Device.CreateDevice(nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos: queueFamilyOptions,
		EnabledFeatures: &core1_0.PhysicalDeviceFeatures{
			SamplerAnisotropy: opts.SamplerAnisotropy,
		},
		EnabledExtensionNames: extensionNames,
		EnabledLayerNames:     opts.ValidationLayers,
	})
	if err != nil {
		return nil, gfxerr.DeviceCreation(err)
	}

	log.WithFields(logrus.Fields{
		"queues":     len(queueFamilyOptions),
		"extensions": extensionNames,
	}).Debug("logical device created")

	return &Device{
		Physical:      candidate.Device,
		Device:        device,
		Indices:       candidate.Indices,
		GraphicsQueue: device.GetQueue(*candidate.Indices.GraphicsFamily, 0),
		PresentQueue:  device.GetQueue(*candidate.Indices.PresentFamily, 0),
	}, nil
}

// DeviceExtensions is required plus the portability subset when the
// candidate exposes it. Portability implementations such as MoltenVK must
// have it enabled.
func DeviceExtensions(candidate Candidate, required []string) []string {
	var extensionNames []string
	extensionNames = append(extensionNames, required...)

	if _, supported := candidate.Extensions[khr_portability_subset.ExtensionName]; supported {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}
	return extensionNames
}

// WaitIdle blocks until every queue of the device has drained.
func (d *Device) WaitIdle() error {
	_, err := d.Device.WaitIdle()
	return err
}

func (d *Device) Destroy() {
	if d == nil || d.Device == nil {
		return
	}
	d.Device.Destroy(nil)
	d.Device = nil
}

package gpu

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/swapchain"
)

// QueryCandidates gathers selection data for every physical device. A device
// whose queries fail is logged and left out.
func QueryCandidates(instance *Instance, surface khr_surface.Surface, log logrus.FieldLogger) ([]Candidate, error) {
	physicalDevices, _, err := instance.Instance.EnumeratePhysicalDevices()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate physical devices")
	}

	var candidates []Candidate
	for _, device := range physicalDevices {
		candidate, err := queryCandidate(device, surface)
		if err != nil {
			log.WithError(err).Warn("skipping physical device")
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func queryCandidate(device core1_0.PhysicalDevice, surface khr_surface.Surface) (Candidate, error) {
	candidate := Candidate{Device: device}

	properties, err := device.Properties()
	if err != nil {
		return candidate, errors.Wrap(err, "query device properties")
	}
	candidate.Name = properties.DriverName

	for queueFamilyIdx, queueFamily := range device.QueueFamilyProperties() {
		supported, _, err := surface.PhysicalDeviceSurfaceSupport(device, queueFamilyIdx)
		if err != nil {
			return candidate, errors.Wrapf(err, "query present support for family %d", queueFamilyIdx)
		}

		candidate.Families = append(candidate.Families, QueueFamily{
			Graphics: (queueFamily.QueueFlags & core1_0.QueueGraphics) != 0,
			Present:  supported,
		})
	}
	candidate.Indices = FindQueueFamilies(candidate.Families)

	extensions, _, err := device.EnumerateDeviceExtensionProperties()
	if err != nil {
		return candidate, errors.Wrap(err, "enumerate device extensions")
	}
	candidate.Extensions = make(map[string]struct{}, len(extensions))
	for name := range extensions {
		candidate.Extensions[name] = struct{}{}
	}

	candidate.Support, err = swapchain.QuerySupport(surface, device)
	if err != nil {
		return candidate, err
	}

	candidate.SamplerAnisotropy = device.Features().SamplerAnisotropy
	return candidate, nil
}

// SelectDevice queries every device and returns the first suitable one.
func SelectDevice(instance *Instance, surface khr_surface.Surface, req Requirements, log logrus.FieldLogger) (Candidate, error) {
	candidates, err := QueryCandidates(instance, surface, log)
	if err != nil {
		return Candidate{}, err
	}

	for _, c := range candidates {
		if ok, reason := Suitable(c, req); !ok {
			log.WithField("device", c.Name).Debugf("rejected: %s", reason)
		}
	}

	selected, err := Select(candidates, req)
	if err != nil {
		return selected, err
	}

	log.WithFields(logrus.Fields{
		"device":   selected.Name,
		"graphics": *selected.Indices.GraphicsFamily,
		"present":  *selected.Indices.PresentFamily,
	}).Info("selected physical device")
	return selected, nil
}

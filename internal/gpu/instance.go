// Package gpu selects a physical device and brings up the logical device
// and its graphics and present queues.
package gpu

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/config"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
)

// Instance owns the API instance and the optional debug capability
// resolved alongside it.
type Instance struct {
	Loader   core.Loader
	Instance core1_0.Instance

	// Debugger is nil when validation is disabled.
	Debugger *Debugger
}

// CreateInstance enables the window system's instance extensions and, when
// cfg asks for it, the validation layers and debug messenger.
func CreateInstance(loader core.Loader, windowExtensions []string, cfg config.Config, log logrus.FieldLogger) (*Instance, error) {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    cfg.ApplicationName,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "Firefly",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_2,
	}

	extensions, _, err := loader.AvailableExtensions()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate instance extensions")
	}

	for _, ext := range windowExtensions {
		if _, hasExt := extensions[ext]; !hasExt {
			return nil, gfxerr.Configuration("missing window system extension %s", ext)
		}
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext)
	}

	var debugOptions ext_debug_utils.DebugUtilsMessengerCreateInfo
	if cfg.EnableValidation {
		if _, hasExt := extensions[ext_debug_utils.ExtensionName]; !hasExt {
			return nil, gfxerr.Configuration("validation requested but %s is unavailable", ext_debug_utils.ExtensionName)
		}
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext_debug_utils.ExtensionName)

		layers, _, err := loader.AvailableLayers()
		if err != nil {
			return nil, errors.Wrap(err, "enumerate instance layers")
		}

		for _, layer := range cfg.ValidationLayers {
			if _, hasValidation := layers[layer]; !hasValidation {
				return nil, gfxerr.Configuration("validation layer %s not available- install LunarG Vulkan SDK", layer)
			}
			instanceOptions.EnabledLayerNames = append(instanceOptions.EnabledLayerNames, layer)
		}

		// Chained so instance creation and destruction are covered too.
		debugOptions = messengerOptions(log)
		instanceOptions.Next = debugOptions
	}

	instance, _, err := loader.CreateInstance(nil, instanceOptions)
	if err != nil {
		return nil, gfxerr.ResourceCreation(err, "instance")
	}

	result := &Instance{Loader: loader, Instance: instance}
	if cfg.EnableValidation {
		result.Debugger, err = newDebugger(instance, debugOptions)
		if err != nil {
			instance.Destroy(nil)
			return nil, err
		}
	}

	log.WithFields(logrus.Fields{
		"extensions": instanceOptions.EnabledExtensionNames,
		"layers":     instanceOptions.EnabledLayerNames,
	}).Debug("instance created")

	return result, nil
}

// Destroy releases the debug messenger before the instance.
func (i *Instance) Destroy() {
	if i == nil {
		return
	}

	i.Debugger.Destroy()
	i.Debugger = nil

	if i.Instance != nil {
		i.Instance.Destroy(nil)
		i.Instance = nil
	}
}

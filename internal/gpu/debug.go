package gpu

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
)

// Debugger is the validation message capability. It is resolved once when
// the instance is created; a nil *Debugger means the capability is absent
// and every method is a no-op.
type Debugger struct {
	messenger ext_debug_utils.Messenger
}

func newDebugger(instance core1_0.Instance, options ext_debug_utils.DebugUtilsMessengerCreateInfo) (*Debugger, error) {
	debugUtils := ext_debug_utils.CreateExtensionFromInstance(instance)
	if debugUtils == nil {
		return nil, gfxerr.ResourceCreation(errors.Newf("instance extension %s is not enabled", ext_debug_utils.ExtensionName), "debug messenger")
	}

	messenger, _, err := debugUtils.CreateDebugUtilsMessenger(instance, nil, options)
	if err != nil {
		return nil, gfxerr.ResourceCreation(err, "debug messenger")
	}
	return &Debugger{messenger: messenger}, nil
}

// Enabled reports whether validation messages are being captured.
func (d *Debugger) Enabled() bool {
	return d != nil && d.messenger != nil
}

func (d *Debugger) Destroy() {
	if !d.Enabled() {
		return
	}
	d.messenger.Destroy(nil)
	d.messenger = nil
}

func messengerOptions(log logrus.FieldLogger) ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning | ext_debug_utils.SeverityInfo,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback: func(msgType ext_debug_utils.MessageTypes, severity ext_debug_utils.MessageSeverities, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
			entry := log.WithField("type", msgType.String())
			switch DebugLevel(severity) {
			case logrus.ErrorLevel:
				entry.Error(data.Message)
			case logrus.WarnLevel:
				entry.Warn(data.Message)
			case logrus.InfoLevel:
				entry.Info(data.Message)
			default:
				entry.Debug(data.Message)
			}
			return false
		},
	}
}

// DebugLevel maps a validation message severity to a log level.
func DebugLevel(severity ext_debug_utils.MessageSeverities) logrus.Level {
	switch {
	case severity&ext_debug_utils.SeverityError != 0:
		return logrus.ErrorLevel
	case severity&ext_debug_utils.SeverityWarning != 0:
		return logrus.WarnLevel
	case severity&ext_debug_utils.SeverityInfo != 0:
		return logrus.InfoLevel
	}
	return logrus.DebugLevel
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/extensions/khr_swapchain"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/config"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
)

func TestDefaultsPerVariant(t *testing.T) {
	c := qt.New(t)

	forward := config.Default(config.VariantTextured)
	c.Assert(forward.FramesInFlight, qt.Equals, 3)
	c.Assert(forward.ImageCount, qt.Equals, config.ImageCountPolicy{Extra: 2})
	c.Assert(forward.FrontFace, qt.Equals, config.CounterClockwise)

	deferred := config.Default(config.VariantDeferred)
	c.Assert(deferred.FramesInFlight, qt.Equals, 4)
	c.Assert(deferred.OffscreenDimension, qt.Equals, 2048)
	c.Assert(deferred.FrontFace, qt.Equals, config.Clockwise)

	c.Assert(config.Default(config.VariantTriangle).Validate(), qt.IsNil)
	c.Assert(forward.DeviceExtensions, qt.DeepEquals, []string{khr_swapchain.ExtensionName})
}

func TestLoadOverlaysFileThenEnvironment(t *testing.T) {
	c := qt.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "renderer.env")
	err := os.WriteFile(path, []byte("FIREFLY_WINDOW_WIDTH=1280\nFIREFLY_WINDOW_HEIGHT=720\nFIREFLY_FRONT_FACE=cw\n"), 0o644)
	c.Assert(err, qt.IsNil)

	t.Setenv("FIREFLY_WINDOW_HEIGHT", "1024")
	t.Setenv("FIREFLY_LOG_LEVEL", "debug")

	cfg, err := config.Load(config.VariantTextured, path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Window.Width, qt.Equals, 1280)
	c.Assert(cfg.Window.Height, qt.Equals, 1024)
	c.Assert(cfg.FrontFace, qt.Equals, config.Clockwise)
	c.Assert(cfg.LogLevel, qt.Equals, logrus.DebugLevel)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"frames in flight", "FIREFLY_FRAMES_IN_FLIGHT", "0"},
		{"width", "FIREFLY_WINDOW_WIDTH", "-3"},
		{"not a number", "FIREFLY_WINDOW_HEIGHT", "tall"},
		{"winding", "FIREFLY_FRONT_FACE", "sideways"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Setenv(test.key, test.value)

			_, err := config.Load(config.VariantTextured, "")
			qt.Assert(t, errors.Is(err, gfxerr.ErrConfiguration), qt.IsTrue)
		})
	}
}

func TestParseWinding(t *testing.T) {
	c := qt.New(t)

	w, err := config.ParseWinding("Counter-Clockwise")
	c.Assert(err, qt.IsNil)
	c.Assert(w, qt.Equals, config.CounterClockwise)

	w, err = config.ParseWinding("clockwise")
	c.Assert(err, qt.IsNil)
	c.Assert(w, qt.Equals, config.Clockwise)
}

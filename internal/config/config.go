// Package config defines the startup configuration handed to every
// renderer builder.
package config

import (
	"strconv"
	"strings"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/extensions/khr_swapchain"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
)

// Variant identifies which renderer a program drives.
type Variant int

const (
	VariantTriangle Variant = iota
	VariantTextured
	VariantDeferred
)

func (v Variant) String() string {
	switch v {
	case VariantTriangle:
		return "triangle"
	case VariantTextured:
		return "textured"
	case VariantDeferred:
		return "deferred"
	}
	return "unknown"
}

// Winding is the front-face winding order used by the rasterizer.
type Winding int

const (
	CounterClockwise Winding = iota
	Clockwise
)

func (w Winding) String() string {
	if w == Clockwise {
		return "clockwise"
	}
	return "counter-clockwise"
}

// ParseWinding accepts "cw", "clockwise", "ccw" and "counter-clockwise".
func ParseWinding(s string) (Winding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cw", "clockwise":
		return Clockwise, nil
	case "ccw", "counter-clockwise", "counterclockwise":
		return CounterClockwise, nil
	}
	return 0, gfxerr.Configuration("unknown front face %q", s)
}

// ImageCountPolicy decides how many swapchain images to request before
// clamping to the surface capabilities. A zero Fixed means min+Extra.
type ImageCountPolicy struct {
	Extra int
	Fixed int
}

// Window describes the collaborator window the renderer draws into.
type Window struct {
	Title  string
	Width  int
	Height int
}

// Config is the complete startup configuration of a renderer.
type Config struct {
	ApplicationName string
	Variant         Variant
	Window          Window

	EnableValidation bool
	ValidationLayers []string
	DeviceExtensions []string

	// FramesInFlight bounds the number of frames submitted but not yet
	// confirmed by their fence.
	FramesInFlight int
	ImageCount     ImageCountPolicy
	FrontFace      Winding

	// OffscreenDimension is the square G-Buffer resolution, independent of
	// the swapchain extent.
	OffscreenDimension int

	ShaderDir   string
	// ModelPath is empty for the deferred variant's built-in cube.
	ModelPath   string
	TexturePath string

	LogLevel logrus.Level
}

// Default returns the configuration each variant ships with.
func Default(variant Variant) Config {
	cfg := Config{
		ApplicationName: "Firefly",
		Variant:         variant,
		Window: Window{
			Title:  "Vulkan",
			Width:  800,
			Height: 600,
		},
		EnableValidation:   true,
		ValidationLayers:   []string{"VK_LAYER_KHRONOS_validation"},
		DeviceExtensions:   []string{khr_swapchain.ExtensionName},
		FramesInFlight:     3,
		ImageCount:         ImageCountPolicy{Extra: 2},
		FrontFace:          CounterClockwise,
		OffscreenDimension: 2048,
		ShaderDir:          "shaders",
		ModelPath:          "meshes/viking_room.obj",
		TexturePath:        "images/viking_room.png",
		LogLevel:           logrus.InfoLevel,
	}

	switch variant {
	case VariantTriangle:
		cfg.FrontFace = Clockwise
	case VariantDeferred:
		cfg.FramesInFlight = 4
		cfg.ImageCount = ImageCountPolicy{Fixed: 2}
		cfg.FrontFace = Clockwise
		cfg.ModelPath = ""
		cfg.TexturePath = ""
	}

	return cfg
}

// Validate checks the ranges the builders rely on.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return gfxerr.Configuration("window extent must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.FramesInFlight < 1 || c.FramesInFlight > 8 {
		return gfxerr.Configuration("frames in flight must be within [1,8], got %d", c.FramesInFlight)
	}
	if c.ImageCount.Fixed < 0 || c.ImageCount.Extra < 0 {
		return gfxerr.Configuration("image count policy must not be negative")
	}
	if c.Variant == VariantDeferred && c.OffscreenDimension <= 0 {
		return gfxerr.Configuration("offscreen dimension must be positive, got %d", c.OffscreenDimension)
	}
	if c.ShaderDir == "" {
		return gfxerr.Configuration("shader directory is required")
	}
	return nil
}

// Load starts from Default(variant), overlays the dotenv file at path (if
// any) and then the process environment. Keys are prefixed with FIREFLY_.
func Load(variant Variant, path string) (Config, error) {
	cfg := Default(variant)

	file := map[string]string{}
	if path != "" {
		var err error
		file, err = godotenv.Read(path)
		if err != nil {
			return cfg, gfxerr.Configuration("read %s: %v", path, err)
		}
	}

	envy.Reload()
	lookup := func(key string) string {
		return envy.Get("FIREFLY_"+key, file["FIREFLY_"+key])
	}

	var err error
	setString := func(key string, dst *string) {
		if v := lookup(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		v := lookup(key)
		if v == "" || err != nil {
			return
		}
		var n int
		n, err = strconv.Atoi(v)
		if err != nil {
			err = gfxerr.Configuration("%s: %v", key, err)
			return
		}
		*dst = n
	}
	setBool := func(key string, dst *bool) {
		v := lookup(key)
		if v == "" || err != nil {
			return
		}
		var b bool
		b, err = strconv.ParseBool(v)
		if err != nil {
			err = gfxerr.Configuration("%s: %v", key, err)
			return
		}
		*dst = b
	}

	setString("APP_NAME", &cfg.ApplicationName)
	setString("WINDOW_TITLE", &cfg.Window.Title)
	setInt("WINDOW_WIDTH", &cfg.Window.Width)
	setInt("WINDOW_HEIGHT", &cfg.Window.Height)
	setBool("VALIDATION", &cfg.EnableValidation)
	setInt("FRAMES_IN_FLIGHT", &cfg.FramesInFlight)
	setInt("IMAGE_COUNT", &cfg.ImageCount.Fixed)
	setInt("OFFSCREEN_DIMENSION", &cfg.OffscreenDimension)
	setString("SHADER_DIR", &cfg.ShaderDir)
	setString("MODEL", &cfg.ModelPath)
	setString("TEXTURE", &cfg.TexturePath)
	if err != nil {
		return cfg, err
	}

	if v := lookup("FRONT_FACE"); v != "" {
		cfg.FrontFace, err = ParseWinding(v)
		if err != nil {
			return cfg, err
		}
	}

	if v := lookup("LOG_LEVEL"); v != "" {
		cfg.LogLevel, err = logrus.ParseLevel(v)
		if err != nil {
			return cfg, gfxerr.Configuration("LOG_LEVEL: %v", err)
		}
	}

	return cfg, cfg.Validate()
}

// Draws a textured, depth-tested model loaded from disk.
package main

import (
	"flag"
	"runtime"

	log "github.com/sirupsen/logrus"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/config"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/renderer"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/window"
)

func init() {
	runtime.LockOSThread()
}

func run(envFile string) error {
	cfg, err := config.Load(config.VariantTextured, envFile)
	if err != nil {
		return err
	}

	logger := log.New()
	logger.SetLevel(cfg.LogLevel)

	win, err := window.Create(cfg.Window)
	if err != nil {
		return err
	}
	defer win.Destroy()

	r, err := renderer.New(cfg, win, logger)
	if err != nil {
		return err
	}
	defer r.Destroy()

	return r.Run()
}

func main() {
	envFile := flag.String("env", "", "optional dotenv file with FIREFLY_ settings")
	flag.Parse()

	if err := run(*envFile); err != nil {
		log.Fatalf("%+v\n", err)
	}
}

//go:build !js

// Command xorview opens a window and renders the passes of a libxor config.
//
//	xorview --config assets/libxor.toml
//	xorview config            # print the effective configuration
package main

import (
	"image/color"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/microwerx/libxor/config"
	"github.com/microwerx/libxor/engine"
	"github.com/microwerx/libxor/gl/glcore"
	"github.com/microwerx/libxor/procedural"
)

func init() {
	// gl calls must come from the main thread
	runtime.LockOSThread()
}

// window adapts a glfw window to engine.Surface.
type window struct {
	*glfw.Window
}

func (w window) Size() (int, int) {
	return w.GetFramebufferSize()
}

func main() {
	var path string

	root := &cobra.Command{
		Use:   "xorview",
		Short: "Render the passes of a libxor configuration in a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	root.PersistentFlags().StringVarP(&path, "config", "c", "assets/libxor.toml", "configuration file")

	root.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the configuration after environment overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			data, err := cfg.Encode()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if cfg.LogLevel != "" {
		lvl, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		log.SetLevel(lvl)
	}

	glfw.SetErrorCallback(func(code glfw.ErrorCode, desc string) {
		log.WithField("code", code).Error(desc)
	})
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		return err
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	f, err := glcore.New()
	if err != nil {
		return err
	}

	ctx, err := engine.NewContext(f, window{win},
		engine.WithConfig(cfg),
		engine.WithLogger(log.WithField("app", "xorview")))
	if err != nil {
		return err
	}
	defer ctx.Close()

	generate(ctx)
	if err := ctx.Apply(cfg); err != nil {
		return err
	}

	r := engine.NewRenderer(ctx, cfg.PassOrder()...)
	defer r.Close()

	progress := engine.NewProgress(ctx)
	defer progress.Close()

	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyR:
			for _, name := range ctx.Pipelines.Names() {
				if err := ctx.Pipelines.Reload(name); err != nil {
					log.WithError(err).WithField("pipeline", name).Warn("reload failed")
				}
			}
		}
	})

	var (
		start     = time.Now()
		nextPrint = start
		fps       = 60.0
		ratio     = 0.01
		last      = start
	)
	for !win.ShouldClose() {
		now := time.Now()
		if delta := now.Sub(last).Seconds(); delta > 0 {
			fps = fps*(1-ratio) + (1/delta)*ratio
		}
		last = now
		if now.After(nextPrint) {
			nextPrint = now.Add(2 * time.Second)
			log.WithFields(log.Fields{
				"fps":     int(fps),
				"loaded":  int(progress.Percent()),
				"failed":  len(progress.Failed()),
				"targets": len(ctx.Targets.Names()),
			}).Debug("frame")
		}

		r.Render(now.Sub(start))
		progress.Poll()

		win.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

// generate registers the procedural textures the demo config samples.
func generate(ctx *engine.Context) {
	ts := ctx.Textures
	ts.Set("noise", ts.FromImage(procedural.Noise(256, 256, 16, 1)))

	label, err := procedural.Text(256, 64, "libxor", 40, color.White)
	if err != nil {
		log.WithError(err).Warn("label texture")
		return
	}
	ts.Set("label", ts.FromImage(procedural.DistanceField(label, 4)))
}

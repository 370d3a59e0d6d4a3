/*
segfault opens a window, picks a GPU that can present to it, creates a
logical device and a depth attachment, and exits.
*/
package main

import (
	"os"

	"github.com/spaghettifunk/segfault/engine"
	"github.com/spaghettifunk/segfault/engine/core"
	"github.com/spaghettifunk/segfault/engine/platform"
	"github.com/spaghettifunk/segfault/engine/renderer/vulkan"
	"github.com/spf13/cobra"
)

type flags struct {
	configPath  string
	title       string
	width       uint32
	height      uint32
	validation  bool
	allLayers   bool
	queuePolicy string
	depthFormat string
	discreteGPU bool
	logLevel    string
}

func newRootCmd() (*cobra.Command, *flags) {
	f := &flags{}
	cmd := &cobra.Command{
		Use:           "segfault",
		Short:         "Bootstrap a Vulkan device against a window surface",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfiguration(cmd, f)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "TOML configuration file (default $"+core.ConfigPathEnv+")")
	cmd.Flags().StringVar(&f.title, "title", core.DefaultWindowTitle, "window title")
	cmd.Flags().Uint32Var(&f.width, "width", 0, "window width")
	cmd.Flags().Uint32Var(&f.height, "height", 0, "window height")
	cmd.Flags().BoolVar(&f.validation, "validation", false, "enable validation layers and the debug report callback")
	cmd.Flags().BoolVar(&f.allLayers, "all-layers", false, "enable every instance layer the loader reports")
	cmd.Flags().StringVar(&f.queuePolicy, "queue-policy", core.QueuePolicyCombined, "graphics/present queue pairing: combined or split")
	cmd.Flags().StringVar(&f.depthFormat, "depth-format", core.DepthFormatD16, "depth attachment format: d16 or auto")
	cmd.Flags().BoolVar(&f.discreteGPU, "discrete-gpu", false, "only accept discrete GPUs")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level (default $"+core.LogLevelEnv+" or info)")
	return cmd, f
}

// loadConfiguration reads the file, then applies only the flags that were
// set explicitly on the command line.
func loadConfiguration(cmd *cobra.Command, f *flags) (*core.Configuration, error) {
	cfg, err := core.LoadConfiguration(f.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("title") {
		cfg.Window.Title = f.title
	}
	if changed("width") {
		cfg.Window.Width = f.width
	}
	if changed("height") {
		cfg.Window.Height = f.height
	}
	if changed("validation") {
		cfg.Renderer.Validation = f.validation
	}
	if changed("all-layers") {
		cfg.Renderer.AllLayers = f.allLayers
	}
	if changed("queue-policy") {
		cfg.Renderer.QueuePolicy = f.queuePolicy
	}
	if changed("depth-format") {
		cfg.Renderer.DepthFormat = f.depthFormat
	}
	if changed("discrete-gpu") {
		cfg.Renderer.DiscreteGPU = f.discreteGPU
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	return cfg, cfg.Validate()
}

func run(cfg *core.Configuration) error {
	appConfig, err := engine.NewApplicationConfig(cfg)
	if err != nil {
		return err
	}

	p := platform.New()
	e, err := engine.New(appConfig, p, vulkan.New(p, cfg.Renderer))
	if err != nil {
		return err
	}
	core.LogWithRunID(e.RunID())

	return e.Run()
}

func main() {
	cmd, _ := newRootCmd()
	if err := cmd.Execute(); err != nil {
		core.LogError("%s", err)
		os.Exit(1)
	}
}

package core

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ConfigPathEnv names a TOML file to load when no path is given explicitly.
const ConfigPathEnv = "SEGFAULT_CONFIG"

const (
	QueuePolicyCombined = "combined"
	QueuePolicySplit    = "split"

	DepthFormatD16  = "d16"
	DepthFormatAuto = "auto"

	DefaultWindowTitle     = "segfault-1554"
	DefaultValidationLayer = "VK_LAYER_KHRONOS_validation"
)

type Configuration struct {
	Window   WindowConfiguration   `toml:"window"`
	Renderer RendererConfiguration `toml:"renderer"`
	Log      LogConfiguration      `toml:"log"`
}

type WindowConfiguration struct {
	Title  string `toml:"title"`
	PosX   uint32 `toml:"x"`
	PosY   uint32 `toml:"y"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type RendererConfiguration struct {
	// Validation enables the debug report extension and validation layers.
	Validation bool `toml:"validation"`
	// AllLayers enables every instance layer the loader reports instead of
	// just ValidationLayers.
	AllLayers        bool     `toml:"all_layers"`
	ValidationLayers []string `toml:"validation_layers"`
	DeviceExtensions []string `toml:"device_extensions"`
	QueuePolicy      string   `toml:"queue_policy"`
	DepthFormat      string   `toml:"depth_format"`
	DiscreteGPU      bool     `toml:"discrete_gpu"`
}

type LogConfiguration struct {
	Level string `toml:"level"`
}

func DefaultConfiguration() *Configuration {
	return &Configuration{
		Window: WindowConfiguration{
			Title:  DefaultWindowTitle,
			PosX:   100,
			PosY:   100,
			Width:  800,
			Height: 600,
		},
		Renderer: RendererConfiguration{
			Validation:       false,
			ValidationLayers: []string{DefaultValidationLayer},
			QueuePolicy:      QueuePolicyCombined,
			DepthFormat:      DepthFormatD16,
		},
	}
}

// LoadConfiguration returns the defaults overlaid with the TOML file at path.
// An empty path falls back to $SEGFAULT_CONFIG; if that is empty too the
// defaults are returned as is.
func LoadConfiguration(path string) (*Configuration, error) {
	cfg := DefaultConfiguration()
	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewError(KindConfig, "read "+path, err)
	}
	if err := ParseConfiguration(data, cfg); err != nil {
		return nil, NewError(KindConfig, "parse "+path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	LogDebug("Configuration loaded from %s", path)
	return cfg, nil
}

// ParseConfiguration decodes TOML into cfg, keeping any field the document
// leaves out.
func ParseConfiguration(data []byte, cfg *Configuration) error {
	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	return d.Decode(cfg)
}

func (c *Configuration) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return Errorf(KindConfig, "validate", "window size must be non-zero, got %dx%d", c.Window.Width, c.Window.Height)
	}
	switch c.Renderer.QueuePolicy {
	case QueuePolicyCombined, QueuePolicySplit:
	default:
		return Errorf(KindConfig, "validate", "unknown queue policy %q", c.Renderer.QueuePolicy)
	}
	switch c.Renderer.DepthFormat {
	case DepthFormatD16, DepthFormatAuto:
	default:
		return Errorf(KindConfig, "validate", "unknown depth format %q", c.Renderer.DepthFormat)
	}
	if c.Log.Level != "" {
		if _, err := ParseLogLevel(c.Log.Level); err != nil {
			return NewError(KindConfig, "validate", fmt.Errorf("log level: %w", err))
		}
	}
	return nil
}

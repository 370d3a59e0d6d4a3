package engine

import (
	"github.com/spaghettifunk/segfault/engine/core"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32
	// Window starting position y axis, if applicable.
	StartPosY uint32
	// Window starting width, if applicable.
	StartWidth uint32
	// Window starting height, if applicable.
	StartHeight uint32
	// The application name used in windowing, if applicable.
	Name     string
	LogLevel core.LogLevel
}

// NewApplicationConfig derives the application settings from a loaded
// configuration. An empty log level keeps whatever the logger already uses.
func NewApplicationConfig(cfg *core.Configuration) (*ApplicationConfig, error) {
	level := core.LogGetLevel()
	if cfg.Log.Level != "" {
		lvl, err := core.ParseLogLevel(cfg.Log.Level)
		if err != nil {
			return nil, core.NewError(core.KindConfig, "log level", err)
		}
		level = lvl
	}
	return &ApplicationConfig{
		StartPosX:   cfg.Window.PosX,
		StartPosY:   cfg.Window.PosY,
		StartWidth:  cfg.Window.Width,
		StartHeight: cfg.Window.Height,
		Name:        cfg.Window.Title,
		LogLevel:    level,
	}, nil
}

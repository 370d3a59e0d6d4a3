package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/segfault/engine/core"
)

func init() {
	// GLFW calls must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window

	initialized bool
}

func New() *Platform {
	return &Platform{
		Window: nil,
	}
}

// Startup opens the window. Events are never polled: the window exists only
// so a surface can be bound to it.
func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		return core.NewError(core.KindWindowCreation, "glfw init", err)
	}
	p.initialized = true

	if !glfw.VulkanSupported() {
		return core.Errorf(core.KindWindowCreation, "glfw init", "no Vulkan loader available to GLFW")
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		return core.NewError(core.KindWindowCreation, fmt.Sprintf("create window %q", applicationName), err)
	}
	p.Window = window
	p.Window.SetPos(int(x), int(y))

	core.LogDebug("Window '%s' created (%dx%d).", applicationName, width, height)
	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	if p.initialized {
		glfw.Terminate()
		p.initialized = false
	}
	return nil
}

// GetRequiredExtensionNames lists the instance extensions GLFW needs to
// create a surface for the window.
func (p *Platform) GetRequiredExtensionNames() []string {
	if p.Window == nil {
		return nil
	}
	return p.Window.GetRequiredInstanceExtensions()
}

// FramebufferSize is the window's drawable size in pixels.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	if p.Window == nil {
		return 0, 0
	}
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

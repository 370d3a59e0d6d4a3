package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/segfault/engine/core"
	"github.com/spaghettifunk/segfault/engine/platform"
)

// CreateSurface binds the platform window to the instance.
func CreateSurface(p *platform.Platform, context *VulkanContext) error {
	if p.Window == nil {
		return core.Errorf(core.KindSurfaceCreation, "create surface", "platform has no window")
	}
	surface, err := p.Window.CreateWindowSurface(context.Instance, nil)
	if err != nil {
		return core.NewError(core.KindSurfaceCreation, "create surface", err)
	}
	if surface == 0 {
		return core.Errorf(core.KindSurfaceCreation, "create surface", "platform returned a null surface")
	}
	context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")
	return nil
}

func DestroySurface(context *VulkanContext) {
	if context.Surface == vk.NullSurface {
		return
	}
	core.LogDebug("Destroying Vulkan surface...")
	vk.DestroySurface(context.Instance, context.Surface, context.Allocator)
	context.Surface = vk.NullSurface
}

package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/segfault/engine/core"
	"github.com/spaghettifunk/segfault/engine/platform"
	"github.com/spaghettifunk/segfault/engine/renderer/selection"
)

// VulkanRenderer brings a device up to the point where rendering could
// start: instance, surface, device and a depth attachment.
type VulkanRenderer struct {
	platform *platform.Platform
	context  *VulkanContext
	config   core.RendererConfiguration
}

func New(p *platform.Platform, cfg core.RendererConfiguration) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		context: &VulkanContext{
			Allocator: nil,
		},
		config: cfg,
	}
}

func (vr *VulkanRenderer) Context() *VulkanContext {
	return vr.context
}

// Initialize runs every stage in order and stops at the first failure. Call
// Shutdown afterwards either way to release what was created.
func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight
	if w, h := vr.platform.FramebufferSize(); w != 0 && h != 0 {
		vr.context.FramebufferWidth = w
		vr.context.FramebufferHeight = h
	}

	if err := CreateInstance(vr.context, InstanceOptions{
		AppName:          appName,
		WindowExtensions: vr.platform.GetRequiredExtensionNames(),
		Validation:       vr.config.Validation,
		AllLayers:        vr.config.AllLayers,
		Layers:           vr.config.ValidationLayers,
	}); err != nil {
		return err
	}

	if err := CreateSurface(vr.platform, vr.context); err != nil {
		return err
	}

	if err := SelectPhysicalDevice(vr.context, vr.requirements()); err != nil {
		return err
	}

	if err := DeviceCreate(vr.context, vr.config.DeviceExtensions); err != nil {
		return err
	}

	format, err := vr.depthFormat()
	if err != nil {
		return err
	}
	if err := DepthAttachmentCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight, format); err != nil {
		return err
	}

	core.LogInfo("Vulkan renderer initialized successfully on '%s'.", vr.context.Device.Name)
	return nil
}

func (vr *VulkanRenderer) requirements() selection.Requirements {
	req := selection.Requirements{
		QueuePolicy:      selection.QueuePolicyCombined,
		DeviceExtensions: appendUnique([]string{vk.KhrSwapchainExtensionName}, vr.config.DeviceExtensions...),
		DiscreteGPU:      vr.config.DiscreteGPU,
	}
	if vr.config.QueuePolicy == core.QueuePolicySplit {
		req.QueuePolicy = selection.QueuePolicySplit
	}
	return req
}

func (vr *VulkanRenderer) depthFormat() (vk.Format, error) {
	if vr.config.DepthFormat != core.DepthFormatAuto {
		vr.context.Device.DepthFormat = vk.FormatD16Unorm
		return vk.FormatD16Unorm, nil
	}
	if !DeviceDetectDepthFormat(vr.context.Device) {
		return 0, core.Errorf(core.KindResourceAllocation, "detect depth format", "no supported depth format on '%s'", vr.context.Device.Name)
	}
	return vr.context.Device.DepthFormat, nil
}

// Shutdown destroys everything Initialize created, in reverse order. It is
// safe after a partial Initialize.
func (vr *VulkanRenderer) Shutdown() error {
	core.LogDebug("Destroying Vulkan renderer...")
	if vr.context.Device != nil && vr.context.Device.LogicalDevice != nil {
		DepthAttachmentDestroy(vr.context)
	}
	DeviceDestroy(vr.context)
	if vr.context.Instance != nil {
		DestroySurface(vr.context)
	}
	DestroyInstance(vr.context)
	return nil
}

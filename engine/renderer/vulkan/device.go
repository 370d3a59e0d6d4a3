package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/segfault/engine/core"
	"github.com/spaghettifunk/segfault/engine/renderer/selection"
)

// One queue per family, medium priority.
const queuePriority float32 = 0.5

type VulkanDevice struct {
	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	Name               string
	GraphicsQueueIndex uint32
	PresentQueueIndex  uint32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	SurfaceSupport selection.SurfaceSupport

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties

	EnabledExtensions []string
	DepthFormat       vk.Format
}

// EnumerateCandidates copies every physical device's properties, queue
// families and extensions into plain descriptors.
func EnumerateCandidates(context *VulkanContext) ([]selection.Candidate, error) {
	var physicalDeviceCount uint32
	if err := resultError(core.KindDeviceEnumeration, "vkEnumeratePhysicalDevices",
		vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil)); err != nil {
		return nil, err
	}
	if physicalDeviceCount == 0 {
		core.LogWarn("No devices which support Vulkan were found.")
		return nil, nil
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if err := resultError(core.KindDeviceEnumeration, "vkEnumeratePhysicalDevices",
		vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices)); err != nil {
		return nil, err
	}

	candidates := make([]selection.Candidate, 0, physicalDeviceCount)
	for i, dev := range physicalDevices[:physicalDeviceCount] {
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(dev, &properties)
		properties.Deref()

		extensions, err := deviceExtensionNames(dev)
		if err != nil {
			return nil, err
		}

		c := selection.Candidate{
			Handle:        dev,
			Index:         i,
			Name:          cString(properties.DeviceName[:]),
			Type:          deviceType(properties.DeviceType),
			APIVersion:    properties.ApiVersion,
			DriverVersion: properties.DriverVersion,
			QueueFamilies: queueFamilies(dev),
			Extensions:    extensions,
		}
		core.LogDebug("Found device %d: '%s' (%s, Vulkan %s, %d queue families).",
			i, c.Name, c.Type, versionString(c.APIVersion), len(c.QueueFamilies))
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func deviceType(t vk.PhysicalDeviceType) selection.DeviceType {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return selection.DeviceTypeIntegratedGPU
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return selection.DeviceTypeDiscreteGPU
	case vk.PhysicalDeviceTypeVirtualGpu:
		return selection.DeviceTypeVirtualGPU
	case vk.PhysicalDeviceTypeCpu:
		return selection.DeviceTypeCPU
	default:
		return selection.DeviceTypeOther
	}
}

func versionString(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", vk.Version(v).Major(), vk.Version(v).Minor(), vk.Version(v).Patch())
}

func queueFamilies(dev vk.PhysicalDevice) []selection.QueueFamily {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(dev, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(dev, &count, props)

	families := make([]selection.QueueFamily, 0, count)
	for i := range props[:count] {
		props[i].Deref()
		flags := props[i].QueueFlags
		families = append(families, selection.QueueFamily{
			Index:      uint32(i),
			QueueCount: props[i].QueueCount,
			Graphics:   flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0,
			Compute:    flags&vk.QueueFlags(vk.QueueComputeBit) != 0,
			Transfer:   flags&vk.QueueFlags(vk.QueueTransferBit) != 0,
		})
	}
	return families
}

func deviceExtensionNames(dev vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if err := resultError(core.KindDeviceEnumeration, "vkEnumerateDeviceExtensionProperties",
		vk.EnumerateDeviceExtensionProperties(dev, "", &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	available := make([]vk.ExtensionProperties, count)
	if err := resultError(core.KindDeviceEnumeration, "vkEnumerateDeviceExtensionProperties",
		vk.EnumerateDeviceExtensionProperties(dev, "", &count, available)); err != nil {
		return nil, err
	}

	names := make([]string, 0, count)
	for i := range available[:count] {
		available[i].Deref()
		names = append(names, cString(available[i].ExtensionName[:]))
	}
	return names, nil
}

// surfaceQuerier answers selection's surface questions against one surface.
type surfaceQuerier struct {
	surface vk.Surface
}

func (q surfaceQuerier) QuerySurfaceSupport(c selection.Candidate) (selection.SurfaceSupport, error) {
	dev, ok := c.Handle.(vk.PhysicalDevice)
	if !ok {
		return selection.SurfaceSupport{}, fmt.Errorf("candidate '%s' carries no physical device handle", c.Name)
	}
	support := selection.SurfaceSupport{}

	var capabilities vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(dev, q.surface, &capabilities); res != vk.Success {
		return support, fmt.Errorf("surface capabilities: %s", VulkanResultString(res, false))
	}

	// Surface formats
	var formatCount uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(dev, q.surface, &formatCount, nil); res != vk.Success {
		return support, fmt.Errorf("surface formats: %s", VulkanResultString(res, false))
	}
	if formatCount != 0 {
		formats := make([]vk.SurfaceFormat, formatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(dev, q.surface, &formatCount, formats); res != vk.Success {
			return support, fmt.Errorf("surface formats: %s", VulkanResultString(res, false))
		}
		for i := range formats[:formatCount] {
			formats[i].Deref()
			support.Formats = append(support.Formats, selection.SurfaceFormat{
				Format:     int32(formats[i].Format),
				ColorSpace: int32(formats[i].ColorSpace),
			})
		}
	}

	// Present modes
	var presentModeCount uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(dev, q.surface, &presentModeCount, nil); res != vk.Success {
		return support, fmt.Errorf("surface present modes: %s", VulkanResultString(res, false))
	}
	if presentModeCount != 0 {
		modes := make([]vk.PresentMode, presentModeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(dev, q.surface, &presentModeCount, modes); res != vk.Success {
			return support, fmt.Errorf("surface present modes: %s", VulkanResultString(res, false))
		}
		for _, m := range modes[:presentModeCount] {
			support.PresentModes = append(support.PresentModes, selection.PresentMode(m))
		}
	}

	// Present support per queue family
	support.PresentFamilies = make([]bool, len(c.QueueFamilies))
	for _, f := range c.QueueFamilies {
		var supportsPresent vk.Bool32 = vk.False
		if res := vk.GetPhysicalDeviceSurfaceSupport(dev, f.Index, q.surface, &supportsPresent); res != vk.Success {
			return support, fmt.Errorf("surface support for family %d: %s", f.Index, VulkanResultString(res, false))
		}
		support.PresentFamilies[f.Index] = supportsPresent == vk.True
	}
	return support, nil
}

// SelectPhysicalDevice enumerates the devices, runs the selector against
// the context's surface and records the winner on context.Device.
func SelectPhysicalDevice(context *VulkanContext, requirements selection.Requirements) error {
	candidates, err := EnumerateCandidates(context)
	if err != nil {
		return err
	}

	result, err := selection.Select(candidates, surfaceQuerier{surface: context.Surface}, requirements)
	if err != nil {
		return err
	}

	dev := result.Candidate.Handle.(vk.PhysicalDevice)
	device := &VulkanDevice{
		PhysicalDevice:     dev,
		Name:               result.Candidate.Name,
		GraphicsQueueIndex: result.GraphicsFamily,
		PresentQueueIndex:  result.PresentFamily,
		SurfaceSupport:     result.Support,
	}

	vk.GetPhysicalDeviceProperties(dev, &device.Properties)
	device.Properties.Deref()
	vk.GetPhysicalDeviceFeatures(dev, &device.Features)
	device.Features.Deref()
	vk.GetPhysicalDeviceMemoryProperties(dev, &device.Memory)
	device.Memory.Deref()

	core.LogInfo("GPU Driver version: %s", versionString(device.Properties.DriverVersion))
	core.LogInfo("Vulkan API version: %s", versionString(device.Properties.ApiVersion))

	// Memory information
	for j := uint32(0); j < device.Memory.MemoryHeapCount; j++ {
		device.Memory.MemoryHeaps[j].Deref()
		memorySizeGib := float64(device.Memory.MemoryHeaps[j].Size) / 1024.0 / 1024.0 / 1024.0
		if device.Memory.MemoryHeaps[j].Flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0 {
			core.LogInfo("Local GPU memory: %.2f GiB", memorySizeGib)
		} else {
			core.LogInfo("Shared System memory: %.2f GiB", memorySizeGib)
		}
	}

	context.Device = device
	core.LogInfo("Physical device selected.")
	return nil
}

// queueFamilyIndices returns the distinct families a device needs queues
// from, graphics first.
func queueFamilyIndices(graphics, present uint32) []uint32 {
	if graphics == present {
		return []uint32{graphics}
	}
	return []uint32{graphics, present}
}

// DeviceCreate creates the logical device for context.Device with one queue
// per distinct family and the given extensions enabled.
func DeviceCreate(context *VulkanContext, extensions []string) error {
	if context.Device == nil {
		return core.Errorf(core.KindDeviceCreation, "create device", "no physical device selected")
	}
	device := context.Device

	core.LogInfo("Creating logical device...")

	indices := queueFamilyIndices(device.GraphicsQueueIndex, device.PresentQueueIndex)
	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i, index := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: index,
			QueueCount:       1,
			PQueuePriorities: []float32{queuePriority},
		}
	}

	available, err := deviceExtensionNames(device.PhysicalDevice)
	if err != nil {
		return core.NewError(core.KindDeviceCreation, "create device", err)
	}
	enabled := appendUnique([]string{vk.KhrSwapchainExtensionName}, extensions...)
	for _, name := range available {
		if name == portabilitySubsetExtension {
			core.LogInfo("Adding required extension '%s'.", portabilitySubsetExtension)
			enabled = appendUnique(enabled, portabilitySubsetExtension)
			break
		}
	}

	// Every feature the device supports is requested.
	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{device.Features},
		EnabledExtensionCount:   uint32(len(enabled)),
		PpEnabledExtensionNames: VulkanSafeStrings(enabled),
	}

	var logicalDevice vk.Device
	if err := resultError(core.KindDeviceCreation, "vkCreateDevice",
		vk.CreateDevice(device.PhysicalDevice, &deviceCreateInfo, context.Allocator, &logicalDevice)); err != nil {
		return err
	}
	device.LogicalDevice = logicalDevice
	device.EnabledExtensions = enabled
	core.LogInfo("Logical device created.")

	// Get queues.
	vk.GetDeviceQueue(device.LogicalDevice, device.GraphicsQueueIndex, 0, &device.GraphicsQueue)
	vk.GetDeviceQueue(device.LogicalDevice, device.PresentQueueIndex, 0, &device.PresentQueue)
	core.LogInfo("Queues obtained.")

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	device := context.Device
	if device == nil {
		return
	}
	device.GraphicsQueue = nil
	device.PresentQueue = nil

	if device.LogicalDevice != nil {
		core.LogInfo("Destroying logical device...")
		vk.DeviceWaitIdle(device.LogicalDevice)
		vk.DestroyDevice(device.LogicalDevice, context.Allocator)
		device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	device.PhysicalDevice = nil
	context.Device = nil
}

// depthFormatCandidates are tried in order by DeviceDetectDepthFormat.
var depthFormatCandidates = []vk.Format{
	vk.FormatD32Sfloat,
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
	vk.FormatD16Unorm,
}

// DeviceDetectDepthFormat picks the first candidate format usable as a
// depth attachment with optimal tiling.
func DeviceDetectDepthFormat(device *VulkanDevice) bool {
	flags := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	for _, candidate := range depthFormatCandidates {
		var properties vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(device.PhysicalDevice, candidate, &properties)
		properties.Deref()
		if properties.OptimalTilingFeatures&flags == flags {
			device.DepthFormat = candidate
			return true
		}
	}
	return false
}

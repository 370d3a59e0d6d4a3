package vulkan

import (
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/segfault/engine/core"
)

const (
	portabilityEnumerationExtension = "VK_KHR_portability_enumeration"
	portabilitySubsetExtension      = "VK_KHR_portability_subset"
	// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
	instanceCreateEnumeratePortabilityBit = 0x00000001
)

type InstanceOptions struct {
	AppName string
	// WindowExtensions are the window-system extensions the platform needs
	// for surface creation.
	WindowExtensions []string
	Validation       bool
	AllLayers        bool
	Layers           []string
}

// loadVulkan points the bindings at GLFW's loader. It needs an initialized
// GLFW.
func loadVulkan() error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return core.Errorf(core.KindInstanceCreation, "load vulkan", "GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return core.NewError(core.KindInstanceCreation, "load vulkan", err)
	}
	return nil
}

// EnumerateInstanceLayers lists the names of every instance layer the loader
// reports.
func EnumerateInstanceLayers() ([]string, error) {
	var count uint32
	if err := resultError(core.KindLayerEnumeration, "vkEnumerateInstanceLayerProperties",
		vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	layers := make([]vk.LayerProperties, count)
	if err := resultError(core.KindLayerEnumeration, "vkEnumerateInstanceLayerProperties",
		vk.EnumerateInstanceLayerProperties(&count, layers)); err != nil {
		return nil, err
	}

	names := make([]string, 0, count)
	for i := range layers[:count] {
		layers[i].Deref()
		names = append(names, cString(layers[i].LayerName[:]))
	}
	return names, nil
}

// resolveLayers picks which of the available layers to enable. Requested
// layers the loader does not have are dropped with a warning.
func resolveLayers(available []string, opts InstanceOptions) []string {
	if opts.AllLayers {
		return append([]string(nil), available...)
	}
	if !opts.Validation {
		return nil
	}

	enabled := []string{}
	for _, want := range opts.Layers {
		core.LogInfo("Searching for layer: %s...", want)
		found := false
		for _, have := range available {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			core.LogWarn("Requested layer is missing: %s", want)
			continue
		}
		core.LogInfo("Found.")
		enabled = appendUnique(enabled, want)
	}
	return enabled
}

// instanceExtensions is the generic surface extension, the platform's own,
// portability on darwin and the debug report extension when validating.
func instanceExtensions(goos string, opts InstanceOptions) []string {
	extensions := []string{vk.KhrSurfaceExtensionName}
	extensions = appendUnique(extensions, opts.WindowExtensions...)

	if goos == "darwin" {
		extensions = appendUnique(extensions,
			portabilityEnumerationExtension,
			"VK_KHR_get_physical_device_properties2",
		)
	}
	if opts.Validation {
		extensions = appendUnique(extensions, vk.ExtDebugReportExtensionName)
	}
	return extensions
}

// CreateInstance loads Vulkan, discovers layers and creates the instance on
// context.
func CreateInstance(context *VulkanContext, opts InstanceOptions) error {
	if err := loadVulkan(); err != nil {
		return err
	}

	available, err := EnumerateInstanceLayers()
	if err != nil {
		return err
	}
	core.LogDebug("%d instance layers available.", len(available))
	for _, l := range available {
		core.LogDebug("Available Layer: `%s`", l)
	}

	extensions := instanceExtensions(runtime.GOOS, opts)
	layers := resolveLayers(available, opts)

	core.LogInfo("Required extensions:")
	for _, e := range extensions {
		core.LogInfo("  %s", e)
	}
	if len(layers) > 0 {
		core.LogInfo("Enabled layers: %v", layers)
	}

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(opts.AppName),
		PEngineName:        VulkanSafeString("segfault"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     VulkanSafeStrings(layers),
	}
	if runtime.GOOS == "darwin" {
		createInfo.Flags |= instanceCreateEnumeratePortabilityBit
	}

	var instance vk.Instance
	if err := resultError(core.KindInstanceCreation, "vkCreateInstance",
		vk.CreateInstance(&createInfo, context.Allocator, &instance)); err != nil {
		return err
	}
	context.Instance = instance

	if err := vk.InitInstance(context.Instance); err != nil {
		return core.NewError(core.KindInstanceCreation, "init instance", err)
	}
	core.LogInfo("Vulkan Instance created.")

	if opts.Validation {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}

		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(context.Instance, &debugCreateInfo, context.Allocator, &dbg)); err != nil {
			// Not fatal.
			core.LogWarn("vk.CreateDebugReportCallback failed with %s", err)
		} else {
			context.debugCallback = dbg
			context.hasDebugCallback = true
			core.LogDebug("Vulkan debugger created.")
		}
	}
	return nil
}

func DestroyInstance(context *VulkanContext) {
	if context.Instance == nil {
		return
	}
	if context.hasDebugCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(context.Instance, context.debugCallback, context.Allocator)
		context.hasDebugCallback = false
	}
	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(context.Instance, context.Allocator)
	context.Instance = nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}

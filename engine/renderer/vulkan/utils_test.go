package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/segfault/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVulkanResultString(t *testing.T) {
	assert.Equal(t, "VK_SUCCESS", VulkanResultString(vk.Success, false))
	assert.Equal(t, "VK_ERROR_SURFACE_LOST_KHR A surface is no longer available.", VulkanResultString(vk.ErrorSurfaceLost, true))
	assert.Equal(t, "VkResult(12345)", VulkanResultString(vk.Result(12345), true))
}

func TestResultError(t *testing.T) {
	assert.NoError(t, resultError(core.KindDeviceCreation, "vkCreateDevice", vk.Success))

	err := resultError(core.KindDeviceCreation, "vkCreateDevice", vk.ErrorFeatureNotPresent)
	require.Error(t, err)
	assert.Equal(t, core.KindDeviceCreation, core.KindOf(err))
	assert.Contains(t, err.Error(), "VK_ERROR_FEATURE_NOT_PRESENT")
}

func TestSafeStrings(t *testing.T) {
	assert.Equal(t, "\x00", VulkanSafeString(""))
	assert.Equal(t, "abc\x00", VulkanSafeString("abc"))
	assert.Equal(t, "abc\x00", VulkanSafeString("abc\x00"))

	in := []string{"a", "b\x00"}
	out := VulkanSafeStrings(in)
	assert.Equal(t, []string{"a\x00", "b\x00"}, out)
	assert.Equal(t, "a", in[0], "input is not modified")
}

func TestCString(t *testing.T) {
	var name [16]byte
	copy(name[:], "llvmpipe")
	assert.Equal(t, "llvmpipe", cString(name[:]))
	assert.Equal(t, "full", cString([]byte("full")))
}

func TestAppendUnique(t *testing.T) {
	got := appendUnique([]string{"a"}, "b", "a", "c", "b")
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestResolveLayers(t *testing.T) {
	available := []string{"VK_LAYER_KHRONOS_validation", "VK_LAYER_MESA_device_select"}

	assert.Nil(t, resolveLayers(available, InstanceOptions{}))
	assert.Equal(t, available, resolveLayers(available, InstanceOptions{AllLayers: true}))
	assert.Equal(t, []string{"VK_LAYER_KHRONOS_validation"}, resolveLayers(available, InstanceOptions{
		Validation: true,
		Layers:     []string{"VK_LAYER_KHRONOS_validation", "VK_LAYER_LUNARG_missing"},
	}))
	assert.Empty(t, resolveLayers(nil, InstanceOptions{Validation: true, Layers: []string{"VK_LAYER_KHRONOS_validation"}}))
}

func TestInstanceExtensions(t *testing.T) {
	opts := InstanceOptions{WindowExtensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}}
	assert.Equal(t, []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}, instanceExtensions("linux", opts))

	opts.Validation = true
	got := instanceExtensions("darwin", opts)
	assert.Contains(t, got, portabilityEnumerationExtension)
	assert.Contains(t, got, vk.ExtDebugReportExtensionName)
	assert.Equal(t, "VK_KHR_surface", got[0])
}

func TestQueueFamilyIndices(t *testing.T) {
	assert.Equal(t, []uint32{2}, queueFamilyIndices(2, 2))
	assert.Equal(t, []uint32{0, 3}, queueFamilyIndices(0, 3))
}

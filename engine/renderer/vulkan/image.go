package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/segfault/engine/core"
)

type VulkanImage struct {
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Width  uint32
	Height uint32
	Format vk.Format

	hasImage  bool
	hasMemory bool
	hasView   bool
}

type ImageOptions struct {
	Width          uint32
	Height         uint32
	Format         vk.Format
	Tiling         vk.ImageTiling
	Usage          vk.ImageUsageFlags
	MemoryFlags    vk.MemoryPropertyFlags
	CreateView     bool
	ViewAspectMask vk.ImageAspectFlags
}

// ImageCreate creates a 2D image, backs it with memory and optionally a view.
// On failure everything created so far is released.
func ImageCreate(context *VulkanContext, opts ImageOptions) (*VulkanImage, error) {
	const op = "create image"
	if opts.Width == 0 || opts.Height == 0 {
		return nil, core.Errorf(core.KindResourceAllocation, op, "image size must be non-zero, got %dx%d", opts.Width, opts.Height)
	}

	outImage := &VulkanImage{
		Width:  opts.Width,
		Height: opts.Height,
		Format: opts.Format,
	}
	logicalDevice := context.Device.LogicalDevice

	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    opts.Format,
		Extent: vk.Extent3D{
			Width:  opts.Width,
			Height: opts.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        opts.Tiling,
		Usage:         opts.Usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}

	if err := resultError(core.KindResourceAllocation, "vkCreateImage",
		vk.CreateImage(logicalDevice, &imageCreateInfo, context.Allocator, &outImage.Handle)); err != nil {
		return nil, err
	}
	outImage.hasImage = true

	// Query memory requirements.
	var memoryRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(logicalDevice, outImage.Handle, &memoryRequirements)
	memoryRequirements.Deref()

	memoryType, ok := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, opts.MemoryFlags)
	if !ok {
		outImage.Destroy(context)
		return nil, core.Errorf(core.KindResourceAllocation, op, "required memory type not found")
	}

	memoryAllocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: memoryType,
	}
	if err := resultError(core.KindResourceAllocation, "vkAllocateMemory",
		vk.AllocateMemory(logicalDevice, &memoryAllocateInfo, context.Allocator, &outImage.Memory)); err != nil {
		outImage.Destroy(context)
		return nil, err
	}
	outImage.hasMemory = true

	if err := resultError(core.KindResourceAllocation, "vkBindImageMemory",
		vk.BindImageMemory(logicalDevice, outImage.Handle, outImage.Memory, 0)); err != nil {
		outImage.Destroy(context)
		return nil, err
	}

	if opts.CreateView {
		if err := outImage.createView(context, opts.ViewAspectMask); err != nil {
			outImage.Destroy(context)
			return nil, err
		}
	}
	return outImage, nil
}

func (vi *VulkanImage) createView(context *VulkanContext, aspectFlags vk.ImageAspectFlags) error {
	viewCreateInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    vi.Handle,
		ViewType: vk.ImageViewType2d,
		Format:   vi.Format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectFlags,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	if err := resultError(core.KindResourceAllocation, "vkCreateImageView",
		vk.CreateImageView(context.Device.LogicalDevice, &viewCreateInfo, context.Allocator, &vi.View)); err != nil {
		return err
	}
	vi.hasView = true
	return nil
}

func (vi *VulkanImage) Destroy(context *VulkanContext) {
	logicalDevice := context.Device.LogicalDevice
	if vi.hasView {
		vk.DestroyImageView(logicalDevice, vi.View, context.Allocator)
		vi.hasView = false
	}
	if vi.hasMemory {
		vk.FreeMemory(logicalDevice, vi.Memory, context.Allocator)
		vi.hasMemory = false
	}
	if vi.hasImage {
		vk.DestroyImage(logicalDevice, vi.Handle, context.Allocator)
		vi.hasImage = false
	}
}

// DepthAttachmentCreate allocates the device-local depth buffer for a
// framebuffer of the given size.
func DepthAttachmentCreate(context *VulkanContext, width, height uint32, format vk.Format) error {
	core.LogDebug("Creating attachment image (%dx%d)...", width, height)
	image, err := ImageCreate(context, ImageOptions{
		Width:          width,
		Height:         height,
		Format:         format,
		Tiling:         vk.ImageTilingOptimal,
		Usage:          vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit | vk.ImageUsageTransientAttachmentBit),
		MemoryFlags:    vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		CreateView:     true,
		ViewAspectMask: vk.ImageAspectFlags(vk.ImageAspectDepthBit),
	})
	if err != nil {
		return err
	}
	context.DepthAttachment = image
	core.LogDebug("Attachment image ready.")
	return nil
}

func DepthAttachmentDestroy(context *VulkanContext) {
	if context.DepthAttachment == nil {
		return
	}
	core.LogDebug("Destroying attachment image...")
	context.DepthAttachment.Destroy(context)
	context.DepthAttachment = nil
}

package selection

import (
	"github.com/spaghettifunk/segfault/engine/core"
)

const op = "select physical device"

// Select returns the first candidate, in enumeration order, that has a
// graphics queue family, a successful surface query, FIFO presentation, at
// least one surface format, and a queue pairing allowed by req.QueuePolicy.
// The querier is called at most once per candidate; a query error skips that
// candidate only.
func Select(candidates []Candidate, querier SurfaceQuerier, req Requirements) (*Result, error) {
	if len(candidates) == 0 {
		return nil, core.Errorf(core.KindNoSuitableDevice, op, "no devices which support Vulkan were found: %w", core.ErrNoSuitableDevice)
	}

	sawGraphics := false
	for _, c := range candidates {
		if !hasGraphics(c) {
			core.LogInfo("Device '%s' has no graphics queue family, skipping.", c.Name)
			continue
		}
		sawGraphics = true

		if res, ok := evaluate(c, querier, req); ok {
			core.LogInfo("Selected device: '%s'.", c.Name)
			core.LogInfo("GPU type is %s.", c.Type)
			core.LogDebug("Graphics Family Index: %d", res.GraphicsFamily)
			core.LogDebug("Present Family Index:  %d", res.PresentFamily)
			return res, nil
		}
	}

	if !sawGraphics {
		return nil, core.NewError(core.KindNoSuitableDevice, op, core.ErrNoQueueFamily)
	}
	core.LogError("No physical devices were found which meet the requirements.")
	return nil, core.NewError(core.KindNoSuitableDevice, op, core.ErrNoSuitableDevice)
}

func evaluate(c Candidate, querier SurfaceQuerier, req Requirements) (*Result, bool) {
	if req.DiscreteGPU && c.Type != DeviceTypeDiscreteGPU {
		core.LogInfo("Device '%s' is not a discrete GPU, and one is required. Skipping.", c.Name)
		return nil, false
	}

	if missing, ok := missingExtension(c, req.DeviceExtensions); !ok {
		core.LogInfo("Required extension not found: '%s', skipping device '%s'.", missing, c.Name)
		return nil, false
	}

	support, err := querier.QuerySurfaceSupport(c)
	if err != nil {
		core.LogWarn("Surface query failed for device '%s': %s. Skipping.", c.Name, err)
		return nil, false
	}

	logQueueFamilies(c, support)

	if !support.SupportsPresentMode(PresentModeFIFO) {
		core.LogInfo("Device '%s' does not support FIFO presentation, skipping.", c.Name)
		return nil, false
	}
	if len(support.Formats) < 1 {
		core.LogInfo("Device '%s' reports no surface formats, skipping.", c.Name)
		return nil, false
	}

	graphics, present, ok := pickQueueFamilies(c, support, req.QueuePolicy)
	if !ok {
		core.LogInfo("Device '%s' has no queue pairing for the %s policy, skipping.", c.Name, req.QueuePolicy)
		return nil, false
	}

	return &Result{
		Candidate:      c,
		GraphicsFamily: graphics,
		PresentFamily:  present,
		Support:        support,
	}, true
}

func hasGraphics(c Candidate) bool {
	for _, f := range c.QueueFamilies {
		if f.Graphics {
			return true
		}
	}
	return false
}

// pickQueueFamilies returns the lowest family doing both graphics and
// present. Under the split policy, when no such family exists, it falls back
// to the first graphics family and the first present family.
func pickQueueFamilies(c Candidate, support SurfaceSupport, policy QueuePolicy) (uint32, uint32, bool) {
	graphics, present := -1, -1
	for _, f := range c.QueueFamilies {
		canPresent := support.CanPresent(f.Index)
		if f.Graphics && canPresent {
			return f.Index, f.Index, true
		}
		if f.Graphics && graphics < 0 {
			graphics = int(f.Index)
		}
		if canPresent && present < 0 {
			present = int(f.Index)
		}
	}
	if policy != QueuePolicySplit || graphics < 0 || present < 0 {
		return 0, 0, false
	}
	return uint32(graphics), uint32(present), true
}

func missingExtension(c Candidate, required []string) (string, bool) {
	for _, name := range required {
		found := false
		for _, have := range c.Extensions {
			if have == name {
				found = true
				break
			}
		}
		if !found {
			return name, false
		}
	}
	return "", true
}

func logQueueFamilies(c Candidate, support SurfaceSupport) {
	core.LogDebug("Graphics | Present | Compute | Transfer | Family | Name")
	for _, f := range c.QueueFamilies {
		core.LogDebug("   %5t |   %5t |   %5t |    %5t | %6d | %s",
			f.Graphics,
			support.CanPresent(f.Index),
			f.Compute,
			f.Transfer,
			f.Index,
			c.Name)
	}
}

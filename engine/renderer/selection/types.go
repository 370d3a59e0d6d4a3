// Package selection picks the physical device the bootstrap runs on.
//
// Candidates are plain values copied out of the driver at enumeration time,
// so the predicate can run (and be tested) without a live Vulkan instance.
package selection

type DeviceType uint8

const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeIntegratedGPU:
		return "Integrated"
	case DeviceTypeDiscreteGPU:
		return "Discrete"
	case DeviceTypeVirtualGPU:
		return "Virtual"
	case DeviceTypeCPU:
		return "CPU"
	default:
		return "Unknown"
	}
}

// PresentMode uses the same numbering as VkPresentModeKHR.
type PresentMode int32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFIFO        PresentMode = 2
	PresentModeFIFORelaxed PresentMode = 3
)

type SurfaceFormat struct {
	Format     int32
	ColorSpace int32
}

type QueueFamily struct {
	Index      uint32
	QueueCount uint32
	Graphics   bool
	Compute    bool
	Transfer   bool
}

type Candidate struct {
	// Handle is the driver object this descriptor was copied from. It is
	// carried through untouched.
	Handle        interface{}
	Index         int
	Name          string
	Type          DeviceType
	APIVersion    uint32
	DriverVersion uint32
	QueueFamilies []QueueFamily
	Extensions    []string
}

// SurfaceSupport is what a candidate offers for the bound surface.
// PresentFamilies is indexed by queue family index.
type SurfaceSupport struct {
	Formats         []SurfaceFormat
	PresentModes    []PresentMode
	PresentFamilies []bool
}

func (s SurfaceSupport) SupportsPresentMode(mode PresentMode) bool {
	for _, m := range s.PresentModes {
		if m == mode {
			return true
		}
	}
	return false
}

func (s SurfaceSupport) CanPresent(family uint32) bool {
	return int(family) < len(s.PresentFamilies) && s.PresentFamilies[family]
}

// SurfaceQuerier asks the driver what a candidate supports on the bound
// surface. An error means the candidate is incompatible with the surface.
type SurfaceQuerier interface {
	QuerySurfaceSupport(c Candidate) (SurfaceSupport, error)
}

type SurfaceQuerierFunc func(c Candidate) (SurfaceSupport, error)

func (f SurfaceQuerierFunc) QuerySurfaceSupport(c Candidate) (SurfaceSupport, error) {
	return f(c)
}

type QueuePolicy uint8

const (
	// QueuePolicyCombined requires one family that does graphics and
	// presents to the surface.
	QueuePolicyCombined QueuePolicy = iota
	// QueuePolicySplit prefers a combined family but accepts separate
	// graphics and present families.
	QueuePolicySplit
)

func (p QueuePolicy) String() string {
	if p == QueuePolicySplit {
		return "split"
	}
	return "combined"
}

type Requirements struct {
	QueuePolicy      QueuePolicy
	DeviceExtensions []string
	DiscreteGPU      bool
}

type Result struct {
	Candidate      Candidate
	GraphicsFamily uint32
	PresentFamily  uint32
	Support        SurfaceSupport
}

func (r *Result) SharedQueue() bool {
	return r.GraphicsFamily == r.PresentFamily
}

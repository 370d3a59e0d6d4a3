package selection

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/segfault/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	formatBGRA = SurfaceFormat{Format: 44, ColorSpace: 0}
	formatRGBA = SurfaceFormat{Format: 37, ColorSpace: 0}
)

type fakeQuerier struct {
	support map[string]SurfaceSupport
	errs    map[string]error
	calls   map[string]int
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{
		support: map[string]SurfaceSupport{},
		errs:    map[string]error{},
		calls:   map[string]int{},
	}
}

func (q *fakeQuerier) QuerySurfaceSupport(c Candidate) (SurfaceSupport, error) {
	q.calls[c.Name]++
	if err, ok := q.errs[c.Name]; ok {
		return SurfaceSupport{}, err
	}
	return q.support[c.Name], nil
}

func graphicsFamily(index uint32) QueueFamily {
	return QueueFamily{Index: index, QueueCount: 1, Graphics: true, Compute: true, Transfer: true}
}

func transferFamily(index uint32) QueueFamily {
	return QueueFamily{Index: index, QueueCount: 1, Transfer: true}
}

func candidate(index int, name string, families ...QueueFamily) Candidate {
	return Candidate{
		Handle:        name,
		Index:         index,
		Name:          name,
		Type:          DeviceTypeDiscreteGPU,
		QueueFamilies: families,
	}
}

// fullSupport presents on every listed family with FIFO and one format.
func fullSupport(presentFamilies ...bool) SurfaceSupport {
	return SurfaceSupport{
		Formats:         []SurfaceFormat{formatBGRA},
		PresentModes:    []PresentMode{PresentModeMailbox, PresentModeFIFO},
		PresentFamilies: presentFamilies,
	}
}

func TestSelectNoGraphicsQueueFamily(t *testing.T) {
	q := newFakeQuerier()
	candidates := []Candidate{
		candidate(0, "compute-only", transferFamily(0)),
		candidate(1, "empty"),
	}
	q.support["compute-only"] = fullSupport(true)

	res, err := Select(candidates, q, Requirements{})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, core.ErrNoQueueFamily)
	assert.Equal(t, core.KindNoSuitableDevice, core.KindOf(err))
	assert.Empty(t, q.calls, "surface is never queried for devices without graphics")
}

func TestSelectNoCandidates(t *testing.T) {
	res, err := Select(nil, newFakeQuerier(), Requirements{})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, core.ErrNoSuitableDevice)
}

func TestSelectSingleQualifyingCandidate(t *testing.T) {
	q := newFakeQuerier()
	candidates := []Candidate{
		candidate(0, "no-fifo", graphicsFamily(0)),
		candidate(1, "good", transferFamily(0), graphicsFamily(1)),
		candidate(2, "no-formats", graphicsFamily(0)),
	}
	q.support["no-fifo"] = SurfaceSupport{
		Formats:         []SurfaceFormat{formatBGRA},
		PresentModes:    []PresentMode{PresentModeImmediate, PresentModeMailbox},
		PresentFamilies: []bool{true},
	}
	q.support["good"] = fullSupport(false, true)
	q.support["no-formats"] = SurfaceSupport{
		PresentModes:    []PresentMode{PresentModeFIFO},
		PresentFamilies: []bool{true},
	}

	res, err := Select(candidates, q, Requirements{})
	require.NoError(t, err)
	assert.Equal(t, "good", res.Candidate.Name)
	assert.Equal(t, "good", res.Candidate.Handle)
	assert.Equal(t, uint32(1), res.GraphicsFamily)
	assert.Equal(t, uint32(1), res.PresentFamily)
	assert.True(t, res.SharedQueue())
}

func TestSelectPrefersEnumerationOrder(t *testing.T) {
	q := newFakeQuerier()
	candidates := []Candidate{
		candidate(0, "first", graphicsFamily(0)),
		candidate(1, "second", graphicsFamily(0)),
		candidate(2, "third", graphicsFamily(0)),
	}
	for _, c := range candidates {
		q.support[c.Name] = fullSupport(true)
	}

	for i := 0; i < 3; i++ {
		res, err := Select(candidates, q, Requirements{})
		require.NoError(t, err)
		assert.Equal(t, "first", res.Candidate.Name)
	}
	assert.Zero(t, q.calls["second"], "later candidates are not queried once one qualifies")
}

func TestSelectNeverPicksWithoutFIFO(t *testing.T) {
	q := newFakeQuerier()
	candidates := []Candidate{candidate(0, "mailbox-only", graphicsFamily(0))}
	q.support["mailbox-only"] = SurfaceSupport{
		Formats:         []SurfaceFormat{formatBGRA, formatRGBA},
		PresentModes:    []PresentMode{PresentModeMailbox, PresentModeFIFORelaxed},
		PresentFamilies: []bool{true},
	}

	res, err := Select(candidates, q, Requirements{QueuePolicy: QueuePolicySplit})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, core.ErrNoSuitableDevice)
}

func TestSelectNeverPicksWithoutFormats(t *testing.T) {
	q := newFakeQuerier()
	candidates := []Candidate{candidate(0, "formatless", graphicsFamily(0))}
	q.support["formatless"] = SurfaceSupport{
		Formats:         []SurfaceFormat{},
		PresentModes:    []PresentMode{PresentModeFIFO},
		PresentFamilies: []bool{true},
	}

	_, err := Select(candidates, q, Requirements{})
	assert.ErrorIs(t, err, core.ErrNoSuitableDevice)
}

func TestSelectSkipsFailedSurfaceQuery(t *testing.T) {
	q := newFakeQuerier()
	candidates := []Candidate{
		candidate(0, "incompatible", graphicsFamily(0)),
		candidate(1, "compatible", graphicsFamily(0)),
	}
	q.errs["incompatible"] = errors.New("VK_ERROR_SURFACE_LOST_KHR")
	q.support["compatible"] = fullSupport(true)

	res, err := Select(candidates, q, Requirements{})
	require.NoError(t, err)
	assert.Equal(t, "compatible", res.Candidate.Name)
	assert.Equal(t, 1, q.calls["incompatible"])
	assert.Equal(t, 1, q.calls["compatible"])
}

func TestSelectAllSurfaceQueriesFail(t *testing.T) {
	q := newFakeQuerier()
	candidates := []Candidate{
		candidate(0, "a", graphicsFamily(0)),
		candidate(1, "b", graphicsFamily(0)),
	}
	q.errs["a"] = errors.New("incompatible")
	q.errs["b"] = errors.New("incompatible")

	_, err := Select(candidates, q, Requirements{})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNoSuitableDevice)
	assert.Equal(t, 1, q.calls["a"])
	assert.Equal(t, 1, q.calls["b"])
}

func TestSelectScenarioABC(t *testing.T) {
	q := newFakeQuerier()
	candidates := []Candidate{
		candidate(0, "A", transferFamily(0)),
		candidate(1, "B", graphicsFamily(0)),
		candidate(2, "C", graphicsFamily(0), transferFamily(1)),
	}
	q.support["A"] = fullSupport(true)
	q.support["B"] = SurfaceSupport{
		PresentModes:    []PresentMode{PresentModeFIFO},
		PresentFamilies: []bool{true},
	}
	q.support["C"] = SurfaceSupport{
		Formats:         []SurfaceFormat{formatBGRA, formatRGBA},
		PresentModes:    []PresentMode{PresentModeFIFO},
		PresentFamilies: []bool{true, false},
	}

	res, err := Select(candidates, q, Requirements{})
	require.NoError(t, err)
	assert.Equal(t, "C", res.Candidate.Name)
	assert.Equal(t, 2, res.Candidate.Index)
	assert.Len(t, res.Support.Formats, 2)
}

func TestSelectQueuePolicies(t *testing.T) {
	// Family 0 does graphics but cannot present; family 1 only presents.
	split := candidate(0, "split", graphicsFamily(0), transferFamily(1))
	// Family 0 graphics only, family 1 graphics+present, family 2 present only.
	mixed := candidate(0, "mixed", graphicsFamily(0), graphicsFamily(1), transferFamily(2))

	t.Run("combined rejects split-only device", func(t *testing.T) {
		q := newFakeQuerier()
		q.support["split"] = fullSupport(false, true)

		_, err := Select([]Candidate{split}, q, Requirements{QueuePolicy: QueuePolicyCombined})
		assert.ErrorIs(t, err, core.ErrNoSuitableDevice)
	})

	t.Run("split accepts separate families", func(t *testing.T) {
		q := newFakeQuerier()
		q.support["split"] = fullSupport(false, true)

		res, err := Select([]Candidate{split}, q, Requirements{QueuePolicy: QueuePolicySplit})
		require.NoError(t, err)
		assert.Equal(t, uint32(0), res.GraphicsFamily)
		assert.Equal(t, uint32(1), res.PresentFamily)
		assert.False(t, res.SharedQueue())
	})

	t.Run("split prefers a combined family", func(t *testing.T) {
		q := newFakeQuerier()
		q.support["mixed"] = fullSupport(false, true, true)

		res, err := Select([]Candidate{mixed}, q, Requirements{QueuePolicy: QueuePolicySplit})
		require.NoError(t, err)
		assert.Equal(t, uint32(1), res.GraphicsFamily)
		assert.Equal(t, uint32(1), res.PresentFamily)
	})

	t.Run("no present family at all", func(t *testing.T) {
		q := newFakeQuerier()
		q.support["split"] = fullSupport(false, false)

		_, err := Select([]Candidate{split}, q, Requirements{QueuePolicy: QueuePolicySplit})
		assert.ErrorIs(t, err, core.ErrNoSuitableDevice)
	})
}

func TestSelectRequirements(t *testing.T) {
	integrated := candidate(0, "integrated", graphicsFamily(0))
	integrated.Type = DeviceTypeIntegratedGPU
	integrated.Extensions = []string{"VK_KHR_swapchain"}

	discrete := candidate(1, "discrete", graphicsFamily(0))
	discrete.Extensions = []string{"VK_KHR_maintenance1"}

	q := newFakeQuerier()
	q.support["integrated"] = fullSupport(true)
	q.support["discrete"] = fullSupport(true)
	candidates := []Candidate{integrated, discrete}

	res, err := Select(candidates, q, Requirements{DiscreteGPU: true})
	require.NoError(t, err)
	assert.Equal(t, "discrete", res.Candidate.Name)
	assert.Zero(t, q.calls["integrated"])

	res, err = Select(candidates, q, Requirements{DeviceExtensions: []string{"VK_KHR_swapchain"}})
	require.NoError(t, err)
	assert.Equal(t, "integrated", res.Candidate.Name)

	_, err = Select(candidates, q, Requirements{DiscreteGPU: true, DeviceExtensions: []string{"VK_KHR_swapchain"}})
	assert.ErrorIs(t, err, core.ErrNoSuitableDevice)
}

func TestSurfaceQuerierFunc(t *testing.T) {
	var seen []string
	q := SurfaceQuerierFunc(func(c Candidate) (SurfaceSupport, error) {
		seen = append(seen, c.Name)
		return fullSupport(true), nil
	})

	res, err := Select([]Candidate{candidate(0, "only", graphicsFamily(0))}, q, Requirements{})
	require.NoError(t, err)
	assert.Equal(t, "only", res.Candidate.Name)
	assert.Equal(t, []string{"only"}, seen)
}

func TestSurfaceSupportHelpers(t *testing.T) {
	s := fullSupport(true, false)
	assert.True(t, s.CanPresent(0))
	assert.False(t, s.CanPresent(1))
	assert.False(t, s.CanPresent(7))
	assert.True(t, s.SupportsPresentMode(PresentModeFIFO))
	assert.False(t, s.SupportsPresentMode(PresentModeImmediate))

	assert.Equal(t, "Discrete", DeviceTypeDiscreteGPU.String())
	assert.Equal(t, "Unknown", DeviceType(42).String())
	assert.Equal(t, "split", QueuePolicySplit.String())
	assert.Equal(t, "combined", QueuePolicyCombined.String())
}

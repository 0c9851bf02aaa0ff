package resource_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/resource"
)

func TestFindMemoryType(t *testing.T) {
	types := []core1_0.MemoryPropertyFlags{
		core1_0.MemoryPropertyDeviceLocal,
		core1_0.MemoryPropertyHostVisible,
		core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent,
		core1_0.MemoryPropertyDeviceLocal | core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent,
	}

	tests := []struct {
		name       string
		filter     uint32
		properties core1_0.MemoryPropertyFlags
		want       int
	}{
		{"first match, not best", 0b1111, core1_0.MemoryPropertyHostVisible, 1},
		{"filter excludes earlier types", 0b1100, core1_0.MemoryPropertyHostVisible, 2},
		{"superset flags match", 0b1111, core1_0.MemoryPropertyHostCoherent, 2},
		{"device local", 0b0001, core1_0.MemoryPropertyDeviceLocal, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := resource.FindMemoryType(types, test.filter, test.properties)
			qt.Assert(t, err, qt.IsNil)
			qt.Assert(t, got, qt.Equals, test.want)
		})
	}
}

func TestFindMemoryTypeNoMatch(t *testing.T) {
	types := []core1_0.MemoryPropertyFlags{core1_0.MemoryPropertyDeviceLocal, core1_0.MemoryPropertyHostVisible}

	_, err := resource.FindMemoryType(types, 0b01, core1_0.MemoryPropertyHostVisible)
	qt.Assert(t, errors.Is(err, gfxerr.ErrUnsupportedMemoryType), qt.IsTrue)

	_, err = resource.FindMemoryType(nil, 0xffffffff, core1_0.MemoryPropertyDeviceLocal)
	qt.Assert(t, errors.Is(err, gfxerr.ErrUnsupportedMemoryType), qt.IsTrue)
}

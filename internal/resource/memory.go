package resource

import (
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
)

// Requirements are the size and the memory type bitmask a resource needs.
type Requirements struct {
	Size           int
	MemoryTypeBits uint32
}

// FindMemoryType returns the first memory type index allowed by typeFilter
// whose flags include every bit of properties. No scoring is done.
func FindMemoryType(memoryTypes []core1_0.MemoryPropertyFlags, typeFilter uint32, properties core1_0.MemoryPropertyFlags) (int, error) {
	for i, memoryType := range memoryTypes {
		typeBit := uint32(1 << i)

		if (typeFilter&typeBit) != 0 && (memoryType&properties) == properties {
			return i, nil
		}
	}

	return 0, gfxerr.UnsupportedMemoryType(typeFilter, properties)
}

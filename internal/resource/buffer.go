// Package resource allocates GPU buffers, images and textures and moves
// data between host and device memory.
package resource

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
)

// BufferHandle is a device buffer object without memory semantics.
type BufferHandle interface {
	MemoryRequirements() Requirements
	BindMemory(memory Memory, offset int) error
	Destroy()
}

// Memory is one device memory allocation.
type Memory interface {
	// Map exposes size bytes starting at offset to the host.
	Map(offset, size int) ([]byte, error)
	Unmap()
	Free()
}

// Device creates buffer objects and memory allocations.
type Device interface {
	NewBuffer(size int, usage core1_0.BufferUsageFlags) (BufferHandle, error)
	AllocateMemory(size int, memoryTypeIndex int) (Memory, error)
	// MemoryTypes lists the property flags of each memory type, by index.
	MemoryTypes() []core1_0.MemoryPropertyFlags
}

// Descriptor is the buffer, offset and range a shader binding sees.
type Descriptor struct {
	Buffer BufferHandle
	Offset int
	Range  int
}

// Buffer is a device buffer, its backing memory and an optional persistent
// host mapping.
type Buffer struct {
	Handle     BufferHandle
	Memory     Memory
	Size       int
	Usage      core1_0.BufferUsageFlags
	Properties core1_0.MemoryPropertyFlags
	Descriptor Descriptor

	mapped []byte
	bound  bool
}

// CreateBuffer allocates a buffer of size bytes in the first memory type
// satisfying properties and binds it at offset 0.
func CreateBuffer(device Device, size int, usage core1_0.BufferUsageFlags, properties core1_0.MemoryPropertyFlags) (*Buffer, error) {
	handle, err := device.NewBuffer(size, usage)
	if err != nil {
		return nil, gfxerr.ResourceCreation(err, "buffer")
	}

	buffer := &Buffer{
		Handle:     handle,
		Size:       size,
		Usage:      usage,
		Properties: properties,
	}

	memRequirements := handle.MemoryRequirements()
	memoryTypeIndex, err := FindMemoryType(device.MemoryTypes(), memRequirements.MemoryTypeBits, properties)
	if err != nil {
		buffer.Destroy()
		return nil, err
	}

	buffer.Memory, err = device.AllocateMemory(memRequirements.Size, memoryTypeIndex)
	if err != nil {
		buffer.Destroy()
		return nil, gfxerr.ResourceCreation(err, "buffer memory")
	}

	if err = buffer.Bind(0); err != nil {
		buffer.Destroy()
		return nil, err
	}

	buffer.SetupDescriptor(size, 0)
	return buffer, nil
}

// Bind attaches the allocated memory to the buffer. It may succeed only once.
func (b *Buffer) Bind(offset int) error {
	if b.bound {
		return errors.AssertionFailedf("buffer memory already bound")
	}
	if b.Memory == nil {
		return errors.AssertionFailedf("buffer has no memory to bind")
	}
	if err := b.Handle.BindMemory(b.Memory, offset); err != nil {
		return gfxerr.ResourceCreation(err, "buffer memory binding")
	}
	b.bound = true
	return nil
}

// SetupDescriptor sets the range shader bindings of this buffer will see.
func (b *Buffer) SetupDescriptor(size, offset int) {
	b.Descriptor = Descriptor{Buffer: b.Handle, Offset: offset, Range: size}
}

// Map persistently maps the whole buffer. Mapping twice is a no-op.
func (b *Buffer) Map() error {
	if b.mapped != nil {
		return nil
	}
	if !b.bound {
		return errors.AssertionFailedf("map of unbound buffer")
	}
	mapped, err := b.Memory.Map(0, b.Size)
	if err != nil {
		return errors.Wrap(err, "map buffer memory")
	}
	b.mapped = mapped
	return nil
}

// Mapped returns the host view of the buffer, or nil when unmapped.
func (b *Buffer) Mapped() []byte {
	return b.mapped
}

func (b *Buffer) Unmap() {
	if b.mapped == nil {
		return
	}
	b.Memory.Unmap()
	b.mapped = nil
}

// Write copies data into the buffer at offset, mapping it first if needed.
func (b *Buffer) Write(offset int, data []byte) error {
	if offset < 0 || offset+len(data) > b.Size {
		return errors.Newf("write of %d bytes at %d overflows buffer of %d", len(data), offset, b.Size)
	}
	if err := b.Map(); err != nil {
		return err
	}
	copy(b.mapped[offset:], data)
	return nil
}

// WriteData encodes a fixed-size value or slice and writes it at offset.
func (b *Buffer) WriteData(offset int, data interface{}) error {
	encoded, err := Encode(data)
	if err != nil {
		return err
	}
	return b.Write(offset, encoded)
}

// Destroy releases the buffer and then its memory. Already released or
// never created parts are skipped.
func (b *Buffer) Destroy() {
	if b == nil {
		return
	}
	b.Unmap()

	if b.Handle != nil {
		b.Handle.Destroy()
		b.Handle = nil
	}

	if b.Memory != nil {
		b.Memory.Free()
		b.Memory = nil
	}
	b.bound = false
}

// CreateUniformBuffers creates count mapped, host-coherent uniform buffers
// of size bytes, one per swapchain image.
func CreateUniformBuffers(device Device, size, count int) ([]*Buffer, error) {
	var buffers []*Buffer
	for i := 0; i < count; i++ {
		buffer, err := CreateBuffer(device, size, core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
		if err == nil {
			err = buffer.Map()
		}
		if err != nil {
			buffer.Destroy()
			DestroyBuffers(buffers)
			return nil, err
		}
		buffers = append(buffers, buffer)
	}
	return buffers, nil
}

func DestroyBuffers(buffers []*Buffer) {
	for _, buffer := range buffers {
		buffer.Destroy()
	}
}

// Encode lays data out in the byte order shaders expect.
func Encode(data interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, common.ByteOrder, data); err != nil {
		return nil, errors.Wrap(err, "encode buffer data")
	}
	return buf.Bytes(), nil
}

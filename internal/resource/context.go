package resource

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
)

// Context is the device-backed implementation of Device and Transfer. It
// owns the command pool one-time and per-image command buffers come from.
type Context struct {
	Device   core1_0.Device
	Physical core1_0.PhysicalDevice
	Queue    core1_0.Queue

	CommandPool core1_0.CommandPool
}

// NewContext creates a command pool on the graphics family, which is also
// where transfers are submitted.
func NewContext(device core1_0.Device, physical core1_0.PhysicalDevice, graphicsQueue core1_0.Queue, graphicsFamily int) (*Context, error) {
	pool, _, err := device.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		QueueFamilyIndex: &graphicsFamily,
	})
	if err != nil {
		return nil, gfxerr.ResourceCreation(err, "command pool")
	}

	return &Context{
		Device:      device,
		Physical:    physical,
		Queue:       graphicsQueue,
		CommandPool: pool,
	}, nil
}

func (c *Context) Destroy() {
	if c.CommandPool != nil {
		c.CommandPool.Destroy(nil)
		c.CommandPool = nil
	}
}

// MemoryTypes implements Device.
func (c *Context) MemoryTypes() []core1_0.MemoryPropertyFlags {
	memProperties := c.Physical.MemoryProperties()
	types := make([]core1_0.MemoryPropertyFlags, 0, len(memProperties.MemoryTypes))
	for _, memoryType := range memProperties.MemoryTypes {
		types = append(types, memoryType.PropertyFlags)
	}
	return types
}

// NewBuffer implements Device.
func (c *Context) NewBuffer(size int, usage core1_0.BufferUsageFlags) (BufferHandle, error) {
	buffer, _, err := c.Device.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return nil, err
	}
	return &deviceBuffer{buffer: buffer}, nil
}

// AllocateMemory implements Device.
func (c *Context) AllocateMemory(size int, memoryTypeIndex int) (Memory, error) {
	memory, _, err := c.Device.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		return nil, err
	}
	return &deviceMemory{memory: memory}, nil
}

// Begin implements Transfer.
func (c *Context) Begin() (Recorder, error) {
	buffer, err := c.beginSingleTimeCommands()
	if err != nil {
		return nil, err
	}
	return &commandRecorder{buffer: buffer}, nil
}

// Flush implements Transfer.
func (c *Context) Flush(recorder Recorder) error {
	r, ok := recorder.(*commandRecorder)
	if !ok {
		return errors.AssertionFailedf("recorder %T was not created by this context", recorder)
	}
	return c.endSingleTimeCommands(r.buffer)
}

// Abort implements Transfer. The recorded commands are discarded without
// being submitted.
func (c *Context) Abort(recorder Recorder) {
	if r, ok := recorder.(*commandRecorder); ok && r.buffer != nil {
		c.FreeCommandBuffers([]core1_0.CommandBuffer{r.buffer})
		r.buffer = nil
	}
}

// AllocateCommandBuffers allocates count primary command buffers.
func (c *Context) AllocateCommandBuffers(count int) ([]core1_0.CommandBuffer, error) {
	buffers, _, err := c.Device.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        c.CommandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	})
	if err != nil {
		return nil, gfxerr.ResourceCreation(err, "command buffers")
	}
	return buffers, nil
}

func (c *Context) FreeCommandBuffers(buffers []core1_0.CommandBuffer) {
	if len(buffers) > 0 {
		c.Device.FreeCommandBuffers(buffers)
	}
}

func (c *Context) beginSingleTimeCommands() (core1_0.CommandBuffer, error) {
	buffers, err := c.AllocateCommandBuffers(1)
	if err != nil {
		return nil, err
	}

	buffer := buffers[0]
	_, err = buffer.Begin(core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		c.FreeCommandBuffers(buffers)
		return nil, err
	}
	return buffer, nil
}

func (c *Context) endSingleTimeCommands(buffer core1_0.CommandBuffer) error {
	defer c.FreeCommandBuffers([]core1_0.CommandBuffer{buffer})

	_, err := buffer.End()
	if err != nil {
		return err
	}

	_, err = c.Queue.Submit(nil, []core1_0.SubmitInfo{
		{
			CommandBuffers: []core1_0.CommandBuffer{buffer},
		},
	})
	if err != nil {
		return errors.Wrap(err, "submit one-time commands")
	}

	_, err = c.Queue.WaitIdle()
	return err
}

// RawBuffer returns the API object behind a handle created by a Context,
// or nil for any other handle.
func RawBuffer(handle BufferHandle) core1_0.Buffer {
	if b, ok := handle.(*deviceBuffer); ok {
		return b.buffer
	}
	return nil
}

type deviceBuffer struct {
	buffer core1_0.Buffer
}

func (b *deviceBuffer) MemoryRequirements() Requirements {
	memRequirements := b.buffer.MemoryRequirements()
	return Requirements{Size: memRequirements.Size, MemoryTypeBits: memRequirements.MemoryTypeBits}
}

func (b *deviceBuffer) BindMemory(memory Memory, offset int) error {
	m, ok := memory.(*deviceMemory)
	if !ok {
		return errors.AssertionFailedf("memory %T was not allocated by a context", memory)
	}
	_, err := b.buffer.BindBufferMemory(m.memory, offset)
	return err
}

func (b *deviceBuffer) Destroy() {
	b.buffer.Destroy(nil)
}

type deviceMemory struct {
	memory core1_0.DeviceMemory
}

func (m *deviceMemory) Map(offset, size int) ([]byte, error) {
	memoryPtr, _, err := m.memory.Map(offset, size, 0)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(memoryPtr), size), nil
}

func (m *deviceMemory) Unmap() {
	m.memory.Unmap()
}

func (m *deviceMemory) Free() {
	m.memory.Free(nil)
}

type commandRecorder struct {
	buffer core1_0.CommandBuffer
}

func (r *commandRecorder) CopyBuffer(src, dst BufferHandle, size int) error {
	srcBuffer, dstBuffer := RawBuffer(src), RawBuffer(dst)
	if srcBuffer == nil || dstBuffer == nil {
		return errors.AssertionFailedf("copy between buffers not created by a context")
	}

	return r.buffer.CmdCopyBuffer(srcBuffer, dstBuffer, []core1_0.BufferCopy{
		{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      size,
		},
	})
}

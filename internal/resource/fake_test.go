package resource_test

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/resource"
)

// fakeDevice hands out host-side buffers. Type 0 is device local only,
// type 1 is host visible and coherent.
type fakeDevice struct {
	types      []core1_0.MemoryPropertyFlags
	allocFail  error
	buffers    []*fakeBuffer
	memories   []*fakeMemory
	destroyLog []string
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		types: []core1_0.MemoryPropertyFlags{
			core1_0.MemoryPropertyDeviceLocal,
			core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent,
		},
	}
}

func (d *fakeDevice) NewBuffer(size int, usage core1_0.BufferUsageFlags) (resource.BufferHandle, error) {
	b := &fakeBuffer{device: d, size: size, usage: usage}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *fakeDevice) AllocateMemory(size int, memoryTypeIndex int) (resource.Memory, error) {
	if d.allocFail != nil {
		return nil, d.allocFail
	}
	m := &fakeMemory{device: d, data: make([]byte, size), typeIndex: memoryTypeIndex}
	d.memories = append(d.memories, m)
	return m, nil
}

func (d *fakeDevice) MemoryTypes() []core1_0.MemoryPropertyFlags {
	return d.types
}

func (d *fakeDevice) live() (buffers, memories int) {
	for _, b := range d.buffers {
		if !b.destroyed {
			buffers++
		}
	}
	for _, m := range d.memories {
		if !m.freed {
			memories++
		}
	}
	return buffers, memories
}

type fakeBuffer struct {
	device    *fakeDevice
	size      int
	usage     core1_0.BufferUsageFlags
	memory    *fakeMemory
	binds     int
	destroyed bool
}

func (b *fakeBuffer) MemoryRequirements() resource.Requirements {
	return resource.Requirements{Size: b.size, MemoryTypeBits: 0b11}
}

func (b *fakeBuffer) BindMemory(memory resource.Memory, offset int) error {
	b.binds++
	b.memory = memory.(*fakeMemory)
	return nil
}

func (b *fakeBuffer) Destroy() {
	b.destroyed = true
	b.device.destroyLog = append(b.device.destroyLog, "buffer")
}

type fakeMemory struct {
	device    *fakeDevice
	data      []byte
	typeIndex int
	mapped    bool
	freed     bool
}

func (m *fakeMemory) Map(offset, size int) ([]byte, error) {
	if m.device.types[m.typeIndex]&core1_0.MemoryPropertyHostVisible == 0 {
		return nil, errors.New("VK_ERROR_MEMORY_MAP_FAILED")
	}
	m.mapped = true
	return m.data[offset : offset+size], nil
}

func (m *fakeMemory) Unmap() {
	m.mapped = false
}

func (m *fakeMemory) Free() {
	m.freed = true
	m.device.destroyLog = append(m.device.destroyLog, "memory")
}

type fakeCopy struct {
	src, dst *fakeBuffer
	size     int
}

// fakeTransfer executes recorded copies when flushed.
type fakeTransfer struct {
	pending []fakeCopy
	begun   int
	flushes int
	aborts  int
}

func (t *fakeTransfer) Begin() (resource.Recorder, error) {
	t.begun++
	return t, nil
}

func (t *fakeTransfer) CopyBuffer(src, dst resource.BufferHandle, size int) error {
	s, d := src.(*fakeBuffer), dst.(*fakeBuffer)
	if s.usage&core1_0.BufferUsageTransferSrc == 0 {
		return errors.New("source lacks transfer-source usage")
	}
	if d.usage&core1_0.BufferUsageTransferDst == 0 {
		return errors.New("destination lacks transfer-destination usage")
	}
	t.pending = append(t.pending, fakeCopy{src: s, dst: d, size: size})
	return nil
}

func (t *fakeTransfer) Flush(resource.Recorder) error {
	for _, c := range t.pending {
		copy(c.dst.memory.data[:c.size], c.src.memory.data[:c.size])
	}
	t.pending = nil
	t.flushes++
	return nil
}

func (t *fakeTransfer) Abort(resource.Recorder) {
	t.pending = nil
	t.aborts++
}

// open is the number of recorders begun but neither flushed nor aborted.
func (t *fakeTransfer) open() int {
	return t.begun - t.flushes - t.aborts
}

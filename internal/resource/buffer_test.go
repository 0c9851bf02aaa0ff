package resource_test

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
	"github.com/SPLEEN96/Vulkan-Triangle/internal/resource"
)

func TestStagingRoundTrip(t *testing.T) {
	for _, size := range []int{1, 3, 256, 4099} {
		device := newFakeDevice()
		transfer := &fakeTransfer{}

		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i*31 + 7)
		}

		buffer, err := resource.UploadDeviceLocal(device, transfer, data, core1_0.BufferUsageVertexBuffer|core1_0.BufferUsageTransferSrc)
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, buffer.Memory.(*fakeMemory).typeIndex, qt.Equals, 0)

		got, err := resource.Download(device, transfer, buffer, size)
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, bytes.Equal(got, data), qt.IsTrue, qt.Commentf("size %d", size))
		qt.Assert(t, transfer.flushes, qt.Equals, 2)

		buffer.Destroy()
		buffers, memories := device.live()
		qt.Assert(t, buffers, qt.Equals, 0)
		qt.Assert(t, memories, qt.Equals, 0)
	}
}

func TestCreateBufferPicksHostVisibleType(t *testing.T) {
	device := newFakeDevice()

	buffer, err := resource.CreateBuffer(device, 64, core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, buffer.Memory.(*fakeMemory).typeIndex, qt.Equals, 1)
	qt.Assert(t, buffer.Handle.(*fakeBuffer).binds, qt.Equals, 1)
	qt.Assert(t, buffer.Descriptor.Range, qt.Equals, 64)
	qt.Assert(t, buffer.Descriptor.Offset, qt.Equals, 0)
}

func TestBindOnlyOnce(t *testing.T) {
	device := newFakeDevice()

	buffer, err := resource.CreateBuffer(device, 16, core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible)
	qt.Assert(t, err, qt.IsNil)

	err = buffer.Bind(0)
	qt.Assert(t, err, qt.Not(qt.IsNil))
	qt.Assert(t, errors.IsAssertionFailure(err), qt.IsTrue)
	qt.Assert(t, buffer.Handle.(*fakeBuffer).binds, qt.Equals, 1)
}

func TestCreateBufferUnsupportedMemory(t *testing.T) {
	device := newFakeDevice()
	device.types = device.types[:1]

	_, err := resource.CreateBuffer(device, 16, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible)
	qt.Assert(t, errors.Is(err, gfxerr.ErrUnsupportedMemoryType), qt.IsTrue)
	qt.Assert(t, errors.Is(err, gfxerr.ErrUnsupportedOperation), qt.IsTrue)

	buffers, memories := device.live()
	qt.Assert(t, buffers, qt.Equals, 0)
	qt.Assert(t, memories, qt.Equals, 0)
}

func TestCreateBufferAllocationFailure(t *testing.T) {
	device := newFakeDevice()
	device.allocFail = errors.New("VK_ERROR_OUT_OF_DEVICE_MEMORY")

	_, err := resource.CreateBuffer(device, 16, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible)
	qt.Assert(t, errors.Is(err, gfxerr.ErrResourceCreation), qt.IsTrue)
	qt.Assert(t, err, qt.ErrorMatches, "create buffer memory: VK_ERROR_OUT_OF_DEVICE_MEMORY")

	buffers, _ := device.live()
	qt.Assert(t, buffers, qt.Equals, 0)
}

func TestDestroyOrderAndIdempotence(t *testing.T) {
	device := newFakeDevice()

	buffer, err := resource.CreateBuffer(device, 16, core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, buffer.Map(), qt.IsNil)

	buffer.Destroy()
	buffer.Destroy()
	qt.Assert(t, device.destroyLog, qt.DeepEquals, []string{"buffer", "memory"})
	qt.Assert(t, buffer.Mapped(), qt.IsNil)

	var nilBuffer *resource.Buffer
	nilBuffer.Destroy()
}

func TestWriteBounds(t *testing.T) {
	device := newFakeDevice()

	buffer, err := resource.CreateBuffer(device, 8, core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible)
	qt.Assert(t, err, qt.IsNil)

	qt.Assert(t, buffer.Write(4, []byte{1, 2, 3, 4}), qt.IsNil)
	qt.Assert(t, buffer.Mapped()[4:], qt.DeepEquals, []byte{1, 2, 3, 4})
	qt.Assert(t, buffer.Write(5, []byte{1, 2, 3, 4}), qt.ErrorMatches, "write of 4 bytes at 5 overflows buffer of 8")
}

func TestWriteData(t *testing.T) {
	device := newFakeDevice()

	buffer, err := resource.CreateBuffer(device, 8, core1_0.BufferUsageIndexBuffer, core1_0.MemoryPropertyHostVisible)
	qt.Assert(t, err, qt.IsNil)

	qt.Assert(t, buffer.WriteData(0, []uint16{1, 2, 3, 4}), qt.IsNil)
	want, err := resource.Encode([]uint16{1, 2, 3, 4})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, buffer.Mapped(), qt.DeepEquals, want)
}

func TestCopyBufferRejectsOversize(t *testing.T) {
	device := newFakeDevice()
	transfer := &fakeTransfer{}

	src, err := resource.CreateBuffer(device, 4, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible)
	qt.Assert(t, err, qt.IsNil)
	dst, err := resource.CreateBuffer(device, 2, core1_0.BufferUsageTransferDst, core1_0.MemoryPropertyDeviceLocal)
	qt.Assert(t, err, qt.IsNil)

	err = resource.CopyBuffer(transfer, src, dst, 4)
	qt.Assert(t, err, qt.ErrorMatches, `copy of 4 bytes exceeds buffer sizes 4 -> 2`)
	qt.Assert(t, transfer.flushes, qt.Equals, 0)
}

func TestCopyBufferAbortsFailedRecording(t *testing.T) {
	c := qt.New(t)
	device := newFakeDevice()
	transfer := &fakeTransfer{}

	// Neither buffer carries transfer usage, so recording the copy fails.
	src, err := resource.CreateBuffer(device, 8, core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible)
	c.Assert(err, qt.IsNil)
	dst, err := resource.CreateBuffer(device, 8, core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible)
	c.Assert(err, qt.IsNil)

	err = resource.CopyBuffer(transfer, src, dst, 8)
	c.Assert(err, qt.ErrorMatches, `source lacks transfer-source usage`)
	c.Assert(transfer.begun, qt.Equals, 1)
	c.Assert(transfer.flushes, qt.Equals, 0)
	c.Assert(transfer.aborts, qt.Equals, 1)
	c.Assert(transfer.open(), qt.Equals, 0)
}

func TestUploadDeviceLocalClosesRecorder(t *testing.T) {
	device := newFakeDevice()
	transfer := &fakeTransfer{}

	_, err := resource.UploadDeviceLocal(device, transfer, []byte{1, 2, 3, 4}, core1_0.BufferUsageVertexBuffer)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, transfer.open(), qt.Equals, 0)
	qt.Assert(t, transfer.aborts, qt.Equals, 0)
}

func TestCreateUniformBuffers(t *testing.T) {
	c := qt.New(t)
	device := newFakeDevice()

	buffers, err := resource.CreateUniformBuffers(device, 192, 3)
	c.Assert(err, qt.IsNil)
	c.Assert(buffers, qt.HasLen, 3)
	for _, buffer := range buffers {
		c.Assert(buffer.Mapped(), qt.HasLen, 192)
		c.Assert(buffer.Descriptor.Range, qt.Equals, 192)
	}

	resource.DestroyBuffers(buffers)
	live, memories := device.live()
	c.Assert(live, qt.Equals, 0)
	c.Assert(memories, qt.Equals, 0)
}

func TestCreateUniformBuffersReleasesOnFailure(t *testing.T) {
	device := newFakeDevice()
	device.types = []core1_0.MemoryPropertyFlags{core1_0.MemoryPropertyDeviceLocal}

	_, err := resource.CreateUniformBuffers(device, 64, 2)
	qt.Assert(t, errors.Is(err, gfxerr.ErrUnsupportedMemoryType), qt.IsTrue)

	live, _ := device.live()
	qt.Assert(t, live, qt.Equals, 0)
}

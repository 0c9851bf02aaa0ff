package resource

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
)

// Recorder records transfer commands into a one-time command buffer.
type Recorder interface {
	CopyBuffer(src, dst BufferHandle, size int) error
}

// Transfer runs one-time command buffers. Flush submits the recorded work
// and blocks until the queue is idle, so it is only suitable for setup-time
// uploads. Abort releases a recorder that will never be flushed.
type Transfer interface {
	Begin() (Recorder, error)
	Flush(Recorder) error
	Abort(Recorder)
}

// CopyBuffer copies size bytes from the start of src to the start of dst.
func CopyBuffer(transfer Transfer, src, dst *Buffer, size int) error {
	if size > src.Size || size > dst.Size {
		return errors.Newf("copy of %d bytes exceeds buffer sizes %d -> %d", size, src.Size, dst.Size)
	}

	recorder, err := transfer.Begin()
	if err != nil {
		return err
	}

	if err = recorder.CopyBuffer(src.Handle, dst.Handle, size); err != nil {
		transfer.Abort(recorder)
		return err
	}

	return transfer.Flush(recorder)
}

// UploadDeviceLocal stages data through a host-visible buffer into a new
// device-local buffer with usage. The staging buffer is released before
// returning.
func UploadDeviceLocal(device Device, transfer Transfer, data []byte, usage core1_0.BufferUsageFlags) (*Buffer, error) {
	bufferSize := len(data)

	staging, err := CreateBuffer(device, bufferSize, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	if err = staging.Write(0, data); err != nil {
		return nil, err
	}

	buffer, err := CreateBuffer(device, bufferSize, core1_0.BufferUsageTransferDst|usage, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return nil, err
	}

	if err = CopyBuffer(transfer, staging, buffer, bufferSize); err != nil {
		buffer.Destroy()
		return nil, err
	}

	return buffer, nil
}

// Download reads size bytes back from src through a host-visible staging
// buffer. src must have been created with transfer-source usage.
func Download(device Device, transfer Transfer, src *Buffer, size int) ([]byte, error) {
	staging, err := CreateBuffer(device, size, core1_0.BufferUsageTransferDst, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	if err = CopyBuffer(transfer, src, staging, size); err != nil {
		return nil, err
	}

	if err = staging.Map(); err != nil {
		return nil, err
	}

	out := make([]byte, size)
	copy(out, staging.Mapped())
	return out, nil
}

// Package device provides file-backed implementations of the raw disc
// reader the partition layer consumes.
package device

import (
	"fmt"
	"os"

	"github.com/disctools/go-wiidisc/internal/interfaces"
)

// FileDevice reads a disc image from a plain file. It satisfies the
// DiscReader contract: absolute seeks, byte reads, size, and liveness.
type FileDevice struct {
	file *os.File
	size int64
}

// Ensure FileDevice implements the DiscReader interface
var _ interfaces.DiscReader = (*FileDevice)(nil)

// OpenFileDevice opens a disc image file for reading.
func OpenFileDevice(path string) (*FileDevice, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open disc image: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat disc image: %w", err)
	}

	return &FileDevice{file: file, size: stat.Size()}, nil
}

// Seek positions the stream at an absolute byte offset.
func (d *FileDevice) Seek(offset int64) error {
	if d.file == nil {
		return fmt.Errorf("disc image is closed")
	}
	_, err := d.file.Seek(offset, 0)
	return err
}

// Read reads up to len(p) bytes into p.
func (d *FileDevice) Read(p []byte) (int, error) {
	if d.file == nil {
		return 0, fmt.Errorf("disc image is closed")
	}
	return d.file.Read(p)
}

// Size returns the total size of the image in bytes.
func (d *FileDevice) Size() int64 {
	return d.size
}

// IsOpen reports whether the image is still usable.
func (d *FileDevice) IsOpen() bool {
	return d.file != nil
}

// Close closes the underlying file. Partition streams borrowing this
// device become unusable afterwards.
func (d *FileDevice) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

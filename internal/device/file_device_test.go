package device

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeTempImage(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disc.iso")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestFileDevice(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}

	dev, err := OpenFileDevice(writeTempImage(t, data))
	if err != nil {
		t.Fatalf("OpenFileDevice: %v", err)
	}
	defer dev.Close()

	if !dev.IsOpen() {
		t.Fatal("IsOpen() = false after open")
	}
	if got := dev.Size(); got != 256 {
		t.Errorf("Size() = %d, want 256", got)
	}

	if err := dev.Seek(0x40); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	buf := make([]byte, 16)
	n, err := dev.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 16 || !bytes.Equal(buf, data[0x40:0x50]) {
		t.Errorf("Read at 0x40 = %x, want %x", buf[:n], data[0x40:0x50])
	}
}

func TestFileDeviceClosed(t *testing.T) {
	dev, err := OpenFileDevice(writeTempImage(t, make([]byte, 64)))
	if err != nil {
		t.Fatalf("OpenFileDevice: %v", err)
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if dev.IsOpen() {
		t.Error("IsOpen() = true after close")
	}
	if err := dev.Seek(0); err == nil {
		t.Error("Seek on closed device succeeded")
	}
	if _, err := dev.Read(make([]byte, 8)); err == nil {
		t.Error("Read on closed device succeeded")
	}
	if err := dev.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestOpenFileDeviceMissing(t *testing.T) {
	if _, err := OpenFileDevice(filepath.Join(t.TempDir(), "missing.iso")); err == nil {
		t.Error("expected error for missing file")
	}
}

//go:build unix

// File: crashhandler/shm_unix.go

package crashhandler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// segment is a named shared memory region backed by a file in shmDir. The
// name alone is enough for a second process to map the same bytes.
type segment struct {
	name string
	path string
	mem  []byte
}

// shmDir prefers a memory-backed filesystem so the record never touches disk.
func shmDir() string {
	if fi, err := os.Stat("/dev/shm"); err == nil && fi.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}

func segmentPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("shm: invalid segment name %q", name)
	}
	return filepath.Join(shmDir(), name), nil
}

func createSegment(size int) (*segment, error) {
	name := segmentPrefix + uuid.NewString()
	path, err := segmentPath(name)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("shm: failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := unix.Ftruncate(int(f.Fd()), int64(size)); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("shm: failed to size %s: %w", path, err)
	}

	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("shm: failed to map %s: %w", path, err)
	}

	return &segment{name: name, path: path, mem: mem}, nil
}

func openSegment(name string, size int) (*segment, error) {
	path, err := segmentPath(name)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: failed to open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("shm: failed to stat %s: %w", path, err)
	}
	if fi.Size() < int64(size) {
		return nil, fmt.Errorf("shm: %s is %d bytes, want %d: %w", path, fi.Size(), size, ErrBadRecord)
	}

	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("shm: failed to map %s: %w", path, err)
	}

	return &segment{name: name, path: path, mem: mem}, nil
}

func (s *segment) unmap() error {
	if s.mem == nil {
		return nil
	}
	err := unix.Munmap(s.mem)
	s.mem = nil
	return err
}

func (s *segment) remove() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

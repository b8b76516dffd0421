//go:build !unix

// File: crashhandler/shm_other.go

package crashhandler

import (
	"errors"
	"fmt"
)

type segment struct {
	name string
	mem  []byte
}

func createSegment(int) (*segment, error) {
	return nil, fmt.Errorf("shm: shared memory: %w", errors.ErrUnsupported)
}

func openSegment(string, int) (*segment, error) {
	return nil, fmt.Errorf("shm: shared memory: %w", errors.ErrUnsupported)
}

func (s *segment) unmap() error  { return nil }
func (s *segment) remove() error { return nil }

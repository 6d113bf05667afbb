//go:build !unix

package region

// Mmap falls back to a Go slice where anonymous mappings are unavailable.
type Mmap struct {
	Memory
}

// NewMmap ...
func NewMmap(limit uint32) (*Mmap, error) {
	return &Mmap{Memory: *NewMemory(limit)}, nil
}

// Close ...
func (m *Mmap) Close() error {
	return nil
}

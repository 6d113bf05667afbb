//go:build unix

package region

import (
	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// Mmap is a Region that reserves limit bytes of anonymous memory outside
// the Go heap and moves a break pointer inside the reservation.
type Mmap struct {
	mapped []byte
	brk    uint32
}

var _ Region = &Mmap{}

// NewMmap ...
func NewMmap(limit uint32) (*Mmap, error) {
	if limit == 0 {
		panic("limit must > 0")
	}
	length, err := mappingLength(limit, maxInt)
	if err != nil {
		return nil, err
	}
	data, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, xerrors.Errorf("mmap %d bytes: %w", limit, err)
	}
	return &Mmap{mapped: data}, nil
}

// Extend ...
func (m *Mmap) Extend(n uint32) (uint32, error) {
	if err := checkExtend(m.brk, n, uint32(len(m.mapped))); err != nil {
		return 0, err
	}
	old := m.brk
	m.brk += n
	return old, nil
}

// Bytes ...
func (m *Mmap) Bytes() []byte {
	return m.mapped[:m.brk]
}

// Size ...
func (m *Mmap) Size() uint32 {
	return m.brk
}

// Close unmaps the reservation. The region must not be used afterwards.
func (m *Mmap) Close() error {
	if m.mapped == nil {
		return nil
	}
	err := unix.Munmap(m.mapped)
	m.mapped = nil
	m.brk = 0
	return err
}

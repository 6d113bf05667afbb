package region

// Memory is a Region backed by a Go byte slice. Capacity is fixed to the
// limit up front so that previously returned slices are never moved.
type Memory struct {
	data  []byte
	limit uint32
}

var _ Region = &Memory{}

// NewMemory ...
func NewMemory(limit uint32) *Memory {
	if limit == 0 {
		panic("limit must > 0")
	}
	return &Memory{
		data:  make([]byte, 0, limit),
		limit: limit,
	}
}

// Extend ...
func (m *Memory) Extend(n uint32) (uint32, error) {
	old := uint32(len(m.data))
	if err := checkExtend(old, n, m.limit); err != nil {
		return 0, err
	}
	m.data = m.data[:old+n]
	return old, nil
}

// Bytes ...
func (m *Memory) Bytes() []byte {
	return m.data
}

// Size ...
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// Limit ...
func (m *Memory) Limit() uint32 {
	return m.limit
}

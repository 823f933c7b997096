package slab

// Usage reports the occupancy of one bound node.
type Usage struct {
	ObjectSize int `json:"size"`
	Capacity   int `json:"slots"`
	Available  int `json:"free"`
}

// InUse is the number of live objects in the node.
func (u Usage) InUse() int {
	return u.Capacity - u.Available
}

// CapacityBytes is the size of the node's region.
func (u Usage) CapacityBytes() int64 {
	return int64(u.Capacity) * int64(u.ObjectSize)
}

// AvailableBytes is the number of bytes held by free slots.
func (u Usage) AvailableBytes() int64 {
	return int64(u.Available) * int64(u.ObjectSize)
}

// Stats summarizes a heap.
type Stats struct {
	Nodes       int    `json:"nodes"`
	Classes     int    `json:"classes"`
	MappedBytes int64  `json:"mapped_bytes"`
	Allocs      uint64 `json:"allocs"`
	Frees       uint64 `json:"frees"`
	Live        uint64 `json:"live"`
	Faults      uint64 `json:"faults"`
}

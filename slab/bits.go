package slab

const (
	m1 = 0x55555555
	m2 = 0x33333333
	m4 = 0x0F0F0F0F

	wordBits = 32
)

// PopCount32 returns the number of set bits in w.
//
// Bits are summed pairwise in 2-bit fields, then 4-bit and 8-bit fields, and
// the bytes are folded together with 8- and 16-bit shifts. The result fits in
// the low six bits.
func PopCount32(w uint32) uint32 {
	w -= (w >> 1) & m1
	w = (w & m2) + ((w >> 2) & m2)
	w = (w + (w >> 4)) & m4
	w += w >> 8
	w += w >> 16
	return w & 0x3f
}

// lowestSet returns the index of the lowest set bit of a non-zero word.
// (w & -w) isolates that bit; the bits below it are counted.
func lowestSet(w uint32) int {
	return int(PopCount32((w & -w) - 1))
}

// occupancy is a slot bitmap: bit SET means the slot is free.
type occupancy []uint32

// newOccupancy returns a bitmap with the first capacity bits set.
// Bits past capacity in the last word stay clear forever.
func newOccupancy(capacity int) occupancy {
	o := make(occupancy, (capacity+wordBits-1)/wordBits)
	for i := range o {
		o[i] = ^uint32(0)
	}
	if rem := capacity % wordBits; rem != 0 {
		o[len(o)-1] = 1<<rem - 1
	}
	return o
}

// first returns the lowest free slot, or -1 when every slot is taken.
func (o occupancy) first() int {
	for word, w := range o {
		if w == 0 {
			continue
		}
		return word*wordBits + lowestSet(w)
	}
	return -1
}

func (o occupancy) free(entry int) bool {
	return o[entry/wordBits]&(1<<(entry%wordBits)) != 0
}

func (o occupancy) take(entry int) {
	o[entry/wordBits] &^= 1 << (entry % wordBits)
}

func (o occupancy) release(entry int) {
	o[entry/wordBits] |= 1 << (entry % wordBits)
}

func (o occupancy) word(entry int) uint32 {
	return o[entry/wordBits]
}

// available counts free slots.
func (o occupancy) available() int {
	var sum uint32
	for _, w := range o {
		sum += PopCount32(w)
	}
	return int(sum)
}

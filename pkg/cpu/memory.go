package cpu

import (
	"encoding/binary"
	"fmt"
)

// DefaultMemSize is the capacity of a processor's memory unless configured
// otherwise.
const DefaultMemSize = 0x20000

// WordSize is the width of a memory word in bytes.
const WordSize = 8

// AddressError is returned by memory accesses outside the address space. The
// value is the faulting address.
type AddressError uint64

func (ae AddressError) Error() string {
	return fmt.Sprintf("address error at 0x%x", uint64(ae))
}

// Memory is a flat, byte addressable store. Words are little-endian.
type Memory struct {
	data []byte
}

// NewMemory creates a zeroed memory of size bytes.
func NewMemory(size uint64) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Size returns the capacity in bytes.
func (m *Memory) Size() uint64 {
	return uint64(len(m.data))
}

// Reset zeroes every byte.
func (m *Memory) Reset() {
	clear(m.data)
}

// rangeCheck reports whether [addr, addr+n) lies inside memory. Written so
// that addresses near 2^64 cannot wrap.
func (m *Memory) rangeCheck(addr, n uint64) bool {
	size := m.Size()
	return n <= size && addr <= size-n
}

// ReadByteAt returns the byte at addr.
func (m *Memory) ReadByteAt(addr uint64) (byte, error) {
	if !m.rangeCheck(addr, 1) {
		return 0, AddressError(addr)
	}
	return m.data[addr], nil
}

// WriteByteAt stores b at addr.
func (m *Memory) WriteByteAt(addr uint64, b byte) error {
	if !m.rangeCheck(addr, 1) {
		return AddressError(addr)
	}
	m.data[addr] = b
	return nil
}

// ReadWord returns the 8-byte little-endian word at addr.
func (m *Memory) ReadWord(addr uint64) (uint64, error) {
	if !m.rangeCheck(addr, WordSize) {
		return 0, AddressError(addr)
	}
	return binary.LittleEndian.Uint64(m.data[addr:]), nil
}

// WriteWord stores v at addr as 8 little-endian bytes. Either all eight bytes
// are written or none are.
func (m *Memory) WriteWord(addr uint64, v int64) error {
	if !m.rangeCheck(addr, WordSize) {
		return AddressError(addr)
	}
	binary.LittleEndian.PutUint64(m.data[addr:], uint64(v))
	return nil
}

// NonZeroWords calls fn for every 8-byte aligned word that is not zero, in
// ascending address order.
func (m *Memory) NonZeroWords(fn func(addr, value uint64)) {
	size := m.Size() &^ (WordSize - 1)
	for addr := uint64(0); addr < size; addr += WordSize {
		if v := binary.LittleEndian.Uint64(m.data[addr:]); v != 0 {
			fn(addr, v)
		}
	}
}

package cpu

import (
	"encoding/binary"
)

// span returns the size bytes of memory at EIP + offset.
func (cpu *Cpu) span(offset uint32, size int) (data []byte, err error) {
	addr := uint64(cpu.Eip) + uint64(offset)
	limit := uint64(len(cpu.Memory))
	if addr >= limit {
		err = ErrAddress(addr)
		return
	}
	if addr+uint64(size) > limit {
		err = ErrAddress(limit)
		return
	}

	data = cpu.Memory[addr : addr+uint64(size)]
	return
}

// Code8 returns the byte at EIP + offset.
func (cpu *Cpu) Code8(offset uint32) (value uint8, err error) {
	data, err := cpu.span(offset, 1)
	if err != nil {
		return
	}

	value = data[0]
	return
}

// SignCode8 returns the byte at EIP + offset as a signed value.
func (cpu *Cpu) SignCode8(offset uint32) (value int8, err error) {
	code, err := cpu.Code8(offset)
	if err != nil {
		return
	}

	value = int8(code)
	return
}

// Code32 returns the little-endian 32-bit word at EIP + offset.
func (cpu *Cpu) Code32(offset uint32) (value uint32, err error) {
	data, err := cpu.span(offset, 4)
	if err != nil {
		return
	}

	value = binary.LittleEndian.Uint32(data)
	return
}

package cpu

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzCpu(f *testing.F) {
	for opcode := range 0x100 {
		f.Add(uint8(opcode), uint32(0x12345678), uint8(5))
	}
	f.Add(OP_JMP_REL8, uint32(0x80), uint8(0))
	f.Add(OP_JMP_REL8, uint32(0xf9), uint8(5))
	f.Add(OP_JMP_REL8, uint32(0x7f), uint8(10))

	f.Fuzz(func(t *testing.T, opcode uint8, operand uint32, start uint8) {
		assert := assert.New(t)

		eip := uint32(start % 11)

		memory := make([]byte, 16)
		memory[eip] = opcode
		binary.LittleEndian.PutUint32(memory[eip+1:], operand)

		cpu := NewCpu(eip, 0x7c00, memory)
		cpu.Register = [REG_COUNT]uint32{0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17}
		before := cpu.Register

		err := cpu.Tick()

		// Memory is never written.
		assert.Equal(byte(opcode), cpu.Memory[eip])

		switch {
		case opcode >= OP_MOV_R32_IMM32 && opcode < OP_MOV_R32_IMM32+REG_COUNT:
			assert.NoError(err)
			expected := before
			expected[opcode-OP_MOV_R32_IMM32] = operand
			assert.Equal(expected, cpu.Register)
			assert.Equal(eip+MOV_R32_IMM32_LEN, cpu.Eip)
		case opcode == OP_JMP_REL8:
			target := uint32(int64(eip) + JMP_REL8_LEN + int64(int8(operand)))
			if target == EIP_HALT {
				assert.True(errors.Is(err, ErrHalt))
			} else {
				assert.NoError(err)
			}
			assert.Equal(before, cpu.Register)
			assert.Equal(target, cpu.Eip)
		default:
			assert.ErrorIs(err, ErrOpcodeDecode)
			assert.Equal(before, cpu.Register)
			assert.Equal(eip, cpu.Eip)
		}
	})
}

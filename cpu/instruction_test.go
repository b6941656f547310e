package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	memory := []byte{0xbf, 0x2a, 0x00, 0x00, 0x00, 0xeb, 0xf9}

	inst, err := Decode(memory, 0)
	assert.NoError(err)
	assert.Equal(uint32(0), inst.Eip)
	assert.Equal(memory[:5], inst.Bytes)
	assert.Equal(byte(0xbf), inst.Opcode())
	assert.Equal("mov edi, 0x0000002a", inst.String())

	inst, err = Decode(memory, 5)
	assert.NoError(err)
	assert.Equal(memory[5:], inst.Bytes)
	assert.Equal("jmp short 0x00000000", inst.String())
}

func TestDecode_Errors(t *testing.T) {
	assert := assert.New(t)

	_, err := Decode([]byte{0x90}, 0)
	assert.Equal(ErrOpcode(0x90), err)

	_, err = Decode([]byte{0xb9, 0x00}, 0)
	assert.Equal(ErrAddress(2), err)

	_, err = Decode([]byte{0xeb, 0x00}, 2)
	assert.Equal(ErrAddress(2), err)
}

func TestInstruction_String(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		eip   uint32
		bytes []byte
		text  string
	}){
		{0, []byte{0xb8, 0x01, 0x00, 0x00, 0x00}, "mov eax, 0x00000001"},
		{0, []byte{0xb9, 0x78, 0x56, 0x34, 0x12}, "mov ecx, 0x12345678"},
		{0, []byte{0xbc, 0x00, 0x7c, 0x00, 0x00}, "mov esp, 0x00007c00"},
		{0x10, []byte{0xeb, 0x7f}, "jmp short 0x00000091"},
		{0x10, []byte{0xeb, 0x80}, "jmp short 0xffffff92"},
		{0, []byte{0x90}, ".byte 0x90"},
		{0, []byte{0xb8, 0x01}, ".byte 0xb8"},
	}

	for _, entry := range table {
		inst := Instruction{Eip: entry.eip, Bytes: entry.bytes}
		assert.Equal(entry.text, inst.String())
	}
}

func TestDisassemble(t *testing.T) {
	assert := assert.New(t)

	memory := []byte{0xbf, 0x2a, 0x00, 0x00, 0x00, 0xeb, 0xf9}
	insts, err := Disassemble(memory, 0)
	assert.NoError(err)
	assert.Len(insts, 2)
	assert.Equal(uint32(5), insts[1].Eip)

	insts, err = Disassemble(append(memory, 0x90), 0)
	assert.ErrorIs(err, ErrOpcodeDecode)
	assert.Len(insts, 2)
}

func TestDispatchTable(t *testing.T) {
	assert := assert.New(t)

	for opcode := range 256 {
		info := dispatchTable[opcode]
		switch {
		case opcode >= 0xb8 && opcode <= 0xbf:
			assert.NotNil(info)
			assert.Equal("mov", info.Mnemonic)
			assert.Equal(MOV_R32_IMM32_LEN, info.Length)
		case opcode == 0xeb:
			assert.NotNil(info)
			assert.Equal("jmp", info.Mnemonic)
			assert.Equal(JMP_REL8_LEN, info.Length)
		default:
			assert.Nil(info, "0x%02x", opcode)
		}
	}
}

package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testProgram() *Program {
	return &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Eip: 0, Words: []string{"mov", "edi", "0x2a"},
				Bytes: []byte{0xbf, 0x2a, 0x00, 0x00, 0x00}},
			{LineNo: 2, Eip: 5, Words: []string{"jmp", "short", "8"},
				Bytes: []byte{0xeb, 0x01}},
			{LineNo: 3, Eip: 8, Words: []string{".org", "8"}},
			{LineNo: 4, Eip: 8, Words: []string{"jmp", "short", "0"},
				Bytes: []byte{0xeb, 0xf6}},
		},
	}
}

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	dbg := prog.Debug(0)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(4)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(4, dbg.Index)

	dbg = prog.Debug(6)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.LineNo)
	assert.Equal(1, dbg.Index)

	// Empty opcodes never match.
	dbg = prog.Debug(8)
	assert.NotNil(dbg.Opcode)
	assert.Equal(4, dbg.LineNo)
	assert.Equal(0, dbg.Index)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	for _, eip := range []uint32{7, 10, 0xffffffff} {
		dbg := prog.Debug(eip)
		assert.Nil(dbg.Opcode)
		assert.Equal(0, dbg.Index)
	}
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	assert.Equal(uint64(10), prog.Size())
	assert.Equal([]byte{0xbf, 0x2a, 0x00, 0x00, 0x00, 0xeb, 0x01, 0x00, 0xeb, 0xf6}, prog.Binary())

	empty := &Program{}
	assert.Equal(uint64(0), empty.Size())
	assert.Empty(empty.Binary())
}

func TestProgram_Codes(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	eips := []uint32{}
	codes := []byte{}
	for eip, code := range prog.Codes() {
		eips = append(eips, eip)
		codes = append(codes, code)
	}

	assert.Equal([]uint32{0, 1, 2, 3, 4, 5, 6, 8, 9}, eips)
	assert.Equal([]byte{0xbf, 0x2a, 0x00, 0x00, 0x00, 0xeb, 0x01, 0xeb, 0xf6}, codes)
}

func TestProgram_Codes_EarlyReturn(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	count := 0
	for range prog.Codes() {
		count++
		if count == 3 {
			break
		}
	}

	assert.Equal(3, count)
}

func TestProgram_Run(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	cpu := NewCpu(0, 0x7c00, prog.Binary())
	err := cpu.Run()
	assert.NoError(err)
	assert.Equal(uint32(0x2a), cpu.Register[REG_EDI])
	assert.Equal(uint32(0), cpu.Eip)
	assert.Equal(3, cpu.Ticks)
}

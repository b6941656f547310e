package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and
// generated bytes.
type Opcode struct {
	LineNo    int
	Eip       uint32
	Words     []string
	Bytes     []byte
	LinkLabel string
}

// Program is an assembled listing.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the opcode that covers eip, and the byte index of eip within it.
func (prog *Program) Debug(eip uint32) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if eip >= op.Eip && uint64(eip) < uint64(op.Eip)+uint64(len(op.Bytes)) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(eip - op.Eip),
			}
			break
		}
	}

	return
}

// Size returns the size of the memory image needed to hold the program.
func (prog *Program) Size() (size uint64) {
	for _, op := range prog.Opcodes {
		size = max(size, uint64(op.Eip)+uint64(len(op.Bytes)))
	}

	return
}

// Binary returns the memory image of the program. Unassembled gaps are zero.
func (prog *Program) Binary() (bins []byte) {
	bins = make([]byte, prog.Size())
	for eip, code := range prog.Codes() {
		bins[eip] = code
	}

	return
}

// Codes iterates over each assembled byte and its address.
func (prog *Program) Codes() iter.Seq2[uint32, byte] {
	return func(yield func(eip uint32, code byte) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Bytes {
				if !yield(op.Eip+uint32(n), code) {
					return
				}
			}
		}
	}
}

package cpu

import (
	"errors"

	"github.com/ezrec/x86emu/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalt          = errors.New(f("halt"))
	ErrOpcodeDecode  = errors.New(f("decode"))
	ErrRegisterIndex = errors.New(f("register index"))
	ErrMemoryBounds  = errors.New(f("memory out of bounds"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelSyntax        = errors.New(f("label syntax"))
	ErrOrgBackwards       = errors.New(f(".org moves backwards"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrTargetMissing      = errors.New(f("target missing"))
)

// ErrOpcode is an opcode byte with no instruction handler.
type ErrOpcode byte

func (eo ErrOpcode) Error() string {
	return f("not implemented: 0x%02x", byte(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	if err == ErrOpcodeDecode {
		return true
	}
	_, ok = err.(ErrOpcode)
	return
}

// ErrRegister is a register selector outside of the register bank.
type ErrRegister Reg

func (er ErrRegister) Error() string {
	return f("not implemented: register index %v", int(er))
}

func (er ErrRegister) Is(err error) (ok bool) {
	if err == ErrRegisterIndex {
		return true
	}
	_, ok = err.(ErrRegister)
	return
}

// ErrAddress is a memory address outside of the memory image.
type ErrAddress uint64

func (ea ErrAddress) Error() string {
	return f("memory access 0x%08x out of bounds", uint64(ea))
}

func (ea ErrAddress) Is(err error) (ok bool) {
	if err == ErrMemoryBounds {
		return true
	}
	_, ok = err.(ErrAddress)
	return
}

// ErrExecute is a failure while executing the instruction at Eip.
type ErrExecute struct {
	Eip    uint32
	Opcode byte
	Err    error
}

func (err *ErrExecute) Error() string {
	return f("eip 0x%08x opcode 0x%02x %v", err.Eip, err.Opcode, err.Err)
}

func (err *ErrExecute) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrJumpRange int64

func (ej ErrJumpRange) Error() string {
	return f("jump displacement %v out of range", int64(ej))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

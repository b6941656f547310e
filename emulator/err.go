package emulator

import (
	"errors"

	"github.com/ezrec/x86emu/translate"
)

var f = translate.From

// ErrWatchdog indicates the instruction budget was exhausted before halt.
var ErrWatchdog = errors.New(f("watchdog expired"))

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Eip    uint32
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("eip 0x%08x %v", err.Eip, err.Err)
	}
	return f("line %d eip 0x%08x %v", err.LineNo, err.Eip, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

package io

import (
	"errors"

	"github.com/ezrec/x86emu/translate"
)

var f = translate.From

var (
	// Image errors
	ErrImageEmpty = errors.New(f("image empty"))
	ErrImageSize  = errors.New(f("image larger than memory"))
)

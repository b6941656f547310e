// Package io provides loading and saving of the flat binary memory images
// executed by the emulator.
package io

import (
	"encoding/hex"
	"io"
	"io/fs"

	"golang.org/x/crypto/blake2b"
)

// Image is a flat binary memory image.
type Image struct {
	Name string // Name the image was loaded from.
	Data []byte // Image contents, loaded at address 0.
}

// ReadImage reads an entire image from a reader.
func ReadImage(name string, input io.Reader) (img *Image, err error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return
	}

	if len(data) == 0 {
		err = ErrImageEmpty
		return
	}

	img = &Image{
		Name: name,
		Data: data,
	}

	return
}

// LoadImage reads the named image from a file system.
func LoadImage(filesys fs.FS, name string) (img *Image, err error) {
	inf, err := filesys.Open(name)
	if err != nil {
		return
	}
	defer inf.Close()

	return ReadImage(name, inf)
}

// Pad zero-extends the image to size bytes.
func (img *Image) Pad(size int) (err error) {
	if len(img.Data) > size {
		err = ErrImageSize
		return
	}

	if len(img.Data) < size {
		img.Data = append(img.Data, make([]byte, size-len(img.Data))...)
	}

	return
}

// Digest returns the hex encoded BLAKE2b-256 digest of the image.
func (img *Image) Digest() string {
	sum := blake2b.Sum256(img.Data)
	return hex.EncodeToString(sum[:])
}

// Save writes the image to a file system.
func (img *Image) Save(filesys CreateFS, name string) (err error) {
	ouf, err := filesys.Create(name)
	if err != nil {
		return
	}
	defer func() {
		cerr := ouf.Close()
		if err == nil {
			err = cerr
		}
	}()

	_, err = ouf.Write(img.Data)
	return
}

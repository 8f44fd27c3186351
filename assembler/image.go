package assembler

import (
	"github.com/lookbusy1344/w12-assembler/encoder"
)

// Image is a memory image: a run of 12-bit words starting at a fixed
// origin address. The instruction image originates at FirstCell, the data
// image at zero.
type Image struct {
	origin int
	words  []encoder.Word
}

// NewImage creates an empty image with the given origin.
func NewImage(origin int) *Image {
	return &Image{origin: origin}
}

// Append adds a word at the next free address.
func (im *Image) Append(w encoder.Word) {
	im.words = append(im.words, w&encoder.WordMask)
}

// Set overwrites the word at an absolute address. Addresses outside the
// image are ignored; the passes only rewrite cells they reserved.
func (im *Image) Set(addr int, w encoder.Word) {
	i := addr - im.origin
	if i < 0 || i >= len(im.words) {
		return
	}
	im.words[i] = w & encoder.WordMask
}

// At returns the word at an absolute address.
func (im *Image) At(addr int) encoder.Word {
	i := addr - im.origin
	if i < 0 || i >= len(im.words) {
		return 0
	}
	return im.words[i]
}

// Origin returns the address of the first word.
func (im *Image) Origin() int {
	return im.origin
}

// Len returns the number of words in the image.
func (im *Image) Len() int {
	return len(im.words)
}

// Words returns the image contents in address order.
func (im *Image) Words() []encoder.Word {
	return im.words
}

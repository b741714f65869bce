package vm

// loader.go boots a program image into the machine: the first three words
// are the OS header (ram_size, program_size, name); the rest are
// instruction slots, copied verbatim starting at word 0 of RAM.

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/smoynes/sixteen/internal/log"
)

// ErrObjectLoader is the sentinel wrapped by loader failures.
var ErrObjectLoader = errors.New("loader error")

// Loader copies a program image into a machine's RAM and primes the
// control registers the header describes.
type Loader struct {
	vm  *Machine
	log *log.Logger
}

// NewLoader creates a loader bound to a machine.
func NewLoader(vm *Machine) *Loader {
	return &Loader{vm: vm, log: log.DefaultLogger()}
}

// Load copies image into RAM starting at word 0 and sets RamSize and
// ProgramSize from the header words, per the specification's boot
// sequence. PC and Protected are left at the reset values New already set
// (3 and 1 respectively).
func (l *Loader) Load(image Image) (int, error) {
	if len(image.Words) < 3 {
		return 0, fmt.Errorf("%w: image too small for OS header", ErrObjectLoader)
	}

	for i, w := range image.Words {
		if i >= RamWords {
			return i, fmt.Errorf("%w: image larger than RAM", ErrObjectLoader)
		}

		l.vm.RAM[i] = w
	}

	if ramSize := image.Words[0]; ramSize != 0 {
		l.vm.Reg[RamSize] = ramSize
	}

	if programSize := image.Words[1]; programSize != 0 {
		l.vm.Reg[ProgramSize] = programSize
	}

	l.log.Debug("loaded image", "words", len(image.Words), "ramSize", l.vm.Reg[RamSize], "programSize", l.vm.Reg[ProgramSize])

	return len(image.Words), nil
}

// Image is a program image: a flat sequence of words whose first three are
// the OS header (ram_size, program_size, name) followed by 3-word
// instruction slots.
type Image struct {
	Words []Word
}

// MarshalBinary encodes the image as big-endian words, for debug dumps.
func (img Image) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.BigEndian, img.Words); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrObjectLoader, err)
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary decodes an image previously produced by MarshalBinary.
func (img *Image) UnmarshalBinary(b []byte) error {
	if len(b) < 6 || len(b)%2 != 0 {
		return fmt.Errorf("%w: image too small or misaligned", ErrObjectLoader)
	}

	img.Words = make([]Word, len(b)/2)

	return binary.Read(bytes.NewReader(b), binary.BigEndian, img.Words)
}

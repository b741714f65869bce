// Package encoding includes implementations of encoding.TextMarshaler and encoding.TextUnmarshaler
// to encode and decode a program image as text. It is based on Intel Hex file-encoding.
//
// Each file is composed of lines composed of a prefix, length, address, type, (optional data) and a
// checksum. In shorthand:
//
//	:LLAAAATT[DD...]CC
//	0123456789
//
// See [Grammar] for a formal grammar. Unlike the wire format vm.Image.MarshalBinary produces, this
// encoding is human-readable and splits a large image across several checksummed lines, each
// addressed by its starting word offset — useful for hand-editing or diffing a small program image.
//
// # Bugs
//
// This is not a complete implementation of Intel Hex encoding; it is for internal use, only. It
// supports minimal record types, specifically just the data and end-of-file record types.
package encoding

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/smoynes/sixteen/internal/vm"
)

const Grammar = `
file  = { line } ;
line  = ':' len addr type data check nl ;
len   = byte ;
addr  = byte byte ;
type  = byte ;
data  = { byte }
check = byte ;
byte  = hex hex ;
hex   = '0' | '1' | '2' | '3' | '4' | '5' | '6' | '7' | '8' | '9'
      | 'a' | 'b' | 'c' | 'd' | 'e' | 'f' | 'A' | 'B' | 'C' | 'D' | 'E' | 'F' ;
nl    = '\n' ;
`

// recordWords is how many words are packed into one data record line.
const recordWords = 8

// HexEncoding implements marshalling and unmarshalling of a program image as an Intel-Hex-style
// text file.
type HexEncoding struct {
	Code vm.Image
}

func (h *HexEncoding) MarshalText() ([]byte, error) {
	var buf bytes.Buffer

	words := h.Code.Words

	for off := 0; off < len(words); off += recordWords {
		end := off + recordWords
		if end > len(words) {
			end = len(words)
		}

		if err := writeRecord(&buf, uint16(off), words[off:end]); err != nil {
			return buf.Bytes(), err
		}
	}

	buf.Write([]byte(":00000001ff\n"))

	return buf.Bytes(), nil
}

func writeRecord(buf *bytes.Buffer, addr uint16, words []vm.Word) error {
	var check byte

	_ = buf.WriteByte(':')

	enc := hex.NewEncoder(buf)

	var val [2]byte

	val[0] = byte(len(words) * 2)
	check += val[0]

	if _, err := enc.Write(val[:1]); err != nil {
		return err
	}

	val[0] = byte(addr >> 8)
	val[1] = byte(addr & 0x00ff)
	check += val[0] + val[1]

	if _, err := enc.Write(val[:]); err != nil {
		return err
	}

	buf.WriteByte('0')
	buf.WriteByte('0')

	for _, word := range words {
		val[0] = byte(word >> 8)
		val[1] = byte(word & 0x00ff)

		if _, err := enc.Write(val[:]); err != nil {
			return err
		}

		check += val[0] + val[1]
	}

	val[0] = 1 + ^check

	if _, err := enc.Write(val[:1]); err != nil {
		return err
	}

	buf.WriteByte('\n')

	return nil
}

func (h *HexEncoding) UnmarshalText(bs []byte) error {
	var words []vm.Word

	scanner := bufio.NewScanner(bytes.NewReader(bs))

	for scanner.Scan() {
		rec := scanner.Bytes()

		var (
			recLen   byte
			recAddr  uint16
			recKind  kind
			recCheck byte
			check    byte
			dec      [4]byte
		)

		if len(rec) == 0 {
			continue
		} else if rec[0] != ':' {
			return fmt.Errorf("%w: line does not start with ':'", errInvalidHex)
		}

		if len(rec) < 11 {
			return fmt.Errorf("%w: record too short", errInvalidHex)
		}

		if _, err := hex.Decode(dec[:1], rec[1:3]); err != nil {
			return fmt.Errorf("%w: len:%s", errInvalidHex, err.Error())
		} else {
			recLen = dec[0]
		}

		check += dec[0]

		if _, err := hex.Decode(dec[:2], rec[3:7]); err != nil {
			return fmt.Errorf("%w: addr: %s", errInvalidHex, err.Error())
		} else {
			recAddr = binary.BigEndian.Uint16(dec[:2])
		}

		check += dec[0] + dec[1]

		if _, err := hex.Decode(dec[:1], rec[7:9]); err != nil {
			return fmt.Errorf("%w: type: %s", errInvalidHex, err.Error())
		} else {
			recKind = kind(dec[0])
		}

		check += dec[0]

		if len(rec) < 9+int(recLen)*2+2 {
			return fmt.Errorf("%w: record too short for declared length", errInvalidHex)
		}

		if _, err := hex.Decode(dec[:1], rec[len(rec)-2:]); err != nil {
			return fmt.Errorf("%w: check: %s", errInvalidHex, err.Error())
		} else {
			recCheck = dec[0]
		}

		switch {
		case recLen%2 != 0:
			return fmt.Errorf("%w: odd data length", errInvalidHex)
		case recKind == kindData && recLen > 0:
			hexData := make([]byte, recLen)

			if _, err := hex.Decode(hexData, rec[9:9+int(recLen)*2]); err != nil {
				return fmt.Errorf("%w: data: %s", errInvalidHex, err.Error())
			}

			data := make([]vm.Word, recLen/2)

			for i := byte(0); i < recLen/2; i++ {
				data[i] = vm.Word(hexData[2*i])<<8 | vm.Word(hexData[2*i+1])
				check += hexData[2*i]
				check += hexData[2*i+1]
			}

			check = 1 + ^check
			if check != recCheck {
				return fmt.Errorf("%w: checksum invalid: %02x != %02x",
					errInvalidHex, check, recCheck)
			}

			end := int(recAddr) + len(data)
			if end > len(words) {
				grown := make([]vm.Word, end)
				copy(grown, words)
				words = grown
			}

			copy(words[recAddr:end], data)
		case recKind == kindEOF:
			check = 1 + ^check
			if check != recCheck {
				return fmt.Errorf("%w: checksum invalid: %02x != %02x",
					errInvalidHex, check, recCheck)
			}
		default:
			return fmt.Errorf("%w: unexpected record type: %d", errInvalidHex, recKind)
		}
	}

	if len(words) == 0 {
		return errEmpty
	}

	h.Code = vm.Image{Words: words}

	return nil
}

// kind represents the type of encoded record. Only the subset of record types supported by the
// encoder are supported.
type kind byte

const (
	kindData kind = 0
	kindEOF  kind = 1
)

type decodingError struct{}

func (decodingError) Error() string {
	return "decoding error"
}

func (de *decodingError) Is(err error) bool {
	if de == err {
		return true
	} else if _, ok := err.(*decodingError); ok {
		return true
	} else {
		return false
	}
}

var (
	// ErrDecode is a wrapped error that is returned when decoding fails.
	ErrDecode = &decodingError{}

	errEmpty      = fmt.Errorf("%w: no data decoded", ErrDecode)
	errInvalidHex = fmt.Errorf("%w: invalid encoding", ErrDecode)
)

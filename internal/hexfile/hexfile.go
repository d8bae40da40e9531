// Package hexfile converts the Orange-4 ASCII hex-record format into packed
// program images. A record looks like
//
//	X00:8310
//
// where the first character is a marker and ignored, the two hex digits
// before the colon are the starting nibble address, and every character after
// it is one nibble stored at consecutive addresses.
package hexfile

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	imageSize   = 0x80
	nibbleCount = 0x100
)

// Convert reads hex records and assembles the 128-byte packed image.
// Unwritten cells are zero.
func Convert(r io.Reader) ([]byte, error) {
	nibbles := make([]byte, nibbleCount)

	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line == "" {
			continue
		}
		if err := parseRecord(line, nibbles); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineno)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading hex records")
	}
	return Pack(nibbles), nil
}

func parseRecord(line string, nibbles []byte) error {
	head, data, found := strings.Cut(line, ":")
	if !found {
		return errors.New("missing ':' separator")
	}
	if len(head) != 3 {
		return errors.Errorf("bad record address %q", head)
	}
	addr, err := strconv.ParseUint(head[1:], 16, 8)
	if err != nil {
		return errors.Wrapf(err, "bad record address %q", head)
	}
	for _, c := range data {
		if addr >= nibbleCount {
			return errors.New("record runs past address 0xFF")
		}
		v, err := strconv.ParseUint(string(c), 16, 8)
		if err != nil {
			return errors.Errorf("bad nibble %q", c)
		}
		nibbles[addr] = byte(v)
		addr++
	}
	return nil
}

// Pack folds 256 nibbles into the 128-byte image form, high nibble at the
// even address.
func Pack(nibbles []byte) []byte {
	image := make([]byte, imageSize)
	for i, v := range nibbles {
		if i%2 == 0 {
			image[i/2] |= v << 4
		} else {
			image[i/2] |= v & 0xF
		}
	}
	return image
}

// Unpack expands a packed image back into one nibble per byte.
func Unpack(image []byte) []byte {
	nibbles := make([]byte, 2*len(image))
	for i, b := range image {
		nibbles[2*i] = b >> 4
		nibbles[2*i+1] = b & 0xF
	}
	return nibbles
}

package statecodec

import (
	"errors"
	"fmt"
	"strings"
)

// errMalformed is returned for code streams the decompressor cannot follow.
var errMalformed = errors.New("malformed code stream")

// expandedLength follows the lz-string code stream in token and returns the
// number of UTF-16 units it expands to, without building the output. Only
// entry lengths are kept, so memory grows with the number of codes in token
// and not with the expansion. It fails as soon as the count passes limit.
func expandedLength(token string, limit int) (int, error) {
	r := bitReader{token: token}
	r.val, r.pos, r.index = r.value(0), 32, 1

	switch r.read(2) {
	case 0:
		r.read(8)
	case 1:
		r.read(16)
	case 2:
		return 0, nil
	default:
		return 0, errMalformed
	}

	// entries 0..2 are the control codes, 3 is the first literal
	lengths := []int{0, 0, 0, 1}
	w, total := 1, 1
	numBits, enlargeIn := 3, 4

	for r.index <= len(token) {
		code := r.read(numBits)
		switch code {
		case 0, 1:
			r.read(8 << code)
			lengths = append(lengths, 1)
			code = len(lengths) - 1
			enlargeIn--
		case 2:
			return total, nil
		}
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}

		var entry int
		switch {
		case code < len(lengths):
			entry = lengths[code]
		case code == len(lengths):
			entry = w + 1
		default:
			return 0, fmt.Errorf("%w: code %d beyond dictionary of %d", errMalformed, code, len(lengths))
		}

		total += entry
		if total > limit {
			return 0, fmt.Errorf("expands past limit of %d characters", limit)
		}

		lengths = append(lengths, w+1)
		enlargeIn--
		w = entry
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}
	return total, nil
}

// bitReader yields the bits of a token six per character, most significant
// first, assembled least significant first as lz-string does.
type bitReader struct {
	token string
	val   int
	pos   int
	index int
}

func (r *bitReader) read(n int) int {
	bits := 0
	for i := 0; i < n; i++ {
		if r.val&r.pos != 0 {
			bits |= 1 << i
		}
		r.pos >>= 1
		if r.pos == 0 {
			r.pos = 32
			r.val = r.value(r.index)
			r.index++
		}
	}
	return bits
}

func (r *bitReader) value(i int) int {
	if i >= len(r.token) {
		return 0
	}
	return strings.IndexByte(alphabet, r.token[i])
}

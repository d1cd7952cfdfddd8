// SPDX-License-Identifier: AGPL-3.0-or-later

package rbroker

// SGE is a scatter/gather element: a borrowed view of a caller-owned
// buffer. In the C original this was a (base pointer, length) pair; a Go
// slice already carries its own length, so SGE is a thin named wrapper
// rather than a separate length field, kept as its own type because
// UserRequest.SGEs is a *vector* of these (PUT's value may be gathered
// from more than one buffer) and because the command builder and GET's
// truncate-into-buffer logic both need a name for "one borrowed span" that
// isn't just []byte.
type SGE struct {
	Base []byte
}

// Len returns the number of bytes the element covers.
func (s SGE) Len() int { return len(s.Base) }

// TotalLen sums the length of every element in a vector of SGEs, the way
// GET/READ completion measures the caller's buffer capacity.
func TotalLen(sges []SGE) int {
	n := 0
	for _, s := range sges {
		n += len(s.Base)
	}
	return n
}

// Gather concatenates a vector of SGEs into a single contiguous slice.
// The command builder uses it to assemble PUT's value into one
// contiguous argument before encoding the command.
func Gather(sges []SGE) []byte {
	out := make([]byte, 0, TotalLen(sges))
	for _, s := range sges {
		out = append(out, s.Base...)
	}
	return out
}

// ScatterInto copies src into the caller-provided SGE vector in order,
// filling each element up to its own length before moving to the next,
// and returns the number of bytes actually copied. This is how GET/READ
// deliver a value into a (possibly multi-element, possibly
// smaller-than-the-value) user buffer.
func ScatterInto(sges []SGE, src []byte) int {
	copied := 0
	for _, s := range sges {
		if copied >= len(src) {
			break
		}
		n := copy(s.Base, src[copied:])
		copied += n
	}
	return copied
}

// SPDX-License-Identifier: AGPL-3.0-or-later

package rbroker

// Flags is the bitset a UserRequest carries. Unrecognized bits are
// reserved and ignored rather than rejected, so callers compiled against a
// newer flags set degrade gracefully against this engine.
type Flags uint32

const (
	// NoWait marks a request the caller does not want to block on. The
	// Client does not read this bit: Post and the synchronous per-opcode
	// methods always block until completion, and PostAsync never does.
	NoWait Flags = 1 << iota
	// Partial tells GET/READ to tolerate a user buffer smaller than the
	// stored value, truncating rather than failing with UBUFFER.
	Partial
)

// Has reports whether all bits in want are set in f.
func (f Flags) Has(want Flags) bool { return f&want == want }

// SPDX-License-Identifier: AGPL-3.0-or-later

package resp

import (
	"strconv"
)

// EncodeCommand renders args as a RESP array of bulk strings — the wire
// form every Redis command request takes — appending to dst and returning
// the grown slice. This is the only encode direction the core needs: the
// command builder never has to decode its own output.
func EncodeCommand(dst []byte, args ...[]byte) []byte {
	dst = append(dst, '*')
	dst = strconv.AppendInt(dst, int64(len(args)), 10)
	dst = append(dst, '\r', '\n')
	for _, a := range args {
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(a)), 10)
		dst = append(dst, '\r', '\n')
		dst = append(dst, a...)
		dst = append(dst, '\r', '\n')
	}
	return dst
}

// EncodedLen returns the number of bytes EncodeCommand would append for
// args, used by the command builder to detect buffer exhaustion (-ENOSPC)
// before it writes.
func EncodedLen(args ...[]byte) int {
	n := 1 + len(strconv.Itoa(len(args))) + 2
	for _, a := range args {
		n += 1 + len(strconv.Itoa(len(a))) + 2 + len(a) + 2
	}
	return n
}

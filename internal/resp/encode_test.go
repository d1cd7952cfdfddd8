// SPDX-License-Identifier: AGPL-3.0-or-later

package resp

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCommand(t *testing.T) {
	got := EncodeCommand(nil, []byte("SET"), []byte("k"), []byte("v"))
	want := "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n"
	assert.Equal(t, want, string(got))
}

func TestEncodedLen_MatchesEncodeCommand(t *testing.T) {
	args := [][]byte{[]byte("RPUSH"), []byte("ns:key"), []byte("a value with spaces")}
	assert.Equal(t, len(EncodeCommand(nil, args...)), EncodedLen(args...))
}

func TestEncodeCommand_RoundTripsThroughDecode(t *testing.T) {
	args := [][]byte{[]byte("SCAN"), []byte("0"), []byte("MATCH"), []byte("ns:*")}
	encoded := EncodeCommand(nil, args...)

	r := bufio.NewReader(bytes.NewReader(encoded))
	result, err := Decode(r)
	require.NoError(t, err)
	require.Equal(t, TypeArray, result.Type)
	require.Len(t, result.Array, len(args))
	for i, a := range args {
		assert.Equal(t, a, result.Array[i].Bulk)
	}
}

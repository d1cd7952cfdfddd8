// SPDX-License-Identifier: AGPL-3.0-or-later

package resp

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeString(t *testing.T, wire string) Result {
	t.Helper()
	r := bufio.NewReader(bytes.NewReader([]byte(wire)))
	result, err := Decode(r)
	require.NoError(t, err)
	return result
}

func TestDecode_SimpleString(t *testing.T) {
	got := decodeString(t, "+OK\r\n")
	assert.Equal(t, TypeBulk, got.Type)
	assert.Equal(t, []byte("OK"), got.Bulk)
}

func TestDecode_Error(t *testing.T) {
	got := decodeString(t, "-22 invalid argument\r\n")
	assert.Equal(t, TypeError, got.Type)
	assert.Equal(t, "22 invalid argument", got.Err)
}

func TestDecode_Integer(t *testing.T) {
	got := decodeString(t, ":1\r\n")
	assert.Equal(t, TypeInteger, got.Type)
	assert.Equal(t, int64(1), got.Integer)
}

func TestDecode_BulkString(t *testing.T) {
	got := decodeString(t, "$5\r\nhello\r\n")
	assert.Equal(t, TypeBulk, got.Type)
	assert.Equal(t, []byte("hello"), got.Bulk)
}

func TestDecode_BulkEmpty(t *testing.T) {
	got := decodeString(t, "$0\r\n\r\n")
	assert.Equal(t, TypeBulk, got.Type)
	assert.Equal(t, []byte{}, got.Bulk)
}

func TestDecode_NilBulk(t *testing.T) {
	got := decodeString(t, "$-1\r\n")
	assert.Equal(t, TypeNil, got.Type)
}

func TestDecode_NilArray(t *testing.T) {
	got := decodeString(t, "*-1\r\n")
	assert.Equal(t, TypeNil, got.Type)
}

func TestDecode_Array(t *testing.T) {
	got := decodeString(t, "*2\r\n$1\r\n0\r\n$3\r\nfoo\r\n")
	require.Equal(t, TypeArray, got.Type)
	require.Len(t, got.Array, 2)
	assert.Equal(t, []byte("0"), got.Array[0].Bulk)
	assert.Equal(t, []byte("foo"), got.Array[1].Bulk)
}

func TestDecode_NestedArray(t *testing.T) {
	got := decodeString(t, "*2\r\n:0\r\n*2\r\n$1\r\na\r\n$1\r\nb\r\n")
	want := Result{
		Type: TypeArray,
		Array: []Result{
			Int(0),
			Arr(Bytes([]byte("a")), Bytes([]byte("b"))),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded result mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_MalformedLine(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader([]byte("$3\nfoo\r\n")))
	_, err := Decode(r)
	assert.Error(t, err)
}

func TestDecode_UnrecognizedPrefix(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader([]byte("?\r\n")))
	_, err := Decode(r)
	assert.Error(t, err)
}

func TestDecode_SequentialReplies(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader([]byte(":1\r\n:2\r\n")))
	first, err := Decode(r)
	require.NoError(t, err)
	second, err := Decode(r)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Integer)
	assert.Equal(t, int64(2), second.Integer)
}

// SPDX-License-Identifier: AGPL-3.0-or-later

package rbroker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCommand_Put(t *testing.T) {
	mgr, err := NewNamespaceManager(4)
	require.NoError(t, err)
	ns := mgr.newHandle("customers")

	r := newTestRequest(t, Put, &UserRequest{
		Namespace: ns,
		Key:       "alice",
		SGEs:      []SGE{{Base: []byte("hello")}},
	})
	cmd, err := buildCommand(r)
	require.NoError(t, err)
	assert.Equal(t, "*3\r\n$5\r\nRPUSH\r\n$15\r\ncustomers:alice\r\n$5\r\nhello\r\n", string(cmd))
}

func TestBuildCommand_EmptyKeyRejected(t *testing.T) {
	r := newTestRequest(t, Get, &UserRequest{})
	_, err := buildCommand(r)
	assert.True(t, IsStatus(err, ErrInvalid))
}

func TestBuildCommand_KeyWithSeparatorRejected(t *testing.T) {
	r := newTestRequest(t, Get, &UserRequest{Key: "a:b"})
	_, err := buildCommand(r)
	assert.True(t, IsStatus(err, ErrInvalid))
}

func TestBuildCommand_NSQueryHasNoKeyRequirement(t *testing.T) {
	r := newTestRequest(t, NSQuery, &UserRequest{})
	cmd, err := buildCommand(r)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(cmd), "HGETALL"))
}

func TestBuildCommand_DirectoryHasNoKeyRequirement(t *testing.T) {
	r := newTestRequest(t, Directory, &UserRequest{Match: "*"})
	cmd, err := buildCommand(r)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(cmd), "SCAN"))
}

func TestBuildCommand_NSDetachHasNoKeyRequirement(t *testing.T) {
	mgr, err := NewNamespaceManager(4)
	require.NoError(t, err)
	ns := mgr.newHandle("customers")
	r := newTestRequest(t, NSDetach, &UserRequest{Namespace: ns})
	cmd, err := buildCommand(r)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(cmd), "HINCRBY"))
}

func TestBuildCommand_MoveStagesAddressDestination(t *testing.T) {
	mgr, err := NewNamespaceManager(4)
	require.NoError(t, err)
	src := mgr.newHandle("src")
	dst := mgr.newHandle("dst")

	r := newTestRequest(t, Move, &UserRequest{
		Namespace: src,
		Key:       "k",
		Next:      &UserRequest{Namespace: dst, Key: "k"},
	})

	cmd0, err := buildCommand(r)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(cmd0), "COPY"))
	assert.True(t, strings.Contains(string(cmd0), "src:k"))
	assert.True(t, strings.Contains(string(cmd0), "dst:k"))

	r.stage = 1
	cmd1, err := buildCommand(r)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(cmd1), "EXISTS"))
	assert.True(t, strings.Contains(string(cmd1), "dst:k"))

	r.stage = 2
	cmd2, err := buildCommand(r)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(cmd2), "DEL"))
	assert.True(t, strings.Contains(string(cmd2), "src:k"))
}

func TestBuildCommand_NSCreateStages(t *testing.T) {
	mgr, err := NewNamespaceManager(4)
	require.NoError(t, err)
	ns := mgr.newHandle("customers")
	r := newTestRequest(t, NSCreate, &UserRequest{Namespace: ns})

	cmd0, err := buildCommand(r)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(cmd0), "HSETNX"))

	r.stage = 1
	cmd1, err := buildCommand(r)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(cmd1), "HEXISTS"))
}

func TestValidateKey_TooLong(t *testing.T) {
	err := validateKey(strings.Repeat("k", maxKeyLen+1))
	assert.True(t, IsStatus(err, ErrInvalid))
}

func TestBuildCommand_PutValueTooLargeRejected(t *testing.T) {
	r := newTestRequest(t, Put, &UserRequest{Key: "k", SGEs: []SGE{{Base: make([]byte, maxValueLen+1)}}})
	_, err := buildCommand(r)
	assert.True(t, IsStatus(err, ErrInvalid))
}

// SPDX-License-Identifier: AGPL-3.0-or-later

package rbroker

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databroker-go/rbroker/internal/resp"
)

func newTestRequest(t *testing.T, opcode Opcode, user *UserRequest) *request {
	t.Helper()
	if user == nil {
		user = &UserRequest{}
	}
	user.Opcode = opcode
	r, err := allocate(user)
	require.NoError(t, err)
	return r
}

func TestCompleteCommand_PutSuccess(t *testing.T) {
	r := newTestRequest(t, Put, &UserRequest{Cookie: 42})
	result := resp.Int(1)
	comp, err := completeCommand(r, &result, BackendSuccess)
	require.NoError(t, err)
	require.NotNil(t, comp)
	assert.Equal(t, Success, comp.Status)
	assert.Equal(t, int64(1), comp.RC)
	assert.Equal(t, uint64(42), comp.Cookie)
	assert.True(t, r.terminal)
}

func TestCompleteCommand_GetUBufferWithoutPartial(t *testing.T) {
	buf := make([]byte, 2)
	r := newTestRequest(t, Get, &UserRequest{SGEs: []SGE{{Base: buf}}})
	result := resp.Bytes([]byte("hello"))
	comp, err := completeCommand(r, &result, BackendSuccess)
	require.NoError(t, err)
	assert.Equal(t, ErrUBuffer, comp.Status)
	assert.Equal(t, int64(5), comp.RC)
}

func TestCompleteCommand_GetPartialTruncates(t *testing.T) {
	buf := make([]byte, 2)
	r := newTestRequest(t, Get, &UserRequest{Flags: Partial, SGEs: []SGE{{Base: buf}}})
	result := resp.Bytes([]byte("hello"))
	comp, err := completeCommand(r, &result, BackendSuccess)
	require.NoError(t, err)
	assert.Equal(t, Success, comp.Status)
	assert.Equal(t, int64(5), comp.RC)
	assert.Equal(t, []byte("he"), buf)
}

func TestCompleteCommand_GetNilIsUnavail(t *testing.T) {
	r := newTestRequest(t, Get, &UserRequest{})
	result := resp.Nil()
	comp, err := completeCommand(r, &result, BackendSuccess)
	require.NoError(t, err)
	assert.Equal(t, ErrUnavail, comp.Status)
}

func TestCompleteCommand_NSDeleteBusy(t *testing.T) {
	r := newTestRequest(t, NSDelete, &UserRequest{})
	result := resp.Int(3)
	comp, err := completeCommand(r, &result, BackendEBusy)
	require.NoError(t, err)
	assert.Equal(t, ErrNSBusy, comp.Status)
	assert.Equal(t, int64(3), comp.RC)
}

func TestCompleteCommand_NSCreateStage1MissingIsNoFile(t *testing.T) {
	r := newTestRequest(t, NSCreate, &UserRequest{})
	stage0 := resp.Int(1)
	comp, err := completeCommand(r, &stage0, BackendSuccess)
	require.NoError(t, err)
	require.Nil(t, comp)
	assert.Equal(t, 1, r.stage)
	assert.False(t, r.terminal)

	stage1 := resp.Int(0)
	comp, err = completeCommand(r, &stage1, BackendENoEnt)
	require.NoError(t, err)
	require.NotNil(t, comp)
	assert.Equal(t, ErrNoFile, comp.Status)
	assert.True(t, r.terminal)
}

func TestCompleteCommand_MoveSourceDeleteFailure(t *testing.T) {
	r := newTestRequest(t, Move, &UserRequest{Next: &UserRequest{}})
	stage0 := resp.Int(1)
	_, err := completeCommand(r, &stage0, BackendSuccess)
	require.NoError(t, err)
	stage1 := resp.Int(1)
	_, err = completeCommand(r, &stage1, BackendSuccess)
	require.NoError(t, err)
	require.Equal(t, 2, r.stage)

	stage2 := resp.Int(0)
	comp, err := completeCommand(r, &stage2, BackendEStale)
	require.NoError(t, err)
	require.NotNil(t, comp)
	assert.Equal(t, ErrNoFile, comp.Status)
}

func TestCompleteCommand_AlreadyTerminalIsProtoError(t *testing.T) {
	r := newTestRequest(t, Put, &UserRequest{})
	r.terminal = true
	result := resp.Int(1)
	_, err := completeCommand(r, &result, BackendSuccess)
	assert.ErrorIs(t, err, errProto)
}

func TestCompleteCommand_NilArgsError(t *testing.T) {
	_, err := completeCommand(nil, nil, BackendSuccess)
	assert.ErrorIs(t, err, errNilArg)
}

func TestCompleteCommand_DirectorySelfLoopsUntilCursorZero(t *testing.T) {
	buf := make([]byte, 64)
	r := newTestRequest(t, Directory, &UserRequest{SGEs: []SGE{{Base: buf}}})

	page1 := resp.Arr(resp.Int(5), resp.Arr(resp.Bytes([]byte("a")), resp.Bytes([]byte("b"))))
	comp, err := completeCommand(r, &page1, BackendSuccess)
	require.NoError(t, err)
	assert.Nil(t, comp)
	assert.False(t, r.terminal)
	assert.Equal(t, uint64(5), r.scratch.cursor)

	page2 := resp.Arr(resp.Int(0), resp.Arr(resp.Bytes([]byte("c"))))
	comp, err = completeCommand(r, &page2, BackendSuccess)
	require.NoError(t, err)
	require.NotNil(t, comp)
	assert.True(t, r.terminal)
	assert.Equal(t, Success, comp.Status)
	assert.Equal(t, int64(3), comp.RC)
	assert.Equal(t, "a\nb\nc", string(buf[:len("a\nb\nc")]))
}

func TestCompleteCommand_IteratorSingleStepUpdatesIterator(t *testing.T) {
	it := &Iterator{id: uuid.New()}
	buf := make([]byte, 16)
	r := newTestRequest(t, Iterator, &UserRequest{SGEs: []SGE{{Base: buf}}})
	r.scratch.iter = it

	page := resp.Arr(resp.Int(7), resp.Bytes([]byte("key1")))
	comp, err := completeCommand(r, &page, BackendSuccess)
	require.NoError(t, err)
	require.NotNil(t, comp)
	assert.True(t, r.terminal)
	assert.Equal(t, uint64(7), it.cursor)
	assert.Equal(t, []byte("key1"), it.lastKey)
}

func TestCompleteCommand_CancelProducesCancelledAndTerminal(t *testing.T) {
	r := newTestRequest(t, Put, &UserRequest{Cookie: 9})
	comp := completeCancel(r)
	assert.Equal(t, ErrCancelled, comp.Status)
	assert.True(t, r.terminal)
	assert.Equal(t, uint64(9), comp.Cookie)
}

func TestTranslateRC_OverlayWinsOverDefault(t *testing.T) {
	spec := stageSpec{overlay: map[BackendCode]Status{BackendEExist: ErrExists}}
	assert.Equal(t, ErrExists, translateRC(spec, BackendEExist))
}

func TestTranslateRC_UnmappedFallsBackToGeneric(t *testing.T) {
	assert.Equal(t, ErrGeneric, translateRC(stageSpec{}, BackendCode(999)))
}

func TestTranslateRC_BusyExcludedFromDefaultMap(t *testing.T) {
	_, ok := defaultRCMap[BackendEBusy]
	assert.False(t, ok)
}

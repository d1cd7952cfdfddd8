// SPDX-License-Identifier: AGPL-3.0-or-later

package rbroker

import "sync"

// expect names the RESP reply shape a stage requires before it will
// advance; ANY accepts any non-error type (GET/READ, ITERATOR and
// NSCREATE's verify stage, whose successful shape depends on runtime
// conditions the static table can't predict).
type expect int

const (
	expectInt expect = iota
	expectBulk
	expectArray
	expectAny
)

// TerminalStage marks a stageSpec.next value meaning "no successor; a
// reply to this stage always produces a completion."
const TerminalStage = -1

// stageSpec is one cell of the per-opcode stage table: the reply shape
// this stage expects, whether it is the last stage, the stage to
// advance to on success, and an error-map overlay that overrides the
// package-level default translation for this specific (opcode, stage)
// pair only.
type stageSpec struct {
	expect   expect
	terminal bool
	next     int
	overlay  map[BackendCode]Status
}

// stageTable is a single immutable table built once, lazily.
// sync.OnceValue gives us the once-ness without a package init()
// ordering dependency, and costs nothing after the first call.
var stageTable = sync.OnceValue(buildStageTable)

func buildStageTable() map[Opcode][]stageSpec {
	return map[Opcode][]stageSpec{
		Put: {
			{expect: expectInt, terminal: true, next: TerminalStage},
		},
		Get: {
			{expect: expectAny, terminal: true, next: TerminalStage},
		},
		Read: {
			{expect: expectAny, terminal: true, next: TerminalStage},
		},
		Remove: {
			{expect: expectInt, terminal: true, next: TerminalStage},
		},
		Directory: {
			// Self-loops at stage 0 until the decoded SCAN cursor is 0;
			// see engine.go's special-cased handling for Directory.
			{expect: expectArray, terminal: false, next: 0},
		},
		Iterator: {
			{expect: expectAny, terminal: true, next: TerminalStage},
		},
		Move: {
			// stage 0: copy to destination namespace
			{expect: expectInt, terminal: false, next: 1,
				overlay: map[BackendCode]Status{BackendEExist: ErrExists}},
			// stage 1: ack on destination
			{expect: expectInt, terminal: false, next: 2},
			// stage 2: delete source
			{expect: expectInt, terminal: true, next: TerminalStage,
				overlay: map[BackendCode]Status{BackendEStale: ErrNoFile}},
		},
		NSCreate: {
			// stage 0: allocate namespace record on the server
			{expect: expectInt, terminal: false, next: 1},
			// stage 1: verify existence
			{expect: expectAny, terminal: true, next: TerminalStage,
				overlay: map[BackendCode]Status{BackendENoEnt: ErrNoFile}},
		},
		NSAttach: {
			{expect: expectInt, terminal: true, next: TerminalStage,
				overlay: map[BackendCode]Status{BackendEExist: ErrNoFile}},
		},
		NSDetach: {
			{expect: expectInt, terminal: true, next: TerminalStage},
		},
		NSDelete: {
			{expect: expectInt, terminal: true, next: TerminalStage},
		},
		NSQuery: {
			{expect: expectArray, terminal: true, next: TerminalStage},
		},
	}
}

// lookupStage returns the spec for (opcode, stage), or ok=false if none
// exists — the condition complete_command reports as EPROTO.
func lookupStage(opcode Opcode, stage int) (stageSpec, bool) {
	stages, ok := stageTable()[opcode]
	if !ok || stage < 0 || stage >= len(stages) {
		return stageSpec{}, false
	}
	return stages[stage], true
}

// stageCount returns the number of stages opcode's static table declares.
// Directory's true stage count is dynamic (bounded by the server's scan
// cursor reaching 0, not by this table), so callers needing "is this the
// last possible stage" for Directory must not rely on this.
func stageCount(opcode Opcode) int {
	return len(stageTable()[opcode])
}

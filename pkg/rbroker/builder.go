// SPDX-License-Identifier: AGPL-3.0-or-later

package rbroker

import (
	"strings"

	"github.com/databroker-go/rbroker/internal/resp"
	"github.com/databroker-go/rbroker/pkg/rbroker/respcmd"
)

// maxKeyLen bounds a single key the way MaxNamespaceName bounds a
// namespace name, at 4096 bytes rather than MaxNamespaceName's 255.
const maxKeyLen = 4096

// buildCommand renders the RESP command for req's current stage, or an
// error if the request or its key fails local validation before ever
// reaching the wire: empty keys, keys containing the namespace separator
// unescaped, and oversized values are all rejected here rather than
// round-tripped to the backend first.
func buildCommand(r *request) ([]byte, error) {
	if r == nil {
		return nil, newError("buildCommand", ErrInvalid, errNilArg)
	}
	key := r.user.Key
	switch r.opcode {
	case Put, Get, Read, Remove, Move:
		if err := validateKey(key); err != nil {
			return nil, err
		}
	}
	ns := ""
	if r.user.Namespace != nil {
		ns = r.user.Namespace.Name()
	}

	var args [][]byte
	switch r.opcode {
	case Put:
		value := Gather(r.user.SGEs)
		if len(value) > maxValueLen {
			return nil, newError("buildCommand", ErrInvalid, errValueTooLarge)
		}
		args = respcmd.Put(ns, key, value)
	case Get:
		args = respcmd.Get(ns, key)
	case Read:
		args = respcmd.Read(ns, key)
	case Remove:
		args = respcmd.Remove(ns, key)
	case Directory:
		args = respcmd.Directory(ns, r.scratch.cursor, r.user.Match)
	case Iterator:
		args = respcmd.Iterator(ns, r.scratch.cursor, r.user.Match)
	case Move:
		args = buildMoveStage(r, ns)
	case NSCreate:
		args = buildNSCreateStage(r)
	case NSAttach:
		args = respcmd.NSAttach(ns)
	case NSDetach:
		args = respcmd.NSDetach(ns)
	case NSDelete:
		args = respcmd.NSDelete(ns)
	case NSQuery:
		args = respcmd.NSQuery()
	default:
		return nil, newError("buildCommand", ErrNoImpl, errUnhandledOpcode)
	}

	n := resp.EncodedLen(args...)
	if n > maxCommandLen {
		return nil, newError("buildCommand", ErrInvalid, errCommandTooLarge)
	}
	return resp.EncodeCommand(make([]byte, 0, n), args...), nil
}

func buildMoveStage(r *request, srcNS string) [][]byte {
	dstNS := ""
	if r.user.Next != nil && r.user.Next.Namespace != nil {
		dstNS = r.user.Next.Namespace.Name()
	}
	switch r.stage {
	case 0:
		return respcmd.MoveCopy(srcNS, dstNS, r.user.Key)
	case 1:
		return respcmd.MoveAck(dstNS, r.user.Key)
	default:
		return respcmd.MoveDeleteSource(srcNS, r.user.Key)
	}
}

func buildNSCreateStage(r *request) [][]byte {
	name := ""
	if r.user.Namespace != nil {
		name = r.user.Namespace.Name()
	} else {
		name = r.user.Key
	}
	if r.stage == 0 {
		return respcmd.NSCreateAllocate(name)
	}
	return respcmd.NSCreateVerify(name)
}

// validateKey rejects an empty key, an oversized key, or one embedding
// the namespace separator byte raw (-EILSEQ: the backend key would
// decode to a different (namespace, key) pair than the caller intended).
func validateKey(key string) error {
	if key == "" {
		return newError("validateKey", ErrInvalid, errEmptyKey)
	}
	if len(key) > maxKeyLen {
		return newError("validateKey", ErrInvalid, errKeyTooLarge)
	}
	if strings.IndexByte(key, respcmd.NamespaceSeparator) >= 0 {
		return newError("validateKey", ErrInvalid, errKeyIllSeq)
	}
	return nil
}

// SPDX-License-Identifier: AGPL-3.0-or-later

// Package respcmd maps each (opcode, stage) pair onto the RESP command it
// renders to the wire. Separating this from the completion engine mirrors
// the stage table's split between the reply shape a stage expects and
// the command template that produces that reply: the engine in package
// rbroker never builds commands directly, it only interprets what came
// back.
package respcmd

import "fmt"

// Namespace separator byte joining a namespace name to a key when
// rendering the backend key a RESP command addresses: a single ':'
// byte, matching the convention packetd's predis decoder uses for
// compound keys.
const NamespaceSeparator = ':'

// BackendKey renders the wire key for a namespace-qualified user key. An
// empty namespace yields the bare key unqualified.
func BackendKey(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + string(NamespaceSeparator) + key
}

// Put renders PUT's single-stage RPUSH.
func Put(namespace, key string, value []byte) [][]byte {
	return bulkArgs("RPUSH", BackendKey(namespace, key), string(value))
}

// Get renders GET's single-stage LPOP (non-destructive read uses Read).
func Get(namespace, key string) [][]byte {
	return bulkArgs("LPOP", BackendKey(namespace, key))
}

// Read renders READ's single-stage LINDEX at position 0: a peek that
// does not consume the value, unlike Get's LPOP.
func Read(namespace, key string) [][]byte {
	return bulkArgs("LINDEX", BackendKey(namespace, key), "0")
}

// Remove renders REMOVE's single-stage DEL.
func Remove(namespace, key string) [][]byte {
	return bulkArgs("DEL", BackendKey(namespace, key))
}

// Directory renders one SCAN page for the given cursor and match
// pattern; the caller re-invokes this with the cursor decoded from the
// previous reply until that cursor is 0.
func Directory(namespace string, cursor uint64, match string) [][]byte {
	pattern := match
	if namespace != "" {
		pattern = BackendKey(namespace, match)
	}
	return bulkArgs("SCAN", fmt.Sprintf("%d", cursor), "MATCH", pattern)
}

// Iterator renders one step of enumeration, reusing SCAN with COUNT 1 so
// a single call advances by exactly one element.
func Iterator(namespace string, cursor uint64, match string) [][]byte {
	pattern := match
	if namespace != "" {
		pattern = BackendKey(namespace, match)
	}
	return bulkArgs("SCAN", fmt.Sprintf("%d", cursor), "MATCH", pattern, "COUNT", "1")
}

// MoveCopy renders MOVE's stage 0: copy the value into the destination
// namespace under the same key.
func MoveCopy(srcNS, dstNS, key string) [][]byte {
	return bulkArgs("COPY", BackendKey(srcNS, key), BackendKey(dstNS, key))
}

// MoveAck renders MOVE's stage 1: confirm the destination key exists.
func MoveAck(dstNS, key string) [][]byte {
	return bulkArgs("EXISTS", BackendKey(dstNS, key))
}

// MoveDeleteSource renders MOVE's stage 2: remove the source key.
func MoveDeleteSource(srcNS, key string) [][]byte {
	return bulkArgs("DEL", BackendKey(srcNS, key))
}

// NSCreateAllocate renders NSCREATE's stage 0: register the namespace
// record.
func NSCreateAllocate(name string) [][]byte {
	return bulkArgs("HSETNX", namespaceRegistryKey(), name, "0")
}

// NSCreateVerify renders NSCREATE's stage 1: confirm the record exists.
func NSCreateVerify(name string) [][]byte {
	return bulkArgs("HEXISTS", namespaceRegistryKey(), name)
}

// NSAttach renders NSATTACH's single stage: bump the server-side
// attach refcount.
func NSAttach(name string) [][]byte {
	return bulkArgs("HINCRBY", namespaceRegistryKey(), name, "1")
}

// NSDetach renders NSDETACH's single stage: decrement the server-side
// attach refcount.
func NSDetach(name string) [][]byte {
	return bulkArgs("HINCRBY", namespaceRegistryKey(), name, "-1")
}

// NSDelete renders NSDELETE's single stage: a conditional delete the
// backend rejects with +EBUSY while the refcount is nonzero.
func NSDelete(name string) [][]byte {
	return bulkArgs("HDEL", namespaceRegistryKey(), name)
}

// NSQuery renders NSQUERY's single stage: fetch every namespace record.
func NSQuery() [][]byte {
	return bulkArgs("HGETALL", namespaceRegistryKey())
}

func namespaceRegistryKey() string { return "__rbroker:namespaces" }

func bulkArgs(args ...string) [][]byte {
	out := make([][]byte, len(args))
	for i, a := range args {
		out[i] = []byte(a)
	}
	return out
}

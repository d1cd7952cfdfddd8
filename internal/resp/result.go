// SPDX-License-Identifier: AGPL-3.0-or-later

// Package resp implements the narrow slice of the Redis serialization
// protocol (RESP) this module needs: rendering commands as bulk-string
// arrays and decoding the handful of reply shapes the completion engine
// consumes, as a collaborator external to the request lifecycle engine
// rather than part of it. The tagged-union shape of Result mirrors how
// a RESP reply is always one of a small closed set of wire types
// (simple string, error, integer, bulk string, array, nil).
package resp

import "fmt"

// Type identifies which RESP reply shape a Result carries.
type Type int

const (
	// TypeNil represents a RESP nil bulk string or nil array ($-1 / *-1).
	TypeNil Type = iota
	// TypeInteger represents a RESP integer reply (":").
	TypeInteger
	// TypeBulk represents a RESP bulk string reply ("$").
	TypeBulk
	// TypeArray represents a RESP array reply ("*").
	TypeArray
	// TypeError represents a RESP error reply ("-").
	TypeError
)

func (t Type) String() string {
	switch t {
	case TypeNil:
		return "nil"
	case TypeInteger:
		return "integer"
	case TypeBulk:
		return "bulk"
	case TypeArray:
		return "array"
	case TypeError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the decoded form of one RESP reply. Exactly one of Integer,
// Bulk, Array, or Err is meaningful, selected by Type.
type Result struct {
	Type    Type
	Integer int64
	Bulk    []byte
	Array   []Result
	Err     string
}

// Int builds an integer Result.
func Int(v int64) Result { return Result{Type: TypeInteger, Integer: v} }

// Bytes builds a bulk-string Result.
func Bytes(b []byte) Result { return Result{Type: TypeBulk, Bulk: b} }

// Arr builds an array Result.
func Arr(items ...Result) Result { return Result{Type: TypeArray, Array: items} }

// Nil builds a nil Result.
func Nil() Result { return Result{Type: TypeNil} }

// Error builds an error Result.
func Error(msg string) Result { return Result{Type: TypeError, Err: msg} }

// String renders a Result for logging/debugging; not the wire format.
func (r Result) String() string {
	switch r.Type {
	case TypeInteger:
		return fmt.Sprintf("(integer) %d", r.Integer)
	case TypeBulk:
		return fmt.Sprintf("(bulk) %q", r.Bulk)
	case TypeArray:
		return fmt.Sprintf("(array) len=%d", len(r.Array))
	case TypeError:
		return fmt.Sprintf("(error) %s", r.Err)
	default:
		return "(nil)"
	}
}

// SPDX-License-Identifier: AGPL-3.0-or-later

package rbroker

// Observer receives the completion engine's state transitions as they
// happen: a small synchronous hook a Client calls inline from its
// single worker goroutine, not a buffered event bus, so an Observer
// implementation must not block.
type Observer interface {
	// OnPost fires once a request has been staged and its first command
	// sent to the transport.
	OnPost(opcode Opcode)
	// OnComplete fires once a request reaches a terminal Completion,
	// whether by success, backend error, or cancellation.
	OnComplete(opcode Opcode, status Status)
}

type noopObserver struct{}

func (noopObserver) OnPost(Opcode)          {}
func (noopObserver) OnComplete(Opcode, Status) {}

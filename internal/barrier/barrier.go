// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package barrier implements the reusable N-way rendezvous barrier of
// spec.md §5: all N participants block at Wait until the last one arrives,
// then all proceed together, and the barrier is immediately reusable for
// the next cadence. spec.md §9 prefers a dedicated barrier primitive over
// the source's raw mutex+semaphore construction; this is that primitive.
package barrier

import (
	"sync"
	"time"

	"github.com/cpmech/gosl/io"
)

// timeout is the advisory 2-second wait of spec.md §5: on timeout the
// caller logs a diagnostic and continues rather than blocking forever.
const timeout = 2 * time.Second

// Barrier is an N-way reusable rendezvous point.
type Barrier struct {
	n int

	mu    sync.Mutex
	count int
	done  chan struct{} // closed by the last arrival of the current generation
}

// New builds a barrier for n participants.
func New(n int) *Barrier {
	return &Barrier{n: n, done: make(chan struct{})}
}

// Wait blocks the calling goroutine until all n participants have called
// Wait for the current generation, then returns. If the rendezvous is not
// reached within the 2-second timeout, Wait logs a diagnostic and returns
// anyway (spec.md §5/§7: barrier timeouts are logged, non-fatal).
func (b *Barrier) Wait(rank int) {
	b.mu.Lock()
	gen := b.done
	b.count++
	if b.count == b.n {
		b.count = 0
		b.done = make(chan struct{})
		close(gen)
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	select {
	case <-gen:
	case <-time.After(timeout):
		io.Pfred("barrier: rank %d timed out after %v waiting for the other workers\n", rank, timeout)
	}
}

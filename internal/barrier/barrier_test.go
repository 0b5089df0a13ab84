// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package barrier

import (
	"sync"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_barrier_rendezvous(tst *testing.T) {
	chk.PrintTitle("N goroutines rendezvous at each generation")

	const n = 5
	const rounds = 20
	b := New(n)

	counter := make([]int, rounds)
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(n)
	for r := 0; r < n; r++ {
		go func(rank int) {
			defer wg.Done()
			for round := 0; round < rounds; round++ {
				mu.Lock()
				counter[round]++
				mu.Unlock()
				b.Wait(rank)
				// by the time Wait returns, every participant has
				// incremented this round's counter
				mu.Lock()
				if counter[round] != n {
					tst.Errorf("round %d: expected counter %d, got %d", round, n, counter[round])
				}
				mu.Unlock()
			}
		}(r)
	}
	wg.Wait()
}

func Test_barrier_reusable(tst *testing.T) {
	chk.PrintTitle("barrier is immediately reusable across many generations")

	const n = 3
	b := New(n)
	var wg sync.WaitGroup
	wg.Add(n)
	for r := 0; r < n; r++ {
		go func(rank int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				b.Wait(rank)
			}
		}(r)
	}
	wg.Wait()
}

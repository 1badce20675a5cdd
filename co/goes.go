// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Goes tracks the life-cycle of a group of goroutines.
type Goes struct {
	wg sync.WaitGroup
}

// Go runs f in a new goroutine.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f()
	}()
}

// Wait blocks until all goroutines started by Go have returned.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed when all goroutines started by Go have returned.
func (g *Goes) Done() chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	return done
}

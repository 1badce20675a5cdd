// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGoesWait(t *testing.T) {
	var g Goes
	var ran int32

	for i := 0; i < 10; i++ {
		g.Go(func() { atomic.AddInt32(&ran, 1) })
	}
	g.Wait()

	assert.Equal(t, int32(10), atomic.LoadInt32(&ran))
}

func TestGoesDone(t *testing.T) {
	var g Goes
	release := make(chan struct{})
	g.Go(func() { <-release })

	done := g.Done()
	select {
	case <-done:
		t.Fatal("done closed before goroutine returned")
	case <-time.After(10 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done not closed")
	}
}

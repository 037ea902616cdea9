// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package clock

import (
	"sync"
	"time"
)

// pendingAfter is one outstanding SimulatedClock.After call waiting
// for the simulated time to reach targetTime.
type pendingAfter struct {
	targetTime time.Time
	fired      chan time.Time
}

// SimulatedClock is a Clock driven entirely by AdvanceTime/SetTime,
// so that RunLoop's tick-to-tick sleeps resolve deterministically
// rather than racing a real timer; no current test uses it. The zero
// value starts at the zero time.
type SimulatedClock struct {
	mu      sync.RWMutex
	now     time.Time       // GUARDED_BY(mu)
	waiting []*pendingAfter // GUARDED_BY(mu)
}

// NewSimulatedClock returns a clock whose Now reads start until
// advanced.
func NewSimulatedClock(start time.Time) *SimulatedClock {
	return &SimulatedClock{now: start}
}

func (sc *SimulatedClock) Now() time.Time {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.now
}

// SetTime jumps the clock to t, firing any After calls t has reached.
func (sc *SimulatedClock) SetTime(t time.Time) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.now = t
	sc.fireDue()
}

// AdvanceTime moves the clock forward by d, firing any After calls
// the new time has reached.
func (sc *SimulatedClock) AdvanceTime(d time.Duration) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.now = sc.now.Add(d)
	sc.fireDue()
}

// After returns a channel that receives once the simulated clock
// reaches now+d. A non-positive d fires immediately, mirroring
// time.After.
func (sc *SimulatedClock) After(d time.Duration) <-chan time.Time {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	fired := make(chan time.Time, 1)
	target := sc.now.Add(d)

	if !target.After(sc.now) {
		fired <- sc.now
		return fired
	}

	sc.waiting = append(sc.waiting, &pendingAfter{targetTime: target, fired: fired})
	return fired
}

// fireDue sends on every pending After whose target time has arrived.
// LOCKS_REQUIRED(sc.mu)
func (sc *SimulatedClock) fireDue() {
	remaining := sc.waiting[:0]
	for _, p := range sc.waiting {
		if sc.now.Before(p.targetTime) {
			remaining = append(remaining, p)
			continue
		}
		p.fired <- p.targetTime
	}
	sc.waiting = remaining
}

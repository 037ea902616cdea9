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

import "time"

// FakeClock is a Clock whose After fires after a fixed, configurable
// wait rather than the duration it was asked for — handy for unit
// tests that register a scheduler task but never call RunLoop, where
// the zero value's zero WaitTime makes every After fire essentially
// immediately. Now still reports real wall-clock time.
type FakeClock struct {
	WaitTime time.Duration
}

func (c *FakeClock) Now() time.Time {
	return time.Now()
}

func (c *FakeClock) After(time.Duration) <-chan time.Time {
	fired := make(chan time.Time)
	go func() {
		time.Sleep(c.WaitTime)
		fired <- time.Now()
	}()
	return fired
}

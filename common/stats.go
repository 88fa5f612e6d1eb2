// Copyright © 2023 gonenradai
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package common

import "sync/atomic"

// RunStats carries the atomic counters shared by the scan and transfer pools.
// Every field is updated concurrently by workers and read by the progress
// reporter, so access must go through the atomic types.
type RunStats struct {
	FoldersScanned     atomic.Int64
	FilesDiscovered    atomic.Int64
	TransfersDone      atomic.Int64
	SkippedAsDuplicate atomic.Int64
	TaskFailures       atomic.Int64

	maxConcurrentScans atomic.Int64
}

func NewRunStats() *RunStats {
	return &RunStats{}
}

// NoteConcurrentScans records a high-water mark of simultaneously scanning workers.
func (s *RunStats) NoteConcurrentScans(n int64) {
	for {
		cur := s.maxConcurrentScans.Load()
		if n <= cur || s.maxConcurrentScans.CompareAndSwap(cur, n) {
			return
		}
	}
}

func (s *RunStats) MaxConcurrentScans() int64 {
	return s.maxConcurrentScans.Load()
}

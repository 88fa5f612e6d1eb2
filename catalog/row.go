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

package catalog

import "sync"

// Row is one bulk-upload line. Field order and the csv tags define the
// exact header Kaltura's bulk ingestion expects, so don't reorder them.
type Row struct {
	Title             string `csv:"*title"`
	Description       string `csv:"description"`
	Tags              string `csv:"tags"`
	URL               string `csv:"url"`
	ReferenceID       string `csv:"referenceId"`
	ContentType       string `csv:"contentType"`
	Category          string `csv:"category"`
	MetadataProfileID string `csv:"metadataProfileId"`
	CreatorID         string `csv:"creatorId"`
	OwnerID           string `csv:"ownerId"`
}

// Accumulator collects rows from concurrent transfer workers.
type Accumulator struct {
	mu   sync.Mutex
	rows []Row
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

func (a *Accumulator) Append(r Row) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rows = append(a.rows, r)
}

// Rows returns a copy of the accumulated rows.
func (a *Accumulator) Rows() []Row {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Row, len(a.rows))
	copy(out, a.rows)
	return out
}

func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.rows)
}

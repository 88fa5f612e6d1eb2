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

package ste

import (
	"bufio"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// DedupeCache is the persisted set of Kaltura referenceIds that are already
// known to be cataloged. It backs an in-memory set with an append-only line
// log, so that repeated runs converge to a no-op without re-querying Kaltura
// for every file. Ids are only ever added, never removed.
type DedupeCache struct {
	mu    sync.Mutex
	known map[string]struct{}
	file  *os.File
}

// OpenDedupeCache opens (creating if needed) the cache file at path and loads
// it fully into memory.
func OpenDedupeCache(path string) (*DedupeCache, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening dedupe cache %s", path)
	}

	known := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			known[line] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		file.Close()
		return nil, errors.Wrapf(err, "reading dedupe cache %s", path)
	}

	return &DedupeCache{known: known, file: file}, nil
}

func (c *DedupeCache) Contains(referenceID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.known[referenceID]
	return ok
}

// Add records the id in memory and appends it to the log. Adding an id that
// is already present is a no-op, so the log never accumulates duplicates
// within a run.
func (c *DedupeCache) Add(referenceID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.known[referenceID]; ok {
		return nil
	}
	if _, err := c.file.WriteString(referenceID + "\n"); err != nil {
		return errors.Wrapf(err, "appending %s to dedupe cache", referenceID)
	}
	c.known[referenceID] = struct{}{}
	return nil
}

func (c *DedupeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.known)
}

func (c *DedupeCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.Close()
}

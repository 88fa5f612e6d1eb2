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

package traverser

import (
	"context"
	"sync"
	"time"

	"github.com/gonenradai/gdrive2kalturabulk/common"
)

// CrawlResult is one item coming out of the crawl: either a discovered media
// file, or an error from listing a folder (in which case that folder's
// remaining children are lost, but the crawl carries on).
type CrawlResult struct {
	task TransferTask
	err  error
}

func (r CrawlResult) Task() (TransferTask, error) {
	return r.task, r.err
}

func NewCrawlResult(task TransferTask) CrawlResult {
	return CrawlResult{task: task}
}

func NewCrawlError(err error) CrawlResult {
	return CrawlResult{err: err}
}

type crawler struct {
	output      chan CrawlResult
	lister      Lister
	parallelism int
	stats       *common.RunStats
	cond        *sync.Cond
	// the following are protected by cond (and must only be accessed when cond.L is held)
	unstartedFolders     []FolderTask // not a channel, because channels have length limits, and those get in our way
	foldersInProgress    int
	issuedListingQueries map[string]struct{}
}

// Crawl walks the folder tree rooted at root with the given number of
// workers, emitting a CrawlResult for every media file found. The output
// channel is closed only once every worker has stopped, i.e. when the
// frontier is empty and no worker still holds a folder that could produce
// more work. A folder reachable through more than one parent (e.g. via two
// shortcuts) is listed at most once.
func Crawl(ctx context.Context, root FolderTask, lister Lister, parallelism int, stats *common.RunStats) <-chan CrawlResult {
	c := &crawler{
		unstartedFolders:     make([]FolderTask, 0, 1024),
		output:               make(chan CrawlResult, 1000),
		lister:               lister,
		parallelism:          parallelism,
		stats:                stats,
		cond:                 sync.NewCond(&sync.Mutex{}),
		issuedListingQueries: make(map[string]struct{}),
	}
	c.unstartedFolders = append(c.unstartedFolders, root)

	go c.start(ctx)
	return c.output
}

func (c *crawler) start(ctx context.Context) {
	done := make(chan struct{})
	heartbeat := func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(10 * time.Second):
				c.cond.Broadcast() // prevent things waiting for ever, even after cancellation has happened
			}
		}
	}
	go heartbeat()

	c.runWorkersToCompletion(ctx)

	close(c.output)
	close(done)
}

func (c *crawler) runWorkersToCompletion(ctx context.Context) {
	wg := &sync.WaitGroup{}
	for i := 0; i < c.parallelism; i++ {
		wg.Add(1)
		go c.workerLoop(ctx, wg)
	}
	wg.Wait()
}

func (c *crawler) workerLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	var err error
	mayHaveMore := true
	for mayHaveMore && ctx.Err() == nil {
		mayHaveMore, err = c.processOneFolder(ctx)
		if err != nil {
			// output the error, but don't stop the enumeration (e.g. it might be one unreadable folder)
			select {
			case c.output <- CrawlResult{err: err}:
			case <-ctx.Done():
			}
		}
	}
}

func (c *crawler) processOneFolder(ctx context.Context) (bool, error) {
	var toExamine FolderTask
	claimed := false

	// Acquire a folder to work on.
	// Note that we need explicit locking because there are two mutable things
	// involved in our decision making, not one. (The two being
	// c.unstartedFolders and c.foldersInProgress)
	c.cond.L.Lock()
	for !claimed {
		// wait while there's nothing to do, and another worker might be going to add something
		for len(c.unstartedFolders) == 0 && c.foldersInProgress > 0 && ctx.Err() == nil {
			c.cond.Wait()
		}

		// if there's nothing left and nobody is working, the crawl is over
		if ctx.Err() != nil || len(c.unstartedFolders) == 0 {
			break
		}

		// pop from the start of the list, giving the search a breadth-first flavour
		toExamine = c.unstartedFolders[0]
		c.unstartedFolders = c.unstartedFolders[1:]

		// the listing query for this folder may already have been issued, if the
		// folder is reachable through two parents (e.g. two shortcuts to it)
		if _, issued := c.issuedListingQueries[toExamine.ID]; issued {
			continue
		}
		// record the query as issued before any paging begins
		c.issuedListingQueries[toExamine.ID] = struct{}{}

		c.foldersInProgress++ // record that we are working on something
		if c.stats != nil {
			c.stats.NoteConcurrentScans(int64(c.foldersInProgress))
		}
		claimed = true
		c.cond.Broadcast() // and let other workers know of that fact
	}
	c.cond.L.Unlock()
	if !claimed {
		return false, nil
	}

	// list the folder's immediate children (outside the lock, because this is slow)
	foundFolders, bodyErr := c.listOneFolder(ctx, toExamine)

	// finally, update shared state (inside the lock)
	c.cond.L.Lock()
	c.unstartedFolders = append(c.unstartedFolders, foundFolders...)
	c.foldersInProgress-- // we were doing something, and now we have finished it
	c.cond.Broadcast()    // let other workers know that the state has changed
	c.cond.L.Unlock()

	// true because, as far as we know, the work is not finished. And err because
	// it was the err (if any) from THIS folder
	return true, bodyErr
}

// listOneFolder pages through the folder's listing, pushing every media child
// to the output and returning the folder tasks for every traversable child.
func (c *crawler) listOneFolder(ctx context.Context, folder FolderTask) ([]FolderTask, error) {
	foundFolders := make([]FolderTask, 0, 16)

	pageToken := ""
	for {
		page, err := c.lister.ListChildren(ctx, folder.ID, pageToken)
		if err != nil {
			return foundFolders, err
		}

		for _, entry := range page.Entries {
			if entry.IsMedia() {
				if c.stats != nil {
					c.stats.FilesDiscovered.Add(1)
				}
				select {
				case c.output <- CrawlResult{task: TransferTask{Item: entry, Folder: folder}}:
				case <-ctx.Done(): // don't block on a full channel if cancelled
					return foundFolders, ctx.Err()
				}
			}

			// a media entry is never also listable, but a shortcut may point at
			// anything, so the traversal check is made independently
			if targetID, ok := entry.TraversalTargetID(); ok {
				foundFolders = append(foundFolders, folder.Child(targetID, entry.Name))
			}
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	if c.stats != nil {
		c.stats.FoldersScanned.Add(1)
	}
	return foundFolders, nil
}

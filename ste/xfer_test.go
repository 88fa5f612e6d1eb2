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
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/gonenradai/gdrive2kalturabulk/catalog"
	"github.com/gonenradai/gdrive2kalturabulk/common"
	"github.com/gonenradai/gdrive2kalturabulk/traverser"
)

type fakeFetcher struct {
	mu      sync.Mutex
	content map[string][]byte // fileID -> bytes
	errs    map[string]error
	fetches map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		content: make(map[string][]byte),
		errs:    make(map[string]error),
		fetches: make(map[string]int),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, fileID string, destPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[fileID]++
	if err, ok := f.errs[fileID]; ok {
		return err
	}
	data, ok := f.content[fileID]
	if !ok {
		return errors.Errorf("no such file %s", fileID)
	}
	return os.WriteFile(destPath, data, 0644)
}

func (f *fakeFetcher) timesFetched(fileID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[fileID]
}

type storedObject struct {
	size        int64
	contentType string
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string]storedObject
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]storedObject)}
}

func (s *fakeStore) seed(key string, size int64) {
	s.objects[key] = storedObject{size: size}
}

func (s *fakeStore) HeadSize(ctx context.Context, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return 0, false, nil
	}
	return obj.size, true, nil
}

func (s *fakeStore) Put(ctx context.Context, localPath string, key string, contentType string) error {
	fi, err := os.Stat(localPath)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = storedObject{size: fi.Size(), contentType: contentType}
	s.puts++
	return nil
}

func (s *fakeStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

func (s *fakeStore) object(key string) (storedObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	return obj, ok
}

type fakeLocator struct {
	mu      sync.Mutex
	ready   map[string]bool
	lookups int
}

func newFakeLocator(readyIDs ...string) *fakeLocator {
	l := &fakeLocator{ready: make(map[string]bool)}
	for _, id := range readyIDs {
		l.ready[id] = true
	}
	return l
}

func (l *fakeLocator) FindReady(ctx context.Context, referenceID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lookups++
	return l.ready[referenceID], nil
}

func (l *fakeLocator) lookupCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lookups
}

// fakeConverter renames the source to src+".png" without decoding anything.
type fakeConverter struct{}

func (fakeConverter) ConvertToPNG(srcPath string) (string, error) {
	dstPath := srcPath + ".png"
	if err := os.Rename(srcPath, dstPath); err != nil {
		return "", err
	}
	return dstPath, nil
}

type nopLogger struct{}

func (nopLogger) ShouldLog(level common.LogLevel) bool  { return false }
func (nopLogger) Log(level common.LogLevel, msg string) {}
func (nopLogger) Panic(err error)                       { panic(err) }

type engineFixture struct {
	engine  *TransferEngine
	fetcher *fakeFetcher
	store   *fakeStore
	locator *fakeLocator
	cache   *DedupeCache
	acc     *catalog.Accumulator
	stats   *common.RunStats
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	dir := t.TempDir()
	doneDir := filepath.Join(dir, "done")
	tmpDir := filepath.Join(dir, "tmp")
	assert.NoError(t, os.MkdirAll(doneDir, 0755))
	assert.NoError(t, os.MkdirAll(tmpDir, 0755))

	cache, err := OpenDedupeCache(filepath.Join(dir, "cache-root"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	fx := &engineFixture{
		fetcher: newFakeFetcher(),
		store:   newFakeStore(),
		locator: newFakeLocator(),
		cache:   cache,
		acc:     catalog.NewAccumulator(),
		stats:   common.NewRunStats(),
	}
	fx.engine = &TransferEngine{
		Cfg: TransferConfig{
			RootFolderID:      "root",
			RootFolderName:    "Root",
			DriveLabel:        "Staff Drive",
			RootCategory:      "Archive",
			MetadataProfileID: "678",
			EntryOwnerID:      "Admins",
			PublicURLBase:     "https://bucket.example.com",
			Parallelism:       4,
			DoneDir:           doneDir,
			TmpDir:            tmpDir,
		},
		Fetcher:     fx.fetcher,
		Store:       fx.store,
		Locator:     fx.locator,
		Cache:       fx.cache,
		Converter:   fakeConverter{},
		Accumulator: fx.acc,
		Stats:       fx.stats,
		Logger:      nopLogger{},
	}
	return fx
}

func (fx *engineFixture) run(t *testing.T, tasks ...traverser.TransferTask) {
	t.Helper()
	results := make(chan traverser.CrawlResult, len(tasks))
	for _, task := range tasks {
		results <- taskResult(task)
	}
	close(results)
	assert.NoError(t, fx.engine.Run(context.Background(), results))
}

func taskResult(task traverser.TransferTask) traverser.CrawlResult {
	return traverser.NewCrawlResult(task)
}

func imageItem(id, name string, size int64) traverser.DirectoryEntry {
	return traverser.DirectoryEntry{
		ID:          id,
		Name:        name,
		MimeType:    "image/jpeg",
		SizeBytes:   size,
		CanDownload: true,
		Owner:       traverser.Owner{DisplayName: "Alice", Email: "alice@example.com"},
	}
}

func videoItem(id, name string, size int64) traverser.DirectoryEntry {
	e := imageItem(id, name, size)
	e.MimeType = "video/mp4"
	return e
}

func heicItem(id, name string, size int64) traverser.DirectoryEntry {
	e := imageItem(id, name, size)
	e.MimeType = "image/heic"
	e.FileExtension = "heic"
	return e
}

var rootFolder = traverser.FolderTask{ID: "root", Name: "Root", Path: ""}
var photosFolder = traverser.FolderTask{ID: "P", Name: "Photos", Path: " - Photos"}

func TestEngineEndToEnd(t *testing.T) {
	a := assert.New(t)
	fx := newEngineFixture(t)

	f1 := imageItem("f1", "one.jpg", 5)
	f2 := videoItem("f2", "two.mp4", 10)
	fx.fetcher.content["f1"] = []byte("12345")
	fx.fetcher.content["f2"] = []byte("1234567890")

	fx.run(t,
		traverser.TransferTask{Item: f1, Folder: rootFolder},
		traverser.TransferTask{Item: f2, Folder: photosFolder})

	a.EqualValues(2, fx.stats.TransfersDone.Load())
	a.EqualValues(0, fx.stats.TaskFailures.Load())

	obj, ok := fx.store.object("root/f1")
	a.True(ok)
	a.EqualValues(5, obj.size)
	a.Equal("image/jpeg", obj.contentType)

	obj, ok = fx.store.object("root/P/f2")
	a.True(ok)
	a.EqualValues(10, obj.size)
	a.Equal("video/mp4", obj.contentType)

	rows := fx.acc.Rows()
	a.Len(rows, 2)
	byRef := make(map[string]catalog.Row)
	for _, row := range rows {
		byRef[row.ReferenceID] = row
	}

	row1 := byRef["f1"]
	a.Equal("one.jpg", row1.Title)
	a.Equal("https://bucket.example.com/root/f1", row1.URL)
	a.Equal("Image", row1.ContentType)
	a.Equal("Archive>Staff Drive - Root", row1.Category)
	a.Equal("By Alice in Root. \n", row1.Description)
	a.Equal("alice@example.com", row1.CreatorID)
	a.Equal("Admins", row1.OwnerID)
	a.Equal("678", row1.MetadataProfileID)

	row2 := byRef["f2"]
	a.Equal("Video", row2.ContentType)
	a.Equal("Archive>Staff Drive - Root - Photos", row2.Category)
	a.Equal("https://bucket.example.com/root/P/f2", row2.URL)

	a.True(fx.cache.Contains("f1"))
	a.True(fx.cache.Contains("f2"))

	// staging copies are cleaned up after upload
	entries, err := os.ReadDir(fx.engine.Cfg.DoneDir)
	a.NoError(err)
	a.Empty(entries)
}

func TestEngineSecondRunIsNoOp(t *testing.T) {
	a := assert.New(t)
	fx := newEngineFixture(t)

	f1 := imageItem("f1", "one.jpg", 5)
	fx.fetcher.content["f1"] = []byte("12345")
	fx.run(t, traverser.TransferTask{Item: f1, Folder: rootFolder})
	a.Len(fx.acc.Rows(), 1)

	// same cache, fresh accumulator, as a re-run would have
	fx.acc = catalog.NewAccumulator()
	fx.engine.Accumulator = fx.acc
	fx.run(t, traverser.TransferTask{Item: f1, Folder: rootFolder})

	a.Empty(fx.acc.Rows())
	a.EqualValues(1, fx.stats.SkippedAsDuplicate.Load())
	a.EqualValues(1, fx.stats.TransfersDone.Load(), "no second upload")
	a.Equal(1, fx.fetcher.timesFetched("f1"))
	a.Equal(1, fx.locator.lookupCount(), "cached files skip the remote lookup")
}

func TestEngineSkipsEntriesAlreadyReadyInKaltura(t *testing.T) {
	a := assert.New(t)
	fx := newEngineFixture(t)
	fx.engine.Locator = newFakeLocator("f1")

	f1 := imageItem("f1", "one.jpg", 5)
	fx.run(t, traverser.TransferTask{Item: f1, Folder: rootFolder})

	a.Empty(fx.acc.Rows(), "a ready entry must not be re-submitted")
	a.EqualValues(1, fx.stats.SkippedAsDuplicate.Load())
	a.Equal(0, fx.fetcher.timesFetched("f1"))
	a.Equal(0, fx.store.putCount())
	a.True(fx.cache.Contains("f1"), "the ready entry is recorded for the next run")
}

func TestEngineSkipsUploadWhenObjectSizeMatches(t *testing.T) {
	a := assert.New(t)
	fx := newEngineFixture(t)
	fx.store.seed("root/f1", 5)

	f1 := imageItem("f1", "one.jpg", 5)
	fx.run(t, traverser.TransferTask{Item: f1, Folder: rootFolder})

	a.Equal(0, fx.fetcher.timesFetched("f1"))
	a.Equal(0, fx.store.putCount())
	a.EqualValues(0, fx.stats.TransfersDone.Load())
	a.Len(fx.acc.Rows(), 1, "the row is still emitted for an already-uploaded file")
	a.True(fx.cache.Contains("f1"))
}

func TestEngineRefetchesOnSizeMismatch(t *testing.T) {
	a := assert.New(t)
	fx := newEngineFixture(t)
	fx.store.seed("root/f1", 3) // a truncated earlier upload

	f1 := imageItem("f1", "one.jpg", 5)
	fx.fetcher.content["f1"] = []byte("12345")
	fx.run(t, traverser.TransferTask{Item: f1, Folder: rootFolder})

	a.Equal(1, fx.fetcher.timesFetched("f1"))
	a.Equal(1, fx.store.putCount())
	obj, _ := fx.store.object("root/f1")
	a.EqualValues(5, obj.size)
	a.Len(fx.acc.Rows(), 1)
}

func TestEngineConvertsHeicToPng(t *testing.T) {
	a := assert.New(t)
	fx := newEngineFixture(t)

	f1 := heicItem("f1", "pic.heic", 7)
	fx.fetcher.content["f1"] = []byte("1234567")
	fx.run(t, traverser.TransferTask{Item: f1, Folder: rootFolder})

	obj, ok := fx.store.object("root/f1.png")
	a.True(ok, "the converted rendition is uploaded under key+.png")
	a.Equal("image/png", obj.contentType)

	rows := fx.acc.Rows()
	a.Len(rows, 1)
	a.Equal("pic.heic.png", rows[0].Title)
	a.Equal("https://bucket.example.com/root/f1.png", rows[0].URL)
	a.Equal("f1", rows[0].ReferenceID)
	a.Equal("Image", rows[0].ContentType)
}

func TestEngineReusesConvertedUpload(t *testing.T) {
	a := assert.New(t)
	fx := newEngineFixture(t)
	fx.store.seed("root/f1.png", 999) // size differs from the source; only presence counts

	f1 := heicItem("f1", "pic.heic", 7)
	fx.run(t, traverser.TransferTask{Item: f1, Folder: rootFolder})

	a.Equal(0, fx.fetcher.timesFetched("f1"))
	a.Equal(0, fx.store.putCount())
	rows := fx.acc.Rows()
	a.Len(rows, 1)
	a.Equal("https://bucket.example.com/root/f1.png", rows[0].URL)
}

func TestEngineReusesStagedDownload(t *testing.T) {
	a := assert.New(t)
	fx := newEngineFixture(t)

	// a previous interrupted run completed the download but not the upload
	staged := filepath.Join(fx.engine.Cfg.DoneDir, "f1")
	a.NoError(os.WriteFile(staged, []byte("12345"), 0644))

	f1 := imageItem("f1", "one.jpg", 5)
	fx.run(t, traverser.TransferTask{Item: f1, Folder: rootFolder})

	a.Equal(0, fx.fetcher.timesFetched("f1"), "a complete staged copy is reused")
	a.Equal(1, fx.store.putCount())
	a.Len(fx.acc.Rows(), 1)
}

func TestEngineContainsPerFileFailures(t *testing.T) {
	a := assert.New(t)
	fx := newEngineFixture(t)

	f1 := imageItem("f1", "one.jpg", 5)
	f2 := imageItem("f2", "two.jpg", 5)
	fx.fetcher.errs["f1"] = errors.New("rate limited")
	fx.fetcher.content["f2"] = []byte("12345")

	fx.run(t,
		traverser.TransferTask{Item: f1, Folder: rootFolder},
		traverser.TransferTask{Item: f2, Folder: rootFolder})

	a.EqualValues(1, fx.stats.TaskFailures.Load())
	a.Len(fx.acc.Rows(), 1)
	a.Equal("f2", fx.acc.Rows()[0].ReferenceID)
	a.False(fx.cache.Contains("f1"), "a failed task leaves no trace in the cache")
	a.True(fx.cache.Contains("f2"))
}

func TestEngineCountsCrawlErrors(t *testing.T) {
	a := assert.New(t)
	fx := newEngineFixture(t)

	results := make(chan traverser.CrawlResult, 1)
	results <- traverser.NewCrawlError(errors.New("listing failed"))
	close(results)

	a.NoError(fx.engine.Run(context.Background(), results))
	a.EqualValues(1, fx.stats.TaskFailures.Load())
	a.Empty(fx.acc.Rows())
}

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
	"strings"

	"github.com/gonenradai/gdrive2kalturabulk/common"
)

// FolderTask is one pending folder visit. Path is the human-readable
// breadcrumb to the folder, extended with " - <name>" at every level below
// the root (the root itself has an empty path). It is never mutated after
// the task is created.
type FolderTask struct {
	ID   string
	Name string
	Path string
}

// Child derives the task for a child folder (or a shortcut's target) found
// while listing f.
func (f FolderTask) Child(id, name string) FolderTask {
	return FolderTask{ID: id, Name: name, Path: f.Path + " - " + name}
}

// Owner identifies the Drive user that owns a file.
type Owner struct {
	DisplayName string
	Email       string
}

// DirectoryEntry is one child returned by a folder listing.
type DirectoryEntry struct {
	ID               string
	Name             string
	MimeType         string
	SizeBytes        int64 // zero when Drive omits the field
	Owner            Owner
	Description      string
	FileExtension    string
	CanDownload      bool
	CanListChildren  bool
	ShortcutTargetID string // empty unless the entry is a shortcut
}

// IsMedia reports whether the entry qualifies for transfer: it must be
// downloadable, have a strictly positive size, and be an image, video or
// audio type. Entries with no size reported by Drive never qualify.
func (e DirectoryEntry) IsMedia() bool {
	if !e.CanDownload || e.SizeBytes <= 0 {
		return false
	}
	return strings.HasPrefix(e.MimeType, "image/") ||
		strings.HasPrefix(e.MimeType, "video/") ||
		strings.HasPrefix(e.MimeType, "audio/")
}

// TraversalTargetID returns the folder id to descend into, either the entry
// itself when it is listable or the target of a shortcut. The second return
// is false for plain files.
func (e DirectoryEntry) TraversalTargetID() (string, bool) {
	if e.CanListChildren {
		return e.ID, true
	}
	if e.ShortcutTargetID != "" {
		return e.ShortcutTargetID, true
	}
	return "", false
}

func (e DirectoryEntry) EntityType() common.EntityType {
	switch {
	case e.IsMedia():
		return common.EEntityType.Media()
	case e.CanListChildren:
		return common.EEntityType.Folder()
	case e.ShortcutTargetID != "":
		return common.EEntityType.Shortcut()
	default:
		return common.EEntityType.Other()
	}
}

// TransferTask pairs a media entry with the folder it was discovered in.
// Immutable once enqueued.
type TransferTask struct {
	Item   DirectoryEntry
	Folder FolderTask
}

// ListPage is one page of a folder listing.
type ListPage struct {
	Entries       []DirectoryEntry
	NextPageToken string
}

// Lister is the directory-listing collaborator. Implementations must be safe
// for concurrent use; the crawler calls ListChildren from many goroutines.
type Lister interface {
	ListChildren(ctx context.Context, folderID string, pageToken string) (ListPage, error)
}

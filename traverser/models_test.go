package traverser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gonenradai/gdrive2kalturabulk/common"
)

func TestIsMediaBoundaries(t *testing.T) {
	a := assert.New(t)

	base := DirectoryEntry{MimeType: "image/jpeg", SizeBytes: 1, CanDownload: true}
	a.True(base.IsMedia())

	zeroSize := base
	zeroSize.SizeBytes = 0
	a.False(zeroSize.IsMedia(), "entries with no reported size never qualify")

	locked := base
	locked.CanDownload = false
	a.False(locked.IsMedia())

	document := base
	document.MimeType = "application/pdf"
	a.False(document.IsMedia())

	for _, mime := range []string{"image/png", "video/mp4", "audio/mpeg"} {
		e := base
		e.MimeType = mime
		a.True(e.IsMedia(), mime)
	}
}

func TestTraversalTargetID(t *testing.T) {
	a := assert.New(t)

	folder := DirectoryEntry{ID: "A", CanListChildren: true}
	id, ok := folder.TraversalTargetID()
	a.True(ok)
	a.Equal("A", id)

	shortcut := DirectoryEntry{ID: "s1", ShortcutTargetID: "B"}
	id, ok = shortcut.TraversalTargetID()
	a.True(ok)
	a.Equal("B", id, "a shortcut is traversed via its target")

	plainFile := DirectoryEntry{ID: "f1"}
	_, ok = plainFile.TraversalTargetID()
	a.False(ok)
}

func TestEntityTypeClassification(t *testing.T) {
	a := assert.New(t)

	a.Equal(common.EEntityType.Media(),
		DirectoryEntry{MimeType: "video/mp4", SizeBytes: 5, CanDownload: true}.EntityType())
	a.Equal(common.EEntityType.Folder(),
		DirectoryEntry{CanListChildren: true}.EntityType())
	a.Equal(common.EEntityType.Shortcut(),
		DirectoryEntry{ShortcutTargetID: "B"}.EntityType())
	a.Equal(common.EEntityType.Other(),
		DirectoryEntry{MimeType: "text/plain", SizeBytes: 5, CanDownload: true}.EntityType())
}

func TestFolderTaskChildExtendsPath(t *testing.T) {
	a := assert.New(t)

	root := FolderTask{ID: "root", Name: "Root", Path: ""}
	child := root.Child("A", "Photos")
	a.Equal(" - Photos", child.Path)

	grandchild := child.Child("B", "2019")
	a.Equal(" - Photos - 2019", grandchild.Path)
	a.Equal("B", grandchild.ID)
	a.Equal("2019", grandchild.Name)
}

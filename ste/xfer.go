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
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/gonenradai/gdrive2kalturabulk/catalog"
	"github.com/gonenradai/gdrive2kalturabulk/common"
	"github.com/gonenradai/gdrive2kalturabulk/traverser"
)

// Fetcher downloads one remote file to a local path.
type Fetcher interface {
	Fetch(ctx context.Context, fileID string, destPath string) error
}

// EntryLocator answers whether a media entry with the given reference ID was
// already ingested and is in READY state.
type EntryLocator interface {
	FindReady(ctx context.Context, referenceID string) (bool, error)
}

type TransferConfig struct {
	RootFolderID      string
	RootFolderName    string
	DriveLabel        string
	RootCategory      string
	MetadataProfileID string
	EntryOwnerID      string
	PublicURLBase     string
	Parallelism       int

	// DoneDir holds fully downloaded files so an interrupted run can resume
	// without refetching; TmpDir holds in-flight downloads.
	DoneDir string
	TmpDir  string
}

// TransferEngine drains the crawler's output with a pool of workers, uploading
// each media item to durable storage and accumulating its catalog row.
// Per-item failures are logged and counted, never fatal.
type TransferEngine struct {
	Cfg         TransferConfig
	Fetcher     Fetcher
	Store       ObjectStore
	Locator     EntryLocator
	Cache       *DedupeCache
	Converter   Converter
	Accumulator *catalog.Accumulator
	Stats       *common.RunStats
	Logger      common.ILogger
}

func (te *TransferEngine) Run(ctx context.Context, results <-chan traverser.CrawlResult) error {
	group, ctx := errgroup.WithContext(ctx)
	for i := 0; i < te.Cfg.Parallelism; i++ {
		group.Go(func() error {
			for result := range results {
				task, err := result.Task()
				if err == nil {
					err = te.processOne(ctx, task)
				}
				if err != nil {
					te.Stats.TaskFailures.Add(1)
					te.Logger.Log(common.ELogLevel.Warning(), "task abandoned: "+err.Error())
				}
			}
			return nil
		})
	}
	return group.Wait()
}

// objectKey returns the durable storage key for the item. Files directly
// under the root land at rootID/fileID; deeper files at rootID/folderID/fileID.
func (te *TransferEngine) objectKey(task traverser.TransferTask) string {
	if task.Folder.ID == te.Cfg.RootFolderID {
		return te.Cfg.RootFolderID + "/" + task.Item.ID
	}
	return te.Cfg.RootFolderID + "/" + task.Folder.ID + "/" + task.Item.ID
}

func (te *TransferEngine) processOne(ctx context.Context, task traverser.TransferTask) error {
	item := task.Item

	if te.Cache.Contains(item.ID) {
		te.Stats.SkippedAsDuplicate.Add(1)
		te.Logger.Log(common.ELogLevel.Debug(),
			fmt.Sprintf("skipping %s (%s): already handled in a previous run", item.Name, item.ID))
		return nil
	}

	ready, err := te.Locator.FindReady(ctx, item.ID)
	if err != nil {
		return errors.Wrapf(err, "checking ingestion state of %s (%s)", item.Name, item.ID)
	}
	if ready {
		// Already ingested by a previous bulk upload; remember it so the
		// next run skips the lookup too.
		te.Stats.SkippedAsDuplicate.Add(1)
		if err := te.Cache.Add(item.ID); err != nil {
			te.Logger.Log(common.ELogLevel.Warning(),
				fmt.Sprintf("failed to record %s in the dedupe cache: %v", item.ID, err))
		}
		te.Logger.Log(common.ELogLevel.Info(),
			fmt.Sprintf("skipping %s (%s): a ready entry already references it", item.Name, item.ID))
		return nil
	}

	key := te.objectKey(task)

	key, converted, err := te.ensureUploaded(ctx, task, key)
	if err != nil {
		return err
	}

	te.Accumulator.Append(te.rowFor(task, key, converted))

	if err := te.Cache.Add(item.ID); err != nil {
		// The row is already accumulated, so the entry will be ingested;
		// the next run just pays the lookup again.
		te.Logger.Log(common.ELogLevel.Warning(),
			fmt.Sprintf("failed to record %s in the dedupe cache: %v", item.ID, err))
	}
	return nil
}

// ensureUploaded makes sure the object is present in durable storage, fetching
// and uploading only when an identical object isn't already there. It returns
// the final object key and whether the item was converted to PNG.
func (te *TransferEngine) ensureUploaded(ctx context.Context, task traverser.TransferTask, key string) (string, bool, error) {
	item := task.Item
	convert := needsConversion(item)

	if convert {
		// A converted upload lives under key+".png"; its size differs from
		// the source so presence is the only usable signal.
		_, found, err := te.Store.HeadSize(ctx, key+".png")
		if err != nil {
			return "", false, errors.Wrapf(err, "probing storage for %s.png", key)
		}
		if found {
			te.Logger.Log(common.ELogLevel.Info(),
				fmt.Sprintf("%s (%s) already converted and uploaded as %s.png", item.Name, item.ID, key))
			return key + ".png", true, nil
		}
	} else {
		size, found, err := te.Store.HeadSize(ctx, key)
		if err != nil {
			return "", false, errors.Wrapf(err, "probing storage for %s", key)
		}
		if found && size == item.SizeBytes {
			te.Logger.Log(common.ELogLevel.Info(),
				fmt.Sprintf("%s (%s) already uploaded as %s (%d bytes)", item.Name, item.ID, key, size))
			return key, false, nil
		}
	}

	localPath, alreadyConverted, err := te.fetchToStaging(ctx, item)
	if err != nil {
		return "", false, err
	}

	if convert && !alreadyConverted {
		localPath, err = te.Converter.ConvertToPNG(localPath)
		if err != nil {
			return "", false, errors.Wrapf(err, "converting %s (%s)", item.Name, item.ID)
		}
	}
	if convert {
		key += ".png"
	}

	contentType := common.Iff(convert, "image/png", item.MimeType)
	if err := te.Store.Put(ctx, localPath, key, contentType); err != nil {
		return "", false, errors.Wrapf(err, "uploading %s (%s) to %s", item.Name, item.ID, key)
	}
	te.Stats.TransfersDone.Add(1)
	te.Logger.Log(common.ELogLevel.Info(),
		fmt.Sprintf("uploaded %s (%s) to %s", item.Name, item.ID, key))

	if err := os.Remove(localPath); err != nil {
		te.Logger.Log(common.ELogLevel.Warning(),
			fmt.Sprintf("failed to remove staged file %s: %v", localPath, err))
	}
	return key, convert, nil
}

// fetchToStaging downloads the item into the done directory, reusing a staged
// copy from a previous interrupted run when its size still matches. Downloads
// land in the tmp directory first and are renamed only when complete.
func (te *TransferEngine) fetchToStaging(ctx context.Context, item traverser.DirectoryEntry) (string, bool, error) {
	donePath := filepath.Join(te.Cfg.DoneDir, item.ID)

	if _, err := os.Stat(donePath + ".png"); err == nil {
		return donePath + ".png", true, nil
	}
	if fi, err := os.Stat(donePath); err == nil && fi.Size() == item.SizeBytes {
		return donePath, false, nil
	}

	tmpPath := filepath.Join(te.Cfg.TmpDir, item.ID)
	if err := te.Fetcher.Fetch(ctx, item.ID, tmpPath); err != nil {
		os.Remove(tmpPath)
		return "", false, errors.Wrapf(err, "fetching %s (%s)", item.Name, item.ID)
	}
	if err := os.Rename(tmpPath, donePath); err != nil {
		return "", false, errors.Wrapf(err, "staging %s", item.ID)
	}
	return donePath, false, nil
}

func (te *TransferEngine) rowFor(task traverser.TransferTask, key string, converted bool) catalog.Row {
	item := task.Item

	title := item.Name
	if converted {
		title += ".png"
	}

	description := fmt.Sprintf("By %s in %s. \n%s", item.Owner.DisplayName, task.Folder.Name, item.Description)

	contentType, _ := common.ContentTypeFromMimeType(item.MimeType)

	return catalog.Row{
		Title:             title,
		Description:       description,
		Tags:              "",
		URL:               te.Cfg.PublicURLBase + "/" + key,
		ReferenceID:       item.ID,
		ContentType:       contentType.String(),
		Category:          te.categoryFor(task.Folder),
		MetadataProfileID: te.Cfg.MetadataProfileID,
		CreatorID:         item.Owner.Email,
		OwnerID:           te.Cfg.EntryOwnerID,
	}
}

// categoryFor renders the full category path for a folder, e.g.
// "Migrated>Staff Drive - Root - Photos" for the Photos folder under the root.
func (te *TransferEngine) categoryFor(folder traverser.FolderTask) string {
	category := te.Cfg.DriveLabel + " - " + te.Cfg.RootFolderName + folder.Path
	if te.Cfg.RootCategory != "" {
		category = te.Cfg.RootCategory + ">" + category
	}
	return category
}

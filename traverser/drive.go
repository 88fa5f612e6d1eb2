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
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// the fields requested for every child; capabilities drive the media/folder
// classification and shortcutDetails lets us resolve shortcut targets
const driveListFields = "nextPageToken, files(id, name, mimeType, owners, description, size, fileExtension, capabilities/canListChildren, capabilities/canDownload, shortcutDetails)"

const driveListPageSize = 1000

// DriveClient wraps the Drive v3 service as both the listing collaborator for
// the crawler and the content fetcher for the transfer engine.
type DriveClient struct {
	svc *drive.Service
}

// NewDriveClient builds a Drive client from a service-account key file. The
// account only needs read access: metadata for listing, content for fetching.
func NewDriveClient(ctx context.Context, credentialsFile string) (*DriveClient, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, errors.Wrapf(err, "reading service account credentials from %s", credentialsFile)
	}

	conf, err := google.JWTConfigFromJSON(data, drive.DriveMetadataReadonlyScope, drive.DriveReadonlyScope)
	if err != nil {
		return nil, errors.Wrap(err, "parsing service account credentials")
	}

	svc, err := drive.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx)))
	if err != nil {
		return nil, errors.Wrap(err, "creating Drive service")
	}

	return &DriveClient{svc: svc}, nil
}

func (d *DriveClient) ListChildren(ctx context.Context, folderID string, pageToken string) (ListPage, error) {
	call := d.svc.Files.List().
		Q(fmt.Sprintf("'%s' in parents", folderID)).
		Fields(googleapi.Field(driveListFields)).
		PageSize(driveListPageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	res, err := call.Do()
	if err != nil {
		return ListPage{}, errors.Wrapf(err, "listing children of folder %s", folderID)
	}

	page := ListPage{NextPageToken: res.NextPageToken}
	for _, f := range res.Files {
		page.Entries = append(page.Entries, fromDriveFile(f))
	}
	return page, nil
}

func fromDriveFile(f *drive.File) DirectoryEntry {
	entry := DirectoryEntry{
		ID:            f.Id,
		Name:          f.Name,
		MimeType:      f.MimeType,
		SizeBytes:     f.Size,
		Description:   f.Description,
		FileExtension: f.FileExtension,
	}
	if f.Capabilities != nil {
		entry.CanDownload = f.Capabilities.CanDownload
		entry.CanListChildren = f.Capabilities.CanListChildren
	}
	if len(f.Owners) > 0 {
		entry.Owner = Owner{DisplayName: f.Owners[0].DisplayName, Email: f.Owners[0].EmailAddress}
	}
	if f.ShortcutDetails != nil {
		entry.ShortcutTargetID = f.ShortcutDetails.TargetId
	}
	return entry
}

// Fetch streams the file's content to destPath. The destination file is
// created (or truncated) first, so a partial download never survives as a
// complete-looking file at a final location; callers stage into a temp dir
// and rename on success.
func (d *DriveClient) Fetch(ctx context.Context, fileID string, destPath string) error {
	res, err := d.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return errors.Wrapf(err, "downloading file %s", fileID)
	}
	defer res.Body.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return errors.Wrapf(err, "creating staging file %s", destPath)
	}

	_, copyErr := io.Copy(f, res.Body)
	closeErr := f.Close()
	if copyErr != nil {
		return errors.Wrapf(copyErr, "writing staging file %s", destPath)
	}
	return errors.Wrapf(closeErr, "closing staging file %s", destPath)
}

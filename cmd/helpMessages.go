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

package cmd

// ===================================== ROOT COMMAND ===================================== //
const rootCmdShortDescription = "gdrive2kalturabulk migrates Google Drive media into Kaltura via bulk upload"

const rootCmdLongDescription = `gdrive2kalturabulk walks a Google Drive folder tree, uploads every media file
(images, videos, audio) to an S3 bucket, and produces a Kaltura bulk upload CSV
that it submits to the Kaltura API. Runs are idempotent: media that was already
uploaded or already ingested into Kaltura is detected and skipped, so an
interrupted migration can simply be run again.`

// ===================================== MIGRATE COMMAND ===================================== //
const migrateCmdShortDescription = "Migrate the media in a Drive folder tree into Kaltura"

const migrateCmdLongDescription = `Scans the given Google Drive folder and all folders reachable from it
(including via shortcuts), uploads every downloadable media file to the S3
bucket named by ` + "`GDK_BUCKET_NAME`" + `, and submits a bulk upload CSV to Kaltura.

Folder scanning and file transfers each run on their own worker pool; tune the
pool sizes with --scanners and --transferers. Drive access uses a service
account credentials file (--credentials-file).

Each entry's Kaltura category is derived from the folder path within the tree,
prefixed with the optional root-category argument. A cache file
(cache-<folder-id>) records every file that has been handed to Kaltura, so
re-running the same migration only processes new files.`

const migrateCmdExample = `Migrate a shared drive folder, placing entries under the "Archive" category:
  - gdrive2kalturabulk migrate 1AbCdEfGh "Staff Drive" 12345 s3cr3t Archive

Migrate with a metadata profile and bigger transfer pool:
  - gdrive2kalturabulk migrate 1AbCdEfGh "Staff Drive" 12345 s3cr3t Archive 678 --transferers=20
`

// ===================================== ENV COMMAND ===================================== //
const envCmdShortDescription = "Shows the environment variables that can configure gdrive2kalturabulk's behavior."

const envCmdLongDescription = `Shows the environment variables that can configure gdrive2kalturabulk's behavior.`

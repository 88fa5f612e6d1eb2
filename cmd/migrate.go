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

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gonenradai/gdrive2kalturabulk/catalog"
	"github.com/gonenradai/gdrive2kalturabulk/common"
	"github.com/gonenradai/gdrive2kalturabulk/ste"
	"github.com/gonenradai/gdrive2kalturabulk/traverser"
)

const defaultPoolSize = 10

// rootFolderName is how the top of the tree appears in category paths.
const rootFolderName = "Root"

func init() {
	raw := rawMigrateCmdArgs{}

	migrateCmd := &cobra.Command{
		Use:     "migrate [folder-id] [drive-name] [partner-id] [admin-secret] [root-category] [metadata-profile-id]",
		Short:   migrateCmdShortDescription,
		Long:    migrateCmdLongDescription,
		Example: migrateCmdExample,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 4 || len(args) > 6 {
				return errors.New("please pass folder-id, drive-name, partner-id and admin-secret, " +
					"optionally followed by root-category and metadata-profile-id")
			}
			raw.folderID = args[0]
			raw.driveName = args[1]
			raw.partnerID = args[2]
			raw.adminSecret = args[3]
			if len(args) > 4 {
				raw.rootCategory = args[4]
			}
			if len(args) > 5 {
				raw.metadataProfileID = args[5]
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			cooked, err := raw.cook()
			if err != nil {
				glcm.Error("failed to parse user input due to error: " + err.Error())
			}

			err = cooked.process()
			if err != nil {
				glcm.Error("failed to perform migration due to error: " + err.Error())
			}

			glcm.SurrenderControl()
		},
	}
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.PersistentFlags().IntVar(&raw.scanners, "scanners", 0,
		"Define how many Go routines scan Drive folders concurrently. Default is 10, or the GDK_SCANNERS environment variable.")
	migrateCmd.PersistentFlags().IntVar(&raw.transferers, "transferers", 0,
		"Define how many Go routines download and upload media concurrently. Default is 10, or the GDK_TRANSFERERS environment variable.")
	migrateCmd.PersistentFlags().StringVar(&raw.credentialsFile, "credentials-file", "credentials.json",
		"Path to the Google service account credentials JSON file.")
	migrateCmd.PersistentFlags().StringVar(&raw.cacheLocation, "cache-location", "",
		"Define the location of the imported-entries cache file. Default is the current directory, or the GDK_CACHE_LOCATION environment variable.")
	migrateCmd.PersistentFlags().StringVar(&raw.stagingLocation, "staging-location", "",
		"Define where downloaded files are staged before upload. Default is the current directory, or the GDK_STAGING_LOCATION environment variable.")
	migrateCmd.PersistentFlags().StringVar(&raw.outputLocation, "output-location", ".",
		"Define where the bulk upload CSV is written.")
}

type rawMigrateCmdArgs struct {
	// positional
	folderID          string
	driveName         string
	partnerID         string
	adminSecret       string
	rootCategory      string
	metadataProfileID string

	// flags
	scanners        int
	transferers     int
	credentialsFile string
	cacheLocation   string
	stagingLocation string
	outputLocation  string
}

func (raw rawMigrateCmdArgs) cook() (cookedMigrateCmdArgs, error) {
	cooked := cookedMigrateCmdArgs{
		folderID:          raw.folderID,
		driveName:         raw.driveName,
		adminSecret:       raw.adminSecret,
		rootCategory:      raw.rootCategory,
		metadataProfileID: raw.metadataProfileID,
		credentialsFile:   raw.credentialsFile,
		outputLocation:    raw.outputLocation,
	}

	if raw.folderID == "" {
		return cooked, errors.New("the folder-id must not be empty")
	}
	if raw.driveName == "" {
		return cooked, errors.New("the drive-name must not be empty")
	}

	partnerID, err := strconv.Atoi(raw.partnerID)
	if err != nil || partnerID <= 0 {
		return cooked, errors.Errorf("invalid partner-id %q, expecting a positive integer", raw.partnerID)
	}
	cooked.partnerID = partnerID

	cooked.scanners, err = resolvePoolSize(raw.scanners, common.EEnvironmentVariable.Scanners())
	if err != nil {
		return cooked, err
	}
	cooked.transferers, err = resolvePoolSize(raw.transferers, common.EEnvironmentVariable.Transferers())
	if err != nil {
		return cooked, err
	}

	cooked.cacheLocation = resolveLocation(raw.cacheLocation, common.EEnvironmentVariable.CacheLocation())
	cooked.stagingLocation = resolveLocation(raw.stagingLocation, common.EEnvironmentVariable.StagingLocation())

	cooked.bucketName = common.GetEnvironmentVariable(common.EEnvironmentVariable.BucketName())
	if cooked.bucketName == "" {
		return cooked, errors.Errorf("the destination bucket must be named with the %s environment variable",
			common.EEnvironmentVariable.BucketName().Name)
	}

	return cooked, nil
}

// resolvePoolSize picks the worker pool size: explicit flag first, then the
// environment variable, then the default.
func resolvePoolSize(flagValue int, env common.EnvironmentVariable) (int, error) {
	if flagValue != 0 {
		if flagValue < 0 {
			return 0, errors.Errorf("pool sizes must be positive, got %d", flagValue)
		}
		return flagValue, nil
	}
	if raw := common.GetEnvironmentVariable(env); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return 0, errors.Errorf("invalid value %q for %s, expecting a positive integer", raw, env.Name)
		}
		return parsed, nil
	}
	return defaultPoolSize, nil
}

func resolveLocation(flagValue string, env common.EnvironmentVariable) string {
	if flagValue != "" {
		return flagValue
	}
	if fromEnv := common.GetEnvironmentVariable(env); fromEnv != "" {
		return fromEnv
	}
	return "."
}

type cookedMigrateCmdArgs struct {
	folderID          string
	driveName         string
	partnerID         int
	adminSecret       string
	rootCategory      string
	metadataProfileID string

	scanners        int
	transferers     int
	credentialsFile string
	cacheLocation   string
	stagingLocation string
	outputLocation  string
	bucketName      string
}

func (cooked cookedMigrateCmdArgs) process() error {
	runID := common.NewRunID()
	ctx := context.Background()

	logLocation := resolveLocation("", common.EEnvironmentVariable.LogLocation())
	logger := common.NewRunLogger(runID, logLevel, logLocation)
	logger.OpenLog()
	glcm.RegisterCloseFunc(logger.CloseLog)

	drive, err := traverser.NewDriveClient(ctx, cooked.credentialsFile)
	if err != nil {
		return errors.Wrap(err, "connecting to Google Drive")
	}

	endpoint := common.GetEnvironmentVariable(common.EEnvironmentVariable.S3Endpoint())
	store, err := ste.NewS3Store(ste.S3StoreConfig{
		Bucket:    cooked.bucketName,
		Endpoint:  endpoint,
		Region:    common.GetEnvironmentVariable(common.EEnvironmentVariable.S3Region()),
		AccessKey: common.GetEnvironmentVariable(common.EEnvironmentVariable.S3AccessKey()),
		SecretKey: common.GetEnvironmentVariable(common.EEnvironmentVariable.S3SecretKey()),
	})
	if err != nil {
		return errors.Wrap(err, "connecting to the destination bucket")
	}

	publicURLBase := common.GetEnvironmentVariable(common.EEnvironmentVariable.PublicURLBase())
	if publicURLBase == "" {
		publicURLBase = fmt.Sprintf("https://%s.%s", cooked.bucketName, endpoint)
	}

	kaltura := catalog.NewKalturaClient(
		common.GetEnvironmentVariable(common.EEnvironmentVariable.KalturaServiceURL()),
		cooked.partnerID, cooked.adminSecret)

	cache, err := ste.OpenDedupeCache(filepath.Join(cooked.cacheLocation, "cache-"+cooked.folderID))
	if err != nil {
		return errors.Wrap(err, "opening the imported-entries cache")
	}
	glcm.RegisterCloseFunc(func() { _ = cache.Close() })

	doneDir := filepath.Join(cooked.stagingLocation, "done", cooked.folderID)
	tmpDir := filepath.Join(cooked.stagingLocation, "tmp", cooked.folderID)
	for _, dir := range []string{doneDir, tmpDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "creating staging directory %s", dir)
		}
	}

	stats := common.NewRunStats()
	accumulator := catalog.NewAccumulator()

	glcm.Init(func(format common.OutputFormat) string {
		if format == common.EOutputFormat.Json() {
			return common.GetJsonStringFromTemplate(migrateInitMsg{
				RunID:       runID.String(),
				LogLocation: logLocation,
			})
		}
		return fmt.Sprintf("Run %s has started\nLog file is located at: %s/%s.log",
			runID, logLocation, runID)
	})
	glcm.InitiateProgressReporting(&migrateProgressReporter{stats: stats})

	root := traverser.FolderTask{ID: cooked.folderID, Name: rootFolderName, Path: ""}
	results := traverser.Crawl(ctx, root, drive, cooked.scanners, stats)

	engine := &ste.TransferEngine{
		Cfg: ste.TransferConfig{
			RootFolderID:      cooked.folderID,
			RootFolderName:    rootFolderName,
			DriveLabel:        cooked.driveName,
			RootCategory:      cooked.rootCategory,
			MetadataProfileID: cooked.metadataProfileID,
			EntryOwnerID:      "Admins",
			PublicURLBase:     publicURLBase,
			Parallelism:       cooked.transferers,
			DoneDir:           doneDir,
			TmpDir:            tmpDir,
		},
		Fetcher:     drive,
		Store:       store,
		Locator:     kaltura,
		Cache:       cache,
		Converter:   ste.NewHeicConverter(),
		Accumulator: accumulator,
		Stats:       stats,
		Logger:      logger,
	}
	if err := engine.Run(ctx, results); err != nil {
		return errors.Wrap(err, "running the transfer engine")
	}

	rows := accumulator.Rows()
	if len(rows) == 0 {
		glcm.Exit(func(format common.OutputFormat) string {
			if format == common.EOutputFormat.Json() {
				return common.GetJsonStringFromTemplate(newMigrateSummary(stats, 0, 0))
			}
			return "Nothing to bulk upload"
		}, common.EExitCode.Success())
	}

	csvPath := filepath.Join(cooked.outputLocation, "kaltura_upload-"+cooked.folderID+".csv")
	if err := catalog.WriteArtifact(csvPath, rows); err != nil {
		return errors.Wrap(err, "writing the bulk upload CSV")
	}
	logger.Log(common.ELogLevel.Info(), fmt.Sprintf("wrote %d rows to %s", len(rows), csvPath))

	bulkUploadID, err := kaltura.SubmitBulk(ctx, csvPath)
	if err != nil {
		return errors.Wrap(err, "submitting the bulk upload to Kaltura")
	}

	glcm.Exit(func(format common.OutputFormat) string {
		if format == common.EOutputFormat.Json() {
			return common.GetJsonStringFromTemplate(newMigrateSummary(stats, len(rows), bulkUploadID))
		}
		return fmt.Sprintf(
			"\nBulk upload %d submitted with %d entries.\n"+
				"Folders scanned: %d (max %d concurrent)\n"+
				"Files discovered: %d\n"+
				"Files transferred: %d\n"+
				"Skipped as duplicate: %d\n"+
				"Failed: %d\n",
			bulkUploadID, len(rows),
			stats.FoldersScanned.Load(), stats.MaxConcurrentScans(),
			stats.FilesDiscovered.Load(),
			stats.TransfersDone.Load(),
			stats.SkippedAsDuplicate.Load(),
			stats.TaskFailures.Load())
	}, common.EExitCode.Success())

	return nil
}

type migrateInitMsg struct {
	RunID       string
	LogLocation string
}

type migrateSummary struct {
	FoldersScanned     int64
	MaxConcurrentScans int64
	FilesDiscovered    int64
	TransfersDone      int64
	SkippedAsDuplicate int64
	Failures           int64
	RowsSubmitted      int
	BulkUploadID       int64
}

func newMigrateSummary(stats *common.RunStats, rows int, bulkUploadID int64) migrateSummary {
	return migrateSummary{
		FoldersScanned:     stats.FoldersScanned.Load(),
		MaxConcurrentScans: stats.MaxConcurrentScans(),
		FilesDiscovered:    stats.FilesDiscovered.Load(),
		TransfersDone:      stats.TransfersDone.Load(),
		SkippedAsDuplicate: stats.SkippedAsDuplicate.Load(),
		Failures:           stats.TaskFailures.Load(),
		RowsSubmitted:      rows,
		BulkUploadID:       bulkUploadID,
	}
}

// migrateProgressReporter periodically prints the run's counters; the migrate
// command itself decides when the run is over, so this never exits.
type migrateProgressReporter struct {
	stats *common.RunStats
}

func (r *migrateProgressReporter) ReportProgressOrExit(mgr common.LifecycleMgr) {
	mgr.Progress(func(format common.OutputFormat) string {
		if format == common.EOutputFormat.Json() {
			return common.GetJsonStringFromTemplate(newMigrateSummary(r.stats, 0, 0))
		}
		return fmt.Sprintf("Scanned: %d folders; Discovered: %d; Transferred: %d; Skipped: %d; Failed: %d",
			r.stats.FoldersScanned.Load(),
			r.stats.FilesDiscovered.Load(),
			r.stats.TransfersDone.Load(),
			r.stats.SkippedAsDuplicate.Load(),
			r.stats.TaskFailures.Load())
	})
}

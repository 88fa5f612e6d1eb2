package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gonenradai/gdrive2kalturabulk/common"
)

func validRawArgs() rawMigrateCmdArgs {
	return rawMigrateCmdArgs{
		folderID:        "1AbCdEfGh",
		driveName:       "Staff Drive",
		partnerID:       "12345",
		adminSecret:     "s3cr3t",
		credentialsFile: "credentials.json",
		outputLocation:  ".",
	}
}

func TestCookValidArgs(t *testing.T) {
	a := assert.New(t)
	t.Setenv(common.EEnvironmentVariable.BucketName().Name, "media-bucket")

	cooked, err := validRawArgs().cook()
	a.NoError(err)
	a.Equal("1AbCdEfGh", cooked.folderID)
	a.Equal(12345, cooked.partnerID)
	a.Equal("media-bucket", cooked.bucketName)
	a.Equal(defaultPoolSize, cooked.scanners)
	a.Equal(defaultPoolSize, cooked.transferers)
	a.Equal(".", cooked.cacheLocation)
	a.Equal(".", cooked.stagingLocation)
}

func TestCookRequiresBucketName(t *testing.T) {
	a := assert.New(t)
	t.Setenv(common.EEnvironmentVariable.BucketName().Name, "")

	_, err := validRawArgs().cook()
	a.Error(err)
	a.Contains(err.Error(), common.EEnvironmentVariable.BucketName().Name)
}

func TestCookRejectsBadPartnerID(t *testing.T) {
	a := assert.New(t)
	t.Setenv(common.EEnvironmentVariable.BucketName().Name, "media-bucket")

	for _, bad := range []string{"", "abc", "-3", "0"} {
		raw := validRawArgs()
		raw.partnerID = bad
		_, err := raw.cook()
		a.Error(err, "partner-id %q", bad)
	}
}

func TestCookPoolSizePrecedence(t *testing.T) {
	a := assert.New(t)
	t.Setenv(common.EEnvironmentVariable.BucketName().Name, "media-bucket")
	t.Setenv(common.EEnvironmentVariable.Scanners().Name, "25")

	// environment variable beats the default
	cooked, err := validRawArgs().cook()
	a.NoError(err)
	a.Equal(25, cooked.scanners)

	// explicit flag beats the environment variable
	raw := validRawArgs()
	raw.scanners = 5
	cooked, err = raw.cook()
	a.NoError(err)
	a.Equal(5, cooked.scanners)
}

func TestCookRejectsBadPoolSizes(t *testing.T) {
	a := assert.New(t)
	t.Setenv(common.EEnvironmentVariable.BucketName().Name, "media-bucket")

	raw := validRawArgs()
	raw.transferers = -2
	_, err := raw.cook()
	a.Error(err)

	t.Setenv(common.EEnvironmentVariable.Transferers().Name, "lots")
	_, err = validRawArgs().cook()
	a.Error(err)
}

func TestCookLocationResolution(t *testing.T) {
	a := assert.New(t)
	t.Setenv(common.EEnvironmentVariable.BucketName().Name, "media-bucket")
	t.Setenv(common.EEnvironmentVariable.CacheLocation().Name, "/var/cache/gdk")

	cooked, err := validRawArgs().cook()
	a.NoError(err)
	a.Equal("/var/cache/gdk", cooked.cacheLocation)

	raw := validRawArgs()
	raw.cacheLocation = "/tmp/override"
	cooked, err = raw.cook()
	a.NoError(err)
	a.Equal("/tmp/override", cooked.cacheLocation)
}

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

package common

import "os"

// GetEnvironmentVariable returns the value of the environment variable,
// or its default if unset.
func GetEnvironmentVariable(env EnvironmentVariable) string {
	value := os.Getenv(env.Name)
	if value == "" {
		return env.DefaultValue
	}
	return value
}

type EnvironmentVariable struct {
	Name         string
	DefaultValue string
	Description  string
	Hidden       bool
}

// This array needs to be updated when a new public environment variable is added
var VisibleEnvironmentVariables = []EnvironmentVariable{
	EEnvironmentVariable.BucketName(),
	EEnvironmentVariable.S3Endpoint(),
	EEnvironmentVariable.S3Region(),
	EEnvironmentVariable.S3AccessKey(),
	EEnvironmentVariable.S3SecretKey(),
	EEnvironmentVariable.PublicURLBase(),
	EEnvironmentVariable.KalturaServiceURL(),
	EEnvironmentVariable.Scanners(),
	EEnvironmentVariable.Transferers(),
	EEnvironmentVariable.LogLocation(),
	EEnvironmentVariable.CacheLocation(),
	EEnvironmentVariable.StagingLocation(),
}

var EEnvironmentVariable = EnvironmentVariable{}

func (EnvironmentVariable) BucketName() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "GDK_BUCKET_NAME",
		Description: "The S3 bucket that transferred media is uploaded to. Required.",
	}
}

func (EnvironmentVariable) S3Endpoint() EnvironmentVariable {
	return EnvironmentVariable{
		Name:         "GDK_S3_ENDPOINT",
		DefaultValue: "s3.amazonaws.com",
		Description:  "Overrides the S3 endpoint, e.g. to target an S3-compatible store.",
	}
}

func (EnvironmentVariable) S3Region() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "GDK_S3_REGION",
		Description: "The region of the destination bucket.",
	}
}

func (EnvironmentVariable) S3AccessKey() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "GDK_S3_ACCESS_KEY",
		Description: "Access key for the destination bucket. When unset, ambient IAM credentials are used.",
	}
}

func (EnvironmentVariable) S3SecretKey() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "GDK_S3_SECRET_KEY",
		Description: "Secret key for the destination bucket.",
		Hidden:      true,
	}
}

func (EnvironmentVariable) PublicURLBase() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "GDK_PUBLIC_URL_BASE",
		Description: "Base URL under which uploaded objects are publicly reachable; object keys are appended to it in the bulk upload CSV. Defaults to https://<bucket>.<endpoint>.",
	}
}

func (EnvironmentVariable) KalturaServiceURL() EnvironmentVariable {
	return EnvironmentVariable{
		Name:         "GDK_KALTURA_SERVICE_URL",
		DefaultValue: "https://www.kaltura.com/",
		Description:  "The Kaltura API gateway used for entry lookups and the bulk upload submission.",
	}
}

func (EnvironmentVariable) Scanners() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "GDK_SCANNERS",
		Description: "Overrides how many Go routines scan Drive folders. Default is 10.",
	}
}

func (EnvironmentVariable) Transferers() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "GDK_TRANSFERERS",
		Description: "Overrides how many Go routines download and upload media files. Default is 10.",
	}
}

func (EnvironmentVariable) LogLocation() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "GDK_LOG_LOCATION",
		Description: "Overrides where the run log files are stored, to avoid filling up a disk.",
	}
}

func (EnvironmentVariable) CacheLocation() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "GDK_CACHE_LOCATION",
		Description: "Overrides where the imported-entries cache file is stored.",
	}
}

func (EnvironmentVariable) StagingLocation() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "GDK_STAGING_LOCATION",
		Description: "Overrides where downloaded files are staged before upload.",
	}
}

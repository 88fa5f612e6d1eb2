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

import (
	"reflect"
	"strings"

	"github.com/JeffreyRichter/enum/enum"
	"github.com/google/uuid"
)

// RunID uniquely identifies one invocation of the tool. It names the run's
// log file, and is echoed in the init output so that a run can be correlated
// with its log afterwards.
type RunID string

func NewRunID() RunID {
	return RunID(uuid.New().String())
}

func (r RunID) String() string {
	return string(r)
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

var ELogLevel = LogLevel(0)

type LogLevel uint8

func (LogLevel) None() LogLevel    { return LogLevel(0) }
func (LogLevel) Fatal() LogLevel   { return LogLevel(1) }
func (LogLevel) Error() LogLevel   { return LogLevel(2) }
func (LogLevel) Warning() LogLevel { return LogLevel(3) }
func (LogLevel) Info() LogLevel    { return LogLevel(4) }
func (LogLevel) Debug() LogLevel   { return LogLevel(5) }

func (ll *LogLevel) Parse(s string) error {
	val, err := enum.ParseInt(reflect.TypeOf(ll), s, true, true)
	if err == nil {
		*ll = val.(LogLevel)
	}
	return err
}

func (ll LogLevel) String() string {
	return enum.StringInt(ll, reflect.TypeOf(ll))
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

var EExitCode = ExitCode(0)

type ExitCode uint32

func (ExitCode) Success() ExitCode { return ExitCode(0) }
func (ExitCode) Error() ExitCode   { return ExitCode(1) }

// NoExit is used as a marker, to suppress the normal exit behavior
func (ExitCode) NoExit() ExitCode { return ExitCode(99) }

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

var EEntityType = EntityType(0)

// EntityType classifies one child returned by a folder listing.
type EntityType uint8

func (EntityType) Media() EntityType    { return EntityType(0) }
func (EntityType) Folder() EntityType   { return EntityType(1) }
func (EntityType) Shortcut() EntityType { return EntityType(2) }
func (EntityType) Other() EntityType    { return EntityType(3) }

func (e EntityType) String() string {
	return enum.StringInt(e, reflect.TypeOf(e))
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

var EContentType = ContentType(0)

// ContentType is the Kaltura-facing media kind, derived from the primary
// segment of a MIME type. Its String form is the exact value expected in the
// bulk upload CSV ("Image", "Video", "Audio").
type ContentType uint8

func (ContentType) Image() ContentType { return ContentType(0) }
func (ContentType) Video() ContentType { return ContentType(1) }
func (ContentType) Audio() ContentType { return ContentType(2) }

func (c ContentType) String() string {
	return enum.StringInt(c, reflect.TypeOf(c))
}

// ContentTypeFromMimeType maps a MIME type to its Kaltura content type.
// Returns false for anything that is not an image/video/audio type.
func ContentTypeFromMimeType(mimeType string) (ContentType, bool) {
	switch strings.SplitN(mimeType, "/", 2)[0] {
	case "image":
		return EContentType.Image(), true
	case "video":
		return EContentType.Video(), true
	case "audio":
		return EContentType.Audio(), true
	default:
		return ContentType(0), false
	}
}

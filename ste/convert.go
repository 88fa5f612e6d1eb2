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
	"image/png"
	"os"
	"strings"

	"github.com/jdeng/goheif"
	"github.com/pkg/errors"

	"github.com/gonenradai/gdrive2kalturabulk/traverser"
)

// Converter normalizes formats that Kaltura cannot ingest. ConvertToPNG
// replaces the file at srcPath with a PNG rendition at srcPath+".png" and
// returns the new path; the original file is removed on success.
type Converter interface {
	ConvertToPNG(srcPath string) (string, error)
}

type heicConverter struct{}

func NewHeicConverter() Converter {
	return heicConverter{}
}

func (heicConverter) ConvertToPNG(srcPath string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", errors.Wrapf(err, "opening %s for conversion", srcPath)
	}

	img, err := goheif.Decode(src)
	src.Close()
	if err != nil {
		return "", errors.Wrapf(err, "decoding HEIC image %s", srcPath)
	}

	dstPath := srcPath + ".png"
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", errors.Wrapf(err, "creating %s", dstPath)
	}

	encodeErr := png.Encode(dst, img)
	closeErr := dst.Close()
	if encodeErr != nil {
		os.Remove(dstPath)
		return "", errors.Wrapf(encodeErr, "encoding %s", dstPath)
	}
	if closeErr != nil {
		os.Remove(dstPath)
		return "", errors.Wrapf(closeErr, "closing %s", dstPath)
	}

	os.Remove(srcPath)
	return dstPath, nil
}

// needsConversion reports whether the item is a HEIC/HEIF image, the one
// format Kaltura does not accept and that the engine pre-converts to PNG.
func needsConversion(item traverser.DirectoryEntry) bool {
	switch strings.ToLower(item.FileExtension) {
	case "heic", "heif":
		return true
	}
	switch item.MimeType {
	case "image/heic", "image/heif":
		return true
	}
	return hasHeicExt(item.Name)
}

func hasHeicExt(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".heic") || strings.HasSuffix(lower, ".heif")
}

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

package catalog

import (
	"os"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

// utf8BOM makes Excel and Kaltura's bulk parser treat the file as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Marshal renders the rows as a BOM-prefixed CSV document with a header line.
func Marshal(rows []Row) ([]byte, error) {
	body, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling bulk upload rows")
	}
	return append(append([]byte{}, utf8BOM...), body...), nil
}

// WriteArtifact writes the catalog to path, overwriting any previous run's file.
func WriteArtifact(path string, rows []Row) error {
	data, err := Marshal(rows)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing bulk upload file %s", path)
	}
	return nil
}

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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	kalturaSessionTypeAdmin = 2
	kalturaStatusReady      = 2
	kalturaSessionExpiry    = 6 * time.Hour
)

// KalturaClient is a thin JSON client over the bits of the Kaltura API V3
// this tool needs: session.start, baseEntry.list and media.bulkUploadAdd.
type KalturaClient struct {
	serviceURL  string
	partnerID   int
	adminSecret string
	httpClient  *http.Client

	mu sync.Mutex
	ks string
}

func NewKalturaClient(serviceURL string, partnerID int, adminSecret string) *KalturaClient {
	return &KalturaClient{
		serviceURL:  strings.TrimSuffix(serviceURL, "/"),
		partnerID:   partnerID,
		adminSecret: adminSecret,
		httpClient:  &http.Client{Timeout: 2 * time.Minute},
	}
}

func (k *KalturaClient) endpoint(service, action string) string {
	return fmt.Sprintf("%s/api_v3/service/%s/action/%s", k.serviceURL, service, action)
}

// apiError mirrors KalturaAPIException; the API returns it with HTTP 200, so
// every response body has to be probed for it.
type apiError struct {
	ObjectType string `json:"objectType"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e apiError) Error() string {
	return fmt.Sprintf("kaltura API error %s: %s", e.Code, e.Message)
}

func checkAPIError(body []byte) error {
	var probe apiError
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil // not a JSON object, so not an exception
	}
	if probe.ObjectType == "KalturaAPIException" {
		return probe
	}
	return nil
}

func (k *KalturaClient) call(ctx context.Context, service, action string, params url.Values) ([]byte, error) {
	params.Set("format", "1") // JSON responses

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		k.endpoint(service, action), strings.NewReader(params.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "building kaltura request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "calling kaltura %s.%s", service, action)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading kaltura %s.%s response", service, action)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("kaltura %s.%s returned HTTP %d: %s", service, action, resp.StatusCode, body)
	}
	if err := checkAPIError(body); err != nil {
		return nil, err
	}
	return body, nil
}

// session returns a cached admin KS, starting a new session on first use.
func (k *KalturaClient) session(ctx context.Context) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.ks != "" {
		return k.ks, nil
	}

	params := url.Values{}
	params.Set("secret", k.adminSecret)
	params.Set("partnerId", strconv.Itoa(k.partnerID))
	params.Set("type", strconv.Itoa(kalturaSessionTypeAdmin))
	params.Set("expiry", strconv.Itoa(int(kalturaSessionExpiry.Seconds())))

	body, err := k.call(ctx, "session", "start", params)
	if err != nil {
		return "", errors.Wrap(err, "starting kaltura session")
	}

	var ks string
	if err := json.Unmarshal(body, &ks); err != nil || ks == "" {
		return "", errors.Errorf("unexpected session.start response: %s", body)
	}
	k.ks = ks
	return ks, nil
}

type entryListResponse struct {
	TotalCount int `json:"totalCount"`
}

// FindReady reports whether a READY entry with the given reference ID already
// exists at the partner, which means a previous bulk upload ingested it.
func (k *KalturaClient) FindReady(ctx context.Context, referenceID string) (bool, error) {
	ks, err := k.session(ctx)
	if err != nil {
		return false, err
	}

	params := url.Values{}
	params.Set("ks", ks)
	params.Set("filter:objectType", "KalturaBaseEntryFilter")
	params.Set("filter:referenceIdEqual", referenceID)
	params.Set("filter:statusEqual", strconv.Itoa(kalturaStatusReady))
	params.Set("pager:pageSize", "1")

	body, err := k.call(ctx, "baseEntry", "list", params)
	if err != nil {
		return false, errors.Wrapf(err, "listing entries with reference ID %s", referenceID)
	}

	var resp entryListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, errors.Wrapf(err, "parsing baseEntry.list response: %s", body)
	}
	return resp.TotalCount > 0, nil
}

type bulkUploadResponse struct {
	ID int64 `json:"id"`
}

// SubmitBulk uploads the CSV at csvPath via media.bulkUploadAdd and returns
// the bulk upload job ID Kaltura assigned.
func (k *KalturaClient) SubmitBulk(ctx context.Context, csvPath string) (int64, error) {
	ks, err := k.session(ctx)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return 0, errors.Wrapf(err, "opening bulk upload file %s", csvPath)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("ks", ks); err != nil {
		return 0, errors.Wrap(err, "writing multipart field")
	}
	if err := w.WriteField("format", "1"); err != nil {
		return 0, errors.Wrap(err, "writing multipart field")
	}
	part, err := w.CreateFormFile("fileData", filepath.Base(csvPath))
	if err != nil {
		return 0, errors.Wrap(err, "creating multipart file part")
	}
	if _, err := io.Copy(part, f); err != nil {
		return 0, errors.Wrapf(err, "copying %s into multipart body", csvPath)
	}
	if err := w.Close(); err != nil {
		return 0, errors.Wrap(err, "finalizing multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		k.endpoint("media", "bulkUploadAdd"), &buf)
	if err != nil {
		return 0, errors.Wrap(err, "building bulk upload request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "submitting bulk upload")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errors.Wrap(err, "reading bulk upload response")
	}
	if resp.StatusCode != http.StatusOK {
		return 0, errors.Errorf("media.bulkUploadAdd returned HTTP %d: %s", resp.StatusCode, body)
	}
	if err := checkAPIError(body); err != nil {
		return 0, err
	}

	var result bulkUploadResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, errors.Wrapf(err, "parsing bulk upload response: %s", body)
	}
	return result.ID, nil
}

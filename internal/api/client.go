// Package api uploads exported scene files to the lifeweave web viewer.
package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const uploadPath = "/api/v1/scenes/add"

// UploadMetadata describes the scene archive being uploaded.
type UploadMetadata struct {
	Tier       string
	Revision   uint64
	EventCount int
	AppVersion string
}

// Client handles communication with the lifeweave web viewer.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Healthcheck checks if the web viewer is reachable.
func (c *Client) Healthcheck() error {
	resp, err := c.httpClient.Get(c.baseURL + "/healthcheck")
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// Upload streams a scene archive to the viewer as a multipart form. The
// form is produced through a pipe so the file is never buffered whole.
func (c *Client) Upload(filePath string, meta UploadMetadata) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.writeForm(form, file, filepath.Base(filePath), meta)
		form.Close()
		pw.Close()
	}()

	req, err := http.NewRequest(http.MethodPost, c.baseURL+uploadPath, pr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if writeErr := <-errCh; writeErr != nil {
		return writeErr
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload returned status %d", resp.StatusCode)
	}
	return nil
}

// writeForm emits the metadata fields followed by the file part.
func (c *Client) writeForm(form *multipart.Writer, file io.Reader, name string, meta UploadMetadata) error {
	fields := []struct{ key, value string }{
		{"secret", c.apiKey},
		{"filename", name},
		{"tier", meta.Tier},
		{"revision", fmt.Sprintf("%d", meta.Revision)},
		{"eventCount", fmt.Sprintf("%d", meta.EventCount)},
		{"appVersion", meta.AppVersion},
	}
	for _, f := range fields {
		if err := form.WriteField(f.key, f.value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", f.key, err)
		}
	}

	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}
	return nil
}

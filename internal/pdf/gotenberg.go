// Package pdf wraps the Gotenberg HTML-to-PDF conversion service.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

// Client talks to a Gotenberg instance. The converter is a black box:
// one self-contained HTML document in, one PDF byte stream out.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a converter client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Ping checks if the remote conversion service is available.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", c.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts a complete HTML document into PDF bytes.
func (c *Client) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	for field, value := range map[string]string{
		"paperWidth":   "8.27",
		"paperHeight":  "11.69",
		"marginTop":    "0.4",
		"marginBottom": "0.4",
		"marginLeft":   "0.4",
		"marginRight":  "0.4",
	} {
		if err := writer.WriteField(field, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/forms/chromium/convert/html", c.baseURL), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conversion engine error: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("conversion engine error: status %d: %s", resp.StatusCode, string(detail))
	}
	return io.ReadAll(resp.Body)
}

// ConvertToFile renders the document and writes the PDF to outPath. An
// empty or missing output file is reported distinctly from an engine
// failure.
func (c *Client) ConvertToFile(ctx context.Context, html, outPath string) error {
	data, err := c.RenderHTML(ctx, html)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("pdf output file was not produced")
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write pdf output: %w", err)
	}
	if info, err := os.Stat(outPath); err != nil || info.Size() == 0 {
		return fmt.Errorf("pdf output file was not produced")
	}
	return nil
}

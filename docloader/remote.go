package docloader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Remote is a Loader that delegates conversion to a separate service.
//
// The wire contract: POST {base}/convert with a multipart body (file field
// "file", form field "export_type") returning {"units": [{content, metadata}]}.
type Remote struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// RemoteOption configures a Remote loader.
type RemoteOption func(*Remote)

// WithRemoteTimeout overrides the default 120s request timeout.
func WithRemoteTimeout(d time.Duration) RemoteOption {
	return func(r *Remote) { r.client.Timeout = d }
}

// WithRemoteLogger sets the logger.
func WithRemoteLogger(logger *slog.Logger) RemoteOption {
	return func(r *Remote) { r.logger = logger }
}

// NewRemote creates a Remote loader targeting the given base URL.
func NewRemote(baseURL string, opts ...RemoteOption) *Remote {
	r := &Remote{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type remoteResponse struct {
	Units []Unit `json:"units"`
	Error string `json:"error,omitempty"`
}

// Load uploads the file to the conversion service and returns its units.
func (r *Remote) Load(ctx context.Context, path string, mode ExportMode) ([]Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := mw.WriteField("export_type", string(mode)); err != nil {
		return nil, fmt.Errorf("write export_type: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/convert", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conversion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("conversion service status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	var parsed remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("conversion service: %s", parsed.Error)
	}

	r.logger.Debug("remote conversion done",
		"path", path, "units", len(parsed.Units), "duration", time.Since(start))

	return parsed.Units, nil
}

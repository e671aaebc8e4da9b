// Package service exposes document processing over HTTP and MCP.
package service

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/docproc/processor"
)

const (
	// Name identifies the service in health responses.
	Name = "docproc"
	// Version is reported by /health.
	Version = "1.0.0"
	// Integration names the conversion backend reported by /health.
	Integration = "docloader"
)

// UploadExtensions lists the extensions accepted by /process-document.
var UploadExtensions = []string{".pdf", ".docx", ".doc", ".pptx", ".html", ".txt"}

// ExportTypes lists the supported output shapes.
var ExportTypes = []string{"markdown", "chunks"}

// Service wires the shared Processor to the HTTP surface. It holds no
// per-request state; one instance serves all requests.
type Service struct {
	proc   *processor.Processor
	logger *slog.Logger
	tmpDir string
}

// Option configures a Service.
type Option func(*Service)

// WithTempDir overrides the upload spool directory (default: os.TempDir).
func WithTempDir(dir string) Option {
	return func(s *Service) { s.tmpDir = dir }
}

// New creates a Service around the given processor.
func New(proc *processor.Processor, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		proc:   proc,
		logger: logger,
		tmpDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterHTTP mounts all endpoints on the router.
func (s *Service) RegisterHTTP(r chi.Router) {
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/supported-formats", s.handleFormats)
	r.Post("/process-document", s.handleProcessDocument)
	r.Post("/process-document-path", s.handleProcessPath)
}

func (s *Service) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, 200, map[string]string{
		"message": "docproc document processing service is running",
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, 200, map[string]string{
		"status":      "healthy",
		"service":     Name,
		"version":     Version,
		"integration": Integration,
	})
}

func (s *Service) handleFormats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, 200, map[string]any{
		"supported_formats": UploadExtensions,
		"export_types":      ExportTypes,
		"description":       "document conversion to markdown or RAG chunks",
	})
}

// handleProcessDocument accepts a multipart upload, spools it to a unique
// temp file, processes it, and removes the temp file in all outcomes.
// Processor-level failures come back as HTTP 200 with success=false.
func (s *Service) handleProcessDocument(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, 400, "no file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, 400, "no file provided")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !supportedUpload(ext) {
		writeError(w, 400, "unsupported file format: "+ext+
			" (supported: "+strings.Join(UploadExtensions, ", ")+")")
		return
	}

	tmp, err := os.CreateTemp(s.tmpDir, "docproc-*"+ext)
	if err != nil {
		s.logger.Error("create temp file", "error", err)
		writeError(w, 500, "unable to spool upload")
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, err = io.Copy(tmp, file)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.logger.Error("spool upload", "path", tmpPath, "error", err)
		writeError(w, 500, "unable to spool upload")
		return
	}

	result := s.proc.Process(r.Context(), tmpPath, r.FormValue("export_type"))
	writeJSON(w, 200, result)
}

type processPathRequest struct {
	FilePath   string `json:"file_path"`
	ExportType string `json:"export_type"`
}

// handleProcessPath processes a document already on the local filesystem.
// Parameters come as a JSON body, with query parameters as fallback.
func (s *Service) handleProcessPath(w http.ResponseWriter, r *http.Request) {
	var req processPathRequest
	if r.Body != nil {
		// A missing or non-JSON body falls through to query parameters.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.FilePath == "" {
		req.FilePath = r.URL.Query().Get("file_path")
	}
	if req.ExportType == "" {
		req.ExportType = r.URL.Query().Get("export_type")
	}

	if req.FilePath == "" {
		writeError(w, 400, "file_path required")
		return
	}
	if _, err := os.Stat(req.FilePath); err != nil {
		writeError(w, 404, "file not found")
		return
	}

	result := s.proc.Process(r.Context(), req.FilePath, req.ExportType)
	writeJSON(w, 200, result)
}

func supportedUpload(ext string) bool {
	for _, e := range UploadExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

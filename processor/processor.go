// Package processor turns document files into normalized processing results:
// a markdown string or an ordered chunk sequence, plus merged metadata.
//
// Plain-text files are read and chunked locally; every other format is
// delegated to a docloader.Loader. Failures at this tier are folded into
// the Result (Success=false + Error), never returned as Go errors — the
// HTTP status stays 200 and callers inspect the body.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/docproc/docloader"
)

// Config configures a Processor.
type Config struct {
	// ChunkLimit is the character budget per plain-text chunk (default 500).
	ChunkLimit int `json:"chunk_limit" yaml:"chunk_limit"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.ChunkLimit <= 0 {
		c.ChunkLimit = DefaultChunkLimit
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Processor processes documents into Results. It is immutable after New and
// safe for concurrent use; one instance is shared across all requests.
type Processor struct {
	loader docloader.Loader
	cfg    Config
	logger *slog.Logger
}

// New creates a Processor delegating non-text formats to the given loader.
func New(loader docloader.Loader, cfg Config) *Processor {
	cfg.defaults()
	return &Processor{
		loader: loader,
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// normalizeExport maps the requested export type onto a mode. Anything that
// is not "chunks" (case-insensitive) means markdown.
func normalizeExport(exportType string) docloader.ExportMode {
	if strings.EqualFold(exportType, string(docloader.ModeChunks)) {
		return docloader.ModeChunks
	}
	return docloader.ModeMarkdown
}

// Process converts the file at path into a Result shaped by exportType.
// It never returns an error: any failure (missing file, loader error, zero
// units) becomes a Result with Success=false and the error string set.
func (p *Processor) Process(ctx context.Context, path, exportType string) *Result {
	mode := normalizeExport(exportType)
	log := p.logger.With("path", path, "export_type", string(mode))
	log.Debug("processing document")

	info, err := os.Stat(path)
	if err != nil {
		log.Warn("processing failed", "error", err)
		return failure(fmt.Errorf("file not found: %s", path))
	}

	var res *Result
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		res = p.processText(path, mode, info.Size())
	} else {
		res = p.processLoader(ctx, path, mode)
	}

	if !res.Success {
		log.Warn("processing failed", "error", res.Error)
	} else {
		log.Debug("processing done",
			"length", utf8.RuneCountInString(res.MarkdownContent), "chunks", len(res.Chunks))
	}
	return res
}

// processText reads a plain-text file directly, optionally chunking it.
func (p *Processor) processText(path string, mode docloader.ExportMode, fileSize int64) *Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return failure(fmt.Errorf("read %s: %w", path, err))
	}
	content := string(data)

	meta := map[string]any{
		"processing_method": "text",
		"export_type":       string(mode),
		"file_type":         "txt",
		"total_length":      utf8.RuneCountInString(content),
		"file_size":         fileSize,
	}

	res := &Result{
		Success:         true,
		MarkdownContent: content,
		Metadata:        meta,
	}

	if mode == docloader.ModeChunks {
		chunks := chunkLines(content, path, p.cfg.ChunkLimit)
		if chunks == nil {
			// Keep the chunks key in the JSON even when nothing survived trimming.
			chunks = []Chunk{}
		}
		res.Chunks = chunks
		meta["total_chunks"] = len(chunks)
	}
	return res
}

// processLoader delegates to the configured loader and shapes its units.
func (p *Processor) processLoader(ctx context.Context, path string, mode docloader.ExportMode) *Result {
	units, err := p.loader.Load(ctx, path, mode)
	if err != nil {
		return failure(err)
	}
	if len(units) == 0 {
		return failure(errors.New("no documents were processed"))
	}

	if mode == docloader.ModeChunks {
		return shapeChunks(units)
	}
	return shapeMarkdown(units)
}

// shapeMarkdown joins all units into one markdown blob. The first unit's
// metadata is the base; processing fields overwrite it.
func shapeMarkdown(units []docloader.Unit) *Result {
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = u.Content
	}
	content := strings.Join(parts, "\n\n")

	meta := map[string]any{}
	for k, v := range units[0].Metadata {
		meta[k] = v
	}
	meta["processing_method"] = "docloader"
	meta["export_type"] = string(docloader.ModeMarkdown)
	meta["total_documents"] = len(units)
	meta["total_length"] = utf8.RuneCountInString(content)

	return &Result{
		Success:         true,
		MarkdownContent: content,
		Metadata:        meta,
	}
}

// shapeChunks wraps each unit as a chunk in emission order. Combined
// metadata carries the processing fields, then the first chunk's own
// metadata is overlaid on top.
func shapeChunks(units []docloader.Unit) *Result {
	chunks := make([]Chunk, len(units))
	var total strings.Builder
	for i, u := range units {
		meta := u.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		chunks[i] = Chunk{
			ChunkID:  i,
			Content:  u.Content,
			Metadata: meta,
		}
		total.WriteString(u.Content)
		total.WriteString("\n\n")
	}

	combined := map[string]any{
		"processing_method": "docloader",
		"export_type":       string(docloader.ModeChunks),
		"total_chunks":      len(chunks),
		"total_length":      utf8.RuneCountInString(total.String()),
	}
	for k, v := range chunks[0].Metadata {
		combined[k] = v
	}

	return &Result{
		Success:         true,
		MarkdownContent: strings.TrimSpace(total.String()),
		Metadata:        combined,
		Chunks:          chunks,
	}
}

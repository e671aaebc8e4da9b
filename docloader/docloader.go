// Package docloader converts document files into normalized text units.
//
// Supported formats:
//   - .docx  — Microsoft Word (archive/zip → word/document.xml)
//   - .pptx  — PowerPoint (archive/zip → ppt/slides/slideN.xml)
//   - .odt   — OpenDocument Text (archive/zip → content.xml)
//   - .pdf   — PDF text extraction (pdfcpu, cross-reference + stream decoding)
//   - .html  — HTML (sanitized, converted to markdown)
//   - .md    — Markdown (parsed with heading detection)
//   - .txt   — Plain text (passthrough with whitespace normalization)
//
// The Loader interface has two implementations: Pipeline extracts in-process,
// Remote delegates to a conversion service over HTTP.
//
// Usage:
//
//	pipe := docloader.New(docloader.Config{})
//	units, err := pipe.Load(ctx, "/path/to/file.docx", docloader.ModeMarkdown)
package docloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrFileTooLarge is returned when the file exceeds Config.MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")
)

// Pipeline is the in-process document conversion engine.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// Detect returns the document format based on file extension.
func (p *Pipeline) Detect(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".docx":
		return FormatDocx, nil
	case ".doc":
		return FormatDoc, nil
	case ".pptx":
		return FormatPptx, nil
	case ".odt":
		return FormatODT, nil
	case ".pdf":
		return FormatPDF, nil
	case ".md", ".markdown":
		return FormatMD, nil
	case ".txt", ".text":
		return FormatTXT, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// document is the intermediate result of extracting one file.
type document struct {
	Path     string
	Format   Format
	Title    string
	Sections []Section
	Quality  *ExtractionQuality
}

// extract parses a document into structured sections.
func (p *Pipeline) extract(ctx context.Context, path string) (*document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, info.Size(), p.cfg.MaxFileSize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, err := p.Detect(path)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("extracting document", "path", path, "format", format)

	var sections []Section
	var title string
	var pdfQuality *ExtractionQuality

	switch format {
	case FormatDocx:
		title, sections, err = extractDocx(path)
	case FormatDoc:
		err = fmt.Errorf("legacy .doc is not supported, convert to .docx first")
	case FormatPptx:
		title, sections, err = extractPptx(path)
	case FormatODT:
		title, sections, err = extractODT(path)
	case FormatPDF:
		title, sections, pdfQuality, err = extractPDF(path)
	case FormatMD:
		title, sections, err = extractMarkdown(path)
	case FormatTXT:
		title, sections, err = extractText(path)
	case FormatHTML:
		title, sections, err = extractHTMLFile(path)
	default:
		return nil, fmt.Errorf("no extractor for format: %s", format)
	}

	if err != nil {
		return nil, fmt.Errorf("extract %s (%s): %w", path, format, err)
	}

	return &document{
		Path:     path,
		Format:   format,
		Title:    title,
		Sections: sections,
		Quality:  pdfQuality,
	}, nil
}

// Load converts a file into text units shaped by the export mode.
//
// ModeMarkdown yields a single unit holding the markdown rendering of the
// whole document. ModeChunks yields one unit per section in document order,
// the first unit carrying the document-level metadata. A document with no
// extractable content yields zero units and a nil error.
func (p *Pipeline) Load(ctx context.Context, path string, mode ExportMode) ([]Unit, error) {
	doc, err := p.extract(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(doc.Sections) == 0 {
		return nil, nil
	}

	base := p.documentMetadata(doc)

	if mode == ModeChunks {
		return p.chunkUnits(doc, base), nil
	}

	var md string
	switch doc.Format {
	case FormatHTML:
		// Full-fidelity conversion keeps tables, links and emphasis that the
		// section walk flattens away.
		var convErr error
		md, convErr = convertHTMLMarkdown(path)
		if convErr != nil {
			p.logger.Warn("html markdown conversion failed, using section fallback",
				"path", path, "error", convErr)
		}
	case FormatMD:
		// The source already is markdown.
		if data, readErr := os.ReadFile(path); readErr == nil {
			md = strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
		}
	}
	if md == "" {
		md = renderMarkdown(doc.Sections)
	}
	if md == "" {
		return nil, nil
	}
	return []Unit{{Content: md, Metadata: base}}, nil
}

// documentMetadata builds the document-level metadata bag.
func (p *Pipeline) documentMetadata(doc *document) map[string]any {
	meta := map[string]any{
		"source":    doc.Path,
		"file_type": string(doc.Format),
		"sections":  len(doc.Sections),
	}
	if doc.Title != "" {
		meta["title"] = doc.Title
	}
	if doc.Quality != nil {
		meta["page_count"] = doc.Quality.PageCount
		meta["extraction_quality"] = doc.Quality
	}
	return meta
}

// chunkUnits wraps each section as a unit, tracking the enclosing heading.
func (p *Pipeline) chunkUnits(doc *document, base map[string]any) []Unit {
	var units []Unit
	var heading string

	for _, s := range doc.Sections {
		if s.Type == "heading" {
			heading = s.Title
		}

		text := sectionMarkdown(s)
		if text == "" {
			continue
		}

		meta := map[string]any{
			"source": doc.Path,
			"type":   s.Type,
		}
		if heading != "" {
			meta["heading"] = heading
		}
		for k, v := range s.Metadata {
			meta[k] = v
		}
		if len(units) == 0 {
			for k, v := range base {
				meta[k] = v
			}
		}
		units = append(units, Unit{Content: text, Metadata: meta})
	}
	return units
}

// SupportedFormats returns all extensions the pipeline can extract.
func SupportedFormats() []string {
	return []string{"docx", "pptx", "odt", "pdf", "md", "txt", "html"}
}

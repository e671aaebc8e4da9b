package docloader

import "context"

// Format identifies a document type.
type Format string

const (
	FormatDocx Format = "docx"
	FormatDoc  Format = "doc"
	FormatPptx Format = "pptx"
	FormatODT  Format = "odt"
	FormatPDF  Format = "pdf"
	FormatMD   Format = "md"
	FormatTXT  Format = "txt"
	FormatHTML Format = "html"
)

// ExportMode selects the output shape of a Load call.
type ExportMode string

const (
	// ModeMarkdown returns the whole document as a single markdown unit.
	ModeMarkdown ExportMode = "markdown"
	// ModeChunks returns one unit per structural section, in document order.
	ModeChunks ExportMode = "chunks"
)

// Unit is one text unit produced by a loader, with attached metadata.
type Unit struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Loader converts a document file into one or more text units.
//
// Implementations: Pipeline (in-process extraction) and Remote (conversion
// delegated to a separate service over HTTP).
type Loader interface {
	Load(ctx context.Context, path string, mode ExportMode) ([]Unit, error)
}

// Section is a structural unit of a document, produced by format extractors.
type Section struct {
	Title    string            `json:"title,omitempty"`
	Level    int               `json:"level"`              // heading level 1-6, 0 for body
	Text     string            `json:"text"`               // extracted text content
	Type     string            `json:"type"`               // heading, paragraph, table, list, page, slide
	Metadata map[string]string `json:"metadata,omitempty"` // extra attributes
}

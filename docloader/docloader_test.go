package docloader

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	pipe := New(Config{})

	tests := []struct {
		path   string
		format Format
	}{
		{"doc.docx", FormatDocx},
		{"doc.doc", FormatDoc},
		{"doc.pptx", FormatPptx},
		{"doc.odt", FormatODT},
		{"doc.pdf", FormatPDF},
		{"doc.md", FormatMD},
		{"doc.txt", FormatTXT},
		{"doc.html", FormatHTML},
		{"doc.htm", FormatHTML},
		{"doc.markdown", FormatMD},
	}

	for _, tt := range tests {
		f, err := pipe.Detect(tt.path)
		if err != nil {
			t.Errorf("Detect(%q): %v", tt.path, err)
			continue
		}
		if f != tt.format {
			t.Errorf("Detect(%q) = %q, want %q", tt.path, f, tt.format)
		}
	}

	// Unsupported format.
	if _, err := pipe.Detect("file.xyz"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestExtractText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	os.WriteFile(path, []byte("Hello  world\n\n  test  "), 0644)

	pipe := New(Config{})
	doc, err := pipe.extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatTXT {
		t.Fatalf("expected txt format, got %s", doc.Format)
	}
	if len(doc.Sections) != 1 || !strings.Contains(doc.Sections[0].Text, "Hello") {
		t.Fatalf("expected one section containing Hello, got %+v", doc.Sections)
	}
}

func TestExtractMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.md")
	content := `# My Title

This is a paragraph.

## Section Two

Another paragraph here.
`
	os.WriteFile(path, []byte(content), 0644)

	pipe := New(Config{})
	doc, err := pipe.extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "My Title" {
		t.Fatalf("expected title 'My Title', got %q", doc.Title)
	}
	if doc.Format != FormatMD {
		t.Fatalf("expected md format, got %s", doc.Format)
	}

	// Should have headings and paragraphs.
	headings := 0
	paragraphs := 0
	for _, s := range doc.Sections {
		switch s.Type {
		case "heading":
			headings++
		case "paragraph":
			paragraphs++
		}
	}
	if headings < 2 {
		t.Fatalf("expected at least 2 headings, got %d", headings)
	}
	if paragraphs < 2 {
		t.Fatalf("expected at least 2 paragraphs, got %d", paragraphs)
	}
}

func writeDocx(t *testing.T, path, docXML string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	fw, _ := w.Create("word/document.xml")
	fw.Write([]byte(docXML))
	w.Close()
	f.Close()
}

func TestExtractDocx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.docx")

	writeDocx(t, path, `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Test Title</w:t></w:r></w:p>
<w:p><w:r><w:t>This is body text.</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Section Two</w:t></w:r></w:p>
<w:p><w:r><w:t>More content here.</w:t></w:r></w:p>
</w:body>
</w:document>`)

	pipe := New(Config{})
	doc, err := pipe.extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if doc.Title != "Test Title" {
		t.Fatalf("expected title 'Test Title', got %q", doc.Title)
	}
	if len(doc.Sections) < 4 {
		t.Fatalf("expected at least 4 sections, got %d", len(doc.Sections))
	}
}

func TestExtractDoc_Legacy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.doc")
	os.WriteFile(path, []byte("not really a doc"), 0644)

	pipe := New(Config{})
	_, err := pipe.extract(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for legacy .doc")
	}
	if !strings.Contains(err.Error(), "convert to .docx") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractPptx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.pptx")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)

	slide := func(text string) string {
		return `<?xml version="1.0" encoding="UTF-8"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
  xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
<p:cSld><p:spTree><p:sp><p:txBody>
<a:p><a:r><a:t>` + text + `</a:t></a:r></a:p>
</p:txBody></p:sp></p:spTree></p:cSld>
</p:sld>`
	}
	// Written out of order to exercise numeric sorting.
	fw, _ := w.Create("ppt/slides/slide2.xml")
	fw.Write([]byte(slide("Second slide body")))
	fw, _ = w.Create("ppt/slides/slide1.xml")
	fw.Write([]byte(slide("Presentation Title")))
	w.Close()
	f.Close()

	pipe := New(Config{})
	doc, err := pipe.extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if doc.Title != "Presentation Title" {
		t.Fatalf("expected title from first slide, got %q", doc.Title)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(doc.Sections))
	}
	if doc.Sections[0].Metadata["slide"] != "1" || doc.Sections[1].Metadata["slide"] != "2" {
		t.Fatalf("expected slide order 1,2, got %+v", doc.Sections)
	}
	if doc.Sections[1].Text != "Second slide body" {
		t.Fatalf("unexpected slide 2 text: %q", doc.Sections[1].Text)
	}
}

func TestExtractPptx_NoSlides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.pptx")

	f, _ := os.Create(path)
	w := zip.NewWriter(f)
	fw, _ := w.Create("docProps/app.xml")
	fw.Write([]byte("<Properties/>"))
	w.Close()
	f.Close()

	_, _, err := extractPptx(path)
	if err == nil || !strings.Contains(err.Error(), "no slides") {
		t.Fatalf("expected 'no slides' error, got: %v", err)
	}
}

func TestExtractODT(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.odt")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)

	contentXML := `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
  xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">
<office:body>
<office:text>
<text:h text:outline-level="1">ODT Title</text:h>
<text:p>First paragraph.</text:p>
<text:h text:outline-level="2">Sub Heading</text:h>
<text:p>Second paragraph.</text:p>
</office:text>
</office:body>
</office:document-content>`

	fw, _ := w.Create("content.xml")
	fw.Write([]byte(contentXML))
	w.Close()
	f.Close()

	pipe := New(Config{})
	doc, err := pipe.extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if doc.Title != "ODT Title" {
		t.Fatalf("expected title 'ODT Title', got %q", doc.Title)
	}
	if len(doc.Sections) < 4 {
		t.Fatalf("expected at least 4 sections, got %d", len(doc.Sections))
	}
}

func TestExtractHTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.html")
	html := `<!DOCTYPE html>
<html><head><title>HTML Test</title></head>
<body>
<article>
<h1>Main Heading</h1>
<p>This is a substantial paragraph of text that should be extracted by the density
algorithm because it contains enough words to pass the minimum threshold for content.</p>
</article>
</body></html>`
	os.WriteFile(path, []byte(html), 0644)

	pipe := New(Config{})
	doc, err := pipe.extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if doc.Title != "HTML Test" {
		t.Fatalf("expected title 'HTML Test', got %q", doc.Title)
	}
	found := false
	for _, s := range doc.Sections {
		if strings.Contains(s.Text, "substantial paragraph") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sections to contain content, got %+v", doc.Sections)
	}
}

func TestFileTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	os.WriteFile(path, []byte("0123456789"), 0644)

	pipe := New(Config{MaxFileSize: 5})
	_, err := pipe.extract(context.Background(), path)
	if err == nil {
		t.Fatal("expected size error")
	}
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()
	if len(formats) != 7 {
		t.Fatalf("expected 7 formats, got %d: %v", len(formats), formats)
	}
}

// --- Load shaping tests ---

func TestLoad_MarkdownMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	content := "# Title\n\nBody paragraph one.\n\n## Sub\n\nBody two.\n"
	os.WriteFile(path, []byte(content), 0644)

	pipe := New(Config{})
	units, err := pipe.Load(context.Background(), path, ModeMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 unit in markdown mode, got %d", len(units))
	}
	// Markdown sources pass through verbatim.
	if units[0].Content != strings.TrimSpace(content) {
		t.Fatalf("markdown content changed:\n%q", units[0].Content)
	}
	if units[0].Metadata["source"] != path {
		t.Fatalf("expected source metadata, got %+v", units[0].Metadata)
	}
	if units[0].Metadata["file_type"] != "md" {
		t.Fatalf("expected file_type md, got %+v", units[0].Metadata)
	}
	if units[0].Metadata["title"] != "Title" {
		t.Fatalf("expected title metadata, got %+v", units[0].Metadata)
	}
}

func TestLoad_ChunksMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	os.WriteFile(path, []byte("# Intro\n\nFirst body.\n\nSecond body.\n"), 0644)

	pipe := New(Config{})
	units, err := pipe.Load(context.Background(), path, ModeChunks)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 3 {
		t.Fatalf("expected 3 units (heading + 2 paragraphs), got %d", len(units))
	}

	// First unit carries document-level metadata.
	if units[0].Metadata["file_type"] != "md" {
		t.Fatalf("first unit should carry document metadata, got %+v", units[0].Metadata)
	}
	if _, ok := units[1].Metadata["file_type"]; ok {
		t.Fatalf("later units should not carry document metadata, got %+v", units[1].Metadata)
	}

	// All units track the enclosing heading.
	for i, u := range units {
		if u.Metadata["heading"] != "Intro" {
			t.Fatalf("unit %d missing heading metadata: %+v", i, u.Metadata)
		}
		if u.Metadata["source"] != path {
			t.Fatalf("unit %d missing source: %+v", i, u.Metadata)
		}
	}
	if units[0].Content != "# Intro" {
		t.Fatalf("heading unit should render as markdown heading, got %q", units[0].Content)
	}
}

func TestLoad_EmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	os.WriteFile(path, []byte("   \n\n  "), 0644)

	pipe := New(Config{})
	units, err := pipe.Load(context.Background(), path, ModeMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 0 {
		t.Fatalf("expected no units for blank document, got %d", len(units))
	}
}

// --- HTML hidden text filtering tests ---

func TestHTML_HiddenDisplayNone(t *testing.T) {
	// WHAT: Elements with display:none are excluded.
	// WHY: Hidden text injection vector (SEO spam, prompt injection).
	dir := t.TempDir()
	path := filepath.Join(dir, "hidden.html")
	html := `<!DOCTYPE html><html><body>
<p>Visible text here</p>
<div style="display:none">secret hidden text</div>
</body></html>`
	os.WriteFile(path, []byte(html), 0644)

	_, sections, err := extractHTMLFile(path)
	if err != nil {
		t.Fatal(err)
	}
	all := sectionsText(sections)
	if strings.Contains(all, "secret hidden text") {
		t.Error("display:none text should be excluded")
	}
	if !strings.Contains(all, "Visible text") {
		t.Error("visible text should be present")
	}
}

func TestHTML_HiddenVisibility(t *testing.T) {
	// WHAT: Elements with visibility:hidden are excluded.
	// WHY: Another CSS technique for hiding injected text.
	dir := t.TempDir()
	path := filepath.Join(dir, "vis.html")
	html := `<!DOCTYPE html><html><body>
<p>Normal text</p>
<span style="visibility:hidden">hidden payload</span>
</body></html>`
	os.WriteFile(path, []byte(html), 0644)

	_, sections, err := extractHTMLFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(sectionsText(sections), "hidden payload") {
		t.Error("visibility:hidden text should be excluded")
	}
}

func TestHTML_HiddenFontSize0(t *testing.T) {
	// WHAT: Elements with font-size:0 are excluded.
	// WHY: Zero-size text is invisible to humans but extractable.
	dir := t.TempDir()
	path := filepath.Join(dir, "fs0.html")
	html := `<!DOCTYPE html><html><body>
<p>Readable text</p>
<span style="font-size:0px">tiny invisible</span>
</body></html>`
	os.WriteFile(path, []byte(html), 0644)

	_, sections, err := extractHTMLFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(sectionsText(sections), "tiny invisible") {
		t.Error("font-size:0 text should be excluded")
	}
}

func TestHTML_HiddenOpacity0(t *testing.T) {
	// WHAT: Elements with opacity:0 are excluded.
	// WHY: Transparent text is another injection vector.
	dir := t.TempDir()
	path := filepath.Join(dir, "op0.html")
	html := `<!DOCTYPE html><html><body>
<p>Real content</p>
<span style="opacity:0">ghost text</span>
</body></html>`
	os.WriteFile(path, []byte(html), 0644)

	_, sections, err := extractHTMLFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(sectionsText(sections), "ghost text") {
		t.Error("opacity:0 text should be excluded")
	}
}

func TestHTML_VisibleTextKept(t *testing.T) {
	// WHAT: Visible text is preserved after hidden filtering.
	// WHY: The filter must not over-strip.
	dir := t.TempDir()
	path := filepath.Join(dir, "keep.html")
	html := `<!DOCTYPE html><html><body>
<h1>Title</h1>
<p style="color:red">Styled but visible</p>
<p>Normal paragraph</p>
</body></html>`
	os.WriteFile(path, []byte(html), 0644)

	_, sections, err := extractHTMLFile(path)
	if err != nil {
		t.Fatal(err)
	}
	all := sectionsText(sections)
	if !strings.Contains(all, "Styled but visible") {
		t.Error("visible styled text should be kept")
	}
	if !strings.Contains(all, "Normal paragraph") {
		t.Error("normal text should be kept")
	}
}

func sectionsText(sections []Section) string {
	var sb strings.Builder
	for _, s := range sections {
		sb.WriteString(s.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- XML bomb tests ---

func TestDOCX_XMLBomb(t *testing.T) {
	// WHAT: DOCX with deeply nested XML returns depth error.
	// WHY: XML bomb / billion laughs defense.
	dir := t.TempDir()
	path := filepath.Join(dir, "bomb.docx")

	var xmlB strings.Builder
	xmlB.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	xmlB.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for i := 0; i < 300; i++ {
		xmlB.WriteString("<w:p>")
	}
	xmlB.WriteString("<w:r><w:t>deep</w:t></w:r>")
	for i := 0; i < 300; i++ {
		xmlB.WriteString("</w:p>")
	}
	xmlB.WriteString("</w:body></w:document>")
	writeDocx(t, path, xmlB.String())

	_, _, err := extractDocx(path)
	if err == nil {
		t.Fatal("expected error for deeply nested XML")
	}
	if !strings.Contains(err.Error(), "nesting depth") {
		t.Errorf("expected 'nesting depth' error, got: %v", err)
	}
}

func TestODT_XMLBomb(t *testing.T) {
	// WHAT: ODT with deeply nested XML returns depth error.
	// WHY: XML bomb defense for ODT format.
	dir := t.TempDir()
	path := filepath.Join(dir, "bomb.odt")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)

	var xmlB strings.Builder
	xmlB.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	xmlB.WriteString(`<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">`)
	xmlB.WriteString(`<office:body><office:text>`)
	for i := 0; i < 300; i++ {
		xmlB.WriteString("<text:p>")
	}
	xmlB.WriteString("deep text")
	for i := 0; i < 300; i++ {
		xmlB.WriteString("</text:p>")
	}
	xmlB.WriteString("</office:text></office:body></office:document-content>")

	fw, _ := w.Create("content.xml")
	fw.Write([]byte(xmlB.String()))
	w.Close()
	f.Close()

	_, _, err = extractODT(path)
	if err == nil {
		t.Fatal("expected error for deeply nested XML")
	}
	if !strings.Contains(err.Error(), "nesting depth") {
		t.Errorf("expected 'nesting depth' error, got: %v", err)
	}
}

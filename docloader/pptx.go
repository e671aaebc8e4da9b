package docloader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slideNameRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPptx parses a .pptx file by reading ppt/slides/slideN.xml from the
// ZIP archive. Each slide becomes one section with a slide-number attribute.
func extractPptx(path string) (string, []Section, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	type slideFile struct {
		num  int
		file *zip.File
	}
	var slides []slideFile
	for _, f := range r.File {
		m := slideNameRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slideFile{num: n, file: f})
	}
	if len(slides) == 0 {
		return "", nil, fmt.Errorf("no slides found in archive")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var sections []Section
	var title string

	for _, s := range slides {
		text, err := extractSlideText(s.file)
		if err != nil {
			return "", nil, fmt.Errorf("slide %d: %w", s.num, err)
		}
		if text == "" {
			continue
		}
		if title == "" {
			title = firstLine(text)
		}
		sections = append(sections, Section{
			Text: text,
			Type: "slide",
			Metadata: map[string]string{
				"slide": strconv.Itoa(s.num),
			},
		})
	}

	return title, sections, nil
}

// extractSlideText collects <a:t> text runs from a slide XML, one line per
// paragraph (<a:p>).
func extractSlideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var sb strings.Builder
	var inRun bool
	var depth int

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxXMLDepth {
				return "", fmt.Errorf("slide exceeds max nesting depth %d", maxXMLDepth)
			}
			if t.Name.Local == "t" {
				inRun = true
			}

		case xml.CharData:
			if inRun {
				sb.Write(t)
			}

		case xml.EndElement:
			depth--
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
			}
		}
	}

	return strings.TrimSpace(sb.String()), nil
}

package docloader

import "strings"

// renderMarkdown flattens sections into a single markdown document.
func renderMarkdown(sections []Section) string {
	var sb strings.Builder
	for _, s := range sections {
		text := sectionMarkdown(s)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// sectionMarkdown renders one section as markdown. Headings get ATX markers,
// everything else passes through trimmed.
func sectionMarkdown(s Section) string {
	if s.Type == "heading" {
		title := strings.TrimSpace(s.Title)
		if title == "" {
			title = strings.TrimSpace(s.Text)
		}
		if title == "" {
			return ""
		}
		level := s.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		return strings.Repeat("#", level) + " " + title
	}
	return strings.TrimSpace(s.Text)
}

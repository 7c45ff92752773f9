package proposal

import (
	"fmt"
	"regexp"
	"strings"

	"proposalai/pkg/domain"
)

var orderedItem = regexp.MustCompile(`^(\d+)\. (.*)$`)

// FormatSection renders one markdown-flavored section as an HTML fragment.
// Only the constructs the generator emits are handled: "## " headings,
// numbered lists, and line breaks. Input is operator-authored text, so no
// escaping is applied beyond what the generator guarantees.
func FormatSection(text string) string {
	lines := strings.Split(text, "\n")
	var b strings.Builder
	inList := false
	for i, line := range lines {
		if m := orderedItem.FindStringSubmatch(line); m != nil {
			if !inList {
				b.WriteString("<ol>")
				inList = true
			}
			b.WriteString("<li>" + m[2] + "</li>")
			continue
		}
		if inList {
			b.WriteString("</ol>")
			inList = false
		}
		if heading, ok := strings.CutPrefix(line, "## "); ok {
			b.WriteString("<h2>" + heading + "</h2>")
			continue
		}
		if i > 0 {
			b.WriteString("<br>")
		}
		b.WriteString(line)
	}
	if inList {
		b.WriteString("</ol>")
	}
	return b.String()
}

// RenderDocument renders a proposal as a standalone HTML page, section by
// section, for preview and export.
func RenderDocument(p domain.Proposal) string {
	sections := []string{
		p.Content.Introduction,
		p.Content.ProjectScope,
		p.Content.Timeline,
		p.Content.Pricing,
		p.Content.Conclusion,
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&b, "<meta charset=\"utf-8\">\n<title>%s</title>\n", p.Title)
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n<p>For: %s</p>\n", p.Title, p.ClientName)
	for _, section := range sections {
		fmt.Fprintf(&b, "<section>%s</section>\n", FormatSection(section))
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

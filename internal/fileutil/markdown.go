package fileutil

import (
	"fmt"
	"strconv"
	"strings"
)

// MarkdownBuilder assembles a markdown document with YAML frontmatter.
type MarkdownBuilder struct {
	frontmatter strings.Builder
	content     strings.Builder
}

func NewMarkdownBuilder() *MarkdownBuilder {
	return &MarkdownBuilder{}
}

// AddField adds a scalar frontmatter field. Empty strings and zero numbers are skipped.
func (mb *MarkdownBuilder) AddField(key string, value any) *MarkdownBuilder {
	switch v := value.(type) {
	case string:
		if v != "" {
			fmt.Fprintf(&mb.frontmatter, "%s: %s\n", key, strconv.Quote(v))
		}
	case int:
		if v != 0 {
			fmt.Fprintf(&mb.frontmatter, "%s: %d\n", key, v)
		}
	case float64:
		if v > 0 {
			fmt.Fprintf(&mb.frontmatter, "%s: %.1f\n", key, v)
		}
	case bool:
		fmt.Fprintf(&mb.frontmatter, "%s: %t\n", key, v)
	}
	return mb
}

// AddTags adds a tags list to the frontmatter.
func (mb *MarkdownBuilder) AddTags(tags ...string) *MarkdownBuilder {
	var kept []string
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			kept = append(kept, tag)
		}
	}
	if len(kept) == 0 {
		return mb
	}

	mb.frontmatter.WriteString("tags:\n")
	for _, tag := range kept {
		fmt.Fprintf(&mb.frontmatter, "  - %s\n", tag)
	}
	return mb
}

// DecadeTag returns a year/<decade> tag, or "" when year is not a number.
func DecadeTag(year string) string {
	if len(year) < 4 {
		return ""
	}
	y, err := strconv.Atoi(year[:4])
	if err != nil || y <= 0 {
		return ""
	}
	if y < 1950 {
		return "year/pre-1950s"
	}
	return fmt.Sprintf("year/%ds", y/10*10)
}

func (mb *MarkdownBuilder) AddHeading(level int, text string) *MarkdownBuilder {
	if text == "" {
		return mb
	}
	fmt.Fprintf(&mb.content, "%s %s\n\n", strings.Repeat("#", max(level, 1)), text)
	return mb
}

func (mb *MarkdownBuilder) AddParagraph(text string) *MarkdownBuilder {
	if text == "" {
		return mb
	}
	mb.content.WriteString(text)
	mb.content.WriteString("\n\n")
	return mb
}

func (mb *MarkdownBuilder) AddImage(imageURL string) *MarkdownBuilder {
	if imageURL == "" {
		return mb
	}
	fmt.Fprintf(&mb.content, "![](%s)\n\n", imageURL)
	return mb
}

// AddCallout adds a collapsed Obsidian-style callout.
func (mb *MarkdownBuilder) AddCallout(calloutType, title, content string) *MarkdownBuilder {
	if content == "" {
		return mb
	}

	if title != "" {
		fmt.Fprintf(&mb.content, ">[!%s]- %s\n", calloutType, title)
	} else {
		fmt.Fprintf(&mb.content, ">[!%s]\n", calloutType)
	}
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(&mb.content, "> %s\n", line)
	}
	mb.content.WriteString("\n")
	return mb
}

func (mb *MarkdownBuilder) AddExternalLink(title, url string) *MarkdownBuilder {
	if url == "" {
		return mb
	}
	fmt.Fprintf(&mb.content, "[%s](%s)\n\n", title, url)
	return mb
}

// Build returns the document. Frontmatter is emitted only when a field was added.
func (mb *MarkdownBuilder) Build() string {
	if mb.frontmatter.Len() == 0 {
		return mb.content.String()
	}

	var doc strings.Builder
	doc.WriteString("---\n")
	doc.WriteString(mb.frontmatter.String())
	doc.WriteString("---\n\n")
	doc.WriteString(mb.content.String())
	return doc.String()
}

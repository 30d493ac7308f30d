package text

import (
	"html"
	"path/filepath"
	"regexp"
	"strings"
)

// Format identifies the markup a note file was written in.
type Format string

const (
	FormatPlain    Format = "plain"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// FormatOf picks a format from the file extension.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".mdown":
		return FormatMarkdown
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	default:
		return FormatPlain
	}
}

var (
	mdCodeFence  = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")
	mdInlineCode = regexp.MustCompile("`([^`]+)`")
	mdImage      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	mdLink       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdHeading    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdEmphasis   = regexp.MustCompile(`(^|[\s(])(\*\*|__|\*|_)(\S(?:[^\n]*?\S)?)(\*\*|__|\*|_)($|[\s).,;:!?])`)
	mdQuote      = regexp.MustCompile(`(?m)^>\s?`)
	mdRule       = regexp.MustCompile(`(?m)^\s*[-*_]{3,}\s*$`)
	mdBullet     = regexp.MustCompile(`(?m)^(\s*)[-*+]\s+`)
	mdNumbered   = regexp.MustCompile(`(?m)^(\s*)\d+[.)]\s+`)

	htmlTitle   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	htmlDropped = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`),
		regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`),
		regexp.MustCompile(`(?is)<noscript\b[^>]*>.*?</noscript>`),
		regexp.MustCompile(`(?is)<title\b[^>]*>.*?</title>`),
		regexp.MustCompile(`(?is)<head\b[^>]*>.*?</head>`),
		regexp.MustCompile(`(?is)<svg\b[^>]*>.*?</svg>`),
	}
	htmlComment    = regexp.MustCompile(`(?s)<!--.*?-->`)
	htmlBlockOpen  = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	htmlBlockClose = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	htmlBreak      = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	htmlTag        = regexp.MustCompile(`<[^>]+>`)

	spaceRun   = regexp.MustCompile(`[ \t]+`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

// StripMarkdown reduces markdown to its readable text. Code blocks keep their
// content; only fences and backticks are removed.
func StripMarkdown(content string) string {
	content = mdCodeFence.ReplaceAllString(content, "$1")
	content = mdInlineCode.ReplaceAllString(content, "$1")
	content = mdImage.ReplaceAllString(content, "$1")
	content = mdLink.ReplaceAllString(content, "$1")
	content = mdHeading.ReplaceAllString(content, "")
	content = mdRule.ReplaceAllString(content, "")
	content = mdEmphasis.ReplaceAllString(content, "$1$3$5")
	content = mdQuote.ReplaceAllString(content, "")
	content = mdBullet.ReplaceAllString(content, "$1")
	content = mdNumbered.ReplaceAllString(content, "$1")
	content = newlineRun.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// StripHTML extracts the visible text of an HTML page, one block per line.
func StripHTML(content string) string {
	for _, drop := range htmlDropped {
		content = drop.ReplaceAllString(content, "")
	}
	content = htmlComment.ReplaceAllString(content, "")
	content = htmlBlockOpen.ReplaceAllString(content, "\n")
	content = htmlBlockClose.ReplaceAllString(content, "\n")
	content = htmlBreak.ReplaceAllString(content, "\n")
	content = htmlTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = spaceRun.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// Title returns the first H1 of a markdown note or the <title> of an HTML
// page, and "" when there is none.
func Title(content string, format Format) string {
	switch format {
	case FormatMarkdown:
		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "# ") {
				return strings.TrimSpace(line[2:])
			}
		}
	case FormatHTML:
		if m := htmlTitle.FindStringSubmatch(content); len(m) > 1 {
			return strings.TrimSpace(html.UnescapeString(m[1]))
		}
	}
	return ""
}

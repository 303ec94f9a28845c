package utils

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Markdown styles
func CodeStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(lipgloss.Color("236")).
		Padding(0, 1)
}

func BoldStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true)
}

func ItalicStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Italic(true)
}

func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Underline(true)
}

func ListStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		MarginLeft(2)
}

var (
	blankRun    = regexp.MustCompile(`\n(?:[ \t]*\n)+`)
	orderedItem = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)
	codeSpan    = regexp.MustCompile("`([^`]+)`")
	boldSpan    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicSpan  = regexp.MustCompile(`(^|[^*])\*([^*\s][^*]*)\*`)
)

// RenderMarkdown styles the small markdown subset the assistant produces:
// headings, bullet and numbered lists, bold, italic and inline code.
//
// Line breaks are kept as written since reports rely on them. Runs of blank
// lines collapse to one. Markers that are not closed yet, as happens while a
// reply is still streaming, are left as plain text.
func RenderMarkdown(text string) string {
	text = blankRun.ReplaceAllString(strings.TrimSpace(text), "\n\n")
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = renderLine(line)
	}
	return strings.Join(lines, "\n")
}

func renderLine(line string) string {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return ""
	case strings.HasPrefix(trimmed, "#"):
		title := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		return TitleStyle().Render(renderInline(title))
	case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
		return ListStyle().Render("• " + renderInline(trimmed[2:]))
	}

	if m := orderedItem.FindStringSubmatch(trimmed); m != nil {
		return ListStyle().Render(m[1] + ". " + renderInline(m[2]))
	}
	return renderInline(line)
}

// renderInline handles code spans first so their content is not styled again.
func renderInline(s string) string {
	s = codeSpan.ReplaceAllStringFunc(s, func(m string) string {
		return CodeStyle().Render(m[1 : len(m)-1])
	})
	s = boldSpan.ReplaceAllStringFunc(s, func(m string) string {
		return BoldStyle().Render(m[2 : len(m)-2])
	})
	s = italicSpan.ReplaceAllStringFunc(s, func(m string) string {
		sub := italicSpan.FindStringSubmatch(m)
		return sub[1] + ItalicStyle().Render(sub[2])
	})
	return s
}

package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold label", "🔴 **Memory Alert**: low memory.", "🔴 Memory Alert: low memory."},
		{"bullet", "- Close unused background apps.", "  • Close unused background apps."},
		{"numbered", "1. YouTube", "  1. YouTube"},
		{"heading", "## Tips", "Tips"},
		{"italic", "this is *really* hot", "this is really hot"},
		{"code", "run `sysinfo` now", "run  sysinfo  now"},
		{"unclosed bold while streaming", "🟢 **Battery Le", "🟢 **Battery Le"},
		{"line breaks kept", "RAM Usage: 1 MB / 2 MB\nAvailable Storage: 3 MB", "RAM Usage: 1 MB / 2 MB\nAvailable Storage: 3 MB"},
		{"blank runs collapse", "a\n\n\n\nb", "a\n\nb"},
		{"empty", "  \n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plain(RenderMarkdown(tt.in)))
		})
	}
}

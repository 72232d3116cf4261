package mail

import (
	"html"
	"regexp"
	"strings"
)

var (
	reLineBreak  = regexp.MustCompile(`(?i)<br\s*/?>`)
	reBlockTag   = regexp.MustCompile(`(?i)</?(?:p|div|h[1-6]|ul|ol|li|tr|table|blockquote)(?:\s[^>]*)?>`)
	reAnyTag     = regexp.MustCompile(`<[^>]*>`)
	reHorizontal = regexp.MustCompile(`[ \t]+`)
	reBlankRuns  = regexp.MustCompile(`\n{3,}`)
)

// HTMLToPlainText derives the text/plain body from the rendered HTML body.
// Line-break and block-level tags become newlines, remaining tags are
// stripped, entities are decoded, horizontal whitespace collapses to one
// space and blank-line runs to a single blank line. The function is pure
// and idempotent: applying it to its own output is a no-op.
func HTMLToPlainText(in string) string {
	// Entity decoding can materialize new markup ("&lt;b&gt;" decodes to a
	// tag) or new entities ("&amp;amp;"). Run the pass to a fixed point so
	// the output converts to itself; each pass only removes, so this
	// terminates.
	out := convertPass(in)
	for {
		next := convertPass(out)
		if next == out {
			return out
		}
		out = next
	}
}

func convertPass(in string) string {
	s := reLineBreak.ReplaceAllString(in, "\n")
	s = reBlockTag.ReplaceAllString(s, "\n\n")
	s = reAnyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = reHorizontal.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = reBlankRuns.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

package noteslatex

import (
	"regexp"
	"strings"
)

// documentBody matches the first \begin{document}...\end{document} span.
// (?s) lets . cross newlines; .*? keeps the match non-greedy so nested or
// repeated blocks yield only the first body.
var documentBody = regexp.MustCompile(`(?s)\\begin\{document\}(.*?)\\end\{document\}`)

// ExtractBody returns the content between the first \begin{document} and
// the following \end{document}, trimmed of surrounding whitespace. When the
// markers are absent the whole input is returned trimmed; unwrapped output
// is a valid result, not an error.
func ExtractBody(latex string) string {
	if m := documentBody.FindStringSubmatch(latex); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(latex)
}

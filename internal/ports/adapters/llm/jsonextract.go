package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Models wrap JSON in markdown fences or chatty prose despite being
// told not to. All defensive scraping lives here: strip fences, then
// take the outermost JSON value of the expected kind.

// ExtractJSONArray pulls the first JSON array out of a model reply.
func ExtractJSONArray(s string) (string, error) {
	return extractDelimited(s, '[', ']')
}

// ExtractJSONObject pulls the first JSON object out of a model reply.
func ExtractJSONObject(s string) (string, error) {
	return extractDelimited(s, '{', '}')
}

func extractDelimited(s string, opener, closer byte) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("empty model response")
	}

	// Strip markdown code fences.
	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	start := strings.IndexByte(t, opener)
	end := strings.LastIndexByte(t, closer)
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON %c...%c found in: %q", opener, closer, truncate(t, 200))
	}
	return t[start : end+1], nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
